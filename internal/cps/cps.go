// Package cps fetches CPS certificate enrollments.
package cps

import (
	"context"
	"fmt"

	"github.com/edgeshift/edgeshift/internal/apex"
	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/store"
)

// Service wraps the CPS enrollments endpoint.
type Service struct {
	client *edge.Client
}

// New creates a CPS service on the given client.
func New(c *edge.Client) *Service {
	return &Service{client: c}
}

// ListEnrollments returns flattened certificate enrollment summaries. The
// common name comes from the CSR, falling back to the certificate body; SANs
// come from the CSR, falling back to the network configuration's SAN entries.
func (s *Service) ListEnrollments(ctx context.Context) ([]store.EnrollmentSummary, error) {
	body, err := s.client.Get(ctx, "cps/v2/enrollments", nil)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	items, err := edge.DecodeList(body, "enrollments")
	if err != nil {
		return nil, fmt.Errorf("decoding enrollments: %w", err)
	}

	summaries := make([]store.EnrollmentSummary, 0, len(items))
	for _, o := range items {
		cn := o.Obj("csr").Str("cn")
		if cn == "" {
			cn = o.Obj("certificate").Str("cn")
		}
		sans := o.Obj("csr").Strings("sans")
		if len(sans) == 0 {
			sans = o.Obj("networkConfiguration").Strings("sanEntries")
		}
		summaries = append(summaries, store.EnrollmentSummary{
			ID:         o.Field("id"),
			CommonName: cn,
			SANs:       sans,
			Status:     o.Str("status"),
			Network:    o.Obj("deploymentSchedule").Str("network"),
		})
	}
	return summaries, nil
}

// NamesByApex builds the reverse index apex → certified names from the
// common names and SANs of all enrollments.
func NamesByApex(enrollments []store.EnrollmentSummary) map[string][]string {
	byApex := make(map[string][]string)
	for i := range enrollments {
		e := &enrollments[i]
		names := e.SANs
		if e.CommonName != "" {
			names = append([]string{e.CommonName}, e.SANs...)
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			a := apex.Of(name)
			byApex[a] = append(byApex[a], name)
		}
	}
	return byApex
}
