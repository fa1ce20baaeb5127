// Package appsec fetches Application Security configurations and policies.
package appsec

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/store"
)

// Service wraps the AppSec configuration endpoints.
type Service struct {
	client *edge.Client
}

// New creates an AppSec service on the given client.
func New(c *edge.Client) *Service {
	return &Service{client: c}
}

// ListConfigs returns security config summaries with per-config policy
// counts. A failed policy listing degrades that config's count to zero
// rather than failing the whole listing.
func (s *Service) ListConfigs(ctx context.Context) ([]store.SecurityConfigSummary, error) {
	body, err := s.client.Get(ctx, "appsec/v1/configs", nil)
	if err != nil {
		return nil, fmt.Errorf("listing security configs: %w", err)
	}
	items, err := edge.DecodeList(body, "configurations", "configs")
	if err != nil {
		return nil, fmt.Errorf("decoding security configs: %w", err)
	}

	summaries := make([]store.SecurityConfigSummary, 0, len(items))
	for _, o := range items {
		summary := store.SecurityConfigSummary{
			ID:   o.Field("id"),
			Name: o.Str("name", "configName"),
		}
		if summary.ID == "" {
			summary.ID = o.Field("configId")
		}
		// latestVersion is sometimes a number, sometimes {"version": n}.
		if v, ok := o.Int("latestVersion"); ok {
			summary.LatestVersion = v
		} else if v, ok := o.Obj("latestVersion").Int("version"); ok {
			summary.LatestVersion = v
		}

		if summary.ID != "" && summary.LatestVersion > 0 {
			policies, perr := s.listPolicies(ctx, summary.ID, summary.LatestVersion)
			if perr != nil {
				slog.Debug("listing security policies", "config", summary.ID, "err", perr)
			}
			summary.PolicyCount = len(policies)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) listPolicies(ctx context.Context, configID string, version int) ([]edge.Object, error) {
	path := "appsec/v1/configs/" + configID + "/versions/" + strconv.Itoa(version) + "/security-policies"
	body, err := s.client.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return edge.DecodeList(body, "policies")
}
