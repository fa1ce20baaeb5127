package products

import (
	"context"
	"fmt"

	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/store"
)

// ListDNSZones returns Edge DNS zones, trying the v2 Config DNS API first
// and falling back to v1 for older accounts. The v1 fallback also runs when
// v2 answers with an empty set, matching accounts that only expose v1 data.
func (s *Service) ListDNSZones(ctx context.Context) ([]store.DNSZone, error) {
	zones, v2err := s.listZonesAt(ctx, "config-dns/v2/zones")
	if v2err == nil && len(zones) > 0 {
		return zones, nil
	}

	zones, v1err := s.listZonesAt(ctx, "config-dns/v1/zones")
	if v1err != nil {
		if v2err != nil {
			return nil, fmt.Errorf("listing zones: v2: %v; v1: %w", v2err, v1err)
		}
		return nil, fmt.Errorf("listing zones: %w", v1err)
	}
	return zones, nil
}

func (s *Service) listZonesAt(ctx context.Context, path string) ([]store.DNSZone, error) {
	body, err := s.client.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := edge.DecodeList(body, "zones")
	if err != nil {
		return nil, err
	}
	zones := make([]store.DNSZone, 0, len(items))
	for _, o := range items {
		zones = append(zones, store.DNSZone{
			Zone:   o.Str("zone", "name"),
			Type:   o.Str("type", "contractId"),
			Status: o.Str("status", "activationState"),
		})
	}
	return zones, nil
}
