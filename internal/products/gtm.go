package products

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/store"
)

// ListGTMDomains returns the GTM domain names visible to the credentials.
// Some accounts return {"items": ["name", ...]}, others a list of objects
// carrying a name field.
func (s *Service) ListGTMDomains(ctx context.Context) ([]string, error) {
	body, err := s.client.Get(ctx, "gtm/v1/domains", nil)
	if err != nil {
		return nil, fmt.Errorf("listing gtm domains: %w", err)
	}

	if names, derr := edge.DecodeStrings(body); derr == nil && len(names) > 0 {
		return names, nil
	}

	items, err := edge.DecodeList(body)
	if err != nil {
		return nil, fmt.Errorf("decoding gtm domains: %w", err)
	}
	var names []string
	for _, o := range items {
		if n := o.Str("name", "domainName"); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}

// FetchGTMDomain exports one GTM domain's sub-resources: datacenters,
// liveness tests, CIDR/AS/geo maps, and properties with per-property detail.
// Each sub-resource is best-effort; a failed fetch leaves its section empty.
func (s *Service) FetchGTMDomain(ctx context.Context, domain string) store.GTMDomain {
	d := store.GTMDomain{Name: domain}
	base := "gtm/v1/domains/" + url.PathEscape(domain)

	d.Datacenters = s.gtmList(ctx, base+"/datacenters", "datacenters")
	d.LivenessTests = s.gtmList(ctx, base+"/liveness-tests", "liveness-tests")
	d.CIDRMaps = s.gtmList(ctx, base+"/cidr-maps", "cidr-maps")
	d.ASMaps = s.gtmList(ctx, base+"/as-maps", "as-maps")
	d.GeoMaps = s.gtmList(ctx, base+"/geo-maps", "geo-maps")

	for _, record := range s.gtmList(ctx, base+"/properties", "properties") {
		o := edge.Object(record)
		name := o.Str("propertyName", "name")
		prop := store.GTMProperty{Name: name, Record: record}
		if name != "" {
			prop.Detail = s.gtmObject(ctx, base+"/properties/"+url.PathEscape(name))
		}
		d.Properties = append(d.Properties, prop)
	}
	return d
}

func (s *Service) gtmList(ctx context.Context, path, resource string) []map[string]any {
	body, err := s.client.Get(ctx, path, nil)
	if err != nil {
		slog.Debug("gtm sub-resource unavailable", "resource", resource, "err", err)
		return nil
	}
	items, err := edge.DecodeList(body)
	if err != nil {
		slog.Debug("gtm sub-resource undecodable", "resource", resource, "err", err)
		return nil
	}
	return toMaps(items)
}

func (s *Service) gtmObject(ctx context.Context, path string) map[string]any {
	body, err := s.client.Get(ctx, path, nil)
	if err != nil {
		slog.Debug("gtm property detail unavailable", "path", path, "err", err)
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		slog.Debug("gtm property detail undecodable", "path", path, "err", err)
		return nil
	}
	return obj
}
