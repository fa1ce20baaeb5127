package products

import (
	"context"
	"fmt"

	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/store"
)

// ListEdgeWorkers returns EdgeWorkers registrations.
func (s *Service) ListEdgeWorkers(ctx context.Context) ([]store.EdgeWorker, error) {
	body, err := s.client.Get(ctx, "edgeworkers/v1/edgeworkers", nil)
	if err != nil {
		return nil, fmt.Errorf("listing edgeworkers: %w", err)
	}
	items, err := edge.DecodeList(body, "edgeworkers")
	if err != nil {
		return nil, fmt.Errorf("decoding edgeworkers: %w", err)
	}
	workers := make([]store.EdgeWorker, 0, len(items))
	for _, o := range items {
		workers = append(workers, store.EdgeWorker{
			ID:           o.Field("edgeWorkerId"),
			Name:         o.Str("name"),
			GroupID:      o.Field("groupId"),
			LastModified: o.Str("lastModifiedTime"),
		})
	}
	return workers, nil
}

// ListCloudlets returns Cloudlets content-routing policies.
func (s *Service) ListCloudlets(ctx context.Context) ([]store.CloudletPolicy, error) {
	body, err := s.client.Get(ctx, "cloudlets/v2/policies", nil)
	if err != nil {
		return nil, fmt.Errorf("listing cloudlets policies: %w", err)
	}
	items, err := edge.DecodeList(body, "policies")
	if err != nil {
		return nil, fmt.Errorf("decoding cloudlets policies: %w", err)
	}
	policies := make([]store.CloudletPolicy, 0, len(items))
	for _, o := range items {
		policies = append(policies, store.CloudletPolicy{
			ID:     o.Field("policyId"),
			Name:   o.Str("name"),
			Type:   o.Str("cloudletType"),
			Status: o.Str("status"),
		})
	}
	return policies, nil
}

// wrapperPaths are the known Cloud Wrapper listing endpoints, tried in order.
var wrapperPaths = []string{
	"cloud-wrapper/v1/containers",
	"cloud-wrapper/v1/configurations",
}

// ListWrapper enumerates Cloud Wrapper containers/configurations. The first
// endpoint returning a non-empty list wins; endpoints that error are skipped.
func (s *Service) ListWrapper(ctx context.Context) ([]store.WrapperContainer, error) {
	var lastErr error
	for _, path := range wrapperPaths {
		body, err := s.client.Get(ctx, path, nil)
		if err != nil {
			lastErr = err
			continue
		}
		items, err := edge.DecodeList(body, "items", "containers", "configurations")
		if err != nil {
			lastErr = err
			continue
		}
		if len(items) == 0 {
			continue
		}
		containers := make([]store.WrapperContainer, 0, len(items))
		for _, o := range items {
			id := o.Field("id")
			if id == "" {
				id = o.Field("containerId")
			}
			containers = append(containers, store.WrapperContainer{
				ID:     id,
				Name:   o.Str("name"),
				Status: o.Str("status", "state"),
			})
		}
		return containers, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("listing cloud wrapper: %w", lastErr)
	}
	return nil, nil
}
