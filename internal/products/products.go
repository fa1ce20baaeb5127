// Package products fetches the broader product estate: Edge DNS, GTM,
// EdgeWorkers, Cloudlets, and Cloud Wrapper. Everything here is best-effort;
// callers record failures and continue with empty sections.
package products

import (
	"github.com/edgeshift/edgeshift/internal/edge"
)

// Service wraps the auxiliary product endpoints.
type Service struct {
	client *edge.Client
}

// New creates a products service on the given client.
func New(c *edge.Client) *Service {
	return &Service{client: c}
}

func toMaps(items []edge.Object) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, o := range items {
		out = append(out, map[string]any(o))
	}
	return out
}
