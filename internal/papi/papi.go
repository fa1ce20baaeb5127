// Package papi fetches Property Manager resources: contracts, groups,
// properties, versions, hostnames, and rule trees.
package papi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/store"
)

// Service wraps the PAPI endpoints.
type Service struct {
	client *edge.Client
}

// New creates a PAPI service on the given client.
func New(c *edge.Client) *Service {
	return &Service{client: c}
}

// Property is one PAPI property record.
type Property struct {
	ID                string
	Name              string
	ContractID        string
	GroupID           string
	LatestVersion     int
	ProductionVersion int
	StagingVersion    int
}

// BestVersion returns the version hostnames and rules are read at:
// latest, else production, else staging. Zero means no usable version.
func (p Property) BestVersion() int {
	switch {
	case p.LatestVersion > 0:
		return p.LatestVersion
	case p.ProductionVersion > 0:
		return p.ProductionVersion
	default:
		return p.StagingVersion
	}
}

// Pairing is a (contract, group) pair accepted by the properties endpoint.
type Pairing struct {
	ContractID string
	GroupID    string
}

// Group is one PAPI group with its contract memberships.
type Group struct {
	ID          string
	Name        string
	ContractIDs []string
}

// ListContracts returns all contracts visible to the credentials.
func (s *Service) ListContracts(ctx context.Context) ([]edge.Object, error) {
	body, err := s.client.Get(ctx, "papi/v1/contracts", nil)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	items, err := edge.DecodeList(body, "contracts")
	if err != nil {
		return nil, fmt.Errorf("decoding contracts: %w", err)
	}
	return items, nil
}

// ListGroups returns all groups with their contract membership lists.
func (s *Service) ListGroups(ctx context.Context) ([]Group, error) {
	body, err := s.client.Get(ctx, "papi/v1/groups", nil)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	items, err := edge.DecodeList(body, "groups")
	if err != nil {
		return nil, fmt.Errorf("decoding groups: %w", err)
	}
	groups := make([]Group, 0, len(items))
	for _, o := range items {
		groups = append(groups, Group{
			ID:          o.Str("groupId"),
			Name:        o.Str("groupName"),
			ContractIDs: o.Strings("contractIds"),
		})
	}
	return groups, nil
}

// ListProperties lists the properties of one contract/group pairing.
func (s *Service) ListProperties(ctx context.Context, pair Pairing) ([]Property, error) {
	q := url.Values{
		"contractId": {pair.ContractID},
		"groupId":    {pair.GroupID},
	}
	body, err := s.client.Get(ctx, "papi/v1/properties", q)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	items, err := edge.DecodeList(body, "properties")
	if err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	props := make([]Property, 0, len(items))
	for _, o := range items {
		p := Property{
			ID:         o.Str("propertyId"),
			Name:       o.Str("propertyName"),
			ContractID: o.Str("contractId"),
			GroupID:    o.Str("groupId"),
		}
		p.LatestVersion, _ = o.Int("latestVersion")
		p.ProductionVersion, _ = o.Int("productionVersion")
		p.StagingVersion, _ = o.Int("stagingVersion")
		props = append(props, p)
	}
	return props, nil
}

// FindContractGroup brute-forces the cross product of contracts and groups to
// find a pairing the properties endpoint accepts. Contracts and groups are
// tried in provider-returned order; pairs whose group does not list the
// contract are skipped; the first pair returning a non-empty property list
// wins and its properties are returned alongside it. No pair is probed twice.
//
// A run where no pairing works is degraded, not fatal: the zero Pairing and
// an empty property set are returned with a nil error.
func (s *Service) FindContractGroup(ctx context.Context, contracts []edge.Object, groups []Group) (Pairing, []Property, error) {
	for _, contract := range contracts {
		contractID := contract.Str("contractId")
		if contractID == "" {
			continue
		}
		for _, group := range groups {
			if !memberOf(group, contractID) {
				continue
			}
			pair := Pairing{ContractID: contractID, GroupID: group.ID}
			slog.Debug("probing contract/group pairing", "contract", contractID, "group", group.ID)

			props, err := s.ListProperties(ctx, pair)
			if err != nil {
				// Many pairings are simply not permitted; keep searching.
				slog.Debug("pairing rejected", "contract", contractID, "group", group.ID, "err", err)
				continue
			}
			if len(props) > 0 {
				slog.Info("found working contract/group pairing",
					"contract", contractID, "group", group.ID, "properties", len(props))
				return pair, props, nil
			}
		}
	}
	slog.Warn("no working contract/group pairing found")
	return Pairing{}, nil, nil
}

func memberOf(g Group, contractID string) bool {
	for _, id := range g.ContractIDs {
		if id == contractID {
			return true
		}
	}
	return false
}

// ListPropertyVersions returns the version records of one property, used as a
// fallback when the property record carries no usable version field.
func (s *Service) ListPropertyVersions(ctx context.Context, propertyID string) ([]edge.Object, error) {
	path := "papi/v1/properties/" + url.PathEscape(propertyID) + "/versions"
	body, err := s.client.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing versions for %s: %w", propertyID, err)
	}
	items, err := edge.DecodeList(body, "versions")
	if err != nil {
		return nil, fmt.Errorf("decoding versions for %s: %w", propertyID, err)
	}
	return items, nil
}

// LatestVersion returns the highest propertyVersion known for a property.
func (s *Service) LatestVersion(ctx context.Context, propertyID string) (int, error) {
	versions, err := s.ListPropertyVersions(ctx, propertyID)
	if err != nil {
		return 0, err
	}
	best := 0
	for _, v := range versions {
		if n, ok := v.Int("propertyVersion"); ok && n > best {
			best = n
		}
	}
	return best, nil
}

// ListHostnames returns the hostnames of one property version. Each hostname
// is the cnameFrom value, falling back to a plain hostname field.
func (s *Service) ListHostnames(ctx context.Context, p Property, version int) ([]string, error) {
	path := "papi/v1/properties/" + url.PathEscape(p.ID) + "/versions/" + strconv.Itoa(version) + "/hostnames"
	q := url.Values{
		"contractId": {p.ContractID},
		"groupId":    {p.GroupID},
	}
	body, err := s.client.Get(ctx, path, q)
	if err != nil {
		return nil, fmt.Errorf("listing hostnames for %s v%d: %w", p.ID, version, err)
	}
	items, err := edge.DecodeList(body, "hostnames")
	if err != nil {
		return nil, fmt.Errorf("decoding hostnames for %s v%d: %w", p.ID, version, err)
	}
	var hostnames []string
	for _, o := range items {
		if h := o.Str("cnameFrom", "hostname"); h != "" {
			hostnames = append(hostnames, h)
		}
	}
	return hostnames, nil
}

// GetRuleTree fetches the rule tree of one property version.
func (s *Service) GetRuleTree(ctx context.Context, p Property, version int) (*Rule, error) {
	path := "papi/v1/properties/" + url.PathEscape(p.ID) + "/versions/" + strconv.Itoa(version) + "/rules"
	q := url.Values{
		"contractId": {p.ContractID},
		"groupId":    {p.GroupID},
	}
	body, err := s.client.Get(ctx, path, q)
	if err != nil {
		return nil, fmt.Errorf("fetching rules for %s v%d: %w", p.ID, version, err)
	}
	var envelope struct {
		Rules Rule `json:"rules"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding rules for %s v%d: %w", p.ID, version, err)
	}
	return &envelope.Rules, nil
}

// Behavior is one named, parameterized directive on a rule node.
type Behavior struct {
	Name    string        `json:"name"`
	Options store.Options `json:"options"`
}

// Rule is one node of a property's configuration rule tree.
type Rule struct {
	Name      string     `json:"name"`
	Behaviors []Behavior `json:"behaviors"`
	Children  []Rule     `json:"children"`
}
