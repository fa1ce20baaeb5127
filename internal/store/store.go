// Package store defines the data model shared by fetchers and report writers.
package store

import (
	"strconv"
	"time"
)

// HostnameRecord is one hostname discovered on a property version.
// Records are immutable once created and are grouped by apex for
// checklist generation.
type HostnameRecord struct {
	Apex            string `json:"apex"`
	Hostname        string `json:"hostname"`
	PropertyName    string `json:"propertyName"`
	PropertyID      string `json:"propertyId"`
	PropertyVersion int    `json:"propertyVersion"`
}

// Options is an opaque behavior option map as returned by PAPI.
type Options map[string]any

// HeaderDirective is a header-modification behavior with its directive name.
type HeaderDirective struct {
	Directive string  `json:"directive"`
	Options   Options `json:"options"`
}

// RuleBundle holds the classified behaviors of one property version's rule
// tree, keyed in Inventory by "propertyId:version".
type RuleBundle struct {
	Cache     []Options         `json:"cache"`
	Redirects []Options         `json:"redirects"`
	Headers   []HeaderDirective `json:"headers"`
	HSTS      []Options         `json:"hsts"`
}

// Empty reports whether no behavior was classified into any bucket.
func (b RuleBundle) Empty() bool {
	return len(b.Cache) == 0 && len(b.Redirects) == 0 && len(b.Headers) == 0 && len(b.HSTS) == 0
}

// EnrollmentSummary is a flattened CPS certificate enrollment.
type EnrollmentSummary struct {
	ID         string   `json:"id"`
	CommonName string   `json:"commonName"`
	SANs       []string `json:"sans"`
	Status     string   `json:"status"`
	Network    string   `json:"network"`
}

// SecurityConfigSummary is a flattened AppSec configuration.
type SecurityConfigSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LatestVersion int    `json:"latestVersion"`
	PolicyCount   int    `json:"policyCount"`
}

// DNSZone is one Edge DNS zone.
type DNSZone struct {
	Zone   string `json:"zone"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// EdgeWorker is one EdgeWorkers registration.
type EdgeWorker struct {
	ID           string `json:"edgeWorkerId"`
	Name         string `json:"name"`
	GroupID      string `json:"groupId"`
	LastModified string `json:"lastModifiedTime"`
}

// CloudletPolicy is one Cloudlets content-routing policy.
type CloudletPolicy struct {
	ID     string `json:"policyId"`
	Name   string `json:"name"`
	Type   string `json:"cloudletType"`
	Status string `json:"status"`
}

// WrapperContainer is one Cloud Wrapper container or configuration.
type WrapperContainer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// GTMProperty is one GTM property with its full detail body.
type GTMProperty struct {
	Name   string         `json:"name"`
	Record map[string]any `json:"record"` // list-endpoint record
	Detail map[string]any `json:"detail"` // per-property GET body
}

// GTMDomain bundles everything exported for one GTM domain.
type GTMDomain struct {
	Name          string           `json:"name"`
	Datacenters   []map[string]any `json:"datacenters"`
	LivenessTests []map[string]any `json:"livenessTests"`
	CIDRMaps      []map[string]any `json:"cidrMaps"`
	ASMaps        []map[string]any `json:"asMaps"`
	GeoMaps       []map[string]any `json:"geoMaps"`
	Properties    []GTMProperty    `json:"properties"`
}

// RuleKey returns the Inventory.Rules key for a property version.
func RuleKey(propertyID string, version int) string {
	return propertyID + ":" + strconv.Itoa(version)
}

// Inventory is a point-in-time collection of everything discovered in one run.
// Errors records auxiliary resources that failed to fetch (resource name →
// reason) so an empty section can be told apart from a failed one.
type Inventory struct {
	At              time.Time               `json:"at"`
	ContractID      string                  `json:"contractId,omitempty"`
	GroupID         string                  `json:"groupId,omitempty"`
	Hostnames       []HostnameRecord        `json:"hostnames"`
	Rules           map[string]RuleBundle   `json:"rules,omitempty"`
	Enrollments     []EnrollmentSummary     `json:"enrollments,omitempty"`
	CertNamesByApex map[string][]string     `json:"certNamesByApex,omitempty"`
	SecurityConfigs []SecurityConfigSummary `json:"securityConfigs,omitempty"`
	DNSZones        []DNSZone               `json:"dnsZones,omitempty"`
	GTMDomains      []GTMDomain             `json:"gtmDomains,omitempty"`
	EdgeWorkers     []EdgeWorker            `json:"edgeWorkers,omitempty"`
	Cloudlets       []CloudletPolicy        `json:"cloudlets,omitempty"`
	Wrapper         []WrapperContainer      `json:"wrapper,omitempty"`
	Errors          map[string]string       `json:"errors,omitempty"`
}

// RecordError notes a degraded (best-effort) resource fetch.
func (inv *Inventory) RecordError(resource string, err error) {
	if err == nil {
		return
	}
	if inv.Errors == nil {
		inv.Errors = make(map[string]string)
	}
	inv.Errors[resource] = err.Error()
}

// HostnamesByApex groups hostname records by their apex domain.
func (inv *Inventory) HostnamesByApex() map[string][]HostnameRecord {
	byApex := make(map[string][]HostnameRecord)
	for i := range inv.Hostnames {
		byApex[inv.Hostnames[i].Apex] = append(byApex[inv.Hostnames[i].Apex], inv.Hostnames[i])
	}
	return byApex
}
