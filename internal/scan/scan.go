// Package scan orchestrates one inventory run across the Akamai services.
//
// The run is strictly sequential: properties first (their failure is fatal),
// then certificates, security configs, and optionally the product surfaces.
// Everything after property discovery is best-effort and degrades into
// Inventory.Errors instead of aborting the run.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/edgeshift/edgeshift/internal/apex"
	"github.com/edgeshift/edgeshift/internal/appsec"
	"github.com/edgeshift/edgeshift/internal/cps"
	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/papi"
	"github.com/edgeshift/edgeshift/internal/products"
	"github.com/edgeshift/edgeshift/internal/store"
)

// Options selects the optional surfaces of a run.
type Options struct {
	IncludeRules    bool // fetch and classify rule trees
	IncludeProducts bool // Edge DNS, GTM, EdgeWorkers, Cloudlets, Cloud Wrapper
}

// Scanner assembles a store.Inventory from the service fetchers.
type Scanner struct {
	papi     *papi.Service
	cps      *cps.Service
	appsec   *appsec.Service
	products *products.Service
	opts     Options
	tracer   trace.Tracer
	now      func() time.Time
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithTracer attaches a tracer; the default is a noop.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Scanner) { s.tracer = tr }
}

// New builds a Scanner with all services sharing one signed client.
func New(client *edge.Client, opts Options, scannerOpts ...Option) *Scanner {
	s := &Scanner{
		papi:     papi.New(client),
		cps:      cps.New(client),
		appsec:   appsec.New(client),
		products: products.New(client),
		opts:     opts,
		tracer:   noop.NewTracerProvider().Tracer("edgeshift"),
		now:      time.Now,
	}
	for _, o := range scannerOpts {
		o(s)
	}
	return s
}

// Result is a completed run: the inventory plus counts that only the run
// statistics need.
type Result struct {
	Inventory     *store.Inventory
	PropertyCount int
}

// Run executes one full scan. The only fatal failures are contract, group,
// and property discovery; every later stage records its error and moves on.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "scan")
	defer span.End()

	inv := &store.Inventory{
		At:    s.now().UTC(),
		Rules: make(map[string]store.RuleBundle),
	}

	properties, err := s.discoverProperties(ctx, inv)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("properties", len(properties)))

	s.collectHostnames(ctx, inv, properties)
	s.collectCertificates(ctx, inv)
	s.collectSecurity(ctx, inv)
	if s.opts.IncludeProducts {
		s.collectProducts(ctx, inv)
	}

	return &Result{Inventory: inv, PropertyCount: len(properties)}, nil
}

// discoverProperties finds a working contract/group pairing and its
// properties. A pairing that cannot be found yields an empty run, not an
// error; failing to list contracts or groups at all is fatal.
func (s *Scanner) discoverProperties(ctx context.Context, inv *store.Inventory) ([]papi.Property, error) {
	ctx, span := s.tracer.Start(ctx, "papi.discover")
	defer span.End()

	contracts, err := s.papi.ListContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching properties: %w", err)
	}
	groups, err := s.papi.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching properties: %w", err)
	}
	pair, properties, err := s.papi.FindContractGroup(ctx, contracts, groups)
	if err != nil {
		return nil, fmt.Errorf("fetching properties: %w", err)
	}
	inv.ContractID = pair.ContractID
	inv.GroupID = pair.GroupID
	return properties, nil
}

// collectHostnames walks every property at its best version, recording
// hostname records and, when enabled, classified rule bundles.
func (s *Scanner) collectHostnames(ctx context.Context, inv *store.Inventory, properties []papi.Property) {
	ctx, span := s.tracer.Start(ctx, "papi.hostnames")
	defer span.End()

	for _, p := range properties {
		version := p.BestVersion()
		if version == 0 {
			// Some accounts omit version fields on the property record.
			v, err := s.papi.LatestVersion(ctx, p.ID)
			if err != nil {
				inv.RecordError("papi.versions/"+p.ID, err)
				continue
			}
			version = v
		}
		if p.ID == "" || version == 0 {
			slog.Debug("skipping property without usable version", "property", p.Name)
			continue
		}

		hostnames, err := s.papi.ListHostnames(ctx, p, version)
		if err != nil {
			inv.RecordError("papi.hostnames/"+p.ID, err)
		}
		for _, h := range hostnames {
			inv.Hostnames = append(inv.Hostnames, store.HostnameRecord{
				Apex:            apex.Of(h),
				Hostname:        h,
				PropertyName:    p.Name,
				PropertyID:      p.ID,
				PropertyVersion: version,
			})
		}

		if s.opts.IncludeRules {
			tree, err := s.papi.GetRuleTree(ctx, p, version)
			if err != nil {
				inv.RecordError("papi.rules/"+p.ID, err)
				continue
			}
			inv.Rules[store.RuleKey(p.ID, version)] = papi.Classify(tree)
		}
	}
	span.SetAttributes(attribute.Int("hostnames", len(inv.Hostnames)))
}

func (s *Scanner) collectCertificates(ctx context.Context, inv *store.Inventory) {
	ctx, span := s.tracer.Start(ctx, "cps.enrollments")
	defer span.End()

	enrollments, err := s.cps.ListEnrollments(ctx)
	if err != nil {
		inv.RecordError("cps.enrollments", err)
		return
	}
	inv.Enrollments = enrollments
	inv.CertNamesByApex = cps.NamesByApex(enrollments)
}

func (s *Scanner) collectSecurity(ctx context.Context, inv *store.Inventory) {
	ctx, span := s.tracer.Start(ctx, "appsec.configs")
	defer span.End()

	configs, err := s.appsec.ListConfigs(ctx)
	if err != nil {
		inv.RecordError("appsec.configs", err)
		return
	}
	inv.SecurityConfigs = configs
}

// collectProducts enumerates the optional product surfaces. Each listing is
// independent; one failing does not stop the others.
func (s *Scanner) collectProducts(ctx context.Context, inv *store.Inventory) {
	ctx, span := s.tracer.Start(ctx, "products")
	defer span.End()

	zones, err := s.products.ListDNSZones(ctx)
	if err != nil {
		inv.RecordError("edgedns.zones", err)
	}
	inv.DNSZones = zones

	domains, err := s.products.ListGTMDomains(ctx)
	if err != nil {
		inv.RecordError("gtm.domains", err)
	}
	for _, domain := range domains {
		inv.GTMDomains = append(inv.GTMDomains, s.products.FetchGTMDomain(ctx, domain))
	}

	workers, err := s.products.ListEdgeWorkers(ctx)
	if err != nil {
		inv.RecordError("edgeworkers.list", err)
	}
	inv.EdgeWorkers = workers

	cloudlets, err := s.products.ListCloudlets(ctx)
	if err != nil {
		inv.RecordError("cloudlets.policies", err)
	}
	inv.Cloudlets = cloudlets

	wrapper, err := s.products.ListWrapper(ctx)
	if err != nil {
		inv.RecordError("cloudwrapper.list", err)
	}
	inv.Wrapper = wrapper
}
