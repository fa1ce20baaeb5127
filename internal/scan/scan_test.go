package scan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edgeshift/edgeshift/internal/config"
	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/report"
)

func testScanner(t *testing.T, handler http.Handler, opts Options) *Scanner {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := config.Credentials{
		Host:         "akab-test.luna.akamaiapis.net",
		ClientToken:  "akab-client-token",
		ClientSecret: "c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0c2U=",
		AccessToken:  "akab-access-token",
	}
	client := edge.New(creds, edge.WithBaseURL(srv.URL), edge.WithHTTPClient(srv.Client()))
	return New(client, opts)
}

// singlePropertyMux mocks an account with one contract/group pairing, one
// property, and two hostnames sharing the apex example.com.
func singlePropertyMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/papi/v1/contracts", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"contracts":{"items":[{"contractId":"ctr_C-1"}]}}`)) //nolint:errcheck
	})
	mux.HandleFunc("/papi/v1/groups", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"groups":{"items":[{"groupId":"grp_G-1","groupName":"Main","contractIds":["ctr_C-1"]}]}}`)) //nolint:errcheck
	})
	mux.HandleFunc("/papi/v1/properties", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"properties":{"items":[{"propertyId":"prp_1","propertyName":"www-site","contractId":"ctr_C-1","groupId":"grp_G-1","latestVersion":3}]}}`)) //nolint:errcheck
	})
	mux.HandleFunc("/papi/v1/properties/prp_1/versions/3/hostnames", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"hostnames":{"items":[{"cnameFrom":"www.example.com"},{"cnameFrom":"api.example.com"}]}}`)) //nolint:errcheck
	})
	mux.HandleFunc("/papi/v1/properties/prp_1/versions/3/rules", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"rules":{"name":"default","behaviors":[{"name":"caching","options":{"behavior":"MAX_AGE"}}],"children":[]}}`)) //nolint:errcheck
	})
	mux.HandleFunc("/cps/v2/enrollments", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"enrollments":[{"id":101,"status":"active","csr":{"cn":"www.example.com","sans":["www.example.com","api.example.com"]},"deploymentSchedule":{"network":"enhanced-tls"}}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/appsec/v1/configs", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"configurations":[{"id":7,"name":"prod-waf","latestVersion":12}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/appsec/v1/configs/7/versions/12/security-policies", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"policies":[{"policyId":"p1"},{"policyId":"p2"}]}`)) //nolint:errcheck
	})
	return mux
}

func TestRun_EndToEnd(t *testing.T) {
	s := testScanner(t, singlePropertyMux(), Options{IncludeRules: true})

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	inv := res.Inventory

	if res.PropertyCount != 1 {
		t.Errorf("PropertyCount = %d, want 1", res.PropertyCount)
	}
	if inv.ContractID != "ctr_C-1" || inv.GroupID != "grp_G-1" {
		t.Errorf("pairing = %s/%s", inv.ContractID, inv.GroupID)
	}
	if len(inv.Hostnames) != 2 {
		t.Fatalf("hostnames = %+v, want 2", inv.Hostnames)
	}
	for _, hr := range inv.Hostnames {
		if hr.Apex != "example.com" {
			t.Errorf("apex of %s = %q, want example.com", hr.Hostname, hr.Apex)
		}
	}
	bundle, ok := inv.Rules["prp_1:3"]
	if !ok || len(bundle.Cache) != 1 {
		t.Errorf("rules bundle = %+v", inv.Rules)
	}
	if len(inv.Enrollments) != 1 || inv.Enrollments[0].ID != "101" {
		t.Errorf("enrollments = %+v", inv.Enrollments)
	}
	if got := inv.CertNamesByApex["example.com"]; len(got) != 3 {
		t.Errorf("cert names = %v, want cn + 2 sans", got)
	}
	if len(inv.SecurityConfigs) != 1 || inv.SecurityConfigs[0].PolicyCount != 2 {
		t.Errorf("security configs = %+v", inv.SecurityConfigs)
	}
	if len(inv.Errors) != 0 {
		t.Errorf("unexpected degraded fetches: %v", inv.Errors)
	}

	// Write the reports: two hostnames sharing one apex must yield two data
	// rows and a single checklist listing both, sorted.
	dir := t.TempDir()
	if err := report.WriteAll(inv, dir, false); err != nil {
		t.Fatalf("WriteAll error: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "hostnames.csv"))
	if err != nil {
		t.Fatalf("reading hostnames.csv: %v", err)
	}
	if rows := strings.Count(strings.TrimSpace(string(b)), "\n"); rows != 2 {
		t.Errorf("hostnames.csv data rows = %d, want 2", rows)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "checklists"))
	if err != nil {
		t.Fatalf("reading checklists: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "example.com.md" {
		t.Fatalf("checklists = %v, want exactly example.com.md", entries)
	}
	content, err := os.ReadFile(filepath.Join(dir, "checklists", "example.com.md"))
	if err != nil {
		t.Fatal(err)
	}
	apiIdx := strings.Index(string(content), "- api.example.com")
	wwwIdx := strings.Index(string(content), "- www.example.com")
	if apiIdx < 0 || wwwIdx < 0 || apiIdx > wwwIdx {
		t.Errorf("checklist hostnames missing or unsorted:\n%s", content)
	}
}

func TestRun_VersionFallback(t *testing.T) {
	// The property record carries no version fields; the versions endpoint
	// must be consulted and its highest version used.
	base := singlePropertyMux()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/papi/v1/properties":
			w.Write([]byte(`{"properties":{"items":[{"propertyId":"prp_2","propertyName":"shop","contractId":"ctr_C-1","groupId":"grp_G-1"}]}}`)) //nolint:errcheck
		case "/papi/v1/properties/prp_2/versions":
			w.Write([]byte(`{"versions":{"items":[{"propertyVersion":4},{"propertyVersion":5}]}}`)) //nolint:errcheck
		case "/papi/v1/properties/prp_2/versions/5/hostnames":
			w.Write([]byte(`{"hostnames":{"items":[{"cnameFrom":"shop.example.org"}]}}`)) //nolint:errcheck
		default:
			base.ServeHTTP(w, r)
		}
	})

	s := testScanner(t, handler, Options{})
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Inventory.Hostnames) != 1 {
		t.Fatalf("hostnames = %+v", res.Inventory.Hostnames)
	}
	if hr := res.Inventory.Hostnames[0]; hr.PropertyVersion != 5 || hr.Hostname != "shop.example.org" {
		t.Errorf("record = %+v, want version 5 via fallback", hr)
	}
}

func TestRun_BestEffortDegradation(t *testing.T) {
	base := singlePropertyMux()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cps/v2/enrollments" {
			http.Error(w, "cps unavailable", http.StatusInternalServerError)
			return
		}
		base.ServeHTTP(w, r)
	})

	s := testScanner(t, handler, Options{})
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should survive a CPS outage, got: %v", err)
	}
	if len(res.Inventory.Hostnames) != 2 {
		t.Errorf("hostnames = %+v", res.Inventory.Hostnames)
	}
	if _, ok := res.Inventory.Errors["cps.enrollments"]; !ok {
		t.Errorf("Errors = %v, want cps.enrollments recorded", res.Inventory.Errors)
	}
}

func TestRun_PropertiesFailureIsFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/papi/v1/contracts", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	s := testScanner(t, mux, Options{})
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error when contract discovery fails")
	}
}

func TestRun_Products(t *testing.T) {
	mux := singlePropertyMux()
	mux.HandleFunc("/config-dns/v2/zones", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"zones":[{"zone":"example.com","type":"PRIMARY","activationState":"ACTIVE"}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/gtm/v1/domains", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items":["cdn.akadns.net"]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/edgeworkers/v1/edgeworkers", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"edgeworkers":[{"edgeWorkerId":42,"name":"redirector"}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/cloudlets/v2/policies", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"policyId":99,"name":"er-prod","cloudletType":"ER"}]`)) //nolint:errcheck
	})
	// cloud-wrapper and gtm sub-resources unhandled: they degrade quietly.

	s := testScanner(t, mux, Options{IncludeProducts: true})
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	inv := res.Inventory
	if len(inv.DNSZones) != 1 || len(inv.EdgeWorkers) != 1 || len(inv.Cloudlets) != 1 {
		t.Errorf("products = zones %d, workers %d, cloudlets %d",
			len(inv.DNSZones), len(inv.EdgeWorkers), len(inv.Cloudlets))
	}
	if len(inv.GTMDomains) != 1 || inv.GTMDomains[0].Name != "cdn.akadns.net" {
		t.Errorf("gtm domains = %+v", inv.GTMDomains)
	}
	if _, ok := inv.Errors["cloudwrapper.list"]; !ok {
		t.Errorf("Errors = %v, want cloudwrapper.list recorded", inv.Errors)
	}
}
