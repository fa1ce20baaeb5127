package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edgeshift/edgeshift/internal/config"
	"github.com/edgeshift/edgeshift/internal/edge"
)

func testService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := config.Credentials{
		Host:         "akab-test.luna.akamaiapis.net",
		ClientToken:  "akab-client-token",
		ClientSecret: "c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0c2U=",
		AccessToken:  "akab-access-token",
	}
	return New(edge.New(creds, edge.WithBaseURL(srv.URL), edge.WithHTTPClient(srv.Client())))
}

func TestListDNSZones_V2(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/config-dns/v2/zones", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"zones":[{"zone":"example.com","type":"PRIMARY","activationState":"ACTIVE"}]}`)) //nolint:errcheck
	})
	svc := testService(t, mux)

	zones, err := svc.ListDNSZones(context.Background())
	if err != nil {
		t.Fatalf("ListDNSZones error: %v", err)
	}
	if len(zones) != 1 || zones[0].Zone != "example.com" || zones[0].Status != "ACTIVE" {
		t.Errorf("zones = %+v", zones)
	}
}

func TestListDNSZones_FallsBackToV1(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/config-dns/v2/zones", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/config-dns/v1/zones", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"zones":[{"name":"legacy.example.net","contractId":"ctr_C-1"}]}`)) //nolint:errcheck
	})
	svc := testService(t, mux)

	zones, err := svc.ListDNSZones(context.Background())
	if err != nil {
		t.Fatalf("ListDNSZones error: %v", err)
	}
	if len(zones) != 1 || zones[0].Zone != "legacy.example.net" || zones[0].Type != "ctr_C-1" {
		t.Errorf("zones = %+v", zones)
	}
}

func TestListDNSZones_BothFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	svc := testService(t, mux)

	if _, err := svc.ListDNSZones(context.Background()); err == nil {
		t.Fatal("expected error when both versions fail")
	}
}

func TestListGTMDomains_Shapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"string items", `{"items":["cdn.akadns.net","lb.akadns.net"]}`, []string{"cdn.akadns.net", "lb.akadns.net"}},
		{"bare string list", `["cdn.akadns.net"]`, []string{"cdn.akadns.net"}},
		{"object items", `{"items":[{"name":"cdn.akadns.net"}]}`, []string{"cdn.akadns.net"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/gtm/v1/domains", func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(c.body)) //nolint:errcheck
			})
			svc := testService(t, mux)

			names, err := svc.ListGTMDomains(context.Background())
			if err != nil {
				t.Fatalf("ListGTMDomains error: %v", err)
			}
			if len(names) != len(c.want) {
				t.Fatalf("names = %v, want %v", names, c.want)
			}
			for i := range c.want {
				if names[i] != c.want[i] {
					t.Errorf("names[%d] = %q, want %q", i, names[i], c.want[i])
				}
			}
		})
	}
}

func TestFetchGTMDomain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gtm/v1/domains/cdn.akadns.net/datacenters", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items":[{"datacenterId":3131,"nickname":"us-east"}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/gtm/v1/domains/cdn.akadns.net/properties", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items":[{"name":"www","type":"weighted-round-robin"}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("/gtm/v1/domains/cdn.akadns.net/properties/www", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"name":"www","trafficTargets":[{"datacenterId":3131,"enabled":true,"servers":["1.2.3.4"]}]}`)) //nolint:errcheck
	})
	// liveness-tests, cidr-maps, as-maps, geo-maps intentionally unhandled:
	// 404s must degrade to empty sections.
	svc := testService(t, mux)

	d := svc.FetchGTMDomain(context.Background(), "cdn.akadns.net")
	if len(d.Datacenters) != 1 {
		t.Errorf("datacenters = %v", d.Datacenters)
	}
	if len(d.LivenessTests) != 0 || len(d.CIDRMaps) != 0 {
		t.Errorf("failed sub-resources should be empty: %+v", d)
	}
	if len(d.Properties) != 1 || d.Properties[0].Name != "www" {
		t.Fatalf("properties = %+v", d.Properties)
	}
	if d.Properties[0].Detail == nil {
		t.Fatal("property detail missing")
	}
	targets, _ := d.Properties[0].Detail["trafficTargets"].([]any)
	if len(targets) != 1 {
		t.Errorf("trafficTargets = %v", targets)
	}
}

func TestListEdgeWorkers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/edgeworkers/v1/edgeworkers", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"edgeworkers":[{"edgeWorkerId":42,"name":"redirector","groupId":1234,"lastModifiedTime":"2025-11-01T10:00:00Z"}]}`)) //nolint:errcheck
	})
	svc := testService(t, mux)

	workers, err := svc.ListEdgeWorkers(context.Background())
	if err != nil {
		t.Fatalf("ListEdgeWorkers error: %v", err)
	}
	if len(workers) != 1 || workers[0].ID != "42" || workers[0].GroupID != "1234" {
		t.Errorf("workers = %+v", workers)
	}
}

func TestListCloudlets_ListBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cloudlets/v2/policies", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"policyId":99,"name":"er-prod","cloudletType":"ER","status":"active"}]`)) //nolint:errcheck
	})
	svc := testService(t, mux)

	policies, err := svc.ListCloudlets(context.Background())
	if err != nil {
		t.Fatalf("ListCloudlets error: %v", err)
	}
	if len(policies) != 1 || policies[0].ID != "99" || policies[0].Type != "ER" {
		t.Errorf("policies = %+v", policies)
	}
}

func TestListWrapper_SecondPathWins(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cloud-wrapper/v1/containers", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not enabled", http.StatusNotFound)
	})
	mux.HandleFunc("/cloud-wrapper/v1/configurations", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"configurations":[{"containerId":"cw-1","name":"wrapper-main","state":"ACTIVE"}]}`)) //nolint:errcheck
	})
	svc := testService(t, mux)

	containers, err := svc.ListWrapper(context.Background())
	if err != nil {
		t.Fatalf("ListWrapper error: %v", err)
	}
	if len(containers) != 1 || containers[0].ID != "cw-1" || containers[0].Status != "ACTIVE" {
		t.Errorf("containers = %+v", containers)
	}
}

func TestListWrapper_AllEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items":[]}`)) //nolint:errcheck
	})
	svc := testService(t, mux)

	containers, err := svc.ListWrapper(context.Background())
	if err != nil {
		t.Fatalf("ListWrapper error: %v", err)
	}
	if len(containers) != 0 {
		t.Errorf("containers = %+v, want empty", containers)
	}
}
