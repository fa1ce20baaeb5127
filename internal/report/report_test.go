package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgeshift/edgeshift/internal/store"
)

func testInventory() *store.Inventory {
	return &store.Inventory{
		At:         time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		ContractID: "ctr_C-1",
		GroupID:    "grp_G-1",
		Hostnames: []store.HostnameRecord{
			{Apex: "example.com", Hostname: "www.example.com", PropertyName: "www-site", PropertyID: "prp_1", PropertyVersion: 3},
			{Apex: "example.net", Hostname: "img.example.net", PropertyName: "assets", PropertyID: "prp_2", PropertyVersion: 7},
		},
		Enrollments: []store.EnrollmentSummary{
			{ID: "101", CommonName: "www.example.com", SANs: []string{"www.example.com", "api.example.com"}, Status: "active", Network: "enhanced-tls"},
		},
		SecurityConfigs: []store.SecurityConfigSummary{
			{ID: "7", Name: "prod-waf", LatestVersion: 12, PolicyCount: 2},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close() //nolint:errcheck
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	inv := testInventory()

	if err := WriteAll(inv, dir, false); err != nil {
		t.Fatalf("WriteAll error: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "hostnames.csv"))
	if len(rows) != 3 {
		t.Fatalf("hostnames.csv rows = %d, want header + 2", len(rows))
	}
	wantHeader := []string{"hostname", "apex", "property_name", "property_id", "property_version"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("hostnames.csv header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "www.example.com" || rows[1][1] != "example.com" || rows[1][4] != "3" {
		t.Errorf("hostnames.csv row 1 = %v", rows[1])
	}

	rows = readCSV(t, filepath.Join(dir, "usage_summary.csv"))
	if rows[0][0] != "apex" || rows[1][0] != "example.com" {
		t.Errorf("usage_summary.csv leads with %q/%q, want apex column first", rows[0][0], rows[1][0])
	}

	rows = readCSV(t, filepath.Join(dir, "cps_certs.csv"))
	if rows[1][2] != "www.example.com;api.example.com" {
		t.Errorf("cps_certs.csv sans = %q, want semicolon-joined", rows[1][2])
	}

	rows = readCSV(t, filepath.Join(dir, "appsec_summary.csv"))
	if rows[1][0] != "7" || rows[1][2] != "12" || rows[1][3] != "2" {
		t.Errorf("appsec_summary.csv row = %v", rows[1])
	}

	// One checklist per apex.
	entries, err := os.ReadDir(filepath.Join(dir, "checklists"))
	if err != nil {
		t.Fatalf("reading checklists dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("checklists = %d files, want 2", len(entries))
	}

	var decoded store.Inventory
	b, err := os.ReadFile(filepath.Join(dir, "inventory.json"))
	if err != nil {
		t.Fatalf("reading inventory.json: %v", err)
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("decoding inventory.json: %v", err)
	}
	if len(decoded.Hostnames) != 2 || decoded.ContractID != "ctr_C-1" {
		t.Errorf("inventory.json round-trip = %+v", decoded)
	}

	// Products disabled: no product CSVs.
	if _, err := os.Stat(filepath.Join(dir, "edgedns_zones.csv")); !os.IsNotExist(err) {
		t.Error("edgedns_zones.csv should not exist without products")
	}
}

func TestWriteAll_Products(t *testing.T) {
	dir := t.TempDir()
	inv := testInventory()
	inv.DNSZones = []store.DNSZone{{Zone: "example.com", Type: "PRIMARY", Status: "ACTIVE"}}
	inv.EdgeWorkers = []store.EdgeWorker{{ID: "42", Name: "redirector", GroupID: "1234", LastModified: "2025-11-01T10:00:00Z"}}
	inv.Cloudlets = []store.CloudletPolicy{{ID: "99", Name: "er-prod", Type: "ER", Status: "active"}}
	inv.Wrapper = []store.WrapperContainer{{ID: "cw-1", Name: "wrapper-main", Status: "ACTIVE"}}
	inv.GTMDomains = []store.GTMDomain{{
		Name: "cdn.akadns.net",
		Datacenters: []map[string]any{
			{"datacenterId": float64(3131), "nickname": "us-east", "virtual": true},
		},
		CIDRMaps: []map[string]any{
			{"name": "by-cidr", "defaultDatacenter": map[string]any{"datacenterId": float64(3131)}, "assignments": []any{map[string]any{}, map[string]any{}}},
		},
		Properties: []store.GTMProperty{{
			Name:   "www",
			Record: map[string]any{"name": "www", "type": "weighted-round-robin", "ttl": float64(30)},
			Detail: map[string]any{"trafficTargets": []any{
				map[string]any{"datacenterId": float64(3131), "enabled": true, "servers": []any{"1.2.3.4", "5.6.7.8"}},
			}},
		}},
	}}

	if err := WriteAll(inv, dir, true); err != nil {
		t.Fatalf("WriteAll error: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "edgedns_zones.csv"))
	if rows[1][0] != "example.com" || rows[1][1] != "PRIMARY" {
		t.Errorf("edgedns_zones.csv row = %v", rows[1])
	}

	rows = readCSV(t, filepath.Join(dir, "gtm_domains.csv"))
	if len(rows) != 2 || rows[1][0] != "cdn.akadns.net" {
		t.Errorf("gtm_domains.csv rows = %v", rows)
	}

	base := filepath.Join(dir, "gtm", "cdn.akadns.net")
	rows = readCSV(t, filepath.Join(base, "datacenters.csv"))
	if rows[1][0] != "3131" || rows[1][1] != "us-east" || rows[1][8] != "true" {
		t.Errorf("datacenters.csv row = %v", rows[1])
	}

	rows = readCSV(t, filepath.Join(base, "cidr_maps.csv"))
	if rows[1][0] != "by-cidr" || rows[1][1] != "3131" || rows[1][2] != "2" {
		t.Errorf("cidr_maps.csv row = %v", rows[1])
	}

	rows = readCSV(t, filepath.Join(base, "property_www_targets.csv"))
	if rows[1][3] != "1.2.3.4;5.6.7.8" {
		t.Errorf("targets servers = %q, want semicolon-joined", rows[1][3])
	}

	rows = readCSV(t, filepath.Join(base, "properties.csv"))
	if rows[1][0] != "www" || rows[1][10] != "1" {
		t.Errorf("properties.csv row = %v", rows[1])
	}

	if _, err := os.Stat(filepath.Join(base, "property_www.json")); err != nil {
		t.Errorf("property detail JSON missing: %v", err)
	}
}
