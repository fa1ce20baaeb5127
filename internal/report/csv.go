package report

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edgeshift/edgeshift/internal/store"
)

// usage_summary.csv and hostnames.csv carry the same fields in different
// column orders: the former leads with the apex for grouping, the latter
// with the hostname for lookup.

func writeUsageSummary(dir string, inv *store.Inventory) error {
	rows := make([][]string, 0, len(inv.Hostnames))
	for _, hr := range inv.Hostnames {
		rows = append(rows, []string{
			hr.Apex, hr.Hostname, hr.PropertyName, hr.PropertyID, strconv.Itoa(hr.PropertyVersion),
		})
	}
	return writeCSV(filepath.Join(dir, "usage_summary.csv"),
		[]string{"apex", "hostname", "property_name", "property_id", "property_version"},
		rows)
}

func writeHostnames(dir string, inv *store.Inventory) error {
	rows := make([][]string, 0, len(inv.Hostnames))
	for _, hr := range inv.Hostnames {
		rows = append(rows, []string{
			hr.Hostname, hr.Apex, hr.PropertyName, hr.PropertyID, strconv.Itoa(hr.PropertyVersion),
		})
	}
	return writeCSV(filepath.Join(dir, "hostnames.csv"),
		[]string{"hostname", "apex", "property_name", "property_id", "property_version"},
		rows)
}

func writeCertificates(dir string, inv *store.Inventory) error {
	rows := make([][]string, 0, len(inv.Enrollments))
	for _, e := range inv.Enrollments {
		rows = append(rows, []string{
			e.ID, e.CommonName, strings.Join(e.SANs, ";"), e.Status, e.Network,
		})
	}
	return writeCSV(filepath.Join(dir, "cps_certs.csv"),
		[]string{"enrollment_id", "common_name", "sans", "status", "network"},
		rows)
}

func writeSecuritySummary(dir string, inv *store.Inventory) error {
	rows := make([][]string, 0, len(inv.SecurityConfigs))
	for _, c := range inv.SecurityConfigs {
		rows = append(rows, []string{
			c.ID, c.Name, strconv.Itoa(c.LatestVersion), strconv.Itoa(c.PolicyCount),
		})
	}
	return writeCSV(filepath.Join(dir, "appsec_summary.csv"),
		[]string{"config_id", "config_name", "latest_version", "num_policies"},
		rows)
}
