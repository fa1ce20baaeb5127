package report

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edgeshift/edgeshift/internal/edge"
	"github.com/edgeshift/edgeshift/internal/store"
)

func writeProducts(dir string, inv *store.Inventory) error {
	zoneRows := make([][]string, 0, len(inv.DNSZones))
	for _, z := range inv.DNSZones {
		zoneRows = append(zoneRows, []string{z.Zone, z.Type, z.Status})
	}
	if err := writeCSV(filepath.Join(dir, "edgedns_zones.csv"),
		[]string{"zone", "type_or_contract", "status"}, zoneRows); err != nil {
		return err
	}

	gtmRows := make([][]string, 0, len(inv.GTMDomains))
	for i := range inv.GTMDomains {
		gtmRows = append(gtmRows, []string{inv.GTMDomains[i].Name})
	}
	if err := writeCSV(filepath.Join(dir, "gtm_domains.csv"),
		[]string{"gtm_domain"}, gtmRows); err != nil {
		return err
	}

	ewRows := make([][]string, 0, len(inv.EdgeWorkers))
	for _, ew := range inv.EdgeWorkers {
		ewRows = append(ewRows, []string{ew.ID, ew.Name, ew.GroupID, ew.LastModified})
	}
	if err := writeCSV(filepath.Join(dir, "edgeworkers.csv"),
		[]string{"edgeworker_id", "name", "group_id", "last_modified"}, ewRows); err != nil {
		return err
	}

	clRows := make([][]string, 0, len(inv.Cloudlets))
	for _, cl := range inv.Cloudlets {
		clRows = append(clRows, []string{cl.ID, cl.Name, cl.Type, cl.Status})
	}
	if err := writeCSV(filepath.Join(dir, "cloudlets_policies.csv"),
		[]string{"policy_id", "name", "cloudlet_type", "status"}, clRows); err != nil {
		return err
	}

	cwRows := make([][]string, 0, len(inv.Wrapper))
	for _, cw := range inv.Wrapper {
		cwRows = append(cwRows, []string{cw.ID, cw.Name, cw.Status})
	}
	return writeCSV(filepath.Join(dir, "cloud_wrapper.csv"),
		[]string{"id", "name", "status"}, cwRows)
}

var datacenterColumns = []string{
	"datacenterId", "nickname", "city", "stateOrProvince", "country", "continent",
	"latitude", "longitude", "virtual", "cloneOf", "scorePenalty", "weight",
}

var livenessColumns = []string{
	"name", "testInterval", "testObject", "testObjectProtocol", "testObjectPort",
	"testTimeout", "httpError3xx", "httpError4xx", "httpError5xx",
	"requestString", "responseString", "peerCertificateVerification",
}

// writeGTMDomain exports one GTM domain under <dir>/gtm/<domain>/: each
// sub-resource as a CSV projection plus the raw JSON alongside, so the CSVs
// stay spreadsheet-friendly without losing detail.
func writeGTMDomain(dir string, d *store.GTMDomain) error {
	base := filepath.Join(dir, "gtm", d.Name)

	if err := writeCSV(filepath.Join(base, "datacenters.csv"),
		datacenterColumns, projectRows(d.Datacenters, datacenterColumns)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(base, "datacenters.json"), d.Datacenters); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(base, "liveness_tests.csv"),
		livenessColumns, projectRows(d.LivenessTests, livenessColumns)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(base, "liveness_tests.json"), d.LivenessTests); err != nil {
		return err
	}

	for name, maps := range map[string][]map[string]any{
		"cidr_maps": d.CIDRMaps,
		"as_maps":   d.ASMaps,
		"geo_maps":  d.GeoMaps,
	} {
		if err := writeCSV(filepath.Join(base, name+".csv"),
			[]string{"name", "defaultDatacenter", "assignmentsCount"}, mapRows(maps)); err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(base, name+".json"), maps); err != nil {
			return err
		}
	}

	propRows := make([][]string, 0, len(d.Properties))
	for i := range d.Properties {
		p := &d.Properties[i]
		record := edge.Object(p.Record)
		detail := edge.Object(p.Detail)
		targets := detail.List("trafficTargets")

		propRows = append(propRows, []string{
			p.Name,
			record.Field("type"),
			record.Field("ipv6"),
			record.Field("handoutMode"),
			record.Field("failoverOrder"),
			record.Field("healthThreshold"),
			record.Obj("geoMap").Str("name"),
			record.Obj("asMap").Str("name"),
			record.Obj("cidrMap").Str("name"),
			record.Field("ttl"),
			strconv.Itoa(len(targets)),
		})

		targetRows := make([][]string, 0, len(targets))
		for _, t := range targets {
			targetRows = append(targetRows, []string{
				t.Field("datacenterId"),
				t.Field("enabled"),
				t.Field("weight"),
				strings.Join(t.Strings("servers"), ";"),
				t.Field("handoutCName"),
				t.Field("name"),
			})
		}
		if err := writeCSV(filepath.Join(base, "property_"+p.Name+"_targets.csv"),
			[]string{"datacenterId", "enabled", "weight", "servers", "handoutCName", "name"},
			targetRows); err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(base, "property_"+p.Name+".json"), p.Detail); err != nil {
			return err
		}
	}

	return writeCSV(filepath.Join(base, "properties.csv"),
		[]string{"propertyName", "type", "ipv6", "handoutMode", "failoverOrder",
			"healthThreshold", "geoMap", "asMap", "cidrMap", "ttl", "trafficTargetsCount"},
		propRows)
}

// projectRows turns raw records into CSV rows following a fixed column list.
func projectRows(records []map[string]any, columns []string) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		o := edge.Object(r)
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = o.Field(col)
		}
		rows = append(rows, row)
	}
	return rows
}

// mapRows summarizes GTM map records: name, default datacenter, and how many
// assignments the map carries.
func mapRows(records []map[string]any) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		o := edge.Object(r)
		rows = append(rows, []string{
			o.Str("name"),
			o.Obj("defaultDatacenter").Field("datacenterId"),
			strconv.Itoa(len(o.List("assignments"))),
		})
	}
	return rows
}
