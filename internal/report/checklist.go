package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edgeshift/edgeshift/internal/store"
)

// Checklist renders the Markdown migration checklist for one apex domain:
// a fixed task preamble, the certified names covering the apex, the hostnames
// under it, and one rules-summary section per property version.
func Checklist(apexDomain string, records []store.HostnameRecord, rules map[string]store.RuleBundle, certNames map[string][]string) string {
	lines := []string{
		"# Cloudflare migration checklist for " + apexDomain,
		"",
		"- Create zone in Cloudflare",
		"- Set DNS nameservers or use partial (CNAME) setup as applicable",
		"- Enable Universal SSL or upload cert matching SANs",
	}
	if names := certNames[apexDomain]; len(names) > 0 {
		lines = append(lines, "  - CPS SANs: "+strings.Join(sortedUnique(names), ", "))
	}
	lines = append(lines,
		"- Enable WAF managed rules; recreate custom WAF rules",
		"- Recreate cache rules and overrides",
		"- Recreate redirects (Transform or Rulesets)",
		"- Recreate header rules; enable HSTS if present",
		"",
		"## Hostnames",
	)

	byHostname := append([]store.HostnameRecord(nil), records...)
	sort.Slice(byHostname, func(i, j int) bool { return byHostname[i].Hostname < byHostname[j].Hostname })
	for _, hr := range byHostname {
		lines = append(lines, fmt.Sprintf("- %s (property %s v%d)", hr.Hostname, hr.PropertyName, hr.PropertyVersion))
	}

	lines = append(lines, "", "## Rules summary")

	// One section per property version: records sharing a property collapse
	// into a single section, ordered by (name, version).
	byProperty := append([]store.HostnameRecord(nil), records...)
	sort.Slice(byProperty, func(i, j int) bool {
		if byProperty[i].PropertyName != byProperty[j].PropertyName {
			return byProperty[i].PropertyName < byProperty[j].PropertyName
		}
		return byProperty[i].PropertyVersion < byProperty[j].PropertyVersion
	})
	seen := make(map[string]bool)
	for _, hr := range byProperty {
		key := store.RuleKey(hr.PropertyID, hr.PropertyVersion)
		if seen[key] {
			continue
		}
		seen[key] = true
		bundle, ok := rules[key]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("### %s v%d", hr.PropertyName, hr.PropertyVersion))
		if len(bundle.Cache) > 0 {
			lines = append(lines, "- Cache behaviors present")
		}
		if len(bundle.Redirects) > 0 {
			lines = append(lines, "- Redirect rules present")
		}
		if len(bundle.Headers) > 0 {
			lines = append(lines, "- Header modifications present")
		}
		if len(bundle.HSTS) > 0 {
			lines = append(lines, "- HSTS present")
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// writeChecklists writes <dir>/checklists/<apex>.md for every apex with at
// least one hostname.
func writeChecklists(dir string, inv *store.Inventory) error {
	checklists := filepath.Join(dir, "checklists")
	for apexDomain, records := range inv.HostnamesByApex() {
		content := Checklist(apexDomain, records, inv.Rules, inv.CertNamesByApex)
		if err := writeText(filepath.Join(checklists, apexDomain+".md"), content); err != nil {
			return err
		}
	}
	return nil
}

func sortedUnique(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
