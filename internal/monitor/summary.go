// Package monitor renders scan results for humans: a styled console summary
// after a scan and an interactive hostname browser over a saved inventory.
package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/edgeshift/edgeshift/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
)

// Summary renders a styled post-scan summary for the terminal.
func Summary(inv *store.Inventory, outDir string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("edgeshift · %s · %s",
		pairingLabel(inv), inv.At.UTC().Format("2006-01-02 15:04 UTC"))))
	b.WriteByte('\n')

	for _, line := range countLines(inv) {
		b.WriteString("  " + labelStyle.Render(line.label) + " " + line.value + "\n")
	}

	if len(inv.Errors) > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf("  %d resource(s) degraded:", len(inv.Errors))))
		b.WriteByte('\n')
		for _, resource := range sortedKeys(inv.Errors) {
			b.WriteString(dimStyle.Render("    "+resource+": "+inv.Errors[resource]) + "\n")
		}
	}

	b.WriteString("Reports written to " + outDir + "\n")
	return b.String()
}

// PlainText is the summary without styling, for piped output.
func PlainText(inv *store.Inventory, outDir string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "edgeshift · %s · %s\n",
		pairingLabel(inv), inv.At.UTC().Format("2006-01-02 15:04 UTC"))
	for _, line := range countLines(inv) {
		fmt.Fprintf(&b, "  %s %s\n", line.label, line.value)
	}
	if len(inv.Errors) > 0 {
		fmt.Fprintf(&b, "  %d resource(s) degraded:\n", len(inv.Errors))
		for _, resource := range sortedKeys(inv.Errors) {
			fmt.Fprintf(&b, "    %s: %s\n", resource, inv.Errors[resource])
		}
	}
	fmt.Fprintf(&b, "Reports written to %s\n", outDir)
	return b.String()
}

type summaryLine struct {
	label string
	value string
}

func countLines(inv *store.Inventory) []summaryLine {
	lines := []summaryLine{
		{"Hostnames:", fmt.Sprintf("%d across %d apex domains", len(inv.Hostnames), len(inv.HostnamesByApex()))},
		{"Certificates:", fmt.Sprintf("%d enrollments", len(inv.Enrollments))},
		{"WAF configs:", fmt.Sprintf("%d", len(inv.SecurityConfigs))},
	}
	if len(inv.Rules) > 0 {
		lines = append(lines, summaryLine{"Rule trees:", fmt.Sprintf("%d classified", len(inv.Rules))})
	}
	if inv.DNSZones != nil || inv.GTMDomains != nil || inv.EdgeWorkers != nil || inv.Cloudlets != nil || inv.Wrapper != nil {
		lines = append(lines, summaryLine{"Products:", fmt.Sprintf(
			"%d DNS zones, %d GTM domains, %d EdgeWorkers, %d Cloudlets, %d Cloud Wrapper",
			len(inv.DNSZones), len(inv.GTMDomains), len(inv.EdgeWorkers), len(inv.Cloudlets), len(inv.Wrapper))})
	}
	return lines
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
