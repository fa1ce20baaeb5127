// Package apex extracts the registrable (apex) domain from hostnames.
package apex

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Of returns the public-suffix-aware registrable domain of hostname
// ("example.co.uk" for "www.example.co.uk"). Hostnames without an
// extractable registrable domain (bare single-label hosts, raw suffixes)
// group under themselves.
func Of(hostname string) string {
	h := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(hostname), "."))
	if h == "" {
		return hostname
	}
	reg, err := publicsuffix.EffectiveTLDPlusOne(h)
	if err != nil {
		return h
	}
	return reg
}
