// Package filter rejects commercial results and keeps only trusted health sources.
package filter

import (
	"strings"

	"libercare/config"
)

// Denylist rejects results mentioning commercial terms or hosted on commercial domains
type Denylist struct {
	terms   []string
	domains []string
}

// NewDenylist lower-cases the configured terms and domain fragments
func NewDenylist(cfg config.Denylist) *Denylist {
	return &Denylist{terms: lowerAll(cfg.Terms), domains: lowerAll(cfg.Domains)}
}

// Rejects reports whether any term occurs in title, url or snippet,
// or any domain fragment occurs in url. Matching is case-insensitive substring.
func (d *Denylist) Rejects(title, url, snippet string) bool {
	t := strings.ToLower(title)
	u := strings.ToLower(url)
	s := strings.ToLower(snippet)
	for _, term := range d.terms {
		if strings.Contains(t, term) || strings.Contains(u, term) || strings.Contains(s, term) {
			return true
		}
	}
	for _, domain := range d.domains {
		if strings.Contains(u, domain) {
			return true
		}
	}
	return false
}

// Allowlist accepts urls that contain one of the trusted domains
type Allowlist struct {
	domains []string
}

// NewAllowlist builds an allowlist from trusted domain fragments
func NewAllowlist(domains []string) *Allowlist {
	return &Allowlist{domains: lowerAll(domains)}
}

// Trusts reports whether url contains a trusted domain. A nil allowlist trusts nothing.
func (a *Allowlist) Trusts(url string) bool {
	if a == nil {
		return false
	}
	u := strings.ToLower(url)
	for _, domain := range a.domains {
		if strings.Contains(u, domain) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
