package cookierinse

import (
	"strings"
	"sync"
)

// Normalizer maps raw cookie domains to canonical main-domain identities.
// Normalization is a pure function of the input string for a given catalog,
// so results are memoized. Safe for concurrent use.
type Normalizer struct {
	rules []DomainRule

	mu   sync.RWMutex
	memo map[string]string
}

// NewNormalizer builds a Normalizer over the catalog's ordered domain rules.
func NewNormalizer(catalog *Catalog) *Normalizer {
	return &Normalizer{
		rules: catalog.DomainRules,
		memo:  make(map[string]string),
	}
}

// MainDomain returns the canonical main domain for a raw cookie domain.
// The first rule with any pattern contained in the lowercased domain wins;
// rule order encodes precedence, not just membership. Without a match it
// falls back to the last two dot-separated labels (so "mail.example.co.uk"
// yields "co.uk" — a known limitation of the fallback).
func (n *Normalizer) MainDomain(raw string) string {
	n.mu.RLock()
	cached, ok := n.memo[raw]
	n.mu.RUnlock()
	if ok {
		return cached
	}

	main := n.resolve(raw)

	n.mu.Lock()
	n.memo[raw] = main
	n.mu.Unlock()
	return main
}

func (n *Normalizer) resolve(raw string) string {
	domain := normalizeHost(raw)

	for _, rule := range n.rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(domain, pattern) {
				return rule.Name
			}
		}
	}

	parts := strings.Split(domain, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return domain
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, ".")
	return strings.ToLower(host)
}
