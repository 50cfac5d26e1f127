package cookierinse

import (
	"fmt"
	"strings"
)

// Engine classifies and scores cookie stores against an immutable catalog.
// One Engine may serve many invocations concurrently; each call builds its
// own aggregates.
type Engine struct {
	catalog *Catalog
	norm    *Normalizer
}

// NewEngine returns an Engine over the given catalog. A nil catalog selects
// the embedded default.
func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{
		catalog: catalog,
		norm:    NewNormalizer(catalog),
	}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// AnalyzeLines classifies an in-memory cookie store and returns per-site
// aggregates over the deduplicated cookies.
func (e *Engine) AnalyzeLines(lines []string) *Aggregates {
	agg, _ := e.scan(lines)
	return agg
}

// AnalyzeFile classifies a cookies.txt file. A missing or unreadable file
// is fatal; malformed lines are skipped and recorded as warnings.
func (e *Engine) AnalyzeFile(path string) (*Aggregates, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeLines(lines), nil
}

// scan walks the lines once, deduplicating on (domain, cookie name) with
// first occurrence winning, and returns both the classification aggregates
// and the raw auth-matched lines in input order. Keeping both in one pass
// guarantees the cleaned subset and the unique-cookie count agree on which
// cookie is "first".
func (e *Engine) scan(lines []string) (*Aggregates, []string) {
	agg := &Aggregates{
		SiteCounts:   make(map[string]int),
		SiteServices: make(map[string]map[string]int),
		SiteAuth:     make(map[string][]string),
	}
	var cleaned []string

	seen := make(map[string]struct{})
	authSeen := make(map[string]map[string]struct{})

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rec, ok := parseRecord(line)
		if !ok {
			agg.Warnings = append(agg.Warnings, fmt.Sprintf("skipping invalid line %d: %q", i+1, line))
			continue
		}

		key := rec.Domain + "|" + rec.Name
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		main := e.norm.MainDomain(rec.Domain)
		if _, known := agg.SiteCounts[main]; !known {
			agg.Sites = append(agg.Sites, main)
		}
		agg.SiteCounts[main]++

		service := e.detectService(main, rec.Domain)
		services := agg.SiteServices[main]
		if services == nil {
			services = make(map[string]int)
			agg.SiteServices[main] = services
		}
		services[service]++

		if auth, ok := e.detectAuth(main, rec.Name); ok {
			set := authSeen[main]
			if set == nil {
				set = make(map[string]struct{})
				authSeen[main] = set
			}
			if _, dup := set[auth]; !dup {
				set[auth] = struct{}{}
				agg.SiteAuth[main] = append(agg.SiteAuth[main], auth)
			}
			cleaned = append(cleaned, rec.Raw)
		}
	}

	agg.TotalUnique = len(seen)
	linesSkipped.Add(float64(len(agg.Warnings)))
	return agg, cleaned
}

// detectService labels a cookie's domain with the first matching service of
// its site, in catalog order. A known site with no match labels "other";
// an unknown site labels "" and is excluded from service listings.
func (e *Engine) detectService(main, domain string) string {
	site, known := e.catalog.Sites[main]
	if !known {
		return ""
	}
	domain = strings.ToLower(domain)
	for _, svc := range site.Services {
		for _, pattern := range svc.Patterns {
			if strings.Contains(domain, pattern) {
				return svc.Name
			}
		}
	}
	return "other"
}

// detectAuth matches the cookie name against the site's auth substrings,
// case-insensitively, first match wins. The configured name is returned in
// its original casing.
func (e *Engine) detectAuth(main, cookieName string) (string, bool) {
	site, known := e.catalog.Sites[main]
	if !known {
		return "", false
	}
	lower := strings.ToLower(cookieName)
	for _, auth := range site.Auth {
		if strings.Contains(lower, strings.ToLower(auth)) {
			return auth, true
		}
	}
	return "", false
}

func parseRecord(line string) (Record, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < minClassifyFields {
		return Record{}, false
	}
	rec := Record{
		Domain: fields[fieldDomain],
		Name:   fields[fieldName],
		Raw:    line,
	}
	if exp, err := parseInt64(fields[fieldExpiry]); err == nil {
		rec.Expiry = exp
	}
	return rec, true
}
