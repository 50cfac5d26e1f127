package cookierinse

// Netscape cookies.txt field layout. A valid row has at least 7 tab-separated
// fields: domain, include-subdomains flag, path, secure flag, expiry (unix
// seconds, 0 = session), name, value.
const (
	fieldDomain = 0
	fieldExpiry = 4
	fieldName   = 5

	minClassifyFields = 7
	minExpiryFields   = 5
	minNameFields     = 6
)

// Record is one valid cookie row. It is never mutated; Raw preserves the
// original line verbatim for passthrough into the cleaned output.
type Record struct {
	Domain string
	Name   string
	Expiry int64
	Raw    string
}

// Aggregates holds per-site tallies over the deduplicated cookies of one
// parse invocation. Sites lists main domains in first-seen order.
type Aggregates struct {
	Sites        []string
	SiteCounts   map[string]int
	SiteServices map[string]map[string]int
	SiteAuth     map[string][]string

	// TotalUnique counts deduplicated (domain, name) pairs across all
	// classifiable rows.
	TotalUnique int

	Warnings []string
}

// SiteStat is one site entry in a Report, ordered by descending count.
type SiteStat struct {
	Site     string
	Count    int
	Services []string
	Auth     []string
}

// Report is the result of one Clean or Analyze invocation.
type Report struct {
	Sites []SiteStat

	TotalCleaned       int
	TotalUniqueCookies int
	UniqueSites        int
	MostCommonSite     string

	OldestCookieAge   string
	TrackingIntensity int
	PrivacyScore      float64

	Score   int
	Level   string
	Reasons []string

	Warnings []string
}

// authDetected reports whether any site has at least one auth cookie.
func (a *Aggregates) authDetected() bool {
	for _, names := range a.SiteAuth {
		if len(names) > 0 {
			return true
		}
	}
	return false
}
