package cookierinse

import (
	"fmt"
	"strings"
)

// Score computes the footprint score, level and reasons for one set of
// aggregates. The model is purely additive; reasons are appended in the
// exact order points are applied so the list is reproducible.
func (e *Engine) Score(agg *Aggregates) (score int, level string, reasons []string) {
	rules := e.catalog.Scoring

	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, fmt.Sprintf("+%d %s", points, reason))
	}

	for _, sp := range rules.Sites {
		if agg.SiteCounts[sp.Site] > 0 {
			add(sp.Points, siteTitle(sp.Site)+" cookies")
		}
	}

	for _, bonus := range rules.Bonuses {
		present := 0
		for _, site := range bonus.Sites {
			if agg.SiteCounts[site] > 0 {
				present++
			}
		}
		if present >= bonus.MinSites {
			add(bonus.Points, bonus.Name)
		}
	}

	for _, sp := range rules.Services {
		if agg.SiteCounts[sp.Site] == 0 {
			continue
		}
		if agg.SiteServices[sp.Site][sp.Service] > 0 {
			add(sp.Points, capitalize(sp.Service)+" detected")
		}
	}

	if agg.authDetected() {
		add(rules.AuthBonus, "AUTH cookies detected")
	}

	level = rules.Levels[len(rules.Levels)-1].Name
	for _, lvl := range rules.Levels {
		if score >= lvl.MinScore {
			level = lvl.Name
			break
		}
	}
	return score, level, reasons
}

// SitesByCategory groups the aggregated sites by catalog category; sites in
// no category fall into "other".
func (e *Engine) SitesByCategory(agg *Aggregates) map[string][]string {
	out := make(map[string][]string)
	for _, site := range agg.Sites {
		category := "other"
	lookup:
		for _, c := range e.catalog.Categories {
			for _, m := range c.Sites {
				if m == site {
					category = c.Name
					break lookup
				}
			}
		}
		out[category] = append(out[category], site)
	}
	return out
}

func siteTitle(site string) string {
	return capitalize(strings.ReplaceAll(site, ".com", ""))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
