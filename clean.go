package cookierinse

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"time"
)

// Clean reads a cookies.txt file, writes the deduplicated auth-only subset
// to outputPath (original line content preserved verbatim), and returns the
// full Report. A missing input file or unwritable output path is fatal;
// per-line problems are recoverable skips surfaced as warnings.
func (e *Engine) Clean(inputPath, outputPath string) (*Report, error) {
	lines, err := readLines(inputPath)
	if err != nil {
		errorsTotal.WithLabelValues("read").Inc()
		return nil, err
	}

	agg, cleaned := e.scan(lines)

	if err := writeLines(outputPath, cleaned); err != nil {
		errorsTotal.WithLabelValues("write").Inc()
		return nil, err
	}

	report := e.buildReport(agg, lines, len(cleaned), time.Now())
	filesProcessed.Inc()
	cookiesCleaned.Add(float64(len(cleaned)))
	return report, nil
}

func (e *Engine) buildReport(agg *Aggregates, rawLines []string, cleanedCount int, now time.Time) *Report {
	report := &Report{
		TotalCleaned:       cleanedCount,
		TotalUniqueCookies: agg.TotalUnique,
		UniqueSites:        len(agg.Sites),
		MostCommonSite:     "None",
		OldestCookieAge:    oldestCookieAge(rawLines, now),
		TrackingIntensity:  countTrackingCookies(rawLines, e.catalog.Trackers),
		PrivacyScore:       privacyScore(cleanedCount, agg.TotalUnique),
		Warnings:           agg.Warnings,
	}

	for _, site := range agg.SitesByCount() {
		report.Sites = append(report.Sites, SiteStat{
			Site:     site,
			Count:    agg.SiteCounts[site],
			Services: e.ServiceList(agg, site),
			Auth:     agg.SiteAuth[site],
		})
	}
	if len(report.Sites) > 0 {
		top := report.Sites[0]
		report.MostCommonSite = fmt.Sprintf("%s (%d times)", top.Site, top.Count)
	}

	report.Score, report.Level, report.Reasons = e.Score(agg)
	return report
}

// SitesByCount orders sites by descending cookie count, breaking ties by
// first appearance in the input.
func (a *Aggregates) SitesByCount() []string {
	sites := make([]string, len(a.Sites))
	copy(sites, a.Sites)
	sort.SliceStable(sites, func(i, j int) bool {
		return a.SiteCounts[sites[i]] > a.SiteCounts[sites[j]]
	})
	return sites
}

// ServiceList merges the services detected for a site with the ones its
// catalog entry configures, ordered by the catalog's display ranking.
func (e *Engine) ServiceList(agg *Aggregates, site string) []string {
	set := make(map[string]struct{})
	for svc := range agg.SiteServices[site] {
		if svc != "" {
			set[svc] = struct{}{}
		}
	}
	if entry, known := e.catalog.Sites[site]; known {
		for _, svc := range entry.Services {
			set[svc.Name] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}

	out := make([]string, 0, len(set))
	for svc := range set {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := e.catalog.serviceSortRank(out[i]), e.catalog.serviceSortRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cookierinse: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	// Cookie values can be large; the default scanner limit is too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cookierinse: read %s: %w", path, err)
	}
	return lines, nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cookierinse: create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("cookierinse: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cookierinse: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cookierinse: write %s: %w", path, err)
	}
	return nil
}
