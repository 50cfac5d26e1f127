package cookierinse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// oldestCookieAge buckets the minimum valid expiry timestamp across all raw
// lines relative to now. Expiry 0 marks a session cookie and is ignored, as
// are unparseable timestamps. No valid timestamp yields "Unknown".
func oldestCookieAge(lines []string, now time.Time) string {
	var oldest time.Time
	found := false

	for _, line := range lines {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) < minExpiryFields {
			continue
		}
		ts, err := parseInt64(fields[fieldExpiry])
		if err != nil || ts <= 0 {
			continue
		}
		t := time.Unix(ts, 0).UTC()
		if !found || t.Before(oldest) {
			oldest = t
			found = true
		}
	}

	if !found {
		return "Unknown"
	}

	days := int(now.UTC().Sub(oldest).Hours() / 24)
	switch {
	case days < 1:
		return "Less than 1 day"
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		return fmt.Sprintf("%d months", days/30)
	default:
		return fmt.Sprintf("%d years", days/365)
	}
}

// countTrackingCookies counts lines (not deduplicated) whose cookie name
// contains any known tracker fragment, case-insensitively.
func countTrackingCookies(lines []string, trackers []string) int {
	count := 0
	for _, line := range lines {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) < minNameFields {
			continue
		}
		name := strings.ToLower(fields[fieldName])
		for _, fragment := range trackers {
			if strings.Contains(name, strings.ToLower(fragment)) {
				count++
				break
			}
		}
	}
	return count
}

// privacyScore rates cleaning efficiency from 0.0 (everything kept) to 10.0
// (nothing kept). An empty store has nothing to leak and scores 10.0.
func privacyScore(cleanedCount, totalUnique int) float64 {
	if totalUnique == 0 {
		return 10.0
	}
	retention := float64(cleanedCount) / float64(totalUnique)
	return math.Round((1-retention)*10*10) / 10
}
