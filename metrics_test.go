package cookierinse

import (
	"fmt"
	"testing"
	"time"
)

func TestOldestCookieAge_Buckets(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	line := func(offset time.Duration) string {
		return cookieLine("example.com", fmt.Sprintf("%d", now.Add(-offset).Unix()), "sid", "v")
	}

	cases := []struct {
		name  string
		lines []string
		want  string
	}{
		{"no lines", nil, "Unknown"},
		{"all session", []string{cookieLine("a.com", "0", "sid", "v")}, "Unknown"},
		{"malformed expiry", []string{cookieLine("a.com", "soon", "sid", "v")}, "Unknown"},
		{"future expiry", []string{line(-48 * time.Hour)}, "Less than 1 day"},
		{"hours old", []string{line(6 * time.Hour)}, "Less than 1 day"},
		{"days old", []string{line(5 * 24 * time.Hour)}, "5 days"},
		{"months old", []string{line(95 * 24 * time.Hour)}, "3 months"},
		{"years old", []string{line(800 * 24 * time.Hour)}, "2 years"},
		{"minimum wins", []string{line(2 * 24 * time.Hour), line(400 * 24 * time.Hour)}, "1 years"},
	}
	for _, tc := range cases {
		if got := oldestCookieAge(tc.lines, now); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCountTrackingCookies(t *testing.T) {
	trackers := DefaultCatalog().Trackers
	lines := []string{
		cookieLine("a.com", "0", "_ga", "v"),
		cookieLine("a.com", "0", "_ga", "v"), // duplicates still count
		cookieLine("b.com", "0", "_FBP", "v"),
		cookieLine("c.com", "0", "sid", "v"),
		"short\tline",
	}
	if got := countTrackingCookies(lines, trackers); got != 3 {
		t.Fatalf("tracking count = %d, want 3", got)
	}
}

func TestPrivacyScore(t *testing.T) {
	cases := []struct {
		cleaned, total int
		want           float64
	}{
		{0, 0, 10.0},
		{0, 10, 10.0},
		{10, 10, 0.0},
		{1, 3, 6.7},
		{2, 4, 5.0},
	}
	for _, tc := range cases {
		got := privacyScore(tc.cleaned, tc.total)
		if got != tc.want {
			t.Errorf("privacyScore(%d, %d) = %v, want %v", tc.cleaned, tc.total, got, tc.want)
		}
		if got < 0 || got > 10 {
			t.Errorf("privacyScore(%d, %d) = %v out of bounds", tc.cleaned, tc.total, got)
		}
	}
}
