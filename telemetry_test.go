package cookierinse

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTelemetry_CountsCleanedFiles(t *testing.T) {
	before := testutil.ToFloat64(filesProcessed)

	input := writeTempCookies(t, []string{cookieLine("github.com", "0", "logged_in", "yes")})
	e := NewEngine(nil)
	if _, err := e.Clean(input, filepath.Join(t.TempDir(), "out.txt")); err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if got := testutil.ToFloat64(filesProcessed); got != before+1 {
		t.Fatalf("files_processed = %v, want %v", got, before+1)
	}
}

func TestMetricsRegistry(t *testing.T) {
	mfs, err := MetricsRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	if !names["cookierinse_files_processed_total"] {
		t.Fatalf("registry metrics = %v, missing files_processed", names)
	}
}
