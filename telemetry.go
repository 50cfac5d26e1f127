package cookierinse

import "github.com/prometheus/client_golang/prometheus"

// Telemetry lives on its own registry so embedding shells can scrape it
// without inheriting the default Go collectors.
var (
	telemetryRegistry = prometheus.NewRegistry()

	filesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cookierinse_files_processed_total",
		Help: "Cookie files fully cleaned",
	})
	linesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cookierinse_lines_skipped_total",
		Help: "Malformed input lines skipped during parsing",
	})
	cookiesCleaned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cookierinse_cookies_cleaned_total",
		Help: "Auth cookies written to cleaned output files",
	})
	exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cookierinse_exports_total",
		Help: "Browser store exports by browser",
	}, []string{"browser"})
	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cookierinse_errors_total",
		Help: "Fatal errors by type",
	}, []string{"type"})
)

func init() {
	telemetryRegistry.MustRegister(filesProcessed, linesSkipped, cookiesCleaned, exportsTotal, errorsTotal)
}

// MetricsRegistry exposes the package's prometheus registry so a
// surrounding shell can serve or inspect it.
func MetricsRegistry() *prometheus.Registry { return telemetryRegistry }
