package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docscan/docscan-go/pkg/scanner"
)

// Namespace prefixes every metric name.
const Namespace = "docscan"

// ResultSuccess labels successful scans. Failures are labelled with their
// error kind.
const ResultSuccess = "success"

// Recorder holds the scan metrics.
type Recorder struct {
	registry *prometheus.Registry

	scans       *prometheus.CounterVec
	pages       prometheus.Counter
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scans_total",
			Help:      "Scan sessions by result.",
		}, []string{"result"}),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pages_total",
			Help:      "Pages delivered to their destination.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of scan sessions from open to terminal state.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful scan.",
		}),
	}
	r.registry.MustRegister(r.scans, r.pages, r.duration, r.lastSuccess)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one finished session. err is the session error, nil on
// success.
func (r *Recorder) Observe(err error, pages int, elapsed time.Duration, finished time.Time) {
	result := ResultSuccess
	if err != nil {
		result = scanner.Kind(err)
	}
	r.scans.WithLabelValues(result).Inc()
	r.duration.Observe(elapsed.Seconds())
	if err == nil {
		r.pages.Add(float64(pages))
		r.lastSuccess.Set(float64(finished.Unix()))
	}
}

// WriteTextfile writes all metrics to path atomically, creating the
// parent directory.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("metrics: create directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
