package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one extraction run.
type Metrics struct {
	Registry *prometheus.Registry

	FilesMatched    prometheus.Counter
	FilesFailed     prometheus.Counter
	PointsExtracted prometheus.Counter
	FileDuration    prometheus.Histogram
	PointsExported  *prometheus.CounterVec // labels: sink={csv,vm}, outcome={success,error}
}

// NewMetrics creates the run metrics on a private registry so that the
// textfile written at the end only carries this tool's series.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FilesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "files_matched_total",
			Help:      "Gridded files whose name matched the input convention.",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "files_failed_total",
			Help:      "Matched files skipped because they could not be read.",
		}),
		PointsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "points_extracted_total",
			Help:      "Monthly observations extracted at the target cell.",
		}),
		FileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "precip",
			Name:      "file_duration_seconds",
			Help:      "Time spent reading one gridded file.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		PointsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "points_exported_total",
			Help:      "Observations handed to an export sink by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}

	m.Registry.MustRegister(
		m.FilesMatched,
		m.FilesFailed,
		m.PointsExtracted,
		m.FileDuration,
		m.PointsExported,
	)

	return m
}

// WriteTextfile dumps the current values in the node-exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
