package build

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus metrics for the build pipeline.
type metrics struct {
	buildsTotal     *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	filesCompiled   prometheus.Counter
	compileFailures prometheus.Counter
	rebuildSetSize  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &metrics{
		buildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plhub",
			Subsystem: "build",
			Name:      "cycles_total",
			Help:      "Build cycles, labeled by result.",
		}, []string{"result"}),
		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plhub",
			Subsystem: "build",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time per build cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		filesCompiled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "plhub",
			Subsystem: "build",
			Name:      "files_compiled_total",
			Help:      "Files compiled successfully.",
		}),
		compileFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "plhub",
			Subsystem: "build",
			Name:      "compile_failures_total",
			Help:      "Per-file compile failures.",
		}),
		rebuildSetSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plhub",
			Subsystem: "build",
			Name:      "rebuild_set_size",
			Help:      "Number of files per rebuild set after dependency closure.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}
}
