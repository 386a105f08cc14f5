package tracer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters for the tracer. Registered on the default registry;
// the web server exposes them on /metrics.
var (
	metricRaysTraced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glint_rays_traced_total",
		Help: "Total number of rays evaluated, including recursive bounces.",
	})

	metricPassesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glint_passes_completed_total",
		Help: "Total number of full accumulation passes traced.",
	})

	metricSnapshotsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glint_snapshots_published_total",
		Help: "Total number of snapshot recomputations published for display.",
	})

	metricAccumulationResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glint_accumulation_resets_total",
		Help: "Times the accumulation buffers were zeroed due to camera movement.",
	})
)
