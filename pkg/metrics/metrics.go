// Package metrics records swap runs as Prometheus metrics.
//
// A run is a one-shot process, so instead of serving /metrics the registry
// can be written to a node_exporter textfile collector directory:
//
//	rec := metrics.NewRecorder()
//	orch := swap.NewOrchestrator(..., rec)
//	defer rec.WriteTextfile("/var/lib/node_exporter/odos_swap.prom")
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"odos-swap/pkg/swap"
	"odos-swap/pkg/types"
)

const namespace = "odos_swap"

// Recorder turns orchestrator transitions into metrics
type Recorder struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	approvalsTotal prometheus.Counter
	stageDuration  *prometheus.HistogramVec
	lastSuccess    prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished swap runs by result and error kind.",
		}, []string{"result", "kind"}),
		approvalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approvals_total",
			Help:      "Confirmed ERC-20 approvals sent before a swap.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each swap state.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"state"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful swap.",
		}),
	}

	r.registry.MustRegister(r.runsTotal, r.approvalsTotal, r.stageDuration, r.lastSuccess)
	return r
}

// OnTransition implements swap.Observer
func (r *Recorder) OnTransition(t swap.Transition) {
	r.stageDuration.WithLabelValues(string(t.From)).Observe(t.Elapsed.Seconds())

	switch t.To {
	case swap.Approved:
		r.approvalsTotal.Inc()
	case swap.Done:
		r.runsTotal.WithLabelValues("success", "").Inc()
		r.lastSuccess.SetToCurrentTime()
	case swap.Failed:
		r.runsTotal.WithLabelValues("failure", string(types.KindOf(t.Err))).Inc()
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
