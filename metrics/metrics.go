// Package metrics exposes tick execution measurements as Prometheus series.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/tickmesh/core"
)

const namespace = "tickmesh"

// Node result label values.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
	ResultBudget = "budget"
)

// Recorder implements core.Observer on a Prometheus registry.
type Recorder struct {
	nodeTicks        *prometheus.CounterVec
	budgetRejections *prometheus.CounterVec
	tickDuration     prometheus.Histogram
	checkpointBytes  *prometheus.GaugeVec
	searchSteps      *prometheus.CounterVec
	budgetAvailable  prometheus.Gauge
}

var _ core.Observer = (*Recorder)(nil)

// NewRecorder registers the tickmesh series on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		nodeTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_ticks_total",
			Help:      "Task ticks by node and result.",
		}, []string{"node", "result"}),
		budgetRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_rejections_total",
			Help:      "Task ticks skipped because the budget requirement was not met.",
		}, []string{"node"}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time of a whole tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		checkpointBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "checkpoint_bytes",
			Help:      "Size of the last committed checkpoint by key.",
		}, []string{"key"}),
		searchSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_steps_total",
			Help:      "Placement search steps by region and outcome.",
		}, []string{"region", "outcome"}),
		budgetAvailable: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_available",
			Help:      "Budget sampled at the last tick, -1 when unknown.",
		}),
	}
}

// ObserveNode implements core.Observer.
func (r *Recorder) ObserveNode(name string, err error) {
	switch {
	case err == nil:
		r.nodeTicks.WithLabelValues(name, ResultOK).Inc()
	case errors.Is(err, core.ErrBudgetNotMet):
		r.nodeTicks.WithLabelValues(name, ResultBudget).Inc()
		r.budgetRejections.WithLabelValues(name).Inc()
	default:
		r.nodeTicks.WithLabelValues(name, ResultFailed).Inc()
	}
}

// ObserveCheckpoint implements core.Observer.
func (r *Recorder) ObserveCheckpoint(key string, size int) {
	r.checkpointBytes.WithLabelValues(key).Set(float64(size))
}

// ObserveSearchStep implements core.Observer.
func (r *Recorder) ObserveSearchStep(region, outcome string) {
	r.searchSteps.WithLabelValues(region, outcome).Inc()
}

// ObserveTick implements core.Observer.
func (r *Recorder) ObserveTick(d time.Duration, budget int, known bool) {
	r.tickDuration.Observe(d.Seconds())
	if !known {
		budget = -1
	}
	r.budgetAvailable.Set(float64(budget))
}

// Handler serves the series gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
