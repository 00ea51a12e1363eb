// Package metrics exposes Prometheus instrumentation for command parsing and dispatch.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hal9000y/mailvoice/internal/command"
)

const (
	namespace     = "mailvoice"
	unknownAction = "unknown"
)

// Recorder is safe to use as a nil pointer, in which case it records nothing.
type Recorder struct {
	parses           *prometheus.CounterVec
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		parses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Utterances parsed, by matching stage (none when unmatched).",
		}, []string{"stage"}),
		dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Dispatched actions by action and result tag.",
		}, []string{"action", "result"}),
		dispatchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent executing an action.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}
}

// ObserveParse counts a parse outcome. An empty stage means no match.
func (r *Recorder) ObserveParse(stage string) {
	if r == nil {
		return
	}
	if stage == "" {
		stage = "none"
	}
	r.parses.WithLabelValues(stage).Inc()
}

// ObserveDispatch counts a dispatched action. Actions outside the command set
// are recorded as "unknown".
func (r *Recorder) ObserveDispatch(action, tag string, elapsed time.Duration) {
	if r == nil {
		return
	}
	if !command.ActionID(action).Valid() {
		action = unknownAction
	}
	r.dispatches.WithLabelValues(action, tag).Inc()
	r.dispatchDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
