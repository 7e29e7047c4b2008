// Package metrics records advisor activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the advisor's metric vectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	outcomes        *prometheus.CounterVec
	reprompts       *prometheus.CounterVec
}

// NewRecorder registers the advisor metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		backendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_backend_requests_total",
				Help: "Backend calls by endpoint and result (ok, http_error, transport_error)",
			},
			[]string{"endpoint", "result"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_backend_request_duration_seconds",
				Help:    "Latency of backend calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_orchestration_outcomes_total",
				Help: "Orchestration results by kind (use_cases, frameworks, empty, error) and interface",
			},
			[]string{"kind", "interface"},
		),
		reprompts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_chat_reprompts_total",
				Help: "Chat inputs that were not recognized, by state",
			},
			[]string{"state"},
		),
	}
}

func (r *Recorder) ObserveBackend(endpoint, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.backendRequests.WithLabelValues(endpoint, result).Inc()
	r.backendDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (r *Recorder) Outcome(kind, iface string) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(kind, iface).Inc()
}

func (r *Recorder) Reprompt(state string) {
	if r == nil {
		return
	}
	r.reprompts.WithLabelValues(state).Inc()
}
