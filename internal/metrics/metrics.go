// Package metrics records frame invocation counts and latencies.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder receives one observation per frame invocation.
type Recorder interface {
	ObserveInvocation(frame, outcome string, d time.Duration)
}

// Noop discards observations.
type Noop struct{}

func (Noop) ObserveInvocation(string, string, time.Duration) {}

// Prometheus records invocations into a counter and a latency histogram.
type Prometheus struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dbt5",
				Name:      "frame_invocations_total",
				Help:      "Total frame invocations by outcome.",
			},
			[]string{"frame", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dbt5",
				Name:      "frame_duration_seconds",
				Help:      "Frame invocation duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"frame"},
		),
	}
	for _, c := range []prometheus.Collector{p.invocations, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveInvocation(frame, outcome string, d time.Duration) {
	p.invocations.WithLabelValues(frame, outcome).Inc()
	p.duration.WithLabelValues(frame).Observe(d.Seconds())
}

// Counter returns the invocation counter for one frame and outcome.
func (p *Prometheus) Counter(frame, outcome string) prometheus.Counter {
	return p.invocations.WithLabelValues(frame, outcome)
}
