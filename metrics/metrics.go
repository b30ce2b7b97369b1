// Package metrics instruments farm simulations with prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	farm "github.com/branched-services/go-farm"
)

const farmNamespace = "farm"

// Simulation outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Simulator wraps a farm.Simulator, counting calls by outcome and timing them.
type Simulator struct {
	next farm.Simulator

	simulations *prometheus.CounterVec
	latency     prometheus.Histogram
}

// Wrap instruments next, registering its collectors with reg.
func Wrap(next farm.Simulator, reg prometheus.Registerer) *Simulator {
	return &Simulator{
		next: next,

		simulations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: farmNamespace,
				Name:      "simulations_total",
				Help:      "The number of read-only calls made to quote or simulate steps, by outcome.",
			}, []string{"status"}),

		latency: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: farmNamespace,
				Name:      "simulation_duration_seconds",
				Help:      "Time spent waiting on a single simulated call.",
				Buckets:   prometheus.DefBuckets,
			}),
	}
}

// Simulate implements farm.Simulator.
func (s *Simulator) Simulate(ctx context.Context, call farm.SimCall) ([]byte, error) {
	start := time.Now()
	out, err := s.next.Simulate(ctx, call)
	s.latency.Observe(time.Since(start).Seconds())

	status := StatusOK
	if err != nil {
		status = StatusError
	}
	s.simulations.WithLabelValues(status).Inc()
	return out, err
}

var _ farm.Simulator = (*Simulator)(nil)
