package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/greenshop/core/events"
	coremetrics "github.com/kilianp07/greenshop/core/metrics"
)

// PromSink records heuristic runs in Prometheus metrics.
type PromSink struct {
	runs         *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	evaluate     *prometheus.GaugeVec
	evaluations  *prometheus.CounterVec
	improvements *prometheus.CounterVec
}

// NewPromSink registers the run metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenshop_runs_total",
		Help: "Total number of heuristic runs",
	}, []string{"heuristic", "feasible"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "greenshop_run_duration_seconds",
		Help:    "Wall time of a heuristic run",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"heuristic"})
	evaluate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "greenshop_evaluate",
		Help: "Objective of the last feasible run per heuristic and instance",
	}, []string{"heuristic", "instance"})
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenshop_neighbor_evaluations_total",
		Help: "Neighbors evaluated by the local searches",
	}, []string{"heuristic"})
	improvements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenshop_improvements_total",
		Help: "Improving moves adopted by the local searches",
	}, []string{"heuristic"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if evaluate, err = register(reg, evaluate); err != nil {
		return nil, err
	}
	if evaluations, err = register(reg, evaluations); err != nil {
		return nil, err
	}
	if improvements, err = register(reg, improvements); err != nil {
		return nil, err
	}
	return &PromSink{
		runs:         runs,
		duration:     duration,
		evaluate:     evaluate,
		evaluations:  evaluations,
		improvements: improvements,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counters. The evaluate gauge only follows
// feasible runs.
func (s *PromSink) RecordRun(r coremetrics.RunResult) error {
	s.runs.WithLabelValues(r.Heuristic, strconv.FormatBool(r.Feasible)).Inc()
	s.duration.WithLabelValues(r.Heuristic).Observe(r.Duration.Seconds())
	if r.Evaluations > 0 {
		s.evaluations.WithLabelValues(r.Heuristic).Add(float64(r.Evaluations))
	}
	if r.Feasible {
		s.evaluate.WithLabelValues(r.Heuristic, r.Instance).Set(float64(r.Evaluate))
	}
	return nil
}

// RecordSearchEvent counts improvements.
func (s *PromSink) RecordSearchEvent(e events.SearchEvent) error {
	if e.Kind == events.SearchImproved {
		s.improvements.WithLabelValues(e.Heuristic).Inc()
	}
	return nil
}
