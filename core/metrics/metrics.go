package metrics

import (
	"time"

	"github.com/kilianp07/greenshop/core/events"
)

// RunResult summarises one finished heuristic run.
type RunResult struct {
	RunID              string        `json:"run_id"`
	Heuristic          string        `json:"heuristic"`
	Instance           string        `json:"instance"`
	Evaluate           int           `json:"evaluate"`
	Feasible           bool          `json:"feasible"`
	Cmax               int           `json:"cmax"`
	Energy             int           `json:"energy"`
	MeanProcessingTime float64       `json:"mean_processing_time"`
	Iterations         int           `json:"iterations"`
	Evaluations        int64         `json:"evaluations"`
	Duration           time.Duration `json:"duration"`
	Time               time.Time     `json:"time"`
}

// MetricsSink records finished runs.
type MetricsSink interface {
	RecordRun(RunResult) error
}

// SearchRecorder is implemented by sinks that also track search progress.
type SearchRecorder interface {
	RecordSearchEvent(events.SearchEvent) error
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) RecordRun(RunResult) error { return nil }

func (NopSink) RecordSearchEvent(events.SearchEvent) error { return nil }
