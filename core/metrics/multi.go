package metrics

import (
	"errors"

	"github.com/kilianp07/greenshop/core/events"
)

// MultiSink forwards records to several sinks. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a sink that forwards to all provided sinks. nil
// entries are skipped.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	ms := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			ms.Sinks = append(ms.Sinks, s)
		}
	}
	return ms
}

func (m *MultiSink) RecordRun(r RunResult) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRun(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordSearchEvent forwards to the sinks implementing SearchRecorder.
func (m *MultiSink) RecordSearchEvent(e events.SearchEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(SearchRecorder); ok {
			if err := r.RecordSearchEvent(e); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
