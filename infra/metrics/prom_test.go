package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/greenshop/core/events"
	coremetrics "github.com/kilianp07/greenshop/core/metrics"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	runs := []coremetrics.RunResult{
		{Heuristic: "greedy", Instance: "tai01", Evaluate: 21, Feasible: true, Duration: 3 * time.Millisecond},
		{Heuristic: "first-improvement", Instance: "tai01", Evaluate: 18, Feasible: true, Evaluations: 40},
		{Heuristic: "first-improvement", Instance: "tai01", Feasible: false, Evaluations: 2},
	}
	for _, r := range runs {
		if err := sink.RecordRun(r); err != nil {
			t.Fatalf("record error: %v", err)
		}
	}

	expected := `
# HELP greenshop_runs_total Total number of heuristic runs
# TYPE greenshop_runs_total counter
greenshop_runs_total{feasible="false",heuristic="first-improvement"} 1
greenshop_runs_total{feasible="true",heuristic="first-improvement"} 1
greenshop_runs_total{feasible="true",heuristic="greedy"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.evaluate.WithLabelValues("first-improvement", "tai01")); v != 18 {
		t.Errorf("evaluate gauge = %v, want 18", v)
	}
	if v := testutil.ToFloat64(sink.evaluations.WithLabelValues("first-improvement")); v != 42 {
		t.Errorf("evaluations = %v, want 42", v)
	}
	if c := testutil.CollectAndCount(sink.duration); c != 2 {
		t.Errorf("duration series = %d, want 2", c)
	}
}

func TestPromSink_RecordSearchEvent(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for _, k := range []events.SearchKind{events.SearchStarted, events.SearchImproved, events.SearchImproved, events.SearchFinished} {
		_ = sink.RecordSearchEvent(events.SearchEvent{Heuristic: "best-of", Kind: k})
	}
	if v := testutil.ToFloat64(sink.improvements.WithLabelValues("best-of")); v != 2 {
		t.Errorf("improvements = %v, want 2", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	if a.runs != b.runs {
		t.Fatalf("expected shared counter")
	}
}
