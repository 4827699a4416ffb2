package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/greenshop/core/events"
	coremetrics "github.com/kilianp07/greenshop/core/metrics"
	"github.com/kilianp07/greenshop/internal/eventbus"
)

type searchSink struct {
	coremetrics.NopSink
	mu  sync.Mutex
	got []events.SearchEvent
}

func (s *searchSink) RecordSearchEvent(e events.SearchEvent) error {
	s.mu.Lock()
	s.got = append(s.got, e)
	s.mu.Unlock()
	return nil
}

func (s *searchSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type runOnly struct{}

func (runOnly) RecordRun(coremetrics.RunResult) error { return nil }

func TestEventCollectorForwards(t *testing.T) {
	bus := eventbus.NewTyped[events.SearchEvent]()
	sink := &searchSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(events.SearchEvent{Kind: events.SearchStarted})
	bus.Publish(events.SearchEvent{Kind: events.SearchFinished})
	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestEventCollectorStopsOnBusClose(t *testing.T) {
	bus := eventbus.NewTyped[events.SearchEvent]()
	done := StartEventCollector(context.Background(), bus, &searchSink{})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestEventCollectorSkipsRunOnlySinks(t *testing.T) {
	bus := eventbus.NewTyped[events.SearchEvent]()
	done := StartEventCollector(context.Background(), bus, runOnly{})
	select {
	case <-done:
	default:
		t.Fatal("expected closed channel")
	}
}
