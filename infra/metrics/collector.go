package metrics

import (
	"context"

	"github.com/kilianp07/greenshop/core/events"
	coremetrics "github.com/kilianp07/greenshop/core/metrics"
	"github.com/kilianp07/greenshop/infra/logger"
	"github.com/kilianp07/greenshop/internal/eventbus"
)

// StartEventCollector subscribes to the search bus and forwards every event
// to sink when it implements SearchRecorder. The returned channel is closed
// once the collector has stopped, which happens when ctx is cancelled or the
// bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.SearchEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.SearchRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordSearchEvent(ev); err != nil {
					log.Warnf("record search event: %v", err)
				}
			}
		}
	}()
	return done
}
