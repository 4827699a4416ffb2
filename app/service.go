// Package app wires the configuration into a runnable solver: logging,
// metrics sinks, the search event bus, MQTT, the run log and the
// heuristic registry.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/greenshop/app/plugins"
	"github.com/kilianp07/greenshop/config"
	"github.com/kilianp07/greenshop/core/bench"
	"github.com/kilianp07/greenshop/core/events"
	"github.com/kilianp07/greenshop/core/factory"
	"github.com/kilianp07/greenshop/core/heuristics"
	"github.com/kilianp07/greenshop/core/localsearch"
	corelogger "github.com/kilianp07/greenshop/core/logger"
	coremetrics "github.com/kilianp07/greenshop/core/metrics"
	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/runlog"
	"github.com/kilianp07/greenshop/core/solution"
	"github.com/kilianp07/greenshop/infra/logger"
	"github.com/kilianp07/greenshop/infra/metrics"
	"github.com/kilianp07/greenshop/infra/mqtt"
	"github.com/kilianp07/greenshop/internal/eventbus"
)

// busBuffer is the subscriber capacity of the search bus. Improvements of
// a fast driver arrive in bursts.
const busBuffer = 256

// Service owns the long-lived resources shared by every run.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	sink  coremetrics.MetricsSink
	bus   *eventbus.TypedBus[events.SearchEvent]
	pub   *mqtt.Publisher
	store runlog.Store
	done  []<-chan struct{}
}

// Outcome collects the runs of one Solve call. Best is the feasible
// solution with the lowest objective, or the last solution when no run was
// feasible.
type Outcome struct {
	Best    *solution.Solution
	BestRun runlog.Record
	Runs    []runlog.Record
}

type runConfigurable interface {
	SetLogger(corelogger.Logger)
	SetPublisher(events.Publisher)
	SetRunID(string)
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := runlog.Open(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	svc := &Service{
		cfg:   cfg,
		log:   logger.New("service"),
		sink:  sink,
		bus:   eventbus.NewTyped[events.SearchEvent](),
		store: store,
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = pub
	}
	return svc, nil
}

// Start launches the background consumers of the search bus and the
// Prometheus endpoint. They stop when ctx is cancelled or on Close.
func (s *Service) Start(ctx context.Context) {
	s.done = append(s.done, metrics.StartEventCollector(ctx, s.bus, s.sink))
	if s.pub != nil {
		s.done = append(s.done, s.pub.Forward(ctx, s.bus))
	}
	if port := s.cfg.Metrics.PrometheusPort; port > 0 {
		go func() {
			if err := metrics.StartPromServer(ctx, fmt.Sprintf(":%d", port)); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Bus exposes the search events of every run.
func (s *Service) Bus() *eventbus.TypedBus[events.SearchEvent] { return s.bus }

// Solve runs the configured heuristic search.runs times. A run cancelled
// over MQTT keeps its best-so-far solution. Cancelling ctx stops the loop
// and returns the runs finished so far with the context error.
func (s *Service) Solve(ctx context.Context, inst *model.Instance) (*Outcome, error) {
	out := &Outcome{}
	for i := 0; i < s.cfg.Search.Runs; i++ {
		sol, rec, err := s.solveOnce(ctx, inst, i)
		if sol != nil {
			out.Runs = append(out.Runs, rec)
			if better(sol, out.Best) {
				out.Best, out.BestRun = sol, rec
			}
		}
		if err != nil {
			return out, err
		}
	}
	if out.Best != nil {
		s.log.Infof("%s on %s: best evaluate %d over %d runs", s.cfg.Search.Heuristic.Type, inst, out.Best.Evaluate(), len(out.Runs))
	}
	return out, nil
}

func better(s, best *solution.Solution) bool {
	if best == nil {
		return true
	}
	if s.IsFeasible() != best.IsFeasible() {
		return s.IsFeasible()
	}
	return s.Evaluate() < best.Evaluate()
}

func (s *Service) solveOnce(ctx context.Context, inst *model.Instance, i int) (*solution.Solution, runlog.Record, error) {
	mc := s.cfg.Search.ModuleConf()
	seed := s.cfg.Search.Seed
	if seed != 0 {
		seed += int64(i)
		mc.Conf["seed"] = seed
	}
	h, err := plugins.NewHeuristic(mc)
	if err != nil {
		return nil, runlog.Record{}, fmt.Errorf("heuristic %s: %w", mc.Type, err)
	}
	runID := uuid.NewString()
	s.configure(h, mc.Type, runID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.pub != nil {
		unwatch := s.pub.Watch(runID, cancel)
		defer unwatch()
	}

	start := time.Now()
	res, err := localsearch.Execute(runCtx, h, inst)
	dur := time.Since(start)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, runlog.Record{}, fmt.Errorf("%s run %d: %w", mc.Type, i, err)
	}
	if res.Solution == nil {
		if err == nil {
			err = errors.New("no solution")
		}
		return nil, runlog.Record{}, fmt.Errorf("%s run %d: %w", mc.Type, i, err)
	}
	if runCtx.Err() != nil && res.Stop == "" {
		res.Stop = localsearch.StopCancelled
	}

	sol := res.Solution
	rec := runlog.Record{
		RunID:              runID,
		Timestamp:          start.UTC(),
		Instance:           inst.Name(),
		Heuristic:          mc.Type,
		Seed:               seed,
		Feasible:           sol.IsFeasible(),
		Evaluate:           sol.Evaluate(),
		Cmax:               sol.Cmax(),
		SumCi:              sol.SumCi(),
		Energy:             sol.TotalEnergyConsumption(),
		MeanProcessingTime: sol.MeanProcessingTime(),
		Iterations:         res.Iterations,
		Evaluations:        res.Evaluations,
		DurationMS:         float64(dur.Microseconds()) / 1000.0,
		Stop:               string(res.Stop),
		Neighborhood:       res.Neighborhood,
	}
	if err := s.sink.RecordRun(coremetrics.RunResult{
		RunID:              runID,
		Heuristic:          mc.Type,
		Instance:           inst.Name(),
		Evaluate:           rec.Evaluate,
		Feasible:           rec.Feasible,
		Cmax:               rec.Cmax,
		Energy:             rec.Energy,
		MeanProcessingTime: float64(rec.MeanProcessingTime),
		Iterations:         res.Iterations,
		Evaluations:        res.Evaluations,
		Duration:           dur,
		Time:               start,
	}); err != nil {
		s.log.Warnf("record run %s: %v", runID, err)
	}
	// the run log write must survive a cancelled run
	if _, err := s.store.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Warnf("append run %s: %v", runID, err)
	}
	if ctx.Err() != nil {
		return sol, rec, fmt.Errorf("%s run %d: %w", mc.Type, i, ctx.Err())
	}
	return sol, rec, nil
}

func (s *Service) configure(h heuristics.Heuristic, name, runID string) {
	c, ok := h.(runConfigurable)
	if !ok {
		return
	}
	c.SetLogger(logger.New(name))
	c.SetPublisher(s.bus)
	c.SetRunID(runID)
}

// Bench runs every named heuristic search.runs times with the configured
// bounds. Run i of each heuristic uses seed search.seed+i, or 1+i when no
// seed is configured, so all heuristics see the same seeds.
func (s *Service) Bench(ctx context.Context, inst *model.Instance, names []string) ([]bench.Record, error) {
	base := s.cfg.Search.Seed
	if base == 0 {
		base = 1
	}
	algos := make([]bench.Algorithm, 0, len(names))
	for _, name := range names {
		sc := s.cfg.Search
		if name != sc.Heuristic.Type {
			sc.Heuristic = factory.ModuleConfig{Type: name}
		}
		algos = append(algos, bench.Algorithm{
			Name: name,
			Factory: func(seed int64) (heuristics.Heuristic, error) {
				mc := sc.ModuleConf()
				mc.Conf["seed"] = seed
				h, err := plugins.NewHeuristic(mc)
				if err != nil {
					return nil, err
				}
				s.configure(h, name, uuid.NewString())
				return h, nil
			},
		})
	}
	runner := bench.Runner{Runs: s.cfg.Search.Runs, BaseSeed: base, Sink: s.sink, Log: s.log}
	return runner.Run(ctx, inst, algos)
}

// History queries the run log.
func (s *Service) History(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	return s.store.Query(ctx, q)
}

// Close stops the consumers and releases the broker, the run log and the
// sinks.
func (s *Service) Close() error {
	s.bus.Close()
	for _, d := range s.done {
		<-d
	}
	if s.pub != nil {
		s.pub.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return s.store.Close()
}
