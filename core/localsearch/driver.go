// Package localsearch combines a constructive heuristic with neighborhoods
// into improvement procedures.
package localsearch

import (
	"context"
	"math/rand"
	"time"

	"github.com/kilianp07/greenshop/core/events"
	"github.com/kilianp07/greenshop/core/heuristics"
	"github.com/kilianp07/greenshop/core/logger"
	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

// StopReason tells why a driver returned.
type StopReason string

const (
	StopLocalOptimum  StopReason = "local-optimum"
	StopMaxIterations StopReason = "max-iterations"
	StopTimeBudget    StopReason = "time-budget"
	StopCancelled     StopReason = "cancelled"
	StopSingleShot    StopReason = "single-shot"
)

// Result is the outcome of a driver run.
type Result struct {
	Solution     *solution.Solution
	Initial      int
	Evaluate     int
	Iterations   int
	Evaluations  int64
	Duration     time.Duration
	Neighborhood string
	Stop         StopReason
}

// Searcher is implemented by both drivers.
type Searcher interface {
	Search(ctx context.Context, inst *model.Instance) (Result, error)
}

// Execute runs h and reports a Result. For a constructive heuristic only
// the solution, the objective and the duration are set.
func Execute(ctx context.Context, h heuristics.Heuristic, inst *model.Instance) (Result, error) {
	if s, ok := h.(Searcher); ok {
		return s.Search(ctx, inst)
	}
	start := time.Now()
	sol, err := h.Run(ctx, inst)
	res := Result{Solution: sol, Duration: time.Since(start)}
	if sol != nil {
		res.Initial = sol.Evaluate()
		res.Evaluate = res.Initial
	}
	return res, err
}

// driver carries what both procedures share: the initial heuristic, the
// logger and the event publisher.
type driver struct {
	name  string
	cfg   Config
	init  heuristics.Heuristic
	log   logger.Logger
	pub   events.Publisher
	runID string
}

func newDriver(name string, cfg Config, rng *rand.Rand) (driver, error) {
	nd, err := heuristics.NewNonDeterministic(rng)
	if err != nil {
		return driver{}, err
	}
	return driver{
		name: name,
		cfg:  cfg,
		init: nd,
		log:  logger.NopLogger{},
		pub:  events.NopPublisher{},
	}, nil
}

// SetLogger replaces the logger. nil restores the no-op logger.
func (d *driver) SetLogger(l logger.Logger) { d.log = logger.OrNop(l) }

// SetPublisher sets the destination of search events.
func (d *driver) SetPublisher(p events.Publisher) {
	if p == nil {
		p = events.NopPublisher{}
	}
	d.pub = p
}

// SetRunID tags the published events.
func (d *driver) SetRunID(id string) { d.runID = id }

// SetInitial replaces the constructive heuristic used for the starting
// solution.
func (d *driver) SetInitial(h heuristics.Heuristic) {
	if h != nil {
		d.init = h
	}
}

// Name returns the registry name of the driver.
func (d *driver) Name() string { return d.name }

func (d *driver) emit(kind events.SearchKind, inst *model.Instance, s *solution.Solution, iter int, evals int64, start time.Time) {
	now := time.Now()
	d.pub.Publish(events.SearchEvent{
		RunID:       d.runID,
		Heuristic:   d.name,
		Instance:    inst.Name(),
		Kind:        kind,
		Iteration:   iter,
		Evaluate:    s.Evaluate(),
		Feasible:    s.IsFeasible(),
		Evaluations: evals,
		Elapsed:     now.Sub(start),
		Time:        now,
	})
}
