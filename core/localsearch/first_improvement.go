package localsearch

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/greenshop/core/events"
	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/neighborhood"
	"github.com/kilianp07/greenshop/core/solution"
)

// FirstImprovement starts from a random solution and keeps adopting the
// first improving machine switch until none exists.
type FirstImprovement struct {
	driver
}

// NewFirstImprovement validates cfg and the random source.
func NewFirstImprovement(cfg Config, rng *rand.Rand) (*FirstImprovement, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := newDriver("first-improvement", cfg, rng)
	if err != nil {
		return nil, err
	}
	return &FirstImprovement{driver: d}, nil
}

// Run implements heuristics.Heuristic.
func (f *FirstImprovement) Run(ctx context.Context, inst *model.Instance) (*solution.Solution, error) {
	res, err := f.Search(ctx, inst)
	return res.Solution, err
}

// Search runs the procedure. On cancellation it returns the current
// solution together with the context error. The iteration and time budgets
// are checked between neighborhood calls.
func (f *FirstImprovement) Search(ctx context.Context, inst *model.Instance) (Result, error) {
	start := time.Now()
	cur, err := f.init.Run(ctx, inst)
	if err != nil {
		return Result{Solution: cur}, fmt.Errorf("%s: initial solution: %w", f.name, err)
	}
	res := Result{Solution: cur, Initial: cur.Evaluate(), Neighborhood: "machine-switch"}
	f.emit(events.SearchStarted, inst, cur, 0, 0, start)
	f.log.Infof("%s on %s: initial evaluate %d", f.name, inst, res.Initial)

	ns := neighborhood.NewMachineSwitch(neighborhood.Options{Workers: f.cfg.Workers})
	budget := f.cfg.Budget()
	for {
		if ctx.Err() != nil {
			res.Stop = StopCancelled
			break
		}
		if f.cfg.MaxIterations > 0 && res.Iterations >= f.cfg.MaxIterations {
			res.Stop = StopMaxIterations
			break
		}
		if budget > 0 && time.Since(start) >= budget {
			res.Stop = StopTimeBudget
			break
		}
		next, err := ns.FirstBetterNeighbor(ctx, cur.Clone())
		if err != nil {
			if ctx.Err() != nil {
				res.Stop = StopCancelled
				break
			}
			return res, fmt.Errorf("%s: %w", f.name, err)
		}
		score := next.Evaluate()
		if score >= cur.Evaluate() {
			res.Stop = StopLocalOptimum
			break
		}
		cur = next
		res.Iterations++
		f.emit(events.SearchImproved, inst, cur, res.Iterations, ns.Evaluations(), start)
		f.log.Debugw("improved", map[string]any{
			"heuristic": f.name,
			"iteration": res.Iterations,
			"evaluate":  score,
		})
	}

	res.Solution = cur
	res.Evaluate = cur.Evaluate()
	res.Evaluations = ns.Evaluations()
	res.Duration = time.Since(start)
	f.emit(events.SearchFinished, inst, cur, res.Iterations, res.Evaluations, start)
	f.log.Infof("%s on %s: evaluate %d after %d improvements (%s)", f.name, inst, res.Evaluate, res.Iterations, res.Stop)
	if res.Stop == StopCancelled {
		return res, ctx.Err()
	}
	return res, nil
}
