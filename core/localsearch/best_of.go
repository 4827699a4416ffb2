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

// BestOfNeighborhoods applies the best machine switch and the best
// operation reorder to copies of one random solution and keeps the better
// result. It does not iterate. On a tie the machine switch wins.
type BestOfNeighborhoods struct {
	driver
}

// NewBestOfNeighborhoods validates cfg and the random source.
func NewBestOfNeighborhoods(cfg Config, rng *rand.Rand) (*BestOfNeighborhoods, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := newDriver("best-of", cfg, rng)
	if err != nil {
		return nil, err
	}
	return &BestOfNeighborhoods{driver: d}, nil
}

// Run implements heuristics.Heuristic.
func (b *BestOfNeighborhoods) Run(ctx context.Context, inst *model.Instance) (*solution.Solution, error) {
	res, err := b.Search(ctx, inst)
	return res.Solution, err
}

func (b *BestOfNeighborhoods) Search(ctx context.Context, inst *model.Instance) (Result, error) {
	start := time.Now()
	initial, err := b.init.Run(ctx, inst)
	if err != nil {
		return Result{Solution: initial}, fmt.Errorf("%s: initial solution: %w", b.name, err)
	}
	res := Result{Solution: initial, Initial: initial.Evaluate(), Stop: StopSingleShot}
	b.emit(events.SearchStarted, inst, initial, 0, 0, start)
	b.log.Infof("%s on %s: initial evaluate %d", b.name, inst, res.Initial)

	opts := neighborhood.Options{Workers: b.cfg.Workers}
	candidates := []neighborhood.Neighborhood{
		neighborhood.NewMachineSwitch(opts),
		neighborhood.NewOperationOrder(opts),
	}
	var best *solution.Solution
	for _, n := range candidates {
		got, err := n.BestNeighbor(ctx, initial.Clone())
		res.Evaluations += evaluations(n)
		if err != nil {
			if ctx.Err() != nil {
				res.Stop = StopCancelled
				if got != nil && (best == nil || got.Evaluate() < best.Evaluate()) {
					best, res.Neighborhood = got, n.Name()
				}
				break
			}
			return res, fmt.Errorf("%s: %s: %w", b.name, n.Name(), err)
		}
		b.log.Debugw("neighborhood explored", map[string]any{
			"heuristic":    b.name,
			"neighborhood": n.Name(),
			"evaluate":     got.Evaluate(),
		})
		if best == nil || got.Evaluate() < best.Evaluate() {
			best, res.Neighborhood = got, n.Name()
		}
	}
	if best == nil {
		best = initial
	}

	res.Solution = best
	res.Evaluate = best.Evaluate()
	res.Duration = time.Since(start)
	if res.Evaluate < res.Initial {
		res.Iterations = 1
		b.emit(events.SearchImproved, inst, best, 1, res.Evaluations, start)
	}
	b.emit(events.SearchFinished, inst, best, res.Iterations, res.Evaluations, start)
	b.log.Infof("%s on %s: evaluate %d via %s", b.name, inst, res.Evaluate, res.Neighborhood)
	if res.Stop == StopCancelled {
		return res, ctx.Err()
	}
	return res, nil
}

func evaluations(n neighborhood.Neighborhood) int64 {
	if c, ok := n.(interface{ Evaluations() int64 }); ok {
		return c.Evaluations()
	}
	return 0
}
