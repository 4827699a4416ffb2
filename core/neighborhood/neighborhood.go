// Package neighborhood explores the solutions reachable from a schedule by
// one local move.
//
// Every trial runs on its own clone of the base solution. With
// Options.Workers > 1 trials are evaluated concurrently, then selected in
// enumeration order, so the returned neighbor does not depend on the worker
// count.
package neighborhood

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

// Neighborhood is the capability shared by the move sets.
type Neighborhood interface {
	// BestNeighbor returns the lowest-evaluated valid neighbor, or the
	// input when nothing beats it.
	BestNeighbor(ctx context.Context, s *solution.Solution) (*solution.Solution, error)
	// FirstBetterNeighbor returns the first valid neighbor, in enumeration
	// order, that evaluates strictly lower than the input, or the input.
	FirstBetterNeighbor(ctx context.Context, s *solution.Solution) (*solution.Solution, error)
	Name() string
}

// Options tune the exploration.
type Options struct {
	// Workers is the number of concurrent trials; values below 2 run
	// sequentially.
	Workers int `json:"workers"`
}

// move rewrites a clone of the base solution.
type move func(trial *solution.Solution) error

type trial struct {
	sol   *solution.Solution
	score int
	valid bool
}

// explorer evaluates moves and counts the trials it ran.
type explorer struct {
	opts  Options
	evals atomic.Int64
}

// Evaluations returns the number of trials evaluated so far.
func (e *explorer) Evaluations() int64 { return e.evals.Load() }

// notANeighbor is true for placement refusals that only invalidate the move.
func notANeighbor(err error) bool {
	return errors.Is(err, model.ErrPrecedenceViolation) ||
		errors.Is(err, model.ErrIncompatibleMachine) ||
		errors.Is(err, model.ErrHorizonExceeded)
}

func (e *explorer) run(base *solution.Solution, mv move) (trial, error) {
	c := base.Clone()
	e.evals.Add(1)
	if err := mv(c); err != nil {
		if notANeighbor(err) {
			return trial{}, nil
		}
		return trial{}, err
	}
	if c.Violations() != nil {
		return trial{}, nil
	}
	return trial{sol: c, score: c.Evaluate(), valid: true}, nil
}

// evaluate runs moves and stores each outcome at the same index of out.
func (e *explorer) evaluate(ctx context.Context, base *solution.Solution, moves []move, out []trial) error {
	if e.opts.Workers < 2 {
		for i, mv := range moves {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := e.run(base, mv)
			if err != nil {
				return err
			}
			out[i] = t
		}
		return nil
	}
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Workers)
	for i, mv := range moves {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			t, err := e.run(base, mv)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// best scans every move. adopt decides whether a trial replaces the running
// best, which starts at start.
func (e *explorer) best(ctx context.Context, base, start *solution.Solution, moves []move, adopt func(candidate, best int) bool) (*solution.Solution, error) {
	results := make([]trial, len(moves))
	err := e.evaluate(ctx, base, moves, results)
	if err != nil && ctx.Err() == nil {
		return nil, err
	}
	// On cancellation err is ctx.Err() and the best of the finished trials
	// is still returned.
	best, bestScore := start, start.Evaluate()
	for _, t := range results {
		if t.valid && adopt(t.score, bestScore) {
			best, bestScore = t.sol, t.score
		}
	}
	return best, err
}

// firstBetter scans moves in batches and stops at the first strict
// improvement over base.
func (e *explorer) firstBetter(ctx context.Context, base *solution.Solution, moves []move) (*solution.Solution, error) {
	baseScore := base.Evaluate()
	batch := 1
	if e.opts.Workers > 1 {
		batch = 4 * e.opts.Workers
	}
	results := make([]trial, batch)
	for from := 0; from < len(moves); from += batch {
		to := min(from+batch, len(moves))
		clear(results)
		err := e.evaluate(ctx, base, moves[from:to], results[:to-from])
		if err != nil && ctx.Err() == nil {
			return nil, err
		}
		for _, t := range results[:to-from] {
			if t.valid && t.score < baseScore {
				return t.sol, nil
			}
		}
		if err != nil {
			return base, err
		}
	}
	return base, nil
}
