// Package heuristics builds initial schedules from an empty solution.
package heuristics

import (
	"context"
	"errors"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

// Heuristic produces a solution for an instance. The local search drivers
// implement it too, so any of them can be selected by name.
type Heuristic interface {
	Run(ctx context.Context, inst *model.Instance) (*solution.Solution, error)
}

// Func adapts a function to Heuristic.
type Func func(ctx context.Context, inst *model.Instance) (*solution.Solution, error)

func (f Func) Run(ctx context.Context, inst *model.Instance) (*solution.Solution, error) {
	return f(ctx, inst)
}

// skippable reports placement refusals that leave an operation unscheduled
// for this pass instead of aborting the run.
func skippable(err error) bool {
	return errors.Is(err, model.ErrHorizonExceeded)
}
