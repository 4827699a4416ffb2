package heuristics

import (
	"context"
	"fmt"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

// Greedy places each operation, job by job, on the machine with the lowest
// static cost energy + processing time. Machine timing is ignored and a
// skipped operation is not retried elsewhere, so the result may be
// infeasible when the cheapest machine cannot take it.
type Greedy struct{}

// Run implements Heuristic.
func (Greedy) Run(ctx context.Context, inst *model.Instance) (*solution.Solution, error) {
	s := solution.New(inst)
	for _, j := range s.Jobs() {
		for _, op := range j.Operations() {
			if err := ctx.Err(); err != nil {
				return s, err
			}
			m, err := s.Machine(CheapestMachine(op))
			if err != nil {
				return nil, fmt.Errorf("greedy: %w", err)
			}
			if !s.IsAvailable(op) {
				continue
			}
			if err := s.Schedule(op, m); err != nil {
				if skippable(err) {
					continue
				}
				return nil, fmt.Errorf("greedy: %w", err)
			}
		}
	}
	return s, nil
}

// CheapestMachine returns the compatible machine minimizing energy plus
// processing time. Ties go to the lowest machine id.
func CheapestMachine(op *model.Operation) int {
	best, bestCost := model.Unassigned, 0
	for _, id := range op.MachineIDs() {
		pt, _ := op.ProcessingTimeOn(id)
		en, _ := op.EnergyOn(id)
		if cost := pt + en; best == model.Unassigned || cost < bestCost {
			best, bestCost = id, cost
		}
	}
	return best
}
