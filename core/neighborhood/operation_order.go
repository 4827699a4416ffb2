package neighborhood

import (
	"context"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

// OperationOrder reverses the placement order of two operations sharing a
// machine: both are taken off and rescheduled, the later one first. Pairs
// are enumerated per machine in schedule order.
type OperationOrder struct {
	explorer
}

// NewOperationOrder returns the neighborhood with the given options.
func NewOperationOrder(opts Options) *OperationOrder {
	return &OperationOrder{explorer: explorer{opts: opts}}
}

func (*OperationOrder) Name() string { return "operation-order" }

// swappable rejects pairs of the same job. A forward chain edge can never
// be inverted, and non-adjacent pairs of one job are excluded as well.
func swappable(first, second *model.Operation) bool {
	return first.JobID() != second.JobID()
}

func (n *OperationOrder) moves(s *solution.Solution) []move {
	var moves []move
	for _, m := range s.Machines() {
		ops := m.ScheduledOperations()
		for i := 0; i < len(ops); i++ {
			for j := i + 1; j < len(ops); j++ {
				first, second := ops[i], ops[j]
				if !swappable(first, second) {
					continue
				}
				machineID := m.ID()
				moves = append(moves, func(trial *solution.Solution) error {
					a, b := trial.Lookup(first), trial.Lookup(second)
					if err := trial.Unschedule(a); err != nil {
						return err
					}
					if err := trial.Unschedule(b); err != nil {
						return err
					}
					tm, err := trial.Machine(machineID)
					if err != nil {
						return err
					}
					if err := trial.Schedule(b, tm); err != nil {
						return err
					}
					return trial.Schedule(a, tm)
				})
			}
		}
	}
	return moves
}

// Size returns the number of moves from s.
func (n *OperationOrder) Size(s *solution.Solution) int { return len(n.moves(s)) }

// BestNeighbor adopts a trial only when it is strictly better than the
// running best, which starts at a copy of s.
func (n *OperationOrder) BestNeighbor(ctx context.Context, s *solution.Solution) (*solution.Solution, error) {
	return n.best(ctx, s, s.Clone(), n.moves(s), func(candidate, best int) bool { return candidate < best })
}

// FirstBetterNeighbor implements Neighborhood.
func (n *OperationOrder) FirstBetterNeighbor(ctx context.Context, s *solution.Solution) (*solution.Solution, error) {
	return n.firstBetter(ctx, s, n.moves(s))
}
