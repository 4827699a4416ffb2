package neighborhood

import (
	"context"

	"github.com/kilianp07/greenshop/core/solution"
)

// MachineSwitch moves one scheduled operation to another compatible
// machine. Moves are enumerated by operation in instance order, then by
// machine id.
type MachineSwitch struct {
	explorer
}

// NewMachineSwitch returns the neighborhood with the given options.
func NewMachineSwitch(opts Options) *MachineSwitch {
	return &MachineSwitch{explorer: explorer{opts: opts}}
}

func (*MachineSwitch) Name() string { return "machine-switch" }

func (n *MachineSwitch) moves(s *solution.Solution) []move {
	var moves []move
	for _, op := range s.AllOperations() {
		if !op.Assigned() {
			continue
		}
		current := op.AssignedTo()
		for _, mID := range op.MachineIDs() {
			if mID == current {
				continue
			}
			moves = append(moves, func(trial *solution.Solution) error {
				o := trial.Lookup(op)
				if err := trial.Unschedule(o); err != nil {
					return err
				}
				m, err := trial.Machine(mID)
				if err != nil {
					return err
				}
				return trial.Schedule(o, m)
			})
		}
	}
	return moves
}

// Size returns the number of moves from s.
func (n *MachineSwitch) Size(s *solution.Solution) int { return len(n.moves(s)) }

// BestNeighbor keeps the last trial evaluating at or below the running best,
// which starts at s.
func (n *MachineSwitch) BestNeighbor(ctx context.Context, s *solution.Solution) (*solution.Solution, error) {
	// Ties go to the later trial, not the first one found.
	return n.best(ctx, s, s, n.moves(s), func(candidate, best int) bool { return candidate <= best })
}

// FirstBetterNeighbor implements Neighborhood.
func (n *MachineSwitch) FirstBetterNeighbor(ctx context.Context, s *solution.Solution) (*solution.Solution, error) {
	return n.firstBetter(ctx, s, n.moves(s))
}
