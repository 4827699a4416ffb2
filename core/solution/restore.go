package solution

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kilianp07/greenshop/core/model"
)

// Interval is one recorded on-period of a machine.
type Interval struct {
	Start int
	Stop  int
}

// Placement fixes an operation on a machine at a start time.
type Placement struct {
	OperationID int
	MachineID   int
	Start       int
}

// Restore rebuilds a solution from recorded machine intervals and
// placements. Intervals are replayed first; a last interval ending at the
// machine horizon leaves the machine running. Placements are then committed
// without recomputing their start, and the result must pass Violations.
func Restore(inst *model.Instance, intervals map[int][]Interval, placements []Placement) (*Solution, error) {
	const name = "solution restore"
	s := New(inst)
	for id, ivs := range intervals {
		m, err := s.Machine(id)
		if err != nil {
			return nil, err
		}
		for i, iv := range ivs {
			if err := m.Start(iv.Start); err != nil {
				return nil, err
			}
			if i < len(ivs)-1 || iv.Stop != max(m.EndTime(), iv.Start) {
				if err := m.Stop(iv.Stop); err != nil {
					return nil, err
				}
			}
		}
	}

	ordered := slices.Clone(placements)
	slices.SortStableFunc(ordered, func(a, b Placement) int { return cmp.Compare(a.Start, b.Start) })
	for _, p := range ordered {
		op, err := s.OperationByID(p.OperationID)
		if err != nil {
			return nil, err
		}
		m, err := s.Machine(p.MachineID)
		if err != nil {
			return nil, err
		}
		if _, err := m.AddOperation(op, p.Start); err != nil {
			return nil, err
		}
	}
	for _, j := range s.Jobs() {
		j.Reset()
		for next := j.NextOperation(); next != nil && next.Assigned(); next = j.NextOperation() {
			j.ScheduleOperation()
		}
	}
	if err := s.Violations(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}
