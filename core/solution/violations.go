package solution

import (
	"errors"
	"fmt"

	"github.com/kilianp07/greenshop/core/model"
)

// Violations checks the structural invariants of the schedule and returns
// every breach joined, or nil. Unassigned operations are not a violation.
func (s *Solution) Violations() error {
	const name = "solution check"
	var errs []error

	placed := make(map[*model.Operation]int)
	for _, m := range s.graph.Machines {
		errs = append(errs, machineViolations(m)...)
		for _, op := range m.ScheduledOperations() {
			placed[op] = m.ID()
		}
	}

	for _, op := range s.graph.Operations {
		if !op.Assigned() {
			if _, ok := placed[op]; ok {
				errs = append(errs, fmt.Errorf("%s: %s is on M%d without a record", name, op, placed[op]))
			}
			continue
		}
		mID := op.AssignedTo()
		if on, ok := placed[op]; !ok || on != mID {
			errs = append(errs, fmt.Errorf("%s: %s is not on the schedule of M%d", name, op, mID))
		}
		pt, okT := op.ProcessingTimeOn(mID)
		en, okE := op.EnergyOn(mID)
		if !okT || !okE {
			errs = append(errs, model.NewError(model.IncompatibleMachine, name, "%s", op))
			continue
		}
		if op.ProcessingTime() != pt || op.Energy() != en || op.EndTime() != op.StartTime()+pt {
			errs = append(errs, model.NewError(model.IncompatibleMachine, name,
				"%s does not match the table (%d, %d)", op, pt, en))
		}
	}

	for _, j := range s.graph.Jobs {
		ops := j.Operations()
		for i := 1; i < len(ops); i++ {
			prev, next := ops[i-1], ops[i]
			if prev.Assigned() && next.Assigned() && next.StartTime() < prev.EndTime() {
				errs = append(errs, model.NewError(model.PrecedenceViolation, name,
					"%s starts at %d before %s ends at %d", next, next.StartTime(), prev, prev.EndTime()))
			}
		}
	}
	return errors.Join(errs...)
}

func machineViolations(m *model.Machine) []error {
	const name = "solution check"
	var errs []error
	starts, stops := m.StartTimes(), m.StopTimes()
	if len(starts) != len(stops) {
		return []error{fmt.Errorf("%s: M%d has %d starts and %d stops", name, m.ID(), len(starts), len(stops))}
	}
	for i := range starts {
		if stops[i] < starts[i] || (i > 0 && starts[i] < stops[i-1]) {
			errs = append(errs, fmt.Errorf("%s: M%d interval %d [%d,%d) out of order", name, m.ID(), i, starts[i], stops[i]))
		}
	}
	ops := m.ScheduledOperations()
	for i, op := range ops {
		if i > 0 && op.StartTime() < ops[i-1].EndTime() {
			errs = append(errs, fmt.Errorf("%s: M%d %s overlaps %s", name, m.ID(), op, ops[i-1]))
		}
		if !m.Covers(op.StartTime(), op.EndTime()) {
			errs = append(errs, fmt.Errorf("%s: M%d is off during %s [%d,%d)", name, m.ID(), op, op.StartTime(), op.EndTime()))
		}
	}
	return errs
}

// Consistent reports whether Violations finds nothing.
func (s *Solution) Consistent() bool { return s.Violations() == nil }
