// Package solution holds the mutable assignment of an instance: placement
// of operations on machines, derived metrics and the feasibility check used
// by the search code.
package solution

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kilianp07/greenshop/core/model"
)

// Infeasible is the evaluation of a solution that leaves an operation
// unassigned.
const Infeasible = math.MaxInt

// Solution owns a private copy of the instance arena. Every schedule change
// goes through its operations and machines, never through the instance.
type Solution struct {
	inst  *model.Instance
	graph *model.Graph
}

// New returns an empty solution for inst.
func New(inst *model.Instance) *Solution {
	return &Solution{inst: inst, graph: inst.NewGraph()}
}

// Clone deep-copies the schedule state. The instance is shared.
func (s *Solution) Clone() *Solution {
	return &Solution{inst: s.inst, graph: s.graph.Clone()}
}

// Instance returns the shared instance. Jobs and Machines expose the
// solution's own arena.
func (s *Solution) Instance() *model.Instance  { return s.inst }
func (s *Solution) Jobs() []*model.Job         { return s.graph.Jobs }
func (s *Solution) Machines() []*model.Machine { return s.graph.Machines }

// AllOperations lists every operation of the solution in instance order.
func (s *Solution) AllOperations() []*model.Operation { return s.graph.Operations }

// Machine, Job, Operation and OperationByID look up this solution's copies
// by id and fail on unknown ids.
func (s *Solution) Machine(id int) (*model.Machine, error) { return s.graph.Machine(id) }
func (s *Solution) Job(id int) (*model.Job, error)         { return s.graph.Job(id) }

func (s *Solution) Operation(jobID, operationID int) (*model.Operation, error) {
	return s.graph.Operation(jobID, operationID)
}

func (s *Solution) OperationByID(operationID int) (*model.Operation, error) {
	return s.graph.OperationByID(operationID)
}

// Lookup returns this solution's copy of an operation taken from another
// solution or from the instance.
func (s *Solution) Lookup(op *model.Operation) *model.Operation {
	return s.graph.Operations[op.Index()]
}

// AvailableOperations returns, per job, the first unassigned operation when
// it may be scheduled now. A job head is always eligible. Any other
// operation needs an assigned predecessor ending no later than the largest
// available time over all machines; the bound is global, not the target
// machine's.
func (s *Solution) AvailableOperations() []*model.Operation {
	bound := 0
	for _, m := range s.graph.Machines {
		bound = max(bound, m.AvailableTime())
	}
	var out []*model.Operation
	for _, j := range s.graph.Jobs {
		ops := j.Operations()
		for i, op := range ops {
			if op.Assigned() {
				continue
			}
			if i == 0 {
				out = append(out, op)
			} else if prev := ops[i-1]; prev.Assigned() && prev.EndTime() <= bound {
				out = append(out, op)
			}
			break
		}
	}
	return out
}

// IsAvailable reports whether op is in AvailableOperations.
func (s *Solution) IsAvailable(op *model.Operation) bool {
	return slices.Contains(s.AvailableOperations(), op)
}

// Schedule places an available operation on machine m as early as the
// machine and precedence allow, switching the machine on when needed. A
// placement that would end after the machine horizon is refused with
// model.ErrHorizonExceeded and leaves the solution unchanged.
func (s *Solution) Schedule(op *model.Operation, m *model.Machine) error {
	const name = "solution schedule"
	if !s.graph.Own(op) {
		return model.NewError(model.UnknownEntity, name, "%s does not belong to this solution", op)
	}
	if own, err := s.graph.Machine(m.ID()); err != nil || own != m {
		return model.NewError(model.UnknownEntity, name, "M%d does not belong to this solution", m.ID())
	}
	if op.Assigned() {
		return model.NewError(model.AlreadyAssigned, name, "%s", op)
	}
	duration, ok := op.ProcessingTimeOn(m.ID())
	if !ok {
		return model.NewError(model.IncompatibleMachine, name, "%s cannot run on M%d", op, m.ID())
	}
	if !s.IsAvailable(op) {
		return model.NewError(model.PrecedenceViolation, name, "%s is not available", op)
	}

	minStart := op.MinStartTime()
	start := max(m.AvailableTime(), minStart)
	startUp, needStart := 0, false
	if !m.Covers(start, start+duration) {
		if open, running := m.OpenStart(); running {
			start = max(start, open+m.SetupTime())
		} else {
			startUp = max(0, minStart-m.SetupTime())
			if last, stopped := m.LastStop(); stopped {
				startUp = max(startUp, last+m.TeardownTime())
			}
			needStart = true
			start = max(m.AvailableTime(), startUp+m.SetupTime())
		}
	}
	if start+duration > m.EndTime() {
		return model.NewError(model.HorizonExceeded, name,
			"%s on M%d would end at %d after %d", op, m.ID(), start+duration, m.EndTime())
	}
	if needStart {
		if err := m.Start(startUp); err != nil {
			return err
		}
	}
	if _, err := m.AddOperation(op, start); err != nil {
		return err
	}
	if j, err := s.graph.Job(op.JobID()); err == nil && j.NextOperation() == op {
		j.ScheduleOperation()
	}
	return nil
}

// MustSchedule is Schedule that panics on error.
func (s *Solution) MustSchedule(op *model.Operation, m *model.Machine) {
	if err := s.Schedule(op, m); err != nil {
		panic(err)
	}
}

// Unschedule takes op off its machine, clears its record and rewinds the
// job cursor.
func (s *Solution) Unschedule(op *model.Operation) error {
	const name = "solution unschedule"
	if !s.graph.Own(op) {
		return model.NewError(model.UnknownEntity, name, "%s does not belong to this solution", op)
	}
	if !op.Assigned() {
		return nil
	}
	m, err := s.graph.Machine(op.AssignedTo())
	if err != nil {
		return err
	}
	if err := m.RemoveOperation(op); err != nil {
		return err
	}
	op.Reset()
	if j, err := s.graph.Job(op.JobID()); err == nil {
		j.Rewind(op)
	}
	return nil
}

// Reset clears every operation record. Machines keep their history, so the
// schedule is stale and Objective reports Infeasible until ResetAll runs.
func (s *Solution) Reset() {
	for _, op := range s.graph.Operations {
		op.Reset()
	}
}

// ResetAll clears operations, machines and job cursors.
func (s *Solution) ResetAll() { s.graph.Reset() }

// IsFeasible reports whether every operation is assigned.
func (s *Solution) IsFeasible() bool {
	for _, op := range s.graph.Operations {
		if !op.Assigned() {
			return false
		}
	}
	return true
}

// Cmax is the latest end over assigned operations.
func (s *Solution) Cmax() int {
	cmax := 0
	for _, op := range s.graph.Operations {
		if op.Assigned() {
			cmax = max(cmax, op.EndTime())
		}
	}
	return cmax
}

// SumCi sums the end times of assigned operations.
func (s *Solution) SumCi() int {
	sum := 0
	for _, op := range s.graph.Operations {
		if op.Assigned() {
			sum += op.EndTime()
		}
	}
	return sum
}

// TotalEnergyConsumption sums the machine energy accounts.
func (s *Solution) TotalEnergyConsumption() int {
	total := 0
	for _, m := range s.graph.Machines {
		total += m.TotalEnergyConsumption()
	}
	return total
}

// MeanProcessingTime is the summed duration of assigned operations divided
// by the number of jobs, rounded down.
func (s *Solution) MeanProcessingTime() int {
	n := len(s.graph.Jobs)
	if n == 0 {
		return 0
	}
	sum := 0
	for _, op := range s.graph.Operations {
		if op.Assigned() {
			sum += op.EndTime() - op.StartTime()
		}
	}
	return sum / n
}

// Objective blends energy, makespan and mean duration. A machine still
// holding a cleared operation makes the state stale and yields Infeasible.
func (s *Solution) Objective() int {
	if s.stale() {
		return Infeasible
	}
	return s.TotalEnergyConsumption() + s.Cmax() + s.MeanProcessingTime()
}

func (s *Solution) stale() bool {
	for _, m := range s.graph.Machines {
		for _, op := range m.ScheduledOperations() {
			if !op.Assigned() {
				return true
			}
		}
	}
	return false
}

// Evaluate is the objective of a feasible solution and Infeasible otherwise.
func (s *Solution) Evaluate() int {
	if !s.IsFeasible() {
		return Infeasible
	}
	return s.Objective()
}

func (s *Solution) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solution(%s)\n", s.inst)
	for _, m := range s.graph.Machines {
		fmt.Fprintf(&b, "  M%d on=%v off=%v:", m.ID(), m.StartTimes(), m.StopTimes())
		for _, op := range m.ScheduledOperations() {
			fmt.Fprintf(&b, " O%d_J%d[%d,%d)", op.ID(), op.JobID(), op.StartTime(), op.EndTime())
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  feasible=%v cmax=%d sum_ci=%d energy=%d mean=%d objective=%d",
		s.IsFeasible(), s.Cmax(), s.SumCi(), s.TotalEnergyConsumption(),
		s.MeanProcessingTime(), s.Objective())
	return b.String()
}
