package model

import (
	"fmt"
	"slices"
)

// Unassigned is reported by the timing and energy accessors of an operation
// that has no schedule record.
const Unassigned = -1

// ScheduleInfo is the placement of an operation on a machine.
type ScheduleInfo struct {
	MachineID int `json:"machine_id"`
	StartTime int `json:"start_time"`
	Duration  int `json:"duration"`
	Energy    int `json:"energy"`
}

// Operation is the atomic schedulable unit of a job. Its processing time and
// energy depend on the machine it runs on.
//
// The definition part (ids, tables, chain links) is read-only once the
// instance is built and is shared between clones. Only the schedule record
// changes during search.
type Operation struct {
	jobID int
	id    int
	index int

	processingTimes map[int]int
	energies        map[int]int
	machineIDs      []int

	predecessors []*Operation
	successors   []*Operation

	info     ScheduleInfo
	assigned bool
}

// NewOperation creates an operation without machine alternatives.
func NewOperation(jobID, operationID int) *Operation {
	return &Operation{
		jobID:           jobID,
		id:              operationID,
		index:           -1,
		processingTimes: make(map[int]int),
		energies:        make(map[int]int),
	}
}

// SetAlternative registers machineID as able to run the operation.
func (o *Operation) SetAlternative(machineID, processingTime, energy int) {
	if _, ok := o.processingTimes[machineID]; !ok {
		o.machineIDs = append(o.machineIDs, machineID)
		slices.Sort(o.machineIDs)
	}
	o.processingTimes[machineID] = processingTime
	o.energies[machineID] = energy
}

func (o *Operation) String() string {
	base := fmt.Sprintf("O%d_J%d", o.id, o.jobID)
	if o.assigned {
		return base + fmt.Sprintf("_M%d_ci%d_e%d", o.info.MachineID, o.info.Duration, o.info.Energy)
	}
	return base
}

// ID returns the operation id.
func (o *Operation) ID() int { return o.id }

// JobID returns the id of the owning job.
func (o *Operation) JobID() int { return o.jobID }

// Index returns the position of the operation in its graph arena.
func (o *Operation) Index() int { return o.index }

// MachineIDs returns the ids of the machines able to run the operation, ascending.
func (o *Operation) MachineIDs() []int { return o.machineIDs }

// CanRunOn reports whether machineID has an entry in the processing table.
func (o *Operation) CanRunOn(machineID int) bool {
	_, ok := o.processingTimes[machineID]
	return ok
}

// ProcessingTimeOn returns the table processing time on machineID.
func (o *Operation) ProcessingTimeOn(machineID int) (int, bool) {
	v, ok := o.processingTimes[machineID]
	return v, ok
}

// EnergyOn returns the table energy on machineID.
func (o *Operation) EnergyOn(machineID int) (int, bool) {
	v, ok := o.energies[machineID]
	return v, ok
}

// AddPredecessor links op as a predecessor. Only used while building jobs.
func (o *Operation) AddPredecessor(op *Operation) {
	o.predecessors = append(o.predecessors, op)
}

// AddSuccessor links op as a successor. Only used while building jobs.
func (o *Operation) AddSuccessor(op *Operation) {
	o.successors = append(o.successors, op)
}

// Predecessors returns the operations that must end before this one starts.
func (o *Operation) Predecessors() []*Operation { return o.predecessors }

// Successors returns the operations that wait on this one.
func (o *Operation) Successors() []*Operation { return o.successors }

// Reset clears the schedule record.
func (o *Operation) Reset() {
	o.info = ScheduleInfo{}
	o.assigned = false
}

// Assigned reports whether the operation has a schedule record.
func (o *Operation) Assigned() bool { return o.assigned }

// Schedule returns a copy of the schedule record and whether one exists.
func (o *Operation) Schedule() (ScheduleInfo, bool) { return o.info, o.assigned }

// AssignedTo returns the machine id of the placement, or Unassigned.
func (o *Operation) AssignedTo() int {
	if !o.assigned {
		return Unassigned
	}
	return o.info.MachineID
}

// ProcessingTime returns the duration of the placement, or Unassigned.
func (o *Operation) ProcessingTime() int {
	if !o.assigned {
		return Unassigned
	}
	return o.info.Duration
}

// StartTime returns the start of the placement, or Unassigned.
func (o *Operation) StartTime() int {
	if !o.assigned {
		return Unassigned
	}
	return o.info.StartTime
}

// EndTime returns start plus duration, or Unassigned.
func (o *Operation) EndTime() int {
	if !o.assigned {
		return Unassigned
	}
	return o.info.StartTime + o.info.Duration
}

// Energy returns the energy of the placement, or Unassigned.
func (o *Operation) Energy() int {
	if !o.assigned {
		return Unassigned
	}
	return o.info.Energy
}

// IsReady reports whether every predecessor is assigned and ends at or
// before atTime.
func (o *Operation) IsReady(atTime int) bool {
	if atTime < 0 {
		return false
	}
	for _, p := range o.predecessors {
		if !p.assigned || p.EndTime() > atTime {
			return false
		}
	}
	return true
}

// MinStartTime is the earliest start allowed by precedence alone.
func (o *Operation) MinStartTime() int {
	start := 0
	for i, p := range o.predecessors {
		if i == 0 || p.EndTime() > start {
			start = p.EndTime()
		}
	}
	return start
}

// ScheduleOn commits a placement on machineID at atTime. With checkSuccess
// the call fails without mutation when the operation is not ready at atTime.
func (o *Operation) ScheduleOn(machineID, atTime int, checkSuccess bool) error {
	const op = "operation schedule"
	if o.assigned {
		return newError(AlreadyAssigned, op, "%s is already on M%d", o, o.info.MachineID)
	}
	duration, ok := o.processingTimes[machineID]
	if !ok {
		return newError(IncompatibleMachine, op, "O%d_J%d cannot run on M%d", o.id, o.jobID, machineID)
	}
	if checkSuccess && !o.IsReady(atTime) {
		return newError(PrecedenceViolation, op, "O%d_J%d is not ready at %d", o.id, o.jobID, atTime)
	}
	o.info = ScheduleInfo{
		MachineID: machineID,
		StartTime: atTime,
		Duration:  duration,
		Energy:    o.energies[machineID],
	}
	o.assigned = true
	return nil
}

// ScheduleAtMinTime places the operation at the later of minTime and its
// precedence bound, skipping the readiness check. The caller guarantees
// that the predecessors are placed.
func (o *Operation) ScheduleAtMinTime(machineID, minTime int) error {
	return o.ScheduleOn(machineID, max(minTime, o.MinStartTime()), false)
}
