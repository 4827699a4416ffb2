package model

import (
	"errors"
	"fmt"
	"sort"
)

// OperationRow is one line of the operations table: the cost of running an
// operation on one machine.
type OperationRow struct {
	JobID          int `json:"job_id"`
	OperationID    int `json:"operation_id"`
	MachineID      int `json:"machine_id"`
	ProcessingTime int `json:"processing_time"`
	Energy         int `json:"energy"`
}

// Instance is the immutable problem definition. Solutions work on clones of
// its template graph; the template itself is never scheduled.
type Instance struct {
	name     string
	template *Graph
}

// NewInstance validates the rows and builds the arena. Jobs, machines and
// operations are ordered by id; operations of a job are chained in
// increasing operation id.
func NewInstance(name string, opRows []OperationRow, machRows []MachineSpec) (*Instance, error) {
	const op = "new instance"
	var errs []error

	machines := make([]*Machine, 0, len(machRows))
	seenMach := make(map[int]bool, len(machRows))
	for _, r := range machRows {
		if seenMach[r.ID] {
			errs = append(errs, newError(InvalidInstance, op, "duplicate machine %d", r.ID))
			continue
		}
		if r.SetupTime < 0 || r.SetupEnergy < 0 || r.TeardownTime < 0 ||
			r.TeardownEnergy < 0 || r.MinConsumption < 0 || r.EndTime < 0 {
			errs = append(errs, newError(InvalidInstance, op, "machine %d has a negative attribute", r.ID))
			continue
		}
		seenMach[r.ID] = true
		machines = append(machines, NewMachine(r))
	}
	sort.Slice(machines, func(a, b int) bool { return machines[a].ID() < machines[b].ID() })

	byKey := make(map[opKey]*Operation)
	jobsByID := make(map[int][]*Operation)
	for _, r := range opRows {
		if !seenMach[r.MachineID] {
			errs = append(errs, newError(UnknownEntity, op, "operation O%d_J%d references machine %d", r.OperationID, r.JobID, r.MachineID))
			continue
		}
		if r.ProcessingTime < 0 || r.Energy < 0 {
			errs = append(errs, newError(InvalidInstance, op, "operation O%d_J%d has a negative cost on M%d", r.OperationID, r.JobID, r.MachineID))
			continue
		}
		k := opKey{r.JobID, r.OperationID}
		o, ok := byKey[k]
		if !ok {
			o = NewOperation(r.JobID, r.OperationID)
			byKey[k] = o
			jobsByID[r.JobID] = append(jobsByID[r.JobID], o)
		} else if o.CanRunOn(r.MachineID) {
			errs = append(errs, newError(InvalidInstance, op, "duplicate row for O%d_J%d on M%d", r.OperationID, r.JobID, r.MachineID))
			continue
		}
		o.SetAlternative(r.MachineID, r.ProcessingTime, r.Energy)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	jobIDs := make([]int, 0, len(jobsByID))
	for id := range jobsByID {
		jobIDs = append(jobIDs, id)
	}
	sort.Ints(jobIDs)

	jobs := make([]*Job, 0, len(jobIDs))
	ops := make([]*Operation, 0, len(byKey))
	for _, id := range jobIDs {
		chain := jobsByID[id]
		sort.Slice(chain, func(a, b int) bool { return chain[a].id < chain[b].id })
		j := NewJob(id)
		for _, o := range chain {
			j.AddOperation(o)
			ops = append(ops, o)
		}
		jobs = append(jobs, j)
	}
	return &Instance{name: name, template: newGraph(jobs, machines, ops)}, nil
}

// MustInstance is NewInstance for fixtures; it panics on error.
func MustInstance(name string, opRows []OperationRow, machRows []MachineSpec) *Instance {
	inst, err := NewInstance(name, opRows, machRows)
	if err != nil {
		panic(err)
	}
	return inst
}

func (i *Instance) Name() string { return i.name }

// Jobs, Machines and Operations expose the template arena. Callers must
// not schedule on them; use a solution instead.
func (i *Instance) Jobs() []*Job             { return i.template.Jobs }
func (i *Instance) Machines() []*Machine     { return i.template.Machines }
func (i *Instance) Operations() []*Operation { return i.template.Operations }

func (i *Instance) NbJobs() int       { return len(i.template.Jobs) }
func (i *Instance) NbMachines() int   { return len(i.template.Machines) }
func (i *Instance) NbOperations() int { return len(i.template.Operations) }

func (i *Instance) Machine(id int) (*Machine, error) { return i.template.Machine(id) }
func (i *Instance) Job(id int) (*Job, error)         { return i.template.Job(id) }

func (i *Instance) Operation(jobID, operationID int) (*Operation, error) {
	return i.template.Operation(jobID, operationID)
}

func (i *Instance) OperationByID(operationID int) (*Operation, error) {
	return i.template.OperationByID(operationID)
}

// NewGraph returns a fresh unscheduled copy of the arena.
func (i *Instance) NewGraph() *Graph { return i.template.Clone() }

func (i *Instance) String() string {
	return fmt.Sprintf("%s_M%d_J%d_O%d", i.name, i.NbMachines(), i.NbJobs(), i.NbOperations())
}
