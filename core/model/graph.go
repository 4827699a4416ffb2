package model

import "fmt"

type opKey struct{ job, op int }

// graphIndex maps ids to arena positions. It is built once and shared by
// every clone of a graph.
type graphIndex struct {
	machines map[int]int
	jobs     map[int]int
	ops      map[opKey]int
	opIDs    map[int][]int
}

// Graph is the arena holding the jobs, machines and operations of one
// schedule. Operations link to each other by pointer inside the arena;
// Clone rebuilds those links against fresh copies so two graphs never share
// mutable state.
type Graph struct {
	Jobs       []*Job
	Machines   []*Machine
	Operations []*Operation

	index *graphIndex
}

func newGraph(jobs []*Job, machines []*Machine, ops []*Operation) *Graph {
	idx := &graphIndex{
		machines: make(map[int]int, len(machines)),
		jobs:     make(map[int]int, len(jobs)),
		ops:      make(map[opKey]int, len(ops)),
		opIDs:    make(map[int][]int, len(ops)),
	}
	for i, m := range machines {
		idx.machines[m.ID()] = i
	}
	for i, j := range jobs {
		idx.jobs[j.ID()] = i
	}
	for i, o := range ops {
		o.index = i
		idx.ops[opKey{o.jobID, o.id}] = i
		idx.opIDs[o.id] = append(idx.opIDs[o.id], i)
	}
	return &Graph{Jobs: jobs, Machines: machines, Operations: ops, index: idx}
}

// Clone deep-copies the schedule state. Processing tables are shared.
func (g *Graph) Clone() *Graph {
	ops := make([]*Operation, len(g.Operations))
	for i, o := range g.Operations {
		c := *o
		ops[i] = &c
	}
	for _, c := range ops {
		c.predecessors = remap(c.predecessors, ops)
		c.successors = remap(c.successors, ops)
	}
	jobs := make([]*Job, len(g.Jobs))
	for i, j := range g.Jobs {
		jobs[i] = &Job{id: j.id, next: j.next, ops: remap(j.ops, ops)}
	}
	machines := make([]*Machine, len(g.Machines))
	for i, m := range g.Machines {
		machines[i] = m.clone(ops)
	}
	return &Graph{Jobs: jobs, Machines: machines, Operations: ops, index: g.index}
}

func remap(src, arena []*Operation) []*Operation {
	if src == nil {
		return nil
	}
	out := make([]*Operation, len(src))
	for i, o := range src {
		out[i] = arena[o.index]
	}
	return out
}

// Machine looks a machine up by id.
func (g *Graph) Machine(id int) (*Machine, error) {
	i, ok := g.index.machines[id]
	if !ok {
		return nil, newError(UnknownEntity, "machine lookup", "no machine %d", id)
	}
	return g.Machines[i], nil
}

// Job looks a job up by id.
func (g *Graph) Job(id int) (*Job, error) {
	i, ok := g.index.jobs[id]
	if !ok {
		return nil, newError(UnknownEntity, "job lookup", "no job %d", id)
	}
	return g.Jobs[i], nil
}

// Operation looks an operation up by its (job, operation) identity.
func (g *Graph) Operation(jobID, operationID int) (*Operation, error) {
	i, ok := g.index.ops[opKey{jobID, operationID}]
	if !ok {
		return nil, newError(UnknownEntity, "operation lookup", "no operation O%d_J%d", operationID, jobID)
	}
	return g.Operations[i], nil
}

// OperationByID looks an operation up by operation id alone. It fails when
// the id is used by more than one job.
func (g *Graph) OperationByID(operationID int) (*Operation, error) {
	idx := g.index.opIDs[operationID]
	switch len(idx) {
	case 0:
		return nil, newError(UnknownEntity, "operation lookup", "no operation %d", operationID)
	case 1:
		return g.Operations[idx[0]], nil
	default:
		return nil, newError(InvalidInstance, "operation lookup",
			"operation id %d is shared by %d jobs", operationID, len(idx))
	}
}

// Own reports whether op belongs to this arena.
func (g *Graph) Own(op *Operation) bool {
	return op != nil && op.index >= 0 && op.index < len(g.Operations) && g.Operations[op.index] == op
}

// Reset clears every operation record, machine history and job cursor.
func (g *Graph) Reset() {
	for _, o := range g.Operations {
		o.Reset()
	}
	for _, m := range g.Machines {
		m.Reset()
	}
	for _, j := range g.Jobs {
		j.Reset()
	}
}

func (g *Graph) String() string {
	return fmt.Sprintf("M%d_J%d_O%d", len(g.Machines), len(g.Jobs), len(g.Operations))
}
