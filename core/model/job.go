package model

import "fmt"

// Job is a chain of operations. Operation i must end before operation i+1
// starts.
type Job struct {
	id   int
	ops  []*Operation
	next int
}

// NewJob creates an empty job.
func NewJob(jobID int) *Job {
	return &Job{id: jobID}
}

// ID returns the job id.
func (j *Job) ID() int { return j.id }

// AddOperation appends op to the chain and links it to the current tail.
func (j *Job) AddOperation(op *Operation) {
	if n := len(j.ops); n > 0 {
		prev := j.ops[n-1]
		prev.AddSuccessor(op)
		op.AddPredecessor(prev)
	}
	j.ops = append(j.ops, op)
}

// Operations returns the chain in order.
func (j *Job) Operations() []*Operation { return j.ops }

// OperationNb returns the chain length.
func (j *Job) OperationNb() int { return len(j.ops) }

// CompletionTime is the end of the last operation, or 0 while it is unassigned.
func (j *Job) CompletionTime() int {
	if len(j.ops) == 0 {
		return 0
	}
	last := j.ops[len(j.ops)-1]
	if !last.Assigned() {
		return 0
	}
	return last.EndTime()
}

// Planned reports whether every operation of the job is assigned.
func (j *Job) Planned() bool {
	for _, op := range j.ops {
		if !op.Assigned() {
			return false
		}
	}
	return true
}

// NextOperation returns the operation under the cursor, or nil once the
// cursor has passed the tail. The cursor is a hint; availability is decided
// by the solution from operation state.
func (j *Job) NextOperation() *Operation {
	if j.next >= len(j.ops) {
		return nil
	}
	return j.ops[j.next]
}

// ScheduleOperation advances the cursor.
func (j *Job) ScheduleOperation() {
	if j.next < len(j.ops) {
		j.next++
	}
}

// Rewind moves the cursor back to op when op sits before it.
func (j *Job) Rewind(op *Operation) {
	for i, o := range j.ops {
		if o == op {
			if i < j.next {
				j.next = i
			}
			return
		}
	}
}

// Reset moves the cursor to the head. Operation records are left untouched.
func (j *Job) Reset() { j.next = 0 }

func (j *Job) String() string {
	return fmt.Sprintf("J%d(%d ops, next %d)", j.id, len(j.ops), j.next)
}
