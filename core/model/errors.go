package model

import "fmt"

// ErrorKind classifies failures raised by the scheduling data model.
type ErrorKind int

const (
	// PrecedenceViolation reports an operation placed before its job predecessors allow.
	PrecedenceViolation ErrorKind = iota + 1
	// AlreadyAssigned reports an attempt to schedule an operation twice without a reset.
	AlreadyAssigned
	// InvalidMachineStop reports a stop before the last placed operation ends.
	InvalidMachineStop
	// IncompatibleMachine reports a machine that cannot process the operation.
	IncompatibleMachine
	// HorizonExceeded reports a placement ending after the machine end time.
	HorizonExceeded
	// UnknownEntity reports a lookup of a job, operation or machine that does not exist.
	UnknownEntity
	// InvalidInstance reports malformed instance data.
	InvalidInstance
)

func (k ErrorKind) String() string {
	switch k {
	case PrecedenceViolation:
		return "precedence violation"
	case AlreadyAssigned:
		return "already assigned"
	case InvalidMachineStop:
		return "invalid machine stop"
	case IncompatibleMachine:
		return "incompatible machine"
	case HorizonExceeded:
		return "horizon exceeded"
	case UnknownEntity:
		return "unknown entity"
	case InvalidInstance:
		return "invalid instance"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error is the typed error returned by model and solution operations.
// Two errors match with errors.Is when their kinds are equal.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

// Is reports whether target is a *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrPrecedenceViolation = &Error{Kind: PrecedenceViolation}
	ErrAlreadyAssigned     = &Error{Kind: AlreadyAssigned}
	ErrInvalidMachineStop  = &Error{Kind: InvalidMachineStop}
	ErrIncompatibleMachine = &Error{Kind: IncompatibleMachine}
	ErrHorizonExceeded     = &Error{Kind: HorizonExceeded}
	ErrUnknownEntity       = &Error{Kind: UnknownEntity}
	ErrInvalidInstance     = &Error{Kind: InvalidInstance}
)

func newError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NewError builds a typed error; exported for the solution layer.
func NewError(kind ErrorKind, op, format string, args ...any) error {
	return newError(kind, op, format, args...)
}
