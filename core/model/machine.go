package model

import (
	"fmt"
	"slices"
)

// MachineSpec is the static description of a machine.
type MachineSpec struct {
	ID             int `json:"machine_id"`
	SetupTime      int `json:"set_up_time"`
	SetupEnergy    int `json:"set_up_energy"`
	TeardownTime   int `json:"tear_down_time"`
	TeardownEnergy int `json:"tear_down_energy"`
	MinConsumption int `json:"min_consumption"`
	EndTime        int `json:"end_time"`
}

// Machine is a serial resource with an on/off lifecycle.
//
// starts and stops always have the same length. Start records an implicit
// stop at the horizon and marks the machine running; Stop replaces that
// implicit stop with an explicit one.
type Machine struct {
	spec MachineSpec

	ops       []*Operation
	starts    []int
	stops     []int
	running   bool
	available int
}

// NewMachine creates a machine in the never-started state.
func NewMachine(spec MachineSpec) *Machine {
	return &Machine{spec: spec}
}

func (m *Machine) String() string {
	return fmt.Sprintf("M%d(setup %d/%d, teardown %d/%d, idle %d, end %d)",
		m.spec.ID, m.spec.SetupTime, m.spec.SetupEnergy,
		m.spec.TeardownTime, m.spec.TeardownEnergy,
		m.spec.MinConsumption, m.spec.EndTime)
}

// ID and the accessors below return the static parameters of the machine.
func (m *Machine) ID() int             { return m.spec.ID }
func (m *Machine) Spec() MachineSpec   { return m.spec }
func (m *Machine) SetupTime() int      { return m.spec.SetupTime }
func (m *Machine) SetupEnergy() int    { return m.spec.SetupEnergy }
func (m *Machine) TeardownTime() int   { return m.spec.TeardownTime }
func (m *Machine) TeardownEnergy() int { return m.spec.TeardownEnergy }
func (m *Machine) MinConsumption() int { return m.spec.MinConsumption }
func (m *Machine) EndTime() int        { return m.spec.EndTime }

// AvailableTime is the earliest time the machine can take a new operation.
// Running reports whether the machine is on after its last placement.
// StartTimes, StopTimes and ScheduledOperations return copies of the
// schedule, in placement order.
func (m *Machine) AvailableTime() int                { return m.available }
func (m *Machine) Running() bool                     { return m.running }
func (m *Machine) StartTimes() []int                 { return slices.Clone(m.starts) }
func (m *Machine) StopTimes() []int                  { return slices.Clone(m.stops) }
func (m *Machine) ScheduledOperations() []*Operation { return slices.Clone(m.ops) }

// Reset clears the placed operations and the on/off history.
func (m *Machine) Reset() {
	m.ops = m.ops[:0]
	m.starts = m.starts[:0]
	m.stops = m.stops[:0]
	m.running = false
	m.available = 0
}

// Start switches the machine on at atTime.
func (m *Machine) Start(atTime int) error {
	const op = "machine start"
	if m.running {
		return newError(InvalidMachineStop, op, "M%d already running since %d", m.spec.ID, m.starts[len(m.starts)-1])
	}
	if atTime < 0 {
		return newError(InvalidMachineStop, op, "M%d cannot start at %d", m.spec.ID, atTime)
	}
	if n := len(m.stops); n > 0 && atTime < m.stops[n-1] {
		return newError(InvalidMachineStop, op, "M%d start %d before last stop %d", m.spec.ID, atTime, m.stops[n-1])
	}
	m.starts = append(m.starts, atTime)
	m.stops = append(m.stops, max(m.spec.EndTime, atTime))
	m.running = true
	return nil
}

// Stop switches the machine off at atTime. It fails when the machine is not
// running or when atTime is before the end of the last placed operation.
func (m *Machine) Stop(atTime int) error {
	const op = "machine stop"
	if !m.running {
		return newError(InvalidMachineStop, op, "M%d is not running", m.spec.ID)
	}
	if atTime < m.available {
		return newError(InvalidMachineStop, op, "M%d stop %d before available time %d", m.spec.ID, atTime, m.available)
	}
	last := len(m.starts) - 1
	if atTime < m.starts[last] {
		return newError(InvalidMachineStop, op, "M%d stop %d before start %d", m.spec.ID, atTime, m.starts[last])
	}
	m.stops[last] = atTime
	m.running = false
	return nil
}

// IsOn reports whether atTime falls inside a recorded on-interval.
func (m *Machine) IsOn(atTime int) bool {
	for i, s := range m.starts {
		if s <= atTime && atTime < m.stops[i] {
			return true
		}
	}
	return false
}

// Covers reports whether [from, to) lies inside a single on-interval.
func (m *Machine) Covers(from, to int) bool {
	for i, s := range m.starts {
		if s <= from && to <= m.stops[i] && from < m.stops[i] {
			return true
		}
	}
	return false
}

// OpenStart returns the start of the running interval.
func (m *Machine) OpenStart() (int, bool) {
	if !m.running {
		return 0, false
	}
	return m.starts[len(m.starts)-1], true
}

// LastStop returns the last explicit stop.
func (m *Machine) LastStop() (int, bool) {
	n := len(m.stops)
	switch {
	case n == 0:
		return 0, false
	case m.running && n == 1:
		return 0, false
	case m.running:
		return m.stops[n-2], true
	default:
		return m.stops[n-1], true
	}
}

// AddOperation places operation at startTime and returns the start. The
// caller ensures that the machine is on and free at startTime.
func (m *Machine) AddOperation(operation *Operation, startTime int) (int, error) {
	if err := operation.ScheduleOn(m.spec.ID, startTime, false); err != nil {
		return 0, err
	}
	i, _ := slices.BinarySearchFunc(m.ops, startTime, func(o *Operation, t int) int {
		return o.StartTime() - t
	})
	for i < len(m.ops) && m.ops[i].StartTime() == startTime {
		i++
	}
	m.ops = slices.Insert(m.ops, i, operation)
	m.available = max(m.available, operation.EndTime())
	return startTime, nil
}

// RemoveOperation takes operation off the schedule without resetting its
// record. An emptied machine returns to the never-started state.
func (m *Machine) RemoveOperation(operation *Operation) error {
	i := slices.Index(m.ops, operation)
	if i < 0 {
		return newError(UnknownEntity, "machine remove", "%s is not on M%d", operation, m.spec.ID)
	}
	m.ops = slices.Delete(m.ops, i, i+1)
	if len(m.ops) == 0 {
		m.Reset()
		return nil
	}
	m.available = 0
	for _, o := range m.ops {
		m.available = max(m.available, o.EndTime())
	}
	return nil
}

// WorkingTime is the total length of the on-intervals.
func (m *Machine) WorkingTime() int {
	total := 0
	for i, s := range m.starts {
		total += m.stops[i] - s
	}
	return total
}

// TotalEnergyConsumption charges operation energy, one setup per start, one
// teardown per stop and idle power for the on-time not spent processing.
func (m *Machine) TotalEnergyConsumption() int {
	energy, busy := 0, 0
	for _, o := range m.ops {
		energy += o.Energy()
		busy += o.ProcessingTime()
	}
	energy += len(m.starts)*m.spec.SetupEnergy + len(m.stops)*m.spec.TeardownEnergy
	energy += m.spec.MinConsumption * (m.WorkingTime() - busy)
	return energy
}

func (m *Machine) clone(ops []*Operation) *Machine {
	c := &Machine{
		spec:      m.spec,
		starts:    slices.Clone(m.starts),
		stops:     slices.Clone(m.stops),
		running:   m.running,
		available: m.available,
		ops:       make([]*Operation, len(m.ops)),
	}
	for i, o := range m.ops {
		c.ops[i] = ops[o.index]
	}
	return c
}
