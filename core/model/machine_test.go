package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoOpInstance(t *testing.T) *Instance {
	t.Helper()
	inst, err := NewInstance("two", []OperationRow{
		{JobID: 0, OperationID: 0, MachineID: 1, ProcessingTime: 5, Energy: 2},
		{JobID: 0, OperationID: 1, MachineID: 1, ProcessingTime: 7, Energy: 3},
	}, []MachineSpec{
		{ID: 1, SetupEnergy: 2, TeardownEnergy: 4, EndTime: 50},
	})
	require.NoError(t, err)
	return inst
}

func TestMachineEnergyBackToBack(t *testing.T) {
	g := twoOpInstance(t).NewGraph()
	m := g.Machines[0]

	require.NoError(t, m.Start(0))
	_, err := m.AddOperation(g.Operations[0], 0)
	require.NoError(t, err)
	_, err = m.AddOperation(g.Operations[1], 5)
	require.NoError(t, err)
	require.NoError(t, m.Stop(12))

	if m.WorkingTime() != 12 {
		t.Fatalf("expected working time 12 got %d", m.WorkingTime())
	}
	if m.TotalEnergyConsumption() != 11 {
		t.Fatalf("expected energy 11 got %d", m.TotalEnergyConsumption())
	}
	assert.Equal(t, 12, m.AvailableTime())
	assert.Equal(t, []int{0}, m.StartTimes())
	assert.Equal(t, []int{12}, m.StopTimes())
}

func TestMachineImplicitStopAtHorizon(t *testing.T) {
	m := NewMachine(MachineSpec{ID: 3, SetupTime: 2, MinConsumption: 1, EndTime: 40})
	require.NoError(t, m.Start(10))
	assert.True(t, m.Running())
	assert.Equal(t, []int{40}, m.StopTimes())
	assert.True(t, m.IsOn(10))
	assert.True(t, m.IsOn(39))
	assert.False(t, m.IsOn(40))
	assert.False(t, m.IsOn(9))
	// 30 idle units, no starts charged energy
	assert.Equal(t, 30, m.TotalEnergyConsumption())
}

func TestMachineStopErrors(t *testing.T) {
	g := twoOpInstance(t).NewGraph()
	m := g.Machines[0]

	err := m.Stop(5)
	assert.True(t, errors.Is(err, ErrInvalidMachineStop), "stop before start: %v", err)

	require.NoError(t, m.Start(0))
	_, err = m.AddOperation(g.Operations[0], 0)
	require.NoError(t, err)
	err = m.Stop(4)
	assert.ErrorIs(t, err, ErrInvalidMachineStop)
	assert.True(t, m.Running(), "failed stop must not mutate")

	assert.ErrorIs(t, m.Start(1), ErrInvalidMachineStop)
	require.NoError(t, m.Stop(5))
	assert.ErrorIs(t, m.Start(3), ErrInvalidMachineStop)
	require.NoError(t, m.Start(8))
	last, ok := m.LastStop()
	assert.True(t, ok)
	assert.Equal(t, 5, last)
	assert.Equal(t, []int{0, 8}, m.StartTimes())
	assert.Equal(t, []int{5, 50}, m.StopTimes())
}

func TestMachineCovers(t *testing.T) {
	m := NewMachine(MachineSpec{ID: 1, EndTime: 30})
	require.NoError(t, m.Start(0))
	require.NoError(t, m.Stop(10))
	require.NoError(t, m.Start(15))

	assert.True(t, m.Covers(0, 10))
	assert.False(t, m.Covers(8, 12))
	assert.False(t, m.Covers(12, 14))
	assert.True(t, m.Covers(15, 30))
	assert.False(t, m.Covers(20, 31))
}

func TestMachineRemoveOperation(t *testing.T) {
	g := twoOpInstance(t).NewGraph()
	m := g.Machines[0]
	require.NoError(t, m.Start(0))
	_, err := m.AddOperation(g.Operations[1], 5)
	require.NoError(t, err)
	_, err = m.AddOperation(g.Operations[0], 0)
	require.NoError(t, err)

	ops := m.ScheduledOperations()
	require.Len(t, ops, 2)
	assert.Same(t, g.Operations[0], ops[0], "operations kept in start order")

	require.NoError(t, m.RemoveOperation(g.Operations[1]))
	assert.Equal(t, 5, m.AvailableTime())
	assert.Len(t, m.StartTimes(), 1)

	require.NoError(t, m.RemoveOperation(g.Operations[0]))
	assert.Equal(t, 0, m.AvailableTime())
	assert.Empty(t, m.StartTimes())
	assert.False(t, m.Running())
	assert.Equal(t, 0, m.TotalEnergyConsumption())

	assert.ErrorIs(t, m.RemoveOperation(g.Operations[0]), ErrUnknownEntity)
}

func TestMachineReset(t *testing.T) {
	g := twoOpInstance(t).NewGraph()
	m := g.Machines[0]
	require.NoError(t, m.Start(0))
	_, err := m.AddOperation(g.Operations[0], 0)
	require.NoError(t, err)

	m.Reset()
	assert.Empty(t, m.ScheduledOperations())
	assert.Empty(t, m.StartTimes())
	assert.Empty(t, m.StopTimes())
	assert.Equal(t, 0, m.AvailableTime())
	assert.False(t, m.IsOn(0))
}
