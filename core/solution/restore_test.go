package solution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greenshop/core/model"
)

func TestRestoreReproducesSchedule(t *testing.T) {
	inst := chainInstance(t)
	orig := New(inst)
	schedule(t, orig, 0, 0, 1)
	schedule(t, orig, 0, 1, 0)
	m0, _ := orig.Machine(0)
	require.NoError(t, m0.Stop(m0.AvailableTime()))

	intervals := map[int][]Interval{}
	for _, m := range orig.Machines() {
		starts, stops := m.StartTimes(), m.StopTimes()
		for i := range starts {
			intervals[m.ID()] = append(intervals[m.ID()], Interval{starts[i], stops[i]})
		}
	}
	var placements []Placement
	for _, op := range orig.AllOperations() {
		placements = append(placements, Placement{op.ID(), op.AssignedTo(), op.StartTime()})
	}
	// reverse order must not matter
	placements[0], placements[1] = placements[1], placements[0]

	got, err := Restore(inst, intervals, placements)
	require.NoError(t, err)
	assert.Equal(t, orig.Evaluate(), got.Evaluate())
	assert.Equal(t, orig.String(), got.String())
	for _, j := range got.Jobs() {
		assert.Nil(t, j.NextOperation(), "cursor after the tail")
	}
	rm0, _ := got.Machine(0)
	assert.False(t, rm0.Running())
	rm1, _ := got.Machine(1)
	assert.True(t, rm1.Running(), "interval up to the horizon stays open")
}

func TestRestoreRejectsBrokenInput(t *testing.T) {
	inst := chainInstance(t)
	_, err := Restore(inst, map[int][]Interval{7: {{0, 10}}}, nil)
	assert.ErrorIs(t, err, model.ErrUnknownEntity)

	// op 1 placed before op 0 ends
	_, err = Restore(inst,
		map[int][]Interval{0: {{0, 100}}, 1: {{0, 120}}},
		[]Placement{{0, 1, 20}, {1, 0, 25}})
	assert.ErrorIs(t, err, model.ErrPrecedenceViolation)

	// placement outside every on-interval
	_, err = Restore(inst, nil, []Placement{{0, 1, 20}})
	assert.Error(t, err)

	_, err = Restore(inst, nil, []Placement{{0, 0, 20}})
	assert.ErrorIs(t, err, model.ErrIncompatibleMachine)
}
