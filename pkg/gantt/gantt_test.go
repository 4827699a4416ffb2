package gantt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

func chainSolution(t *testing.T) *solution.Solution {
	t.Helper()
	inst := model.MustInstance("chain", []model.OperationRow{
		{JobID: 0, OperationID: 0, MachineID: 1, ProcessingTime: 12, Energy: 3},
		{JobID: 0, OperationID: 1, MachineID: 0, ProcessingTime: 8, Energy: 4},
	}, []model.MachineSpec{
		{ID: 0, SetupTime: 15, TeardownTime: 2, EndTime: 100},
		{ID: 1, SetupTime: 20, TeardownTime: 3, EndTime: 120},
	})
	s := solution.New(inst)
	for _, ids := range [][3]int{{0, 0, 1}, {0, 1, 0}} {
		op, _ := s.Operation(ids[0], ids[1])
		m, _ := s.Machine(ids[2])
		require.NoError(t, s.Schedule(op, m))
	}
	m0, _ := s.Machine(0)
	require.NoError(t, m0.Stop(40))
	return s
}

func TestRows(t *testing.T) {
	rows := Rows(chainSolution(t))
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].MachineID)
	assert.Equal(t, []Segment{
		{Kind: KindSetup, Label: "set up", JobID: -1, Start: 17, End: 32},
		{Kind: KindOperation, Label: "O1_J0", JobID: 0, Start: 32, End: 40},
		{Kind: KindTeardown, Label: "tear down", JobID: -1, Start: 40, End: 42},
	}, rows[0].Segments)

	require.Len(t, rows[1].Segments, 3)
	assert.Equal(t, "O0_J0", rows[1].Segments[1].Label)
	assert.Equal(t, 20, rows[1].Segments[1].Start)
}

func TestHTML(t *testing.T) {
	page, err := HTML(chainSolution(t))
	require.NoError(t, err)
	assert.True(t, strings.Contains(page, "<html"), "rendered page")
	assert.Contains(t, page, "O1_J0")
	assert.Contains(t, page, "Schedule chain")
}

func TestEmptySolution(t *testing.T) {
	inst := model.MustInstance("empty",
		[]model.OperationRow{{JobID: 0, OperationID: 0, MachineID: 0, ProcessingTime: 1, Energy: 1}},
		[]model.MachineSpec{{ID: 0, EndTime: 10}})
	s := solution.New(inst)
	rows := Rows(s)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Segments)
	_, err := HTML(s)
	assert.NoError(t, err)
}
