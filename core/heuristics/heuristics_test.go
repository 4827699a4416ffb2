package heuristics

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

func greedyInstance(t *testing.T) *model.Instance {
	t.Helper()
	inst, err := model.NewInstance("greedy", []model.OperationRow{
		{JobID: 0, OperationID: 0, MachineID: 0, ProcessingTime: 3, Energy: 2},
		{JobID: 0, OperationID: 0, MachineID: 1, ProcessingTime: 2, Energy: 6},
		{JobID: 0, OperationID: 1, MachineID: 0, ProcessingTime: 4, Energy: 4},
		{JobID: 0, OperationID: 1, MachineID: 1, ProcessingTime: 3, Energy: 1},
		{JobID: 1, OperationID: 2, MachineID: 0, ProcessingTime: 2, Energy: 2},
		{JobID: 1, OperationID: 2, MachineID: 1, ProcessingTime: 5, Energy: 5},
		{JobID: 1, OperationID: 3, MachineID: 1, ProcessingTime: 2, Energy: 2},
	}, []model.MachineSpec{
		{ID: 0, SetupTime: 1, EndTime: 100},
		{ID: 1, SetupTime: 2, EndTime: 100},
	})
	require.NoError(t, err)
	return inst
}

// randomInstance has three jobs of two operations and six machines that can
// run everything, so the random heuristic always finds a free machine.
func randomInstance(t *testing.T) *model.Instance {
	t.Helper()
	var rows []model.OperationRow
	var machines []model.MachineSpec
	for m := 0; m < 6; m++ {
		machines = append(machines, model.MachineSpec{
			ID: m, SetupTime: m, SetupEnergy: 2 * m, TeardownTime: 1, TeardownEnergy: m,
			MinConsumption: m % 2, EndTime: 500,
		})
	}
	for j := 0; j < 3; j++ {
		for o := 0; o < 2; o++ {
			for m := 0; m < 6; m++ {
				rows = append(rows, model.OperationRow{
					JobID: j, OperationID: 2*j + o, MachineID: m,
					ProcessingTime: 3 + (j+o+m)%4, Energy: 1 + (3*m+j)%7,
				})
			}
		}
	}
	inst, err := model.NewInstance("random", rows, machines)
	require.NoError(t, err)
	return inst
}

func machineOf(t *testing.T, s *solution.Solution, jobID, opID int) int {
	t.Helper()
	op, err := s.Operation(jobID, opID)
	require.NoError(t, err)
	return op.AssignedTo()
}

func TestGreedyPicksStaticCheapest(t *testing.T) {
	s, err := Greedy{}.Run(context.Background(), greedyInstance(t))
	require.NoError(t, err)

	assert.Equal(t, 0, machineOf(t, s, 0, 0))
	assert.Equal(t, 1, machineOf(t, s, 0, 1))
	assert.Equal(t, 0, machineOf(t, s, 1, 2))
	assert.Equal(t, 1, machineOf(t, s, 1, 3))

	require.True(t, s.IsFeasible())
	require.NoError(t, s.Violations())
	assert.Equal(t, 9, s.Cmax())
	assert.Equal(t, 7, s.TotalEnergyConsumption())
	assert.Equal(t, 5, s.MeanProcessingTime())
	assert.Equal(t, 21, s.Evaluate())
}

func TestGreedyIsDeterministic(t *testing.T) {
	inst := randomInstance(t)
	a, err := Greedy{}.Run(context.Background(), inst)
	require.NoError(t, err)
	b, err := Greedy{}.Run(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, a.Evaluate(), b.Evaluate())
}

func TestGreedyLeavesBlockedOperation(t *testing.T) {
	inst := model.MustInstance("blocked", []model.OperationRow{
		{JobID: 0, OperationID: 0, MachineID: 0, ProcessingTime: 1, Energy: 1},
		{JobID: 0, OperationID: 0, MachineID: 1, ProcessingTime: 5, Energy: 5},
		{JobID: 0, OperationID: 1, MachineID: 1, ProcessingTime: 1, Energy: 1},
	}, []model.MachineSpec{
		{ID: 0, SetupTime: 4, EndTime: 3},
		{ID: 1, EndTime: 50},
	})
	s, err := Greedy{}.Run(context.Background(), inst)
	require.NoError(t, err)
	assert.False(t, s.IsFeasible())
	assert.Equal(t, solution.Infeasible, s.Evaluate())
	op, _ := s.Operation(0, 1)
	assert.False(t, op.Assigned(), "successor of a skipped head is not available")
}

func TestCheapestMachineTie(t *testing.T) {
	op := model.NewOperation(0, 0)
	op.SetAlternative(4, 2, 3)
	op.SetAlternative(2, 3, 2)
	op.SetAlternative(7, 9, 9)
	assert.Equal(t, 2, CheapestMachine(op))
}

func TestNonDeterministicNilRand(t *testing.T) {
	_, err := NewNonDeterministic(nil)
	assert.Error(t, err)
	_, err = (&NonDeterministic{}).Run(context.Background(), randomInstance(t))
	assert.Error(t, err)
}

func TestNonDeterministicRunsDiffer(t *testing.T) {
	inst := randomInstance(t)
	seen := make(map[int]bool)
	for seed := int64(1); seed <= 20; seed++ {
		h, err := NewNonDeterministic(rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		s, err := h.Run(context.Background(), inst)
		require.NoError(t, err)
		require.True(t, s.IsFeasible(), "seed %d", seed)
		require.NoError(t, s.Violations(), "seed %d", seed)
		seen[s.Evaluate()] = true
	}
	assert.Greater(t, len(seen), 1, "independent runs must be able to differ")
}

func TestNonDeterministicSeedReproducible(t *testing.T) {
	inst := randomInstance(t)
	run := func() int {
		h, err := NewNonDeterministic(Config{Seed: 42}.NewRand())
		require.NoError(t, err)
		s, err := h.Run(context.Background(), inst)
		require.NoError(t, err)
		return s.Evaluate()
	}
	assert.Equal(t, run(), run())
}

func TestRunHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := Greedy{}.Run(ctx, greedyInstance(t))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, s)
	assert.False(t, s.IsFeasible())
}
