package localsearch

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greenshop/core/events"
	"github.com/kilianp07/greenshop/core/heuristics"
	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/neighborhood"
)

type recorder struct {
	mu     sync.Mutex
	events []events.SearchEvent
}

func (r *recorder) Publish(e events.SearchEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) kinds() []events.SearchKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.SearchKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func testInstance(t *testing.T) *model.Instance {
	t.Helper()
	var rows []model.OperationRow
	var machines []model.MachineSpec
	for m := 0; m < 6; m++ {
		machines = append(machines, model.MachineSpec{
			ID: m, SetupTime: 1 + m%3, SetupEnergy: m, TeardownTime: 1, TeardownEnergy: 1,
			MinConsumption: m % 2, EndTime: 400,
		})
	}
	for j := 0; j < 3; j++ {
		for o := 0; o < 2; o++ {
			for m := 0; m < 6; m++ {
				rows = append(rows, model.OperationRow{
					JobID: j, OperationID: 2*j + o, MachineID: m,
					ProcessingTime: 2 + (2*j+o+m)%5, Energy: 1 + (4*m+j+2*o)%9,
				})
			}
		}
	}
	return model.MustInstance("ls", rows, machines)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{MaxIterations: -1}.Validate())
	assert.Error(t, Config{TimeBudgetSeconds: -1}.Validate())
	assert.Error(t, Config{Workers: -2}.Validate())
	_, err := NewFirstImprovement(DefaultConfig(), nil)
	assert.Error(t, err)
	_, err = NewBestOfNeighborhoods(Config{MaxIterations: -1}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestFirstImprovementReachesLocalOptimum(t *testing.T) {
	inst := testInstance(t)
	for seed := int64(1); seed <= 4; seed++ {
		fi, err := NewFirstImprovement(DefaultConfig(), rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		rec := &recorder{}
		fi.SetPublisher(rec)
		fi.SetRunID("run-1")

		res, err := fi.Search(context.Background(), inst)
		require.NoError(t, err)
		require.True(t, res.Solution.IsFeasible())
		require.NoError(t, res.Solution.Violations())
		assert.LessOrEqual(t, res.Evaluate, res.Initial)
		assert.Equal(t, StopLocalOptimum, res.Stop)
		assert.Positive(t, res.Evaluations)

		again, err := neighborhood.NewMachineSwitch(neighborhood.Options{}).
			FirstBetterNeighbor(context.Background(), res.Solution)
		require.NoError(t, err)
		assert.Same(t, res.Solution, again, "no improving switch left")

		kinds := rec.kinds()
		require.Len(t, kinds, res.Iterations+2)
		assert.Equal(t, events.SearchStarted, kinds[0])
		assert.Equal(t, events.SearchFinished, kinds[len(kinds)-1])
		assert.Equal(t, "run-1", rec.events[0].RunID)
		assert.Equal(t, "first-improvement", rec.events[0].Heuristic)
	}
}

func TestFirstImprovementIterationBudget(t *testing.T) {
	inst := testInstance(t)
	fi, err := NewFirstImprovement(Config{MaxIterations: 1}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	fi.SetInitial(heuristics.Greedy{})
	res, err := fi.Search(context.Background(), inst)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, 1)
	if res.Iterations == 1 {
		assert.Equal(t, StopMaxIterations, res.Stop)
	}
}

func TestFirstImprovementCancelled(t *testing.T) {
	fi, err := NewFirstImprovement(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fi.Run(ctx, testInstance(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBestOfMatchesBothNeighborhoods(t *testing.T) {
	inst := testInstance(t)
	initial, err := heuristics.Greedy{}.Run(context.Background(), inst)
	require.NoError(t, err)
	require.True(t, initial.IsFeasible())

	ms, err := neighborhood.NewMachineSwitch(neighborhood.Options{}).BestNeighbor(context.Background(), initial.Clone())
	require.NoError(t, err)
	oo, err := neighborhood.NewOperationOrder(neighborhood.Options{}).BestNeighbor(context.Background(), initial.Clone())
	require.NoError(t, err)

	for _, workers := range []int{1, 3} {
		bo, err := NewBestOfNeighborhoods(Config{Workers: workers}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		bo.SetInitial(heuristics.Greedy{})
		rec := &recorder{}
		bo.SetPublisher(rec)

		res, err := bo.Search(context.Background(), inst)
		require.NoError(t, err)
		assert.Equal(t, initial.Evaluate(), res.Initial)
		assert.Equal(t, min(ms.Evaluate(), oo.Evaluate()), res.Evaluate)
		assert.Equal(t, StopSingleShot, res.Stop)
		assert.True(t, res.Solution.IsFeasible())
		assert.NoError(t, res.Solution.Violations())
		if oo.Evaluate() < ms.Evaluate() {
			assert.Equal(t, "operation-order", res.Neighborhood)
		} else {
			assert.Equal(t, "machine-switch", res.Neighborhood)
		}
		kinds := rec.kinds()
		assert.Equal(t, events.SearchStarted, kinds[0])
		assert.Equal(t, events.SearchFinished, kinds[len(kinds)-1])
	}
}

func TestBestOfRandomStart(t *testing.T) {
	bo, err := NewBestOfNeighborhoods(DefaultConfig(), rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	sol, err := bo.Run(context.Background(), testInstance(t))
	require.NoError(t, err)
	assert.True(t, sol.IsFeasible())
	assert.Equal(t, "best-of", bo.Name())
}

func TestExecute(t *testing.T) {
	inst := testInstance(t)
	res, err := Execute(context.Background(), heuristics.Greedy{}, inst)
	require.NoError(t, err)
	require.NotNil(t, res.Solution)
	assert.Equal(t, res.Solution.Evaluate(), res.Evaluate)
	assert.Equal(t, res.Initial, res.Evaluate)
	assert.Zero(t, res.Iterations)

	fi, err := NewFirstImprovement(DefaultConfig(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	res, err = Execute(context.Background(), fi, inst)
	require.NoError(t, err)
	assert.Equal(t, StopLocalOptimum, res.Stop)
}
