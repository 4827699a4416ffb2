package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/greenshop/config"
	"github.com/kilianp07/greenshop/core/events"
	"github.com/kilianp07/greenshop/core/factory"
	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/runlog"
)

func testInstance() *model.Instance {
	var rows []model.OperationRow
	var machines []model.MachineSpec
	for m := 0; m < 6; m++ {
		machines = append(machines, model.MachineSpec{
			ID: m, SetupTime: 1 + m%2, SetupEnergy: 2, TeardownTime: 1, TeardownEnergy: 1,
			MinConsumption: m % 2, EndTime: 300,
		})
	}
	for j := 0; j < 2; j++ {
		for o := 0; o < 2; o++ {
			for m := 0; m < 6; m++ {
				rows = append(rows, model.OperationRow{
					JobID: j, OperationID: 2*j + o, MachineID: m,
					ProcessingTime: 2 + (j+o+m)%4, Energy: 1 + (3*m+j+o)%7,
				})
			}
		}
	}
	return model.MustInstance("app", rows, machines)
}

func testConfig(t *testing.T, heuristic string, runs int) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Search.Heuristic = factory.ModuleConfig{Type: heuristic}
	cfg.Search.Runs = runs
	cfg.Search.Seed = 11
	cfg.RunLog = runlog.Config{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "runs.jsonl")}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	return cfg
}

func TestSolveRecordsEveryRun(t *testing.T) {
	svc, err := New(testConfig(t, "first-improvement", 3))
	require.NoError(t, err)
	sub := svc.Bus().SubscribeBuffered(1024)
	svc.Start(context.Background())

	out, err := svc.Solve(context.Background(), testInstance())
	require.NoError(t, err)
	require.Len(t, out.Runs, 3)
	require.NotNil(t, out.Best)
	assert.True(t, out.Best.IsFeasible())
	assert.NoError(t, out.Best.Violations())
	for _, r := range out.Runs {
		assert.GreaterOrEqual(t, r.Evaluate, out.BestRun.Evaluate)
		assert.Equal(t, "first-improvement", r.Heuristic)
		assert.NotEmpty(t, r.RunID)
	}
	assert.Equal(t, []int64{11, 12, 13}, []int64{out.Runs[0].Seed, out.Runs[1].Seed, out.Runs[2].Seed})

	hist, err := svc.History(context.Background(), runlog.Query{Heuristic: "first-improvement"})
	require.NoError(t, err)
	assert.Len(t, hist, 3)

	require.NoError(t, svc.Close())
	starts := 0
	for ev := range sub {
		if ev.Kind == events.SearchStarted {
			starts++
		}
	}
	assert.Equal(t, 3, starts)
}

func TestSolveIsReproducible(t *testing.T) {
	eval := func() int {
		svc, err := New(testConfig(t, "best-of", 1))
		require.NoError(t, err)
		defer func() { _ = svc.Close() }()
		out, err := svc.Solve(context.Background(), testInstance())
		require.NoError(t, err)
		return out.Best.Evaluate()
	}
	assert.Equal(t, eval(), eval())
}

func TestSolveUnknownHeuristic(t *testing.T) {
	svc, err := New(testConfig(t, "tabu", 1))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	_, err = svc.Solve(context.Background(), testInstance())
	assert.ErrorContains(t, err, "unknown module type tabu")
}

func TestSolveCancelled(t *testing.T) {
	svc, err := New(testConfig(t, "greedy", 2))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Solve(ctx, testInstance())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBench(t *testing.T) {
	svc, err := New(testConfig(t, "best-of", 2))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	recs, err := svc.Bench(context.Background(), testInstance(), []string{"greedy", "first-improvement", "best-of"})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Equal(t, 2, r.Runs)
		assert.Equal(t, "app", r.Instance)
	}
	assert.Equal(t, "greedy", recs[0].Heuristic)
	assert.Equal(t, 0.0, recs[0].EvaluateStd, "greedy is deterministic")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Runs = 0
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err = New(cfg)
	assert.Error(t, err)
}
