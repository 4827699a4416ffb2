// Package bench repeats heuristics on one instance and aggregates the
// objective and wall time of the runs.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/greenshop/core/heuristics"
	"github.com/kilianp07/greenshop/core/localsearch"
	"github.com/kilianp07/greenshop/core/logger"
	"github.com/kilianp07/greenshop/core/metrics"
	"github.com/kilianp07/greenshop/core/model"
)

// Algorithm builds a fresh heuristic for each run seed.
type Algorithm struct {
	Name    string
	Factory func(seed int64) (heuristics.Heuristic, error)
}

// Record aggregates the runs of one algorithm. Objective statistics only
// cover feasible runs.
type Record struct {
	Heuristic string
	Instance  string
	Runs      int
	Feasible  int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	EvaluateBest int
	EvaluateMean float64
	EvaluateStd  float64
}

// Runner executes Runs seeded runs per algorithm. Run i uses BaseSeed+i.
// Sink failures are logged on Log and do not stop the benchmark.
type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	Sink          metrics.MetricsSink
	Log           logger.Logger
}

// Run benchmarks every algorithm in order.
func (r Runner) Run(ctx context.Context, inst *model.Instance, algos []Algorithm) ([]Record, error) {
	out := make([]Record, 0, len(algos))
	for _, a := range algos {
		rec, err := r.RunAlgorithm(ctx, inst, a)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// RunAlgorithm benchmarks one algorithm. A run cut by PerRunTimeout keeps
// its best-so-far solution; a cancelled ctx aborts the benchmark.
func (r Runner) RunAlgorithm(ctx context.Context, inst *model.Instance, algo Algorithm) (Record, error) {
	if r.Runs <= 0 {
		return Record{}, fmt.Errorf("bench: runs must be > 0 (got %d)", r.Runs)
	}
	sink := r.Sink
	if sink == nil {
		sink = metrics.NopSink{}
	}
	log := logger.OrNop(r.Log)
	evaluates := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)

	for i := 0; i < r.Runs; i++ {
		h, err := algo.Factory(r.BaseSeed + int64(i))
		if err != nil {
			return Record{}, fmt.Errorf("%s run %d: %w", algo.Name, i, err)
		}
		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := localsearch.Execute(runCtx, h, inst)
		sol := res.Solution
		dur := time.Since(start)
		cancel()

		if ctx.Err() != nil {
			return Record{}, fmt.Errorf("%s run %d: %w", algo.Name, i, ctx.Err())
		}
		if err != nil && runCtx.Err() == nil {
			return Record{}, fmt.Errorf("%s run %d: %w", algo.Name, i, err)
		}
		if sol == nil {
			return Record{}, fmt.Errorf("%s run %d: no solution", algo.Name, i)
		}

		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
		if sol.IsFeasible() {
			evaluates = append(evaluates, sol.Evaluate())
		}
		if err := sink.RecordRun(metrics.RunResult{
			Heuristic:          algo.Name,
			Instance:           inst.Name(),
			Evaluate:           sol.Evaluate(),
			Feasible:           sol.IsFeasible(),
			Cmax:               sol.Cmax(),
			Energy:             sol.TotalEnergyConsumption(),
			MeanProcessingTime: float64(sol.MeanProcessingTime()),
			Iterations:         res.Iterations,
			Evaluations:        res.Evaluations,
			Duration:           dur,
			Time:               start,
		}); err != nil {
			log.Warnf("record %s run %d: %v", algo.Name, i, err)
		}
	}

	ev := Summarize(toFloats(evaluates))
	t := Summarize(timesMs)
	return Record{
		Heuristic:    algo.Name,
		Instance:     inst.Name(),
		Runs:         r.Runs,
		Feasible:     len(evaluates),
		TimeBestMs:   t.Best,
		TimeMeanMs:   t.Mean,
		TimeStdMs:    t.Std,
		EvaluateBest: int(ev.Best),
		EvaluateMean: ev.Mean,
		EvaluateStd:  ev.Std,
	}, nil
}
