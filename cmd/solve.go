package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greenshop/app"
	"github.com/kilianp07/greenshop/config"
	"github.com/kilianp07/greenshop/core/factory"
	"github.com/kilianp07/greenshop/infra/instanceio"
	"github.com/kilianp07/greenshop/pkg/export"
)

var solveOpts struct {
	heuristic string
	runs      int
	seed      int64
	outDir    string
	format    string
	ganttPath string
}

var solveCmd = &cobra.Command{
	Use:   "solve <instances-dir> <name>",
	Short: "Solve an instance and write the best solution as CSV",
	Args:  cobra.ExactArgs(2),
	RunE:  runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.StringVar(&solveOpts.heuristic, "heuristic", "", "heuristic type, overrides search.heuristic.type")
	f.IntVar(&solveOpts.runs, "runs", 0, "number of runs, overrides search.runs")
	f.Int64Var(&solveOpts.seed, "seed", 0, "base seed, overrides search.seed")
	f.StringVarP(&solveOpts.outDir, "out", "o", "solutions", "directory receiving the solution CSV files")
	f.StringVar(&solveOpts.format, "format", "json", "summary format: json or yaml")
	f.StringVar(&solveOpts.ganttPath, "gantt", "", "write an HTML Gantt chart to this file")
	rootCmd.AddCommand(solveCmd)
}

// applySearchFlags copies the flags the user set onto the search section.
func applySearchFlags(cmd *cobra.Command, sc *config.SearchConfig) {
	if cmd.Flags().Changed("heuristic") && solveOpts.heuristic != sc.Heuristic.Type {
		sc.Heuristic = factory.ModuleConfig{Type: solveOpts.heuristic}
	}
	if cmd.Flags().Changed("runs") {
		sc.Runs = solveOpts.runs
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed = solveOpts.seed
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySearchFlags(cmd, &cfg.Search)
	inst, err := instanceio.Load(args[0], args[1])
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)
	svc.Start(ctx)

	out, err := svc.Solve(ctx, inst)
	if err != nil && (out.Best == nil || !errors.Is(err, context.Canceled)) {
		return err
	}
	best := out.Best
	if err := export.SaveSolution(solveOpts.outDir, best); err != nil {
		return fmt.Errorf("save solution: %w", err)
	}
	if solveOpts.ganttPath != "" {
		if err := writeGantt(solveOpts.ganttPath, best); err != nil {
			return err
		}
	}
	sum := export.Summarize(best)
	sum.RunID = out.BestRun.RunID
	sum.Heuristic = out.BestRun.Heuristic
	sum.Extra = map[string]any{
		"runs":        len(out.Runs),
		"iterations":  out.BestRun.Iterations,
		"evaluations": out.BestRun.Evaluations,
		"duration_ms": out.BestRun.DurationMS,
		"stop":        out.BestRun.Stop,
	}
	return export.WriteSummary(cmd.OutOrStdout(), sum, solveOpts.format)
}
