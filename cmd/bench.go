package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greenshop/app"
	"github.com/kilianp07/greenshop/infra/instanceio"
	"github.com/kilianp07/greenshop/pkg/export"
)

var benchOpts struct {
	heuristics []string
	runs       int
	seed       int64
	out        string
}

var benchCmd = &cobra.Command{
	Use:   "bench <instances-dir> <name>",
	Short: "Compare heuristics over seeded runs and write a CSV report",
	Args:  cobra.ExactArgs(2),
	RunE:  runBench,
}

func init() {
	f := benchCmd.Flags()
	f.StringSliceVar(&benchOpts.heuristics, "heuristics", []string{"greedy", "first-improvement", "best-of"}, "heuristics to compare")
	f.IntVar(&benchOpts.runs, "runs", 10, "runs per heuristic")
	f.Int64Var(&benchOpts.seed, "seed", 0, "base seed, overrides search.seed")
	f.StringVarP(&benchOpts.out, "out", "o", "", "CSV file (stdout when empty)")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Search.Runs = benchOpts.runs
	if cmd.Flags().Changed("seed") {
		cfg.Search.Seed = benchOpts.seed
	}
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

	recs, err := svc.Bench(ctx, inst, benchOpts.heuristics)
	if err != nil {
		return err
	}
	var w io.Writer = cmd.OutOrStdout()
	if benchOpts.out != "" {
		f, err := os.Create(benchOpts.out)
		if err != nil {
			return fmt.Errorf("bench report: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return export.WriteBenchCSV(w, recs)
}
