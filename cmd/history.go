package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greenshop/core/runlog"
)

var historyOpts struct {
	instance  string
	heuristic string
	runID     string
	since     time.Duration
	limit     int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs from the run log",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyOpts.instance, "instance", "", "only runs on this instance")
	f.StringVar(&historyOpts.heuristic, "heuristic", "", "only runs of this heuristic")
	f.StringVar(&historyOpts.runID, "run-id", "", "a single run")
	f.DurationVar(&historyOpts.since, "since", 0, "only runs younger than this duration")
	f.IntVar(&historyOpts.limit, "limit", 20, "most recent runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RunLog.Backend == "" || cfg.RunLog.Backend == "none" {
		return fmt.Errorf("history: runlog.backend is not configured")
	}
	store, err := runlog.Open(cfg.RunLog)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := runlog.Query{
		Instance:  historyOpts.instance,
		Heuristic: historyOpts.heuristic,
		RunID:     historyOpts.runID,
		Limit:     historyOpts.limit,
	}
	if historyOpts.since > 0 {
		q.Start = time.Now().Add(-historyOpts.since)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(w, "%-36s  %-20s  %-18s  %-20s  %8s  %10s  %10s\n",
		"RUN", "TIME", "HEURISTIC", "INSTANCE", "FEASIBLE", "EVALUATE", "MS"); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "%-36s  %-20s  %-18s  %-20s  %8t  %10d  %10.1f\n",
			r.RunID, r.Timestamp.Format(time.DateTime), r.Heuristic, r.Instance, r.Feasible, r.Evaluate, r.DurationMS); err != nil {
			return err
		}
	}
	return nil
}
