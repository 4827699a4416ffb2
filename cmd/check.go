package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greenshop/infra/instanceio"
	"github.com/kilianp07/greenshop/pkg/export"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check <instances-dir> <name> <solution-dir>",
	Short: "Replay a saved solution and report its objective",
	Long:  "Loads the operations and machines CSV files of a solution, replays them on the instance and fails on any schedule violation.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := instanceio.Load(args[0], args[1])
		if err != nil {
			return err
		}
		sol, err := export.LoadSolution(args[2], inst)
		if err != nil {
			return fmt.Errorf("check %s: %w", inst.Name(), err)
		}
		return export.WriteSummary(cmd.OutOrStdout(), export.Summarize(sol), checkFormat)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "json", "summary format: json or yaml")
	rootCmd.AddCommand(checkCmd)
}
