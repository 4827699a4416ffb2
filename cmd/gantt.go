package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/greenshop/core/solution"
	"github.com/kilianp07/greenshop/infra/instanceio"
	"github.com/kilianp07/greenshop/pkg/export"
	"github.com/kilianp07/greenshop/pkg/gantt"
)

var ganttOut string

var ganttCmd = &cobra.Command{
	Use:   "gantt <instances-dir> <name> <solution-dir>",
	Short: "Render a saved solution as an HTML Gantt chart",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := instanceio.Load(args[0], args[1])
		if err != nil {
			return err
		}
		sol, err := export.LoadSolution(args[2], inst)
		if err != nil {
			return err
		}
		path := ganttOut
		if path == "" {
			path = filepath.Join(args[2], inst.Name()+"_gantt.html")
		}
		if err := writeGantt(path, sol); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func init() {
	ganttCmd.Flags().StringVarP(&ganttOut, "out", "o", "", "output file (default <solution-dir>/<name>_gantt.html)")
	rootCmd.AddCommand(ganttCmd)
}

func writeGantt(path string, s *solution.Solution) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gantt: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return gantt.Render(f, s)
}
