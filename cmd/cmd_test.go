package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	opCSV = `job_id,operation_id,machine_id,processing_time,energy
0,0,0,5,2
0,0,1,3,4
0,1,1,4,1
1,2,0,2,2
`
	machCSV = `machine_id,set_up_time,set_up_energy,tear_down_time,tear_down_energy,min_consumption,end_time
0,1,2,1,1,1,100
1,2,1,1,2,0,100
`
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestSolveCheckGanttHistory(t *testing.T) {
	dir := t.TempDir()
	instances := filepath.Join(dir, "instances")
	require.NoError(t, os.MkdirAll(filepath.Join(instances, "tiny"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(instances, "tiny", "tiny_op.csv"), []byte(opCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(instances, "tiny", "tiny_mach.csv"), []byte(machCSV), 0o644))
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("search:\n  heuristic:\n    type: greedy\nlog:\n  level: error\nrunlog:\n  backend: jsonl\n  path: "+filepath.Join(dir, "runs.jsonl")+"\n"), 0o644))
	solutions := filepath.Join(dir, "solutions")

	out := execute(t, "solve", instances, "tiny", "-c", cfg, "-o", solutions, "--format", "yaml", "--gantt", filepath.Join(dir, "solve.html"))
	assert.Contains(t, out, "instance: tiny")
	assert.Contains(t, out, "feasible: true")
	assert.FileExists(t, filepath.Join(solutions, "tiny_operations.csv"))
	assert.FileExists(t, filepath.Join(solutions, "tiny_machines.csv"))
	assert.FileExists(t, filepath.Join(dir, "solve.html"))

	out = execute(t, "check", instances, "tiny", solutions, "-c", cfg, "--format", "json")
	assert.Contains(t, out, `"feasible": true`)

	html := filepath.Join(dir, "chart", "tiny.html")
	out = execute(t, "gantt", instances, "tiny", solutions, "-o", html)
	assert.Equal(t, html, strings.TrimSpace(out))
	assert.FileExists(t, html)

	out = execute(t, "history", "-c", cfg, "--instance", "tiny")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "greedy")

	report := filepath.Join(dir, "bench.csv")
	execute(t, "bench", instances, "tiny", "-c", cfg, "--runs", "2", "--heuristics", "greedy,best-of", "-o", report)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, rows, 3)
	assert.True(t, strings.HasPrefix(rows[1], "greedy,tiny,2,2,"))

	assert.Contains(t, execute(t, "heuristics"), "first-improvement")
}
