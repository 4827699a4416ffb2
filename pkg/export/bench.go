package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kilianp07/greenshop/core/bench"
)

var benchHeader = []string{
	"heuristic", "instance", "runs", "feasible",
	"time_best_ms", "time_mean_ms", "time_std_ms",
	"evaluate_best", "evaluate_mean", "evaluate_std",
}

// WriteBenchCSV writes one row per benchmark record. evaluate_best is empty
// when no run was feasible.
func WriteBenchCSV(w io.Writer, records []bench.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(benchHeader); err != nil {
		return err
	}
	for _, r := range records {
		best := ""
		if r.Feasible > 0 {
			best = strconv.Itoa(r.EvaluateBest)
		}
		row := []string{
			r.Heuristic,
			r.Instance,
			strconv.Itoa(r.Runs),
			strconv.Itoa(r.Feasible),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			best,
			ftoa(r.EvaluateMean),
			ftoa(r.EvaluateStd),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
