package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/greenshop/core/solution"
)

// Summary is the headline of a solve written by WriteSummary.
type Summary struct {
	RunID              string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Instance           string           `json:"instance" yaml:"instance"`
	Heuristic          string           `json:"heuristic,omitempty" yaml:"heuristic,omitempty"`
	Feasible           bool             `json:"feasible" yaml:"feasible"`
	Evaluate           *int             `json:"evaluate" yaml:"evaluate"`
	Cmax               int              `json:"cmax" yaml:"cmax"`
	SumCi              int              `json:"sum_ci" yaml:"sum_ci"`
	Energy             int              `json:"energy" yaml:"energy"`
	MeanProcessingTime int              `json:"mean_processing_time" yaml:"mean_processing_time"`
	Machines           []MachineSummary `json:"machines" yaml:"machines"`
	Extra              map[string]any   `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// MachineSummary describes one machine of a solution.
type MachineSummary struct {
	ID          int `json:"id" yaml:"id"`
	Operations  int `json:"operations" yaml:"operations"`
	Starts      int `json:"starts" yaml:"starts"`
	WorkingTime int `json:"working_time" yaml:"working_time"`
	Energy      int `json:"energy" yaml:"energy"`
}

// Summarize builds the Summary of s. Evaluate is nil when s is infeasible.
func Summarize(s *solution.Solution) Summary {
	sum := Summary{
		Instance:           s.Instance().Name(),
		Feasible:           s.IsFeasible(),
		Cmax:               s.Cmax(),
		SumCi:              s.SumCi(),
		Energy:             s.TotalEnergyConsumption(),
		MeanProcessingTime: s.MeanProcessingTime(),
	}
	if sum.Feasible {
		v := s.Evaluate()
		sum.Evaluate = &v
	}
	for _, m := range s.Machines() {
		sum.Machines = append(sum.Machines, MachineSummary{
			ID:          m.ID(),
			Operations:  len(m.ScheduledOperations()),
			Starts:      len(m.StartTimes()),
			WorkingTime: m.WorkingTime(),
			Energy:      m.TotalEnergyConsumption(),
		})
	}
	return sum
}

// WriteSummary encodes sum as "json" or "yaml".
func WriteSummary(w io.Writer, sum Summary, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sum); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported summary format %q", format)
	}
}
