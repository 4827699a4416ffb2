package config

import (
	"fmt"

	"github.com/kilianp07/greenshop/core/factory"
)

// SearchConfig selects the heuristic and bounds each run. The bounds apply
// to the local search drivers and are merged under the heuristic conf.
type SearchConfig struct {
	Heuristic         factory.ModuleConfig `json:"heuristic"`
	Runs              int                  `json:"runs"`
	TimeBudgetSeconds float64              `json:"time_budget_seconds"`
	MaxIterations     int                  `json:"max_iterations"`
	Workers           int                  `json:"workers"`
	Seed              int64                `json:"seed"`
}

// SetDefaults runs best-of once with one worker.
func (c *SearchConfig) SetDefaults() {
	if c.Heuristic.Type == "" {
		c.Heuristic.Type = "best-of"
	}
	if c.Runs == 0 {
		c.Runs = 1
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

func (c SearchConfig) Validate() error {
	if c.Runs < 1 {
		return fmt.Errorf("search.runs must be >= 1 (got %d)", c.Runs)
	}
	if c.TimeBudgetSeconds < 0 {
		return fmt.Errorf("search.time_budget_seconds must be >= 0 (got %f)", c.TimeBudgetSeconds)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("search.max_iterations must be >= 0 (got %d)", c.MaxIterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("search.workers must be >= 0 (got %d)", c.Workers)
	}
	return nil
}

// ModuleConf returns the heuristic conf with the search bounds filled in
// where the conf leaves them unset.
func (c SearchConfig) ModuleConf() factory.ModuleConfig {
	conf := make(map[string]any, len(c.Heuristic.Conf)+4)
	for k, v := range c.Heuristic.Conf {
		conf[k] = v
	}
	setDefault(conf, "max_iterations", c.MaxIterations)
	setDefault(conf, "time_budget_seconds", c.TimeBudgetSeconds)
	setDefault(conf, "workers", c.Workers)
	setDefault(conf, "seed", c.Seed)
	return factory.ModuleConfig{Type: c.Heuristic.Type, Conf: conf}
}

func setDefault(conf map[string]any, key string, v any) {
	if _, ok := conf[key]; !ok {
		conf[key] = v
	}
}
