package localsearch

import (
	"fmt"
	"time"
)

// Config bounds a local search run. Zero values mean no bound.
type Config struct {
	MaxIterations     int     `json:"max_iterations"`
	TimeBudgetSeconds float64 `json:"time_budget_seconds"`
	Workers           int     `json:"workers"`
	Seed              int64   `json:"seed"`
}

// DefaultConfig returns an unbounded sequential search.
func DefaultConfig() Config {
	return Config{Workers: 1}
}

func (c Config) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be >= 0 (got %d)", c.MaxIterations)
	}
	if c.TimeBudgetSeconds < 0 {
		return fmt.Errorf("time_budget_seconds must be >= 0 (got %f)", c.TimeBudgetSeconds)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	return nil
}

// Budget returns the time budget as a duration.
func (c Config) Budget() time.Duration {
	return time.Duration(c.TimeBudgetSeconds * float64(time.Second))
}
