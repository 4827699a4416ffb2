// Package runlog persists one record per finished solve so past runs can be
// listed and compared.
package runlog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Record captures one finished heuristic run.
type Record struct {
	RunID              string    `json:"run_id"`
	Timestamp          time.Time `json:"timestamp"`
	Instance           string    `json:"instance"`
	Heuristic          string    `json:"heuristic"`
	Seed               int64     `json:"seed"`
	Feasible           bool      `json:"feasible"`
	Evaluate           int       `json:"evaluate"`
	Cmax               int       `json:"cmax"`
	SumCi              int       `json:"sum_ci"`
	Energy             int       `json:"energy"`
	MeanProcessingTime int       `json:"mean_processing_time"`
	Iterations         int       `json:"iterations"`
	Evaluations        int64     `json:"evaluations"`
	DurationMS         float64   `json:"duration_ms"`
	Stop               string    `json:"stop,omitempty"`
	Neighborhood       string    `json:"neighborhood,omitempty"`
}

// Query filters records. Zero fields match everything. Limit keeps the
// most recent records.
type Query struct {
	Start     time.Time
	End       time.Time
	Instance  string
	Heuristic string
	RunID     string
	Limit     int
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Instance != "" && r.Instance != q.Instance {
		return false
	}
	if q.Heuristic != "" && r.Heuristic != q.Heuristic {
		return false
	}
	return q.RunID == "" || r.RunID == q.RunID
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) (Record, error)
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Config selects and tunes the store.
type Config struct {
	Backend    string `json:"backend" yaml:"backend"`
	Path       string `json:"path" yaml:"path"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

// SetDefaults picks file names per backend and the rotation policy.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "runs/runs.jsonl"
		case "sqlite":
			c.Path = "runs/runs.db"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

// Validate accepts an empty backend, which disables the run log.
func (c Config) Validate() error {
	switch c.Backend {
	case "", "none", "jsonl", "sqlite":
	default:
		return fmt.Errorf("runlog.backend must be jsonl or sqlite (got %q)", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("runlog rotation settings must be >= 0")
	}
	return nil
}

// Open returns the configured store, or NopStore when disabled.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return NopStore{}, nil
	}
}

// NopStore drops records.
type NopStore struct{}

func (NopStore) Append(_ context.Context, rec Record) (Record, error) { return prepare(rec), nil }
func (NopStore) Query(context.Context, Query) ([]Record, error)       { return nil, nil }
func (NopStore) Close() error                                         { return nil }

// prepare assigns a run id and a timestamp when missing.
func prepare(rec Record) Record {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	return rec
}

// finish sorts by timestamp and applies the limit.
func finish(recs []Record, q Query) []Record {
	sort.SliceStable(recs, func(a, b int) bool { return recs[a].Timestamp.Before(recs[b].Timestamp) })
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[len(recs)-q.Limit:]
	}
	return recs
}
