package heuristics

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

// Config parameterises the random constructive heuristic. A zero seed draws
// one from the clock.
type Config struct {
	Seed int64 `json:"seed"`
}

// NewRand returns the random source described by cfg.
func (c Config) NewRand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// NonDeterministic places each operation on a machine drawn uniformly among
// the compatible machines already free at the operation's earliest start.
// When no machine qualifies the operation stays unscheduled.
//
// A NonDeterministic is not safe for concurrent use: it owns its random
// source.
type NonDeterministic struct {
	Rng *rand.Rand
}

// NewNonDeterministic validates the random source.
func NewNonDeterministic(rng *rand.Rand) (*NonDeterministic, error) {
	if rng == nil {
		return nil, errors.New("nondeterministic: random source is nil")
	}
	return &NonDeterministic{Rng: rng}, nil
}

// Run implements Heuristic.
func (h *NonDeterministic) Run(ctx context.Context, inst *model.Instance) (*solution.Solution, error) {
	if h.Rng == nil {
		return nil, errors.New("nondeterministic: random source is nil")
	}
	s := solution.New(inst)
	candidates := make([]*model.Machine, 0, len(s.Machines()))
	for _, j := range s.Jobs() {
		for _, op := range j.Operations() {
			if err := ctx.Err(); err != nil {
				return s, err
			}
			if !s.IsAvailable(op) {
				continue
			}
			minStart := op.MinStartTime()
			candidates = candidates[:0]
			for _, m := range s.Machines() {
				if op.CanRunOn(m.ID()) && m.AvailableTime() <= minStart {
					candidates = append(candidates, m)
				}
			}
			if len(candidates) == 0 {
				continue
			}
			m := candidates[h.Rng.Intn(len(candidates))]
			if err := s.Schedule(op, m); err != nil {
				if skippable(err) {
					continue
				}
				return nil, fmt.Errorf("nondeterministic: %w", err)
			}
		}
	}
	return s, nil
}
