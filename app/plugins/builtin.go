package plugins

import (
	"fmt"
	"math/rand"

	"github.com/kilianp07/greenshop/core/factory"
	"github.com/kilianp07/greenshop/core/heuristics"
	"github.com/kilianp07/greenshop/core/localsearch"
)

// driverConf is the conf of both local search drivers. Initial picks the
// constructive heuristic for the starting solution.
type driverConf struct {
	localsearch.Config `json:",squash"`

	Initial string `json:"initial"`
}

type initialSetter interface {
	SetInitial(heuristics.Heuristic)
}

func init() {
	_ = RegisterHeuristic("greedy", func(map[string]any) (heuristics.Heuristic, error) {
		return heuristics.Greedy{}, nil
	})
	_ = RegisterHeuristic("nondeterministic", func(conf map[string]any) (heuristics.Heuristic, error) {
		var c heuristics.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return heuristics.NewNonDeterministic(c.NewRand())
	})
	_ = RegisterHeuristic("first-improvement", func(conf map[string]any) (heuristics.Heuristic, error) {
		c, err := decodeDriver(conf)
		if err != nil {
			return nil, err
		}
		fi, err := localsearch.NewFirstImprovement(c.Config, seeded(c.Seed))
		if err != nil {
			return nil, err
		}
		return fi, applyInitial(fi, c)
	})
	_ = RegisterHeuristic("best-of", func(conf map[string]any) (heuristics.Heuristic, error) {
		c, err := decodeDriver(conf)
		if err != nil {
			return nil, err
		}
		bo, err := localsearch.NewBestOfNeighborhoods(c.Config, seeded(c.Seed))
		if err != nil {
			return nil, err
		}
		return bo, applyInitial(bo, c)
	})
}

func decodeDriver(conf map[string]any) (driverConf, error) {
	c := driverConf{Config: localsearch.DefaultConfig()}
	if err := factory.Decode(conf, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func seeded(seed int64) *rand.Rand { return heuristics.Config{Seed: seed}.NewRand() }

func applyInitial(d initialSetter, c driverConf) error {
	switch c.Initial {
	case "", "nondeterministic":
		return nil
	case "greedy":
		d.SetInitial(heuristics.Greedy{})
		return nil
	default:
		return fmt.Errorf("unknown initial heuristic %q", c.Initial)
	}
}
