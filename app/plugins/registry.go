// Package plugins maps heuristic type names from the configuration to
// constructors.
package plugins

import (
	"github.com/kilianp07/greenshop/core/factory"
	"github.com/kilianp07/greenshop/core/heuristics"
)

var heuristicRegistry = factory.NewRegistry[heuristics.Heuristic]()

func RegisterHeuristic(name string, f factory.Factory[heuristics.Heuristic]) error {
	return heuristicRegistry.Register(name, f)
}

// HeuristicNames lists the registered types in sorted order.
func HeuristicNames() []string { return heuristicRegistry.Names() }

// NewHeuristic builds a fresh heuristic. Drivers own a random source, so
// each run needs its own instance.
func NewHeuristic(cfg factory.ModuleConfig) (heuristics.Heuristic, error) {
	return heuristicRegistry.Create(cfg)
}
