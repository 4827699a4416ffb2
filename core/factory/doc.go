// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[heuristics.Heuristic]()
//	reg.Register("nondeterministic", func(conf map[string]any) (heuristics.Heuristic, error) {
//	    var c heuristics.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return heuristics.NewNonDeterministic(c.NewRand())
//	})
//	h, err := reg.Create(factory.ModuleConfig{Type: "nondeterministic", Conf: map[string]any{"seed": 7}})
package factory
