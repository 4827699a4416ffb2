// Package metrics defines the sinks that record heuristic runs and search
// progress. Implementations live in infra/metrics and register themselves
// by name, so a configuration can list several sinks; NewMetricsSink then
// returns a MultiSink that fans every record out.
package metrics
