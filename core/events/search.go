package events

import "time"

// SearchKind tells where in a run a SearchEvent was emitted.
type SearchKind string

const (
	SearchStarted  SearchKind = "started"
	SearchImproved SearchKind = "improved"
	SearchFinished SearchKind = "finished"
)

// SearchEvent reports the progress of one heuristic run.
type SearchEvent struct {
	RunID       string        `json:"run_id"`
	Heuristic   string        `json:"heuristic"`
	Instance    string        `json:"instance"`
	Kind        SearchKind    `json:"kind"`
	Iteration   int           `json:"iteration"`
	Evaluate    int           `json:"evaluate"`
	Feasible    bool          `json:"feasible"`
	Evaluations int64         `json:"evaluations"`
	Elapsed     time.Duration `json:"elapsed"`
	Time        time.Time     `json:"time"`
}

// Publisher receives search events. eventbus.TypedBus implements it.
type Publisher interface {
	Publish(SearchEvent)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(SearchEvent) {}
