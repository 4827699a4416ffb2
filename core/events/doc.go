// Package events defines the search events emitted on the event bus.
//
// Available event kinds:
//   - SearchStarted: a driver built its initial solution
//   - SearchImproved: a driver adopted a better neighbor
//   - SearchFinished: a driver returned its final solution
package events
