// Package bulk implements the batch executor behind the 207 endpoints:
// N independent operations, N ordered outcomes, no short-circuit.
package bulk

import "net/http"

// Item is the per-item outcome of a batch operation. Status carries the
// operation's HTTP status class, Error the failure message when the
// operation did not succeed, and Item echoes the request for client
// correlation.
type Item[T any] struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
	Item   T      `json:"item"`
}

// StatusMultiStatus is the aggregate status of every batch call,
// regardless of how many items failed.
const StatusMultiStatus = http.StatusMultiStatus

// Apply invokes op for every item in input order. An item failure is
// downgraded to a BadRequest outcome carrying the error message; the
// remaining items still run. The returned slice always has one entry
// per input item, in the same order.
func Apply[T any](items []T, successStatus int, op func(T) error) []Item[T] {
	outcomes := make([]Item[T], 0, len(items))
	for _, item := range items {
		status := successStatus
		message := ""
		if err := op(item); err != nil {
			status = http.StatusBadRequest
			message = err.Error()
		}
		outcomes = append(outcomes, Item[T]{
			Status: status,
			Error:  message,
			Item:   item,
		})
	}
	return outcomes
}
