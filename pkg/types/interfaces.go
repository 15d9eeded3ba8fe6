// Package types defines core interfaces and types for the threadloop library
package types

// Task is a unit of work executed asynchronously by a worker.
// It takes no arguments and returns nothing; submission is fire-and-forget.
type Task func()

// Dispatcher defines the task submission and lifecycle interface of a pool
type Dispatcher interface {
	// Start starts every worker loop
	Start()

	// Submit dispatches a task round-robin
	Submit(task Task)

	// SubmitWithKey dispatches a task to the worker bound to key,
	// binding the key on first use
	SubmitWithKey(key string, task Task)

	// Close stops and joins every worker and releases resources
	Close()

	// Size returns the number of workers
	Size() int
}

// Route describes how a submission was dispatched
type Route int

const (
	// RouteRoundRobin is an unkeyed submission
	RouteRoundRobin Route = iota
	// RouteAffinityNew is the first submission for a key; it binds the key
	RouteAffinityNew
	// RouteAffinityBound is a submission for an already bound key
	RouteAffinityBound
)

// String returns the string representation of Route
func (r Route) String() string {
	switch r {
	case RouteRoundRobin:
		return "round_robin"
	case RouteAffinityNew:
		return "affinity_new"
	case RouteAffinityBound:
		return "affinity_bound"
	default:
		return "unknown"
	}
}
