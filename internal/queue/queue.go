// Package queue provides the execution backends that drive note jobs.
//
// Two implementations sit behind the Backend interface: an asynq-based
// distributed backend used when Redis is reachable, and an in-process
// fallback scheduler. The choice is made once at startup and never
// re-evaluated.
package queue

import "context"

// TaskTypeNote is the asynq task type for note transform jobs.
const TaskTypeNote = "note:process"

// Processor executes a single job end to end: it transitions the job out
// of queued, drives the transform, and records the terminal state.
type Processor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// Backend accepts jobs for asynchronous execution. Enqueue must return
// without waiting for the job to run.
type Backend interface {
	// Enqueue admits the job with the given id. Submitting the same id
	// twice is a no-op, not a duplicate.
	Enqueue(ctx context.Context, jobID string) error

	// Start launches background workers, if the backend has any.
	Start() error

	// Shutdown stops background workers.
	Shutdown()
}
