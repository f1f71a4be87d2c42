// Package store persists job records and the cache index.
//
// Two implementations exist: a Redis-backed store used when a broker is
// configured, and an in-memory store used otherwise (and by tests). Cache
// entries only ever reference jobs that reached done; invalidation clears
// the index but never touches job records.
package store

import (
	"context"
	"errors"

	"github.com/notmat/api/internal/model"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrCacheMiss   = errors.New("cache miss")
)

// Store is the persistence contract for job records and the cache index.
// All mutations must be safe under concurrent callers.
type Store interface {
	// CreateJob persists a new job record and registers it under its
	// requester's revision list.
	CreateJob(ctx context.Context, job *model.Job) error

	// UpdateJob overwrites an existing job record. Only the worker that
	// owns the job may call this while it is in flight.
	UpdateJob(ctx context.Context, job *model.Job) error

	// GetJob returns the job with the given id, or ErrJobNotFound.
	GetJob(ctx context.Context, id string) (*model.Job, error)

	// ListJobs returns all jobs created by userID, oldest first.
	ListJobs(ctx context.Context, userID string) ([]*model.Job, error)

	// LookupCache resolves a cache key to a job id, or ErrCacheMiss.
	LookupCache(ctx context.Context, key string) (string, error)

	// PutCache records key → jobID. The first write for a key wins;
	// later writes with a different job id are ignored.
	PutCache(ctx context.Context, key, jobID string) error

	// InvalidateCache clears the entire cache index. Job records are
	// untouched and stay retrievable by id.
	InvalidateCache(ctx context.Context) error
}
