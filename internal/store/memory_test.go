package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notmat/api/internal/model"
)

func TestMemoryStore_JobLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	job := model.NewJob("job-1", "user-1", "Buy milk", model.NoteOptions{})
	require.NoError(t, s.CreateJob(ctx, job))

	got, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, got.Status)

	require.NoError(t, job.Transition(model.JobStatusProcessing))
	require.NoError(t, s.UpdateJob(ctx, job))

	got, err = s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, got.Status)
}

func TestMemoryStore_GetJob_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryStore_UpdateJob_NotFound(t *testing.T) {
	s := NewMemoryStore()

	job := model.NewJob("ghost", "user-1", "text", model.NoteOptions{})
	assert.ErrorIs(t, s.UpdateJob(context.Background(), job), ErrJobNotFound)
}

func TestMemoryStore_GetJob_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	job := model.NewJob("job-1", "user-1", "text", model.NoteOptions{})
	require.NoError(t, s.CreateJob(ctx, job))

	got, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	got.Status = model.JobStatusFailed // mutating the copy must not leak

	again, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, again.Status)
}

func TestMemoryStore_ListJobs_PerUserInCreationOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateJob(ctx, model.NewJob("a", "user-1", "first", model.NoteOptions{})))
	require.NoError(t, s.CreateJob(ctx, model.NewJob("b", "user-2", "other", model.NoteOptions{})))
	require.NoError(t, s.CreateJob(ctx, model.NewJob("c", "user-1", "second", model.NoteOptions{})))

	jobs, err := s.ListJobs(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].ID)
	assert.Equal(t, "c", jobs[1].ID)

	jobs, err = s.ListJobs(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMemoryStore_Cache_FirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.LookupCache(ctx, "key-1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.PutCache(ctx, "key-1", "job-1"))
	require.NoError(t, s.PutCache(ctx, "key-1", "job-2"))

	jobID, err := s.LookupCache(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
}

func TestMemoryStore_InvalidateCache_LeavesJobsIntact(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateJob(ctx, model.NewJob("job-1", "user-1", "text", model.NoteOptions{})))
	require.NoError(t, s.PutCache(ctx, "key-1", "job-1"))

	require.NoError(t, s.InvalidateCache(ctx))

	_, err := s.LookupCache(ctx, "key-1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = s.GetJob(ctx, "job-1")
	assert.NoError(t, err, "invalidation clears the index, not stored revisions")
}
