package store

import (
	"context"
	"sync"

	"github.com/notmat/api/internal/model"
)

// MemoryStore keeps job records and the cache index in process memory.
// Used when no Redis is configured or reachable at startup.
type MemoryStore struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	cache    map[string]string
	byUser   map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:   make(map[string]*model.Job),
		cache:  make(map[string]string),
		byUser: make(map[string][]string),
	}
}

func (s *MemoryStore) CreateJob(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *job
	s.jobs[job.ID] = &stored
	s.byUser[job.Payload.UserID] = append(s.byUser[job.Payload.UserID], job.ID)
	return nil
}

func (s *MemoryStore) UpdateJob(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *MemoryStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryStore) ListJobs(ctx context.Context, userID string) ([]*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	jobs := make([]*model.Job, 0, len(ids))
	for _, id := range ids {
		if job, ok := s.jobs[id]; ok {
			copied := *job
			jobs = append(jobs, &copied)
		}
	}
	return jobs, nil
}

func (s *MemoryStore) LookupCache(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobID, ok := s.cache[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return jobID, nil
}

func (s *MemoryStore) PutCache(ctx context.Context, key, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// First write wins; concurrent jobs racing to populate the same key
	// must not clobber an existing entry.
	if _, ok := s.cache[key]; !ok {
		s.cache[key] = jobID
	}
	return nil
}

func (s *MemoryStore) InvalidateCache(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
	return nil
}
