package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notmat/api/internal/model"
)

const (
	jobKeyPrefix   = "note:job:"
	cacheKeyPrefix = "note:cache:"
	userKeyPrefix  = "note:user:"
)

// RedisStore persists job records as JSON values and the cache index as
// plain key → job id strings. Records carry a TTL so eviction is handled
// by Redis itself rather than by this layer.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: redisClient, ttl: ttl}
}

func (s *RedisStore) CreateJob(ctx context.Context, job *model.Job) error {
	if err := s.saveJob(ctx, job); err != nil {
		return err
	}
	userKey := userKeyPrefix + job.Payload.UserID + ":revisions"
	if err := s.redis.RPush(ctx, userKey, job.ID).Err(); err != nil {
		return fmt.Errorf("failed to index job for user: %w", err)
	}
	s.redis.Expire(ctx, userKey, s.ttl)
	return nil
}

func (s *RedisStore) UpdateJob(ctx context.Context, job *model.Job) error {
	return s.saveJob(ctx, job)
}

func (s *RedisStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, jobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (s *RedisStore) ListJobs(ctx context.Context, userID string) ([]*model.Job, error) {
	ids, err := s.redis.LRange(ctx, userKeyPrefix+userID+":revisions", 0, -1).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]*model.Job, 0, len(ids))
	for _, id := range ids {
		job, err := s.GetJob(ctx, id)
		if err != nil {
			if errors.Is(err, ErrJobNotFound) {
				continue // record expired
			}
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (s *RedisStore) LookupCache(ctx context.Context, key string) (string, error) {
	jobID, err := s.redis.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return jobID, nil
}

func (s *RedisStore) PutCache(ctx context.Context, key, jobID string) error {
	// SetNX keeps the first successful write when distinct jobs race to
	// populate the same key.
	return s.redis.SetNX(ctx, cacheKeyPrefix+key, jobID, s.ttl).Err()
}

func (s *RedisStore) InvalidateCache(ctx context.Context) error {
	iter := s.redis.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return s.redis.Set(ctx, jobKeyPrefix+job.ID, data, s.ttl).Err()
}
