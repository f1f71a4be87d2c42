package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// NoteTaskPayload is the wire payload of a note task. Only the job id
// travels through the broker; the payload itself lives in the store.
type NoteTaskPayload struct {
	JobID string `json:"jobId"`
}

// NewNoteTask builds the asynq task for a job.
func NewNoteTask(jobID string) (*asynq.Task, error) {
	data, err := json.Marshal(NoteTaskPayload{JobID: jobID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNote, data), nil
}

// AsynqBackend submits jobs to a Redis-backed asynq queue and runs a
// worker pool with true concurrency. Tasks are keyed by job id so a
// repeated submission is deduplicated by the broker.
type AsynqBackend struct {
	client      *asynq.Client
	server      *asynq.Server
	handler     asynq.Handler
	retention   time.Duration
	logger      *slog.Logger
}

func NewAsynqBackend(redisOpt asynq.RedisClientOpt, concurrency int, retention time.Duration, handler asynq.Handler, logger *slog.Logger) *AsynqBackend {
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"notes": 1,
		},
	})

	return &AsynqBackend{
		client:    asynq.NewClient(redisOpt),
		server:    server,
		handler:   handler,
		retention: retention,
		logger:    logger,
	}
}

func (b *AsynqBackend) Enqueue(ctx context.Context, jobID string) error {
	task, err := NewNoteTask(jobID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	// MaxRetry(0): a failed transform is a terminal job state, never
	// retried by the queue.
	_, err = b.client.EnqueueContext(ctx, task,
		asynq.TaskID(jobID),
		asynq.Queue("notes"),
		asynq.MaxRetry(0),
		asynq.Retention(b.retention),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			b.logger.Info("task already enqueued, skipping", "jobId", jobID)
			return nil
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

func (b *AsynqBackend) Start() error {
	mux := asynq.NewServeMux()
	mux.Handle(TaskTypeNote, b.handler)

	go func() {
		if err := b.server.Run(mux); err != nil {
			b.logger.Error("asynq worker server stopped", "error", err)
		}
	}()
	return nil
}

func (b *AsynqBackend) Shutdown() {
	b.server.Shutdown()
	b.client.Close()
}
