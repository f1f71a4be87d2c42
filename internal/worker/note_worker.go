package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/notmat/api/internal/queue"
)

// NoteWorker adapts asynq task delivery to the job processor.
type NoteWorker struct {
	processor queue.Processor
	logger    *slog.Logger
}

func NewNoteWorker(processor queue.Processor, logger *slog.Logger) *NoteWorker {
	return &NoteWorker{processor: processor, logger: logger}
}

// ProcessTask handles one note task. Transform failures are already
// recorded on the job by the processor, so the error is wrapped with
// SkipRetry to keep the broker from re-running a terminally failed job.
func (w *NoteWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.NoteTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("processing note job", "jobId", payload.JobID)

	if err := w.processor.ProcessJob(ctx, payload.JobID); err != nil {
		return fmt.Errorf("job %s: %v: %w", payload.JobID, err, asynq.SkipRetry)
	}
	return nil
}
