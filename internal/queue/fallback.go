package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPassDelay is the pause between scheduling passes while jobs
// remain pending.
const DefaultPassDelay = 100 * time.Millisecond

// FallbackBackend is the in-process scheduler used when no broker is
// configured or reachable at startup.
//
// Admitted jobs join a pending list. Each scheduling pass takes a batch
// of at most `concurrency` jobs and drives them to completion one at a
// time, in admission order: the bound caps batch size, not simultaneous
// execution. When a pass finishes with jobs still pending, the next pass
// runs after a short fixed delay; otherwise the scheduler idles until
// the next admission.
//
// TODO: replace the sequential batch with a worker pool fed by a channel
// once true parallel throughput is needed; the batch semantics here are
// kept for parity with the polling clients' expectations.
type FallbackBackend struct {
	processor   Processor
	concurrency int
	passDelay   time.Duration
	logger      *slog.Logger

	mu      sync.Mutex
	pending []string
	running bool
}

func NewFallbackBackend(processor Processor, concurrency int, logger *slog.Logger) *FallbackBackend {
	if concurrency < 1 {
		concurrency = 1
	}
	return &FallbackBackend{
		processor:   processor,
		concurrency: concurrency,
		passDelay:   DefaultPassDelay,
		logger:      logger,
	}
}

func (b *FallbackBackend) Enqueue(ctx context.Context, jobID string) error {
	b.mu.Lock()
	for _, id := range b.pending {
		if id == jobID {
			b.mu.Unlock()
			return nil // already admitted
		}
	}
	b.pending = append(b.pending, jobID)
	size := len(b.pending)
	b.mu.Unlock()

	b.logger.Info("job added to in-process queue", "jobId", jobID, "pending", size)
	go b.runPass()
	return nil
}

func (b *FallbackBackend) Start() error { return nil }

func (b *FallbackBackend) Shutdown() {}

// runPass executes one scheduling pass. The running flag guards against
// re-entrancy: passes triggered while a batch is in flight return
// immediately and the in-flight pass reschedules itself.
func (b *FallbackBackend) runPass() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true

	n := b.concurrency
	if n > len(b.pending) {
		n = len(b.pending)
	}
	batch := b.pending[:n]
	b.pending = b.pending[n:]
	b.mu.Unlock()

	if len(batch) == 0 {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return
	}

	for _, jobID := range batch {
		if err := b.processor.ProcessJob(context.Background(), jobID); err != nil {
			b.logger.Error("job failed", "jobId", jobID, "error", err)
		} else {
			b.logger.Info("job completed", "jobId", jobID)
		}
	}

	b.mu.Lock()
	b.running = false
	more := len(b.pending) > 0
	b.mu.Unlock()

	if more {
		time.AfterFunc(b.passDelay, b.runPass)
	}
}
