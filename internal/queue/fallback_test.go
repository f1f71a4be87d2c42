package queue

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProcessor records processed job ids and can block until released,
// so tests can observe scheduling order and batching.
type stubProcessor struct {
	mu        sync.Mutex
	processed []string
	block     chan struct{}
	started   chan string
}

func newStubProcessor() *stubProcessor {
	return &stubProcessor{started: make(chan string, 16)}
}

func (p *stubProcessor) ProcessJob(ctx context.Context, jobID string) error {
	p.started <- jobID
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.processed = append(p.processed, jobID)
	p.mu.Unlock()
	return nil
}

func (p *stubProcessor) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.processed))
	copy(out, p.processed)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestFallback_ProcessesInAdmissionOrder(t *testing.T) {
	proc := newStubProcessor()
	b := NewFallbackBackend(proc, 1, discardLogger())
	b.passDelay = time.Millisecond

	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, "a"))
	require.NoError(t, b.Enqueue(ctx, "b"))
	require.NoError(t, b.Enqueue(ctx, "c"))

	waitFor(t, func() bool { return len(proc.snapshot()) == 3 })
	assert.Equal(t, []string{"a", "b", "c"}, proc.snapshot())
}

func TestFallback_EnqueueDoesNotBlock(t *testing.T) {
	proc := newStubProcessor()
	proc.block = make(chan struct{})
	b := NewFallbackBackend(proc, 2, discardLogger())

	start := time.Now()
	require.NoError(t, b.Enqueue(context.Background(), "slow"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	<-proc.started // job is running and blocked; the submit already returned
	close(proc.block)
	waitFor(t, func() bool { return len(proc.snapshot()) == 1 })
}

func TestFallback_BatchBoundDefersExcessJobs(t *testing.T) {
	proc := newStubProcessor()
	proc.block = make(chan struct{})
	b := NewFallbackBackend(proc, 2, discardLogger())
	b.passDelay = time.Millisecond

	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, "a"))
	<-proc.started // first pass is in flight, holding the running flag

	require.NoError(t, b.Enqueue(ctx, "b"))
	require.NoError(t, b.Enqueue(ctx, "c"))

	// Nothing beyond the first job may start while the batch is blocked.
	select {
	case id := <-proc.started:
		t.Fatalf("job %q started before the current pass finished", id)
	case <-time.After(50 * time.Millisecond):
	}

	close(proc.block)
	waitFor(t, func() bool { return len(proc.snapshot()) == 3 })
	assert.Equal(t, []string{"a", "b", "c"}, proc.snapshot())
}

func TestFallback_DuplicateAdmissionIsNoOp(t *testing.T) {
	proc := newStubProcessor()
	proc.block = make(chan struct{})
	b := NewFallbackBackend(proc, 1, discardLogger())
	b.passDelay = time.Millisecond

	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, "a"))
	<-proc.started

	require.NoError(t, b.Enqueue(ctx, "b"))
	require.NoError(t, b.Enqueue(ctx, "b"))
	require.NoError(t, b.Enqueue(ctx, "b"))

	close(proc.block)
	waitFor(t, func() bool { return len(proc.snapshot()) >= 2 })

	// Allow any stray pass to run, then check b ran exactly once.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, proc.snapshot())
}

func TestFallback_ConcurrencyFloor(t *testing.T) {
	b := NewFallbackBackend(newStubProcessor(), 0, discardLogger())
	assert.Equal(t, 1, b.concurrency)
}
