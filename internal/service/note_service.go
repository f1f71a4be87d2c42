package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/notmat/api/internal/hash"
	"github.com/notmat/api/internal/model"
	"github.com/notmat/api/internal/queue"
	"github.com/notmat/api/internal/store"
	ws "github.com/notmat/api/internal/websocket"
)

// NoteService is the orchestration core: it derives cache keys, decides
// between cache reuse and fresh work, admits jobs onto the active
// execution backend, and answers status/result lookups.
//
// It also implements queue.Processor: the backend hands jobs back to
// ProcessJob, which is the only code path that mutates a job after
// creation.
type NoteService struct {
	store       store.Store
	transformer Transformer
	backend     queue.Backend
	hub         *ws.Hub
	modelName   string
	logger      *slog.Logger
}

func NewNoteService(st store.Store, transformer Transformer, hub *ws.Hub, modelName string, logger *slog.Logger) *NoteService {
	return &NoteService{
		store:       st,
		transformer: transformer,
		hub:         hub,
		modelName:   modelName,
		logger:      logger,
	}
}

// SetBackend attaches the execution backend chosen at startup. The
// backend is constructed after the service because the in-process
// variant needs the service as its processor.
func (s *NoteService) SetBackend(b queue.Backend) {
	s.backend = b
}

// CreateNote admits a transform request. On a cache hit for a done job
// it returns that job's id and performs no submission; otherwise it
// persists a fresh queued job and enqueues it. The call never waits for
// the transform.
func (s *NoteService) CreateNote(ctx context.Context, userID, rawText string, options model.NoteOptions) (*model.CreateNoteResponse, error) {
	if options.CacheEnabled() {
		key := hash.CacheKey(userID, rawText, options)
		if jobID, err := s.store.LookupCache(ctx, key); err == nil {
			job, err := s.store.GetJob(ctx, jobID)
			if err == nil && job.Status == model.JobStatusDone {
				s.logger.Info("returning cached result", "revisionId", jobID)
				return &model.CreateNoteResponse{
					JobID:      jobID,
					RevisionID: jobID,
					Cached:     true,
				}, nil
			}
		} else if !errors.Is(err, store.ErrCacheMiss) {
			return nil, fmt.Errorf("cache lookup failed: %w", err)
		}
	}

	jobID := uuid.New().String()
	job := model.NewJob(jobID, userID, rawText, options)

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	if err := s.backend.Enqueue(ctx, jobID); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info("note created and queued", "revisionId", jobID, "textLength", len(rawText))

	return &model.CreateNoteResponse{
		JobID:      jobID,
		RevisionID: jobID,
		Cached:     false,
	}, nil
}

// ProcessJob drives one job through the transform and records its
// terminal state. Called by the active backend's workers; only this
// execution may move the job out of queued.
func (s *NoteService) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		// At-least-once delivery can replay a finished job.
		return nil
	}

	if err := job.Transition(model.JobStatusProcessing); err != nil {
		return err
	}
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return err
	}
	s.broadcastStatus(jobID, model.JobStatusProcessing)

	result, err := s.transformer.TransformNote(ctx, job.Payload.RawText, job.Payload.Options)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	result.Meta.RevisionID = jobID

	if err := job.Complete(result, s.modelName); err != nil {
		return err
	}
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return err
	}

	// The cache entry is written only now, after done is durable, so a
	// hit can never reference an unfinished or failed job.
	key := hash.CacheKey(job.Payload.UserID, job.Payload.RawText, job.Payload.Options)
	if err := s.store.PutCache(ctx, key, jobID); err != nil {
		s.logger.Error("failed to write cache entry", "revisionId", jobID, "error", err)
	}

	s.broadcastStatus(jobID, model.JobStatusDone)
	if s.hub != nil {
		s.hub.BroadcastComplete(jobID, result)
	}
	s.logger.Info("note processing completed", "revisionId", jobID)
	return nil
}

func (s *NoteService) failJob(ctx context.Context, job *model.Job, cause error) error {
	if err := job.Fail(cause.Error()); err != nil {
		return err
	}
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastError(job.ID, "TRANSFORM_FAILED", cause.Error())
	}
	s.logger.Error("note processing failed", "revisionId", job.ID, "error", cause)
	return cause
}

// GetStatus returns the polling snapshot for a revision.
func (s *NoteService) GetStatus(ctx context.Context, jobID string) (*model.NoteStatusResponse, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &model.NoteStatusResponse{
		Status: job.Status,
		Cached: job.Cached,
		Error:  job.Error,
	}, nil
}

// GetResult returns the full result envelope for a done revision.
func (s *NoteService) GetResult(ctx context.Context, jobID string) (*model.NoteResultResponse, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusDone {
		return nil, ErrNotReady
	}

	return &model.NoteResultResponse{
		NoteResult:  *job.Result,
		ModelUsed:   job.ModelUsed,
		Cached:      job.Cached,
		CreatedAt:   job.CreatedAt,
		ProcessedAt: job.ProcessedAt,
	}, nil
}

// GetExport returns one stored rendering of a done revision.
func (s *NoteService) GetExport(ctx context.Context, jobID string, format string) (string, error) {
	f := model.ExportFormat(format)
	valid := false
	for _, candidate := range model.ValidExportFormats {
		if f == candidate {
			valid = true
			break
		}
	}
	if !valid {
		return "", ErrInvalidFormat
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != model.JobStatusDone {
		return "", ErrNotReady
	}

	export, _ := job.Export(f)
	return export, nil
}

// ListNotes returns all revisions created by a requester, oldest first.
func (s *NoteService) ListNotes(ctx context.Context, userID string) ([]model.NoteListItem, error) {
	jobs, err := s.store.ListJobs(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]model.NoteListItem, 0, len(jobs))
	for _, job := range jobs {
		item := model.NoteListItem{
			RevisionID: job.ID,
			CreatedAt:  job.CreatedAt,
			Status:     job.Status,
			Cached:     job.Cached,
		}
		if job.Result != nil {
			item.Title = job.Result.Meta.UserProvidedTitle
		}
		items = append(items, item)
	}
	return items, nil
}

// InvalidateCache clears the cache index. Job records stay retrievable.
func (s *NoteService) InvalidateCache(ctx context.Context) error {
	if err := s.store.InvalidateCache(ctx); err != nil {
		return err
	}
	s.logger.Info("cache invalidated")
	return nil
}

func (s *NoteService) broadcastStatus(jobID string, status model.JobStatus) {
	if s.hub != nil {
		s.hub.BroadcastStatus(jobID, status)
	}
}
