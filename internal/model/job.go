package model

import (
	"errors"
	"time"
)

var ErrInvalidTransition = errors.New("invalid job status transition")

// NotePayload is the immutable request a job was created from.
type NotePayload struct {
	UserID  string      `json:"userId"`
	RawText string      `json:"rawText"`
	Options NoteOptions `json:"options"`
}

// Job represents one tracked unit of transform work (a note revision).
// Payload never changes after creation; Result and Error are written once,
// by the worker that moves the job into a terminal state.
type Job struct {
	ID             string      `json:"id"`
	Status         JobStatus   `json:"status"`
	Cached         bool        `json:"cached"`
	Payload        NotePayload `json:"payload"`
	Result         *NoteResult `json:"result,omitempty"`
	Error          *string     `json:"error,omitempty"`
	ModelUsed      string      `json:"modelUsed,omitempty"`
	ExportMarkdown string      `json:"exportMarkdown,omitempty"`
	ExportHTML     string      `json:"exportHtml,omitempty"`
	ExportText     string      `json:"exportText,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	ProcessedAt    *time.Time  `json:"processedAt,omitempty"`
}

// NewJob creates a job in the initial queued state.
func NewJob(id, userID, rawText string, options NoteOptions) *Job {
	return &Job{
		ID:        id,
		Status:    JobStatusQueued,
		Payload:   NotePayload{UserID: userID, RawText: rawText, Options: options},
		CreatedAt: time.Now().UTC(),
	}
}

// Transition moves the job to next, enforcing
// queued → processing → done|failed. Terminal states reject any
// further transition, so result/error stay write-once.
func (j *Job) Transition(next JobStatus) error {
	if j.Status.Terminal() {
		return ErrInvalidTransition
	}
	switch next {
	case JobStatusProcessing:
		if j.Status != JobStatusQueued {
			return ErrInvalidTransition
		}
	case JobStatusDone, JobStatusFailed:
		if j.Status != JobStatusProcessing {
			return ErrInvalidTransition
		}
	default:
		return ErrInvalidTransition
	}
	j.Status = next
	return nil
}

// Complete records the transform output and marks the job done.
func (j *Job) Complete(result *NoteResult, modelUsed string) error {
	if err := j.Transition(JobStatusDone); err != nil {
		return err
	}
	now := time.Now().UTC()
	j.Result = result
	j.ModelUsed = modelUsed
	j.ExportMarkdown = result.Exports.Markdown
	j.ExportHTML = result.Exports.HTML
	j.ExportText = result.Exports.PlainText
	j.ProcessedAt = &now
	return nil
}

// Fail records the transform error and marks the job failed.
func (j *Job) Fail(errMsg string) error {
	if err := j.Transition(JobStatusFailed); err != nil {
		return err
	}
	j.Error = &errMsg
	return nil
}

// Export returns the stored rendering for the given format.
func (j *Job) Export(format ExportFormat) (string, bool) {
	switch format {
	case ExportMarkdown:
		return j.ExportMarkdown, true
	case ExportHTML:
		return j.ExportHTML, true
	case ExportText:
		return j.ExportText, true
	}
	return "", false
}
