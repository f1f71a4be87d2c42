package model

import "time"

// NoteOptions controls how a note is transformed. UseCached is a tri-state:
// nil and true both allow cache reuse, only an explicit false bypasses it.
type NoteOptions struct {
	Tone                 Tone       `json:"tone,omitempty"       validate:"omitempty,oneof=formal casual professional original"`
	FormattingStrictness Strictness `json:"formattingStrictness,omitempty" validate:"omitempty,oneof=strict moderate loose"`
	ExportMode           ExportMode `json:"exportMode,omitempty" validate:"omitempty,oneof=markdown html text all"`
	UseCached            *bool      `json:"useCached,omitempty"`
}

// CacheEnabled reports whether cache lookup is allowed for these options.
func (o NoteOptions) CacheEnabled() bool {
	return o.UseCached == nil || *o.UseCached
}

// CreateNoteRequest is the body of POST /api/v1/notes
type CreateNoteRequest struct {
	RawText string      `json:"rawText" validate:"required,min=1,max=50000"`
	Options NoteOptions `json:"options"`
}

// CreateNoteResponse is returned when a note is submitted
type CreateNoteResponse struct {
	JobID      string `json:"jobId"`
	RevisionID string `json:"revisionId"`
	Cached     bool   `json:"cached"`
}

// NoteStatusResponse is the polling snapshot of a revision
type NoteStatusResponse struct {
	Status JobStatus `json:"status"`
	Cached bool      `json:"cached"`
	Error  *string   `json:"error,omitempty"`
}

// Task is a single actionable item extracted from the note
type Task struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Granularity  string   `json:"granularity"` // "broad" or "fine"
	Steps        []string `json:"steps,omitempty"`
	Priority     *string  `json:"priority"`
	Dependencies []string `json:"dependencies"`
}

// StructureNode is one section of the transformed note hierarchy
type StructureNode struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Tasks    []Task          `json:"tasks"`
	Children []StructureNode `json:"children"`
}

// AmbiguousSegment marks text the model could not confidently place
type AmbiguousSegment struct {
	Text         string `json:"text"`
	LocationHint string `json:"locationHint"`
}

// Contradiction pairs statements in the note that conflict
type Contradiction struct {
	Segments []string `json:"segments"`
	Note     string   `json:"note"`
}

// NoteMeta holds metadata extracted from the note
type NoteMeta struct {
	RevisionID        string   `json:"revisionId"`
	UserProvidedTitle string   `json:"userProvidedTitle,omitempty"`
	DetectedLanguage  string   `json:"detectedLanguage"`
	TopTags           []string `json:"topTags"`
	Dates             []string `json:"dates"`
	Priorities        []string `json:"priorities"`
}

// NoteExports holds the three canonical renderings of the result
type NoteExports struct {
	Markdown  string `json:"markdown"`
	HTML      string `json:"html"`
	PlainText string `json:"plainText"`
}

// NoteResult is the structured output of the transform
type NoteResult struct {
	Meta              NoteMeta           `json:"meta"`
	Structure         []StructureNode    `json:"structure"`
	AmbiguousSegments []AmbiguousSegment `json:"ambiguousSegments"`
	Contradictions    []Contradiction    `json:"contradictions"`
	Exports           NoteExports        `json:"exports"`
}

// NoteResultResponse is the result envelope returned to callers,
// the stored result enriched with job bookkeeping.
type NoteResultResponse struct {
	NoteResult
	ModelUsed   string     `json:"modelUsed,omitempty"`
	Cached      bool       `json:"cached"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// NoteListItem is one row of GET /api/v1/notes
type NoteListItem struct {
	RevisionID string    `json:"revisionId"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     JobStatus `json:"status"`
	Cached     bool      `json:"cached"`
}
