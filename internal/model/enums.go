package model

// Job status
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions are permitted from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// Tone modes
type Tone string

const (
	ToneOriginal     Tone = "original"
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFormal       Tone = "formal"
)

// Formatting strictness levels
type Strictness string

const (
	StrictnessStrict   Strictness = "strict"
	StrictnessModerate Strictness = "moderate"
	StrictnessLoose    Strictness = "loose"
)

// Export formats
type ExportFormat string

const (
	ExportMarkdown ExportFormat = "markdown"
	ExportHTML     ExportFormat = "html"
	ExportText     ExportFormat = "text"
)

var ValidExportFormats = []ExportFormat{ExportMarkdown, ExportHTML, ExportText}

// Export modes accepted at note creation
type ExportMode string

const (
	ExportModeMarkdown ExportMode = "markdown"
	ExportModeHTML     ExportMode = "html"
	ExportModeText     ExportMode = "text"
	ExportModeAll      ExportMode = "all"
)
