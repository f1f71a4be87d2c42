package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/notmat/api/internal/client"
	"github.com/notmat/api/internal/model"
)

// Transformer is the external generative collaborator: raw text in,
// structured note out. Failures surface as the job's terminal error.
type Transformer interface {
	TransformNote(ctx context.Context, rawText string, options model.NoteOptions) (*model.NoteResult, error)
}

// AIProvider implements Transformer on top of the Gemini API.
type AIProvider struct {
	gemini *client.GeminiClient
	logger *slog.Logger
}

func NewAIProvider(geminiClient *client.GeminiClient, logger *slog.Logger) *AIProvider {
	return &AIProvider{
		gemini: geminiClient,
		logger: logger,
	}
}

func (p *AIProvider) TransformNote(ctx context.Context, rawText string, options model.NoteOptions) (*model.NoteResult, error) {
	// Use a mock response if the client is not configured
	if p.gemini == nil || !p.gemini.IsConfigured() {
		return p.transformMock(rawText), nil
	}

	prompt := fmt.Sprintf("%s\n\n%s\n\nNow process this note:\n\n%s\n\nRespond with valid JSON only.",
		BuildPrompt(options), FewShotExamples(), rawText)

	p.logger.Info("calling gemini", "text_length", len(rawText))

	content, err := p.gemini.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("AI transform failed: %w", err)
	}

	var result model.NoteResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return sanitizeResult(&result), nil
}

// transformMock builds a deterministic structure from the note's lines.
// It keeps the service usable in development without an API key.
func (p *AIProvider) transformMock(rawText string) *model.NoteResult {
	var tasks []model.Task
	var plain strings.Builder
	var md strings.Builder
	var html strings.Builder

	md.WriteString("# Notes\n\n")
	html.WriteString("<h1>Notes</h1><ul>")
	plain.WriteString("Notes\n\n")

	i := 0
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		i++
		tasks = append(tasks, model.Task{
			ID:           fmt.Sprintf("t%d", i),
			Text:         line,
			Granularity:  "fine",
			Dependencies: []string{},
		})
		md.WriteString("- [ ] " + line + "\n")
		html.WriteString("<li><input type='checkbox'> " + line + "</li>")
		plain.WriteString("- " + line + "\n")
	}
	html.WriteString("</ul>")

	return &model.NoteResult{
		Meta: model.NoteMeta{
			DetectedLanguage: "en",
			TopTags:          []string{"notes"},
			Dates:            []string{},
			Priorities:       []string{},
		},
		Structure: []model.StructureNode{
			{
				ID:       "s1",
				Title:    "Notes",
				Content:  "",
				Tasks:    tasks,
				Children: []model.StructureNode{},
			},
		},
		AmbiguousSegments: []model.AmbiguousSegment{},
		Contradictions:    []model.Contradiction{},
		Exports: model.NoteExports{
			Markdown:  md.String(),
			HTML:      html.String(),
			PlainText: plain.String(),
		},
	}
}
