package service

import (
	"regexp"
	"strings"

	"github.com/notmat/api/internal/model"
)

// The model occasionally leaks its own planning text into the output:
// imperative instruction lines, bare priority markers, "task:" prefixes.
// These patterns strip such lines from every rendered field.
var (
	instructionLineRe = regexp.MustCompile(`(?i)^(describe|explain|outline|illustrate|enumerate|identify|summarize|conduct|perform|ensure|complete|analyze|review|assess|evaluate|verify|validate|check|update|modify|add|remove|delete|create|generate|build|implement|fix|resolve|address|handle|discuss|clarify|detail|specify|state|list|define|compare|contrast|examine)\s`)
	priorityMarkerRe  = regexp.MustCompile(`(?i)^(high|medium|low|critical|urgent|priority:\s*(high|medium|low))$`)
	prioritySuffixRe  = regexp.MustCompile(`(?i)(high|medium|low|critical|urgent)$`)
	actionPairRe      = regexp.MustCompile(`(?i)^(develop|execute|implement|establish|maintain|monitor|coordinate|facilitate|design|plan|create|build)\s+(and|or)\s+`)
	taskMarkerRe      = regexp.MustCompile(`(?i)^(task:|todo:|action:|step:|note:)`)
	blankRunRe        = regexp.MustCompile(`\n{3,}`)
)

func sanitizeText(text string) string {
	if text == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			filtered = append(filtered, line)
			continue
		}
		if instructionLineRe.MatchString(trimmed) ||
			priorityMarkerRe.MatchString(trimmed) ||
			prioritySuffixRe.MatchString(trimmed) ||
			actionPairRe.MatchString(trimmed) ||
			taskMarkerRe.MatchString(trimmed) {
			continue
		}
		filtered = append(filtered, line)
	}

	out := strings.Join(filtered, "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func sanitizeTask(task model.Task) model.Task {
	task.Text = sanitizeText(task.Text)
	for i, step := range task.Steps {
		task.Steps[i] = sanitizeText(step)
	}
	return task
}

func sanitizeNode(node model.StructureNode) model.StructureNode {
	node.Content = sanitizeText(node.Content)
	for i, task := range node.Tasks {
		node.Tasks[i] = sanitizeTask(task)
	}
	for i, child := range node.Children {
		node.Children[i] = sanitizeNode(child)
	}
	return node
}

// sanitizeResult strips leaked model planning text from the exports and
// the structure tree.
func sanitizeResult(result *model.NoteResult) *model.NoteResult {
	result.Exports.Markdown = sanitizeText(result.Exports.Markdown)
	result.Exports.HTML = sanitizeText(result.Exports.HTML)
	result.Exports.PlainText = sanitizeText(result.Exports.PlainText)

	for i, node := range result.Structure {
		result.Structure[i] = sanitizeNode(node)
	}
	return result
}
