package service

import (
	"fmt"

	"github.com/notmat/api/internal/model"
)

// BuildPrompt assembles the system prompt for a transform request.
func BuildPrompt(options model.NoteOptions) string {
	strictness := options.FormattingStrictness
	if strictness == "" {
		strictness = model.StrictnessModerate
	}

	return fmt.Sprintf(`You are an expert note transformation AI. Your task is to transform raw, unstructured plain-text notes into a hierarchical, task-based structure with metadata extraction.

**TRANSFORMATION RULES:**

1. **Input**: Raw plain-text (up to 2000 words), possibly multilingual, chaotic structure
2. **Output**: JSON object with the following exact structure:

{
  "meta": {
    "revisionId": "string (UUID)",
    "userProvidedTitle": "string (optional)",
    "detectedLanguage": "string (ISO language code)",
    "topTags": ["array of strings"],
    "dates": ["array of date strings"],
    "priorities": ["array of priority strings"]
  },
  "structure": [
    {
      "id": "string (unique ID)",
      "title": "string (section title)",
      "content": "string (section content)",
      "tasks": [
        {
          "id": "string (unique task ID)",
          "text": "string (task description)",
          "granularity": "broad" | "fine",
          "steps": ["array of strings (optional)"],
          "priority": "string or null",
          "dependencies": ["array of task IDs"]
        }
      ],
      "children": [nested structure nodes]
    }
  ],
  "ambiguousSegments": [
    {"text": "string (ambiguous text)", "locationHint": "string (where it appears)"}
  ],
  "contradictions": [
    {"segments": ["array of contradicting statements"], "note": "string (explanation)"}
  ],
  "exports": {
    "markdown": "string (markdown export)",
    "html": "string (HTML export)",
    "plainText": "string (plain text export)"
  }
}

**PROCESSING GUIDELINES:**

1. **Grouping**: Group content by task-based semantics
2. **Hierarchy**: Create variable-depth hierarchy based on content structure
3. **Tasks**: Detect broad vs. fine tasks based on content granularity
4. **Tone**: %s
5. **Formatting**: %s formatting strictness
6. **Clarity**: Light grammar/clarity rewrites while preserving original phrasing
7. **Redundancy**: Remove redundancies but keep unique ideas
8. **Titles**: Generate section titles from extracted key phrases matching original tone
9. **Metadata**: Extract dates, tags, and inferred priorities
10. **Ambiguity**: Bracket ambiguous segments in the ambiguousSegments array
11. **Contradictions**: Highlight contradictions in the contradictions array
12. **Multilingual**: Support multilingual content

**EXPORT FORMATS:**
- Generate all three formats: Markdown, HTML, and plain text
- Ensure exports are well-formatted and complete
- Apply the tone style consistently across all export formats

**CRITICAL OUTPUT RULES:**
- Return ONLY the JSON object structure described above
- DO NOT include any task instructions, meta-commentary, or thinking process
- DO NOT include phrases like "Conduct a comprehensive", "Perform", "Ensure", etc.
- DO NOT add priority markers (high/medium/low) outside the JSON structure
- The ONLY acceptable output is the JSON object - nothing before, nothing after`,
		toneInstructions(options.Tone), strictness)
}

func toneInstructions(tone model.Tone) string {
	switch tone {
	case model.ToneOriginal:
		return `**ORIGINAL TONE MODE:**
- Preserve the user's exact writing style, voice, and personality
- Keep informal language, slang, abbreviations, and colloquialisms exactly as written
- Maintain sentence structure and punctuation style (including fragments, run-ons)
- Preserve emphasis markers (!!!, ???, ALL CAPS, etc.)
- Only fix obvious typos or critical grammar errors that obscure meaning
- DO NOT formalize, polish, or "improve" the writing style`

	case model.ToneProfessional:
		return `**PROFESSIONAL TONE MODE:**
- Transform content into clear, formal business communication
- Use complete sentences with proper grammar and punctuation
- Replace slang with professional equivalents ("had idea" becomes "Proposed concept")
- Eliminate casual punctuation (!!!, ???, ...) and replace with periods
- Use action-oriented, decisive language
- Structure information logically with clear headers and transitions
- Remove emotional markers and subjective language`

	case model.ToneCasual:
		return `**CASUAL TONE MODE:**
- Transform into friendly, conversational, but readable style
- Clean up fragmented thoughts into flowing, natural sentences
- Use contractions naturally (can't, won't, let's)
- Keep personal pronouns and first-person perspective
- Fix obvious errors but maintain informal charm
- Keep enthusiasm markers but make them readable (!! becomes !)`

	case model.ToneFormal:
		return `**FORMAL TONE MODE:**
- Transform into academic or official document style
- Use sophisticated vocabulary and complex sentence structures
- Eliminate all contractions (can't becomes cannot)
- Apply strict grammatical rules and formal punctuation
- Use passive voice where appropriate for objectivity
- Maintain professional distance and objectivity`

	default:
		return "Preserve original tone and style"
	}
}

// FewShotExamples returns a worked example appended to the prompt so the
// model anchors on the exact output shape.
func FewShotExamples() string {
	return `**EXAMPLE (Short note - ORIGINAL TONE):**

Input:
"Buy groceries tomorrow. Milk, eggs, bread. Also need to call plumber about leaky faucet."

Output:
{
  "meta": {
    "revisionId": "generated-uuid",
    "detectedLanguage": "en",
    "topTags": ["errands", "shopping", "home maintenance"],
    "dates": ["tomorrow"],
    "priorities": []
  },
  "structure": [
    {
      "id": "s1",
      "title": "Errands and Tasks",
      "content": "",
      "tasks": [
        {
          "id": "t1",
          "text": "Buy groceries tomorrow",
          "granularity": "broad",
          "steps": ["Milk", "Eggs", "Bread"],
          "priority": null,
          "dependencies": []
        },
        {
          "id": "t2",
          "text": "Call plumber about leaky faucet",
          "granularity": "fine",
          "priority": null,
          "dependencies": []
        }
      ],
      "children": []
    }
  ],
  "ambiguousSegments": [],
  "contradictions": [],
  "exports": {
    "markdown": "# Errands and Tasks\n\n- [ ] Buy groceries tomorrow\n  - Milk\n  - Eggs\n  - Bread\n- [ ] Call plumber about leaky faucet\n",
    "html": "<h1>Errands and Tasks</h1><ul><li><input type='checkbox'> Buy groceries tomorrow<ul><li>Milk</li><li>Eggs</li><li>Bread</li></ul></li><li><input type='checkbox'> Call plumber about leaky faucet</li></ul>",
    "plainText": "Errands and Tasks\n\nBuy groceries tomorrow:\n- Milk\n- Eggs\n- Bread\n\nCall plumber about leaky faucet"
  }
}`
}
