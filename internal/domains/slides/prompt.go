package slides

import "strings"

const (
	PlaceholderLastTitle      = "{{LAST_SLIDE_TITLE}}"
	PlaceholderLastContent    = "{{LAST_SLIDE_CONTENT}}"
	PlaceholderLastSummarized = "{{LAST_SUMMARIZED_TRANSCRIPT}}"
	PlaceholderUnsummarized   = "{{UNSUMMARIZED_TRANSCRIPT}}"
	emptyContext              = "(none)"
)

// DefaultPrompt is used when the user has not configured a template.
const DefaultPrompt = `You turn a live talk into presentation slides.

Previous slide title: {{LAST_SLIDE_TITLE}}
Previous slide content:
{{LAST_SLIDE_CONTENT}}

Transcript already covered by slides:
{{LAST_SUMMARIZED_TRANSCRIPT}}

New transcript since the previous slide:
{{UNSUMMARIZED_TRANSCRIPT}}

Decide whether the new transcript completes a logical section that deserves its own slide.
Reply with a single JSON object and nothing else:
{"logical_break_detected": true|false, "slide": {"title": "...", "content": "markdown bullets"}, "summarized_up_to": "last few words of the new transcript covered by the slide"}
Omit "slide" and "summarized_up_to" when logical_break_detected is false.`

// PromptContext holds the values substituted into a prompt template.
type PromptContext struct {
	LastSlideTitle   string
	LastSlideContent string
	LastSummarized   string
	Unsummarized     string
}

// BuildPrompt substitutes the four placeholders literally. Empty context values
// render as "(none)".
func BuildPrompt(template string, pc PromptContext) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPrompt
	}
	r := strings.NewReplacer(
		PlaceholderLastTitle, orNone(pc.LastSlideTitle),
		PlaceholderLastContent, orNone(pc.LastSlideContent),
		PlaceholderLastSummarized, orNone(pc.LastSummarized),
		PlaceholderUnsummarized, orNone(pc.Unsummarized),
	)
	return r.Replace(template)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyContext
	}
	return s
}
