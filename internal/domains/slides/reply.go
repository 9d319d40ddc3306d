package slides

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxReplySpan bounds the object extracted by the fallback parse.
const MaxReplySpan = 64 << 10

var (
	ErrNoJSON         = errors.New("slides: no JSON object in reply")
	ErrMalformedReply = errors.New("slides: malformed reply")
	ErrInvalidSlide   = errors.New("slides: slide title and content are required")
)

// ReplySource records which parse path produced a Reply.
type ReplySource int

const (
	SourceStrict ReplySource = iota
	SourceExtracted
)

func (s ReplySource) String() string {
	if s == SourceExtracted {
		return "extracted"
	}
	return "strict"
}

type ReplySlide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Reply is the model's verdict on the unsummarized excerpt.
type Reply struct {
	LogicalBreak   bool        `json:"logical_break_detected"`
	Slide          *ReplySlide `json:"slide,omitempty"`
	SummarizedUpTo string      `json:"summarized_up_to,omitempty"`

	Source ReplySource `json:"-"`
}

// ParseReply tries the whole payload as a JSON object first and falls back to the
// span between the first '{' and the last '}'.
func ParseReply(text string) (Reply, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Reply{}, ErrNoJSON
	}

	var r Reply
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &r); err == nil {
			r.Source = SourceStrict
			return r, nil
		}
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end < start {
		return Reply{}, ErrNoJSON
	}
	span := trimmed[start : end+1]
	if len(span) > MaxReplySpan {
		return Reply{}, fmt.Errorf("%w: object exceeds %d bytes", ErrMalformedReply, MaxReplySpan)
	}

	r = Reply{}
	if err := json.Unmarshal([]byte(span), &r); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	r.Source = SourceExtracted
	return r, nil
}

// Validate checks the slide fields of a reply that reports a break.
func (r Reply) Validate() error {
	if !r.LogicalBreak {
		return nil
	}
	if r.Slide == nil || strings.TrimSpace(r.Slide.Title) == "" || strings.TrimSpace(r.Slide.Content) == "" {
		return ErrInvalidSlide
	}
	return nil
}
