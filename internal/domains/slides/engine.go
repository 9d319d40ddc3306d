package slides

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	ErrInsufficientContent = errors.New("slides: not enough new transcript")
	ErrThrottled           = errors.New("slides: too soon after the last slide")
)

// Tuning controls when an analysis is requested.
type Tuning struct {
	Interval time.Duration
	MinChars int
	MinGap   time.Duration
}

func DefaultTuning() Tuning {
	return Tuning{Interval: 20 * time.Second, MinChars: 50, MinGap: 5 * time.Second}
}

// OutcomeKind is the result class of ApplyReply.
type OutcomeKind int

const (
	OutcomeIgnored OutcomeKind = iota
	OutcomeSkipped
	OutcomeSlide
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSlide:
		return "slide"
	default:
		return "ignored"
	}
}

type Outcome struct {
	Kind   OutcomeKind
	Slide  Slide
	Index  int
	Cursor int
	Source ReplySource
}

// Engine decides when to ask for a slide and folds the answers into State.
type Engine struct {
	state    *State
	tuning   Tuning
	template string
}

func NewEngine(tuning Tuning, template string) *Engine {
	return &Engine{state: NewState(), tuning: tuning, template: template}
}

func (e *Engine) State() *State { return e.state }

func (e *Engine) Tuning() Tuning { return e.tuning }

func (e *Engine) SetTuning(t Tuning) { e.tuning = t }

func (e *Engine) SetTemplate(template string) { e.template = template }

func (e *Engine) Reset() { e.state.Reset() }

func (e *Engine) AddTranscript(fragment string) bool {
	return e.state.AppendTranscript(fragment)
}

// throttled reports whether a slide was produced less than MinGap before now.
func (e *Engine) throttled(now time.Time) bool {
	return e.within(e.state.lastAt, now)
}

// within reports whether later falls less than MinGap after earlier.
func (e *Engine) within(earlier, later time.Time) bool {
	if e.tuning.MinGap <= 0 || earlier.IsZero() || later.IsZero() {
		return false
	}
	return later.Sub(earlier) < e.tuning.MinGap
}

// PrepareAnalysis runs the trigger checks and returns the prompt to send. On
// success the transcript length is remembered so the reply resolves against the
// excerpt that was offered.
func (e *Engine) PrepareAnalysis(now time.Time) (string, error) {
	s := e.state
	excerpt := s.Unsummarized()
	if n := utf8.RuneCountInString(excerpt); n < e.tuning.MinChars {
		return "", fmt.Errorf("%w: %d of %d characters", ErrInsufficientContent, n, e.tuning.MinChars)
	}
	if e.throttled(now) {
		return "", ErrThrottled
	}
	// one request in flight per gap
	if s.pending() && e.within(s.pendingAt, now) {
		return "", fmt.Errorf("%w: analysis already in flight", ErrThrottled)
	}

	pc := PromptContext{LastSummarized: s.lastExcerpt, Unsummarized: excerpt}
	if s.lastSlide != nil {
		pc.LastSlideTitle = s.lastSlide.Title
		pc.LastSlideContent = s.lastSlide.Content
	}
	s.pendingEnd = len(s.transcript)
	s.pendingAt = now
	s.sentAt = now
	return BuildPrompt(e.template, pc), nil
}

// ApplyReply interprets the final text of a response. State changes only when the
// outcome is OutcomeSlide.
func (e *Engine) ApplyReply(text string, now time.Time) (Outcome, error) {
	s := e.state
	if strings.TrimSpace(text) == "" {
		return Outcome{Kind: OutcomeIgnored, Index: s.current, Cursor: s.cursor}, nil
	}

	end := len(s.transcript)
	if s.pending() && s.pendingEnd >= s.cursor && s.pendingEnd <= end {
		end = s.pendingEnd
	}
	sent := s.sentAt
	if s.pending() {
		sent = s.pendingAt
	}
	// replies with nothing in flight belong to the latest request
	throttledRequest := e.within(s.slideSentAt, sent)
	s.pendingEnd = -1
	s.pendingAt = time.Time{}

	reply, err := ParseReply(text)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Kind: OutcomeSkipped, Index: s.current, Cursor: s.cursor, Source: reply.Source}
	if !reply.LogicalBreak {
		return out, nil
	}
	if err := reply.Validate(); err != nil {
		return Outcome{}, err
	}
	if e.throttled(now) || throttledRequest {
		return Outcome{}, ErrThrottled
	}

	raw := s.transcript[s.cursor:end]
	lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	excerpt := strings.TrimSpace(raw)

	consumed := excerpt
	if marker := reply.SummarizedUpTo; marker != "" {
		i := strings.Index(excerpt, marker)
		if i < 0 {
			// fall back to the trimmed marker
			marker = strings.TrimSpace(marker)
			if marker != "" {
				i = strings.Index(excerpt, marker)
			}
		}
		if i >= 0 {
			consumed = excerpt[:i+len(marker)]
		}
	}

	ts := now
	if n := len(s.slides); n > 0 && ts.Before(s.slides[n-1].Timestamp) {
		ts = s.slides[n-1].Timestamp
	}
	slide := Slide{
		Title:     strings.TrimSpace(reply.Slide.Title),
		Content:   strings.TrimSpace(reply.Slide.Content),
		Timestamp: ts,
	}

	s.slides = append(s.slides, slide)
	s.cursor += lead + len(consumed)
	s.lastExcerpt = consumed
	last := slide
	s.lastSlide = &last
	s.lastAt = now
	s.slideSentAt = sent
	s.current = len(s.slides) - 1

	out.Kind = OutcomeSlide
	out.Slide = slide
	out.Index = s.current
	out.Cursor = s.cursor
	return out, nil
}
