// Package replay runs a recorded transcript through the synthesis engine with a
// simulated clock, asking a synchronous assistant for each slide.
package replay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	"github.com/xpanvictor/liveslides/pkg/assistant"
	"github.com/xpanvictor/liveslides/pkg/realtime"
)

// replyPayload mirrors the reply contract for structured output.
type replyPayload struct {
	LogicalBreakDetected bool `json:"logical_break_detected"`
	Slide                struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"slide"`
	SummarizedUpTo string `json:"summarized_up_to"`
}

var replySchema = &assistant.JSONSchema{
	Name:        "SlideReply",
	Description: "Logical break decision and the slide that summarizes the excerpt",
	Schema:      assistant.GenerateSchema[replyPayload](),
}

// Result summarizes one replay.
type Result struct {
	Slides    []slides.Slide
	Fragments int
	Requests  int
	Skipped   int
	Rejected  int
}

type Runner struct {
	assistant assistant.Assistant
	tuning    slides.Tuning
	template  string
	start     time.Time
	logger    *Logger.Logger
}

func NewRunner(a assistant.Assistant, tuning slides.Tuning, template string, logger *Logger.Logger) *Runner {
	if logger == nil {
		logger = Logger.Nop()
	}
	return &Runner{
		assistant: a,
		tuning:    tuning,
		template:  template,
		start:     time.Unix(0, 0).UTC(),
		logger:    logger,
	}
}

// Fragments returns the non-empty lines of r, trimmed.
func Fragments(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return out, nil
}

// Run appends each fragment, advances the clock by one interval and applies the
// trigger policy, exactly as the live timer would. A final step after the last
// fragment gives the tail of the transcript its chance.
func (r *Runner) Run(ctx context.Context, fragments []string) (Result, error) {
	engine := slides.NewEngine(r.tuning, r.template)
	res := Result{Fragments: len(fragments)}
	now := r.start

	for i := 0; i <= len(fragments); i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if i < len(fragments) {
			engine.AddTranscript(fragments[i])
		}
		now = now.Add(r.tuning.Interval)

		if err := r.step(ctx, engine, now, &res); err != nil {
			return res, err
		}
	}

	res.Slides = engine.State().Slides()
	return res, nil
}

func (r *Runner) step(ctx context.Context, engine *slides.Engine, now time.Time, res *Result) error {
	prompt, err := engine.PrepareAnalysis(now)
	if errors.Is(err, slides.ErrInsufficientContent) || errors.Is(err, slides.ErrThrottled) {
		return nil
	}
	if err != nil {
		return err
	}

	res.Requests++
	out, err := r.assistant.ProcessPrompt(ctx, assistant.NewAssistantInput(prompt, realtime.AnalysisInput, replySchema))
	if err != nil {
		return fmt.Errorf("%s analysis: %w", r.assistant.Name(), err)
	}

	outcome, err := engine.ApplyReply(out.Text, now)
	switch {
	case err != nil:
		res.Rejected++
		r.logger.Warnf("reply rejected: %v", err)
	case outcome.Kind == slides.OutcomeSlide:
		r.logger.Infof("slide %d at %s: %s", outcome.Index+1, now.Sub(r.start), outcome.Slide.Title)
	default:
		res.Skipped++
	}
	return nil
}
