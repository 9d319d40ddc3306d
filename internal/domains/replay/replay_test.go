package replay

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/pkg/assistant"
)

type scripted struct {
	replies []string
	prompts []assistant.AssistantInput
	err     error
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) ProcessPrompt(_ context.Context, in assistant.AssistantInput) (*assistant.AssistantOutput, error) {
	s.prompts = append(s.prompts, in)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.replies) == 0 {
		return &assistant.AssistantOutput{Text: `{"logical_break_detected": false}`}, nil
	}
	text := s.replies[0]
	s.replies = s.replies[1:]
	return &assistant.AssistantOutput{Text: text}, nil
}

var tuning = slides.Tuning{Interval: 20 * time.Second, MinChars: 20, MinGap: 5 * time.Second}

func TestFragments(t *testing.T) {
	got, err := Fragments(strings.NewReader("  first line \n\n\tsecond\n   \nthird"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first line", "second", "third"}, got)
}

func TestRun_BuildsSlides(t *testing.T) {
	a := &scripted{replies: []string{
		`{"logical_break_detected": true, "slide": {"title": "Intro", "content": "- hello"}, "summarized_up_to": "welcome all"}`,
		`{"logical_break_detected": false}`,
		"Sure! " + `{"logical_break_detected": true, "slide": {"title": "Numbers", "content": "- growth"}}` + " Hope that helps.",
	}}
	r := NewRunner(a, tuning, "", nil)

	res, err := r.Run(context.Background(), []string{
		"hello and welcome all",
		"today we look at the numbers",
		"revenue is up again",
	})
	require.NoError(t, err)

	require.Len(t, res.Slides, 2)
	assert.Equal(t, "Intro", res.Slides[0].Title)
	assert.Equal(t, "Numbers", res.Slides[1].Title)
	assert.True(t, res.Slides[1].Timestamp.After(res.Slides[0].Timestamp))
	assert.Equal(t, 3, res.Fragments)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Rejected)

	first := a.prompts[0]
	assert.Contains(t, first.Instructions, "hello and welcome all")
	require.NotNil(t, first.Schema)
	assert.Equal(t, "SlideReply", first.Schema.Name)
	// the second prompt only offers what the first slide did not consume
	assert.Contains(t, a.prompts[1].Instructions, "New transcript since the previous slide:\ntoday we look at the numbers\n")
	assert.Contains(t, a.prompts[1].Instructions, "Previous slide title: Intro")
	assert.Equal(t, 3, res.Requests)
}

func TestRun_ShortTranscriptNeverAsks(t *testing.T) {
	a := &scripted{}
	res, err := NewRunner(a, tuning, "", nil).Run(context.Background(), []string{"hi", "there"})
	require.NoError(t, err)
	assert.Empty(t, res.Slides)
	assert.Zero(t, res.Requests)
	assert.Empty(t, a.prompts)
}

func TestRun_RejectsMalformedReply(t *testing.T) {
	a := &scripted{replies: []string{"no json at all"}}
	res, err := NewRunner(a, tuning, "", nil).Run(context.Background(), []string{"a sufficiently long first fragment"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rejected)
	assert.Empty(t, res.Slides)
}

func TestRun_AssistantErrorAborts(t *testing.T) {
	a := &scripted{err: errors.New("quota exceeded")}
	_, err := NewRunner(a, tuning, "", nil).Run(context.Background(), []string{"a sufficiently long first fragment"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(&scripted{}, tuning, "", nil).Run(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
