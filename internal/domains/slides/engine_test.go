package slides

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

const breakReply = `{"logical_break_detected": true, "slide": {"title": "T", "content": "- point"}%s}`

func slideReply(marker string) string {
	if marker == "" {
		return strings.Replace(breakReply, "%s", "", 1)
	}
	return strings.Replace(breakReply, "%s", `, "summarized_up_to": "`+marker+`"`, 1)
}

func newTestEngine() *Engine {
	return NewEngine(DefaultTuning(), "")
}

func TestApplyReply_MarkerFoundBySubstring(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript("abcdefghij")

	out, err := e.ApplyReply(slideReply("cde"), t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlide, out.Kind)
	assert.Equal(t, 5, e.State().Cursor())
	assert.Equal(t, "abcde", e.State().LastExcerpt())
	assert.Equal(t, "fghij", e.State().Unsummarized())
}

func TestApplyReply_MarkerAbsentConsumesExcerpt(t *testing.T) {
	for _, marker := range []string{"", "zzz"} {
		e := newTestEngine()
		e.AddTranscript("abcdefghij")

		_, err := e.ApplyReply(slideReply(marker), t0)
		require.NoError(t, err)
		assert.Equal(t, 10, e.State().Cursor(), "marker %q", marker)
		assert.Equal(t, "", e.State().Unsummarized())
	}
}

func TestApplyReply_CursorSkipsLeadingSpace(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript("abcdefghij")
	_, err := e.ApplyReply(slideReply("cde"), t0)
	require.NoError(t, err)

	e.AddTranscript("klm nop")
	// transcript: "abcdefghij klm nop", cursor 5 -> raw "fghij klm nop"
	_, err = e.ApplyReply(slideReply("klm"), t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, len("abcdefghij klm"), e.State().Cursor())

	e.AddTranscript("qrs")
	_, err = e.ApplyReply(slideReply("qrs"), t0.Add(20*time.Second))
	require.NoError(t, err)
	assert.Equal(t, len(e.State().Transcript()), e.State().Cursor())
	assert.Equal(t, "nop qrs", e.State().LastExcerpt())
}

func TestApplyReply_NoBreakIsNoop(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript("abcdefghij")
	_, err := e.ApplyReply(slideReply("cde"), t0)
	require.NoError(t, err)
	e.AddTranscript("more words")

	before := e.State().Slides()
	at := e.State().LastSummarizedAt()
	for i := 0; i < 3; i++ {
		out, err := e.ApplyReply(`{"logical_break_detected": false}`, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out.Kind)
	}
	out, err := e.ApplyReply(`{}`, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out.Kind)

	assert.Equal(t, 5, e.State().Cursor())
	assert.Equal(t, before, e.State().Slides())
	assert.Equal(t, at, e.State().LastSummarizedAt())
}

func TestApplyReply_ErrorsLeaveStateUntouched(t *testing.T) {
	cases := []struct {
		reply string
		want  error
	}{
		{"not json", ErrNoJSON},
		{`{"logical_break_detected": true,}`, ErrMalformedReply},
		{`{"logical_break_detected": true}`, ErrInvalidSlide},
		{`{"logical_break_detected": true, "slide": {"title": "T"}}`, ErrInvalidSlide},
	}
	for _, tc := range cases {
		e := newTestEngine()
		e.AddTranscript("abcdefghij")
		_, err := e.ApplyReply(tc.reply, t0)
		assert.ErrorIs(t, err, tc.want, tc.reply)
		assert.Equal(t, 0, e.State().Cursor())
		assert.Equal(t, 0, e.State().Len())
		assert.True(t, e.State().LastSummarizedAt().IsZero())
	}
}

func TestApplyReply_EmptyIgnored(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript("abcdefghij")
	out, err := e.ApplyReply("   ", t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)
	assert.Equal(t, 0, e.State().Cursor())
}

func TestThrottle_SecondSlideWithinGapRejected(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript("abcdefghij")
	_, err := e.ApplyReply(slideReply("cde"), t0)
	require.NoError(t, err)

	_, err = e.ApplyReply(slideReply("ghi"), t0.Add(4999*time.Millisecond))
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, 1, e.State().Len())
	assert.Equal(t, 5, e.State().Cursor())

	_, err = e.ApplyReply(slideReply("ghi"), t0.Add(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, e.State().Len())
}

func TestPrepareAnalysis_Thresholds(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript(strings.Repeat("a", 49))
	_, err := e.PrepareAnalysis(t0)
	assert.ErrorIs(t, err, ErrInsufficientContent)

	e.AddTranscript("b")
	// "a"*49 + " b" is 51 characters.
	prompt, err := e.PrepareAnalysis(t0)
	require.NoError(t, err)
	assert.Contains(t, prompt, strings.Repeat("a", 49)+" b")

	_, err = e.ApplyReply(slideReply(""), t0)
	require.NoError(t, err)

	e.AddTranscript(strings.Repeat("c", 60))
	_, err = e.PrepareAnalysis(t0.Add(2 * time.Second))
	assert.ErrorIs(t, err, ErrThrottled)

	_, err = e.PrepareAnalysis(t0.Add(6 * time.Second))
	assert.NoError(t, err)
}

func TestPrepareAnalysis_CountsCharactersNotBytes(t *testing.T) {
	e := newTestEngine()
	// 20 characters, 60 bytes
	e.AddTranscript(strings.Repeat("你", 20))
	_, err := e.PrepareAnalysis(t0)
	assert.ErrorIs(t, err, ErrInsufficientContent)
	assert.Contains(t, err.Error(), "20 of 50")

	e.AddTranscript(strings.Repeat("好", 29))
	// 20 + space + 29 = 50 characters
	_, err = e.PrepareAnalysis(t0)
	assert.NoError(t, err)
}

func TestThrottle_RequestsCloserThanGapYieldOneSlide(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript(strings.Repeat("word ", 20))

	_, err := e.PrepareAnalysis(t0)
	require.NoError(t, err)
	_, err = e.PrepareAnalysis(t0.Add(3 * time.Second))
	assert.ErrorIs(t, err, ErrThrottled)

	out, err := e.ApplyReply(slideReply("word word"), t0.Add(4*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlide, out.Kind)
	cursor := e.State().Cursor()

	_, err = e.ApplyReply(slideReply("word"), t0.Add(10*time.Second))
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, 1, e.State().Len())
	assert.Equal(t, cursor, e.State().Cursor())
}

func TestThrottle_InFlightRequestExpiresAfterGap(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript(strings.Repeat("word ", 20))

	_, err := e.PrepareAnalysis(t0)
	require.NoError(t, err)
	// the first request never answered
	_, err = e.PrepareAnalysis(t0.Add(5 * time.Second))
	require.NoError(t, err)

	out, err := e.ApplyReply(slideReply(""), t0.Add(6*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSlide, out.Kind)
}

func TestApplyReply_MarkerMatchedLiterallyFirst(t *testing.T) {
	e := newTestEngine()
	e.AddTranscript("one two three four")

	// the raw marker, trailing space included, ends before "three"
	_, err := e.ApplyReply(slideReply("two "), t0)
	require.NoError(t, err)
	assert.Equal(t, len("one two "), e.State().Cursor())
	assert.Equal(t, "three four", e.State().Unsummarized())

	e = newTestEngine()
	e.AddTranscript("one two three four")
	_, err = e.ApplyReply(slideReply("  four  "), t0)
	require.NoError(t, err)
	assert.Equal(t, len("one two three four"), e.State().Cursor())
}

func TestPrepareAnalysis_PromptSubstitution(t *testing.T) {
	tmpl := "[{{LAST_SLIDE_TITLE}}|{{LAST_SLIDE_CONTENT}}|{{LAST_SUMMARIZED_TRANSCRIPT}}|{{UNSUMMARIZED_TRANSCRIPT}}]"
	e := NewEngine(Tuning{MinChars: 1, MinGap: time.Second}, tmpl)
	e.AddTranscript("abcdefghij")

	prompt, err := e.PrepareAnalysis(t0)
	require.NoError(t, err)
	assert.Equal(t, "[(none)|(none)|(none)|abcdefghij]", prompt)

	_, err = e.ApplyReply(slideReply("cde"), t0)
	require.NoError(t, err)

	prompt, err = e.PrepareAnalysis(t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "[T|- point|abcde|fghij]", prompt)
}

func TestApplyReply_ResolvesAgainstOfferedExcerpt(t *testing.T) {
	e := NewEngine(Tuning{MinChars: 1, MinGap: time.Second}, "")
	e.AddTranscript("abcdefghij")
	_, err := e.PrepareAnalysis(t0)
	require.NoError(t, err)

	// Speech keeps arriving while the model is thinking.
	e.AddTranscript("klmnop")
	_, err = e.ApplyReply(slideReply(""), t0)
	require.NoError(t, err)
	assert.Equal(t, 10, e.State().Cursor())
	assert.Equal(t, "klmnop", e.State().Unsummarized())
}

func TestSlides_TimestampsNonDecreasing(t *testing.T) {
	e := NewEngine(Tuning{MinChars: 1}, "")
	times := []time.Time{t0, t0.Add(time.Second), t0.Add(-time.Hour), t0.Add(time.Minute)}
	for i, at := range times {
		e.AddTranscript("segment" + string(rune('a'+i)))
		_, err := e.ApplyReply(slideReply(""), at)
		require.NoError(t, err)
	}
	got := e.State().Slides()
	require.Len(t, got, len(times))
	for i := 0; i+1 < len(got); i++ {
		assert.False(t, got[i+1].Timestamp.Before(got[i].Timestamp), "slide %d", i)
	}
	assert.Equal(t, len(got)-1, e.State().Current())
}

func TestState_NavigateAndReset(t *testing.T) {
	s := NewState()
	_, moved := s.Navigate(1)
	assert.False(t, moved)
	assert.Equal(t, -1, s.Current())

	s.slides = []Slide{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	s.current = 2

	idx, moved := s.Navigate(1)
	assert.False(t, moved)
	assert.Equal(t, 2, idx)

	idx, moved = s.Navigate(-1)
	assert.True(t, moved)
	assert.Equal(t, 1, idx)

	idx, _ = s.Navigate(-10)
	assert.Equal(t, 0, idx)

	assert.True(t, s.GoTo(2))
	assert.False(t, s.GoTo(3))

	assert.False(t, s.AppendTranscript("   "))
	s.Reset()
	assert.Equal(t, -1, s.Current())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "", s.Transcript())
}
