package slides

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpanvictor/liveslides/pkg/realtime"
)

func created(id string) realtime.ServerEvent {
	return realtime.ServerEvent{Kind: realtime.EventResponseCreated, Type: "response.created", Response: &realtime.Response{ID: id}}
}

func itemAdded(id string, out int) realtime.ServerEvent {
	return realtime.ServerEvent{Kind: realtime.EventOutputItemAdded, ResponseID: id, OutputIndex: out, Item: &realtime.Item{Type: "message"}}
}

func partAdded(id string, out, content int) realtime.ServerEvent {
	return realtime.ServerEvent{Kind: realtime.EventContentPartAdded, ResponseID: id, OutputIndex: out, ContentIndex: content, Part: &realtime.ContentPart{Type: "text"}}
}

func delta(id string, out, content int, d string) realtime.ServerEvent {
	return realtime.ServerEvent{Kind: realtime.EventTextDelta, ResponseID: id, OutputIndex: out, ContentIndex: content, Delta: d}
}

func textDone(id string, out, content int, text string) realtime.ServerEvent {
	return realtime.ServerEvent{Kind: realtime.EventTextDone, ResponseID: id, OutputIndex: out, ContentIndex: content, Text: text}
}

func TestAccumulator_ConcatenatesDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 50; run++ {
		acc := NewAccumulator()
		require.NoError(t, first(acc.Apply(created("r1"))))
		require.NoError(t, first(acc.Apply(itemAdded("r1", 0))))
		require.NoError(t, first(acc.Apply(partAdded("r1", 0, 0))))

		var want strings.Builder
		n := rng.Intn(20)
		for i := 0; i < n; i++ {
			d := strings.Repeat(string(rune('a'+rng.Intn(26))), rng.Intn(4))
			want.WriteString(d)
			text, done, err := acc.Apply(delta("r1", 0, 0, d))
			require.NoError(t, err)
			assert.False(t, done)
			assert.Empty(t, text)
		}

		text, done, err := acc.Apply(textDone("r1", 0, 0, ""))
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, want.String(), text)
	}
}

func first(_ string, _ bool, err error) error { return err }

func TestAccumulator_DoneTextUsedWhenNoDeltas(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, first(acc.Apply(created("r1"))))
	require.NoError(t, first(acc.Apply(itemAdded("r1", 0))))
	require.NoError(t, first(acc.Apply(partAdded("r1", 0, 0))))

	text, done, err := acc.Apply(textDone("r1", 0, 0, `{"logical_break_detected":false}`))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, `{"logical_break_detected":false}`, text)
}

func TestAccumulator_OutOfOrderIndices(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, first(acc.Apply(created("r1"))))
	require.NoError(t, first(acc.Apply(itemAdded("r1", 2))))
	require.NoError(t, first(acc.Apply(itemAdded("r1", 0))))
	require.NoError(t, first(acc.Apply(partAdded("r1", 2, 1))))
	require.NoError(t, first(acc.Apply(delta("r1", 2, 1, "late"))))

	resp, ok := acc.Response("r1")
	require.True(t, ok)
	require.Len(t, resp.Output, 3)
	assert.Nil(t, resp.Output[1])
	require.Len(t, resp.Output[2].Content, 2)
	assert.Equal(t, "late", resp.Output[2].Content[1].Text)

	// Revisiting a position replaces it.
	require.NoError(t, first(acc.Apply(partAdded("r1", 2, 1))))
	assert.Equal(t, "", resp.Output[2].Content[1].Text)
}

func TestAccumulator_UnknownReferences(t *testing.T) {
	acc := NewAccumulator()
	_, _, err := acc.Apply(delta("missing", 0, 0, "x"))
	assert.ErrorIs(t, err, ErrUnknownResponse)

	require.NoError(t, first(acc.Apply(created("r1"))))
	_, _, err = acc.Apply(delta("r1", 0, 0, "x"))
	assert.ErrorIs(t, err, ErrUnknownOutputItem)

	_, _, err = acc.Apply(partAdded("r1", 3, 0))
	assert.ErrorIs(t, err, ErrUnknownOutputItem)

	require.NoError(t, first(acc.Apply(itemAdded("r1", 0))))
	_, _, err = acc.Apply(textDone("r1", 0, 4, "x"))
	assert.ErrorIs(t, err, ErrUnknownContentPart)

	_, _, err = acc.Apply(realtime.ServerEvent{Kind: realtime.EventResponseCreated})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestAccumulator_IgnoresOtherKindsAndResets(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, first(acc.Apply(created("r1"))))

	text, done, err := acc.Apply(realtime.ServerEvent{Kind: realtime.EventTranscriptionCompleted, Transcript: "hello"})
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, text)

	_, _, err = acc.Apply(realtime.ServerEvent{Kind: realtime.EventUnknown, Type: "rate_limits.updated"})
	require.NoError(t, err)

	assert.Equal(t, 1, acc.Len())
	acc.Reset()
	assert.Equal(t, 0, acc.Len())
}

func TestAccumulator_ResponseDoneReplaces(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, first(acc.Apply(created("r1"))))
	done := realtime.ServerEvent{
		Kind:     realtime.EventResponseDone,
		Response: &realtime.Response{ID: "r1", Status: "completed"},
	}
	require.NoError(t, first(acc.Apply(done)))

	resp, ok := acc.Response("r1")
	require.True(t, ok)
	assert.Equal(t, "completed", resp.Status)
}
