package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audioring "github.com/xpanvictor/liveslides/pkg/io/audioRing"
)

func recv(t *testing.T, frames <-chan []byte) ([]byte, bool) {
	t.Helper()
	select {
	case pcm, ok := <-frames:
		return pcm, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil, false
	}
}

func TestBrowserMicrophone_RequiresSocket(t *testing.T) {
	mic := NewBrowserMicrophone(audioring.New(1<<12), nil)
	mic.AttachWait = 20 * time.Millisecond
	_, err := mic.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrMicrophoneUnavailable)
}

func TestBrowserMicrophone_WaitsForConnectingSocket(t *testing.T) {
	mic := NewBrowserMicrophone(audioring.New(1<<12), nil)
	go func() {
		time.Sleep(20 * time.Millisecond)
		mic.Attach()
	}()

	capture, err := mic.Acquire(context.Background())
	require.NoError(t, err)
	assert.NoError(t, capture.Close())
}

func TestBrowserMicrophone_DeliversFrames(t *testing.T) {
	mic := NewBrowserMicrophone(audioring.New(1<<12), nil)
	detach := mic.Attach()
	defer detach()

	// nothing is listening yet, so this is dropped
	require.NoError(t, mic.Write(audioring.Frame{PCM: []byte{9}}))

	capture, err := mic.Acquire(context.Background())
	require.NoError(t, err)
	defer capture.Close()

	require.NoError(t, mic.Write(audioring.Frame{PCM: []byte{1, 2}}))
	require.NoError(t, mic.Write(audioring.Frame{PCM: []byte{3, 4}}))

	pcm, ok := recv(t, capture.Frames())
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2}, pcm)
	pcm, ok = recv(t, capture.Frames())
	require.True(t, ok)
	assert.Equal(t, []byte{3, 4}, pcm)
}

func TestBrowserMicrophone_CloseEndsFrames(t *testing.T) {
	mic := NewBrowserMicrophone(audioring.New(1<<12), nil)
	defer mic.Attach()()

	capture, err := mic.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, capture.Close())
	require.NoError(t, capture.Close())

	_, ok := recv(t, capture.Frames())
	assert.False(t, ok)
}

func TestBrowserMicrophone_LastDetachEndsCapture(t *testing.T) {
	mic := NewBrowserMicrophone(audioring.New(1<<12), nil)
	first := mic.Attach()
	second := mic.Attach()
	assert.Equal(t, 2, mic.Attached())

	capture, err := mic.Acquire(context.Background())
	require.NoError(t, err)

	first()
	first()
	assert.Equal(t, 1, mic.Attached())
	select {
	case _, ok := <-capture.Frames():
		require.True(t, ok, "capture ended while a socket remained")
	default:
	}

	second()
	_, ok := recv(t, capture.Frames())
	assert.False(t, ok)
}
