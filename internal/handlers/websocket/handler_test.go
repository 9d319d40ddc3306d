package websocket

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/session"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	audioring "github.com/xpanvictor/liveslides/pkg/io/audioRing"
)

type testServer struct {
	srv *httptest.Server
	cm  *ConnectionManager
	mic *session.BrowserMicrophone
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := Logger.Nop()
	cm := NewConnectionManager(logger, nil)
	mic := session.NewBrowserMicrophone(audioring.New(1<<16), logger)

	r := gin.New()
	NewWebSocketHandler(logger, cm, mic).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		_ = cm.Close()
	})
	return &testServer{srv: srv, cm: cm, mic: mic}
}

func (ts *testServer) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestViewerReceivesUpdates(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "/ws/presentation")
	require.Eventually(t, func() bool { return ts.cm.Attached() == 1 }, 2*time.Second, 5*time.Millisecond)

	ts.cm.Push(presentation.GotoUpdate(3))
	// control-only traffic must not reach viewers
	ts.cm.Notify(session.Notification{Title: "Slide Created"})
	ts.cm.Push(presentation.ThemeUpdate("moon"))

	first := readMessage(t, conn)
	assert.Equal(t, MessageTypeUpdate, first.Type)
	data, _ := json.Marshal(first.Data)
	assert.JSONEq(t, `{"type":"goto","index":3}`, string(data))

	second := readMessage(t, conn)
	assert.Equal(t, MessageTypeUpdate, second.Type)
}

func TestControlReceivesLatestState(t *testing.T) {
	ts := newTestServer(t)
	ts.cm.Publish(session.Snapshot{Status: session.StatusConnected, SlideCount: 2})

	conn := ts.dial(t, "/ws/presentation?role=control")
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeState, msg.Type)
	data, _ := json.Marshal(msg.Data)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 2, snap.SlideCount)
	assert.Equal(t, 0, ts.cm.Attached())

	ts.cm.Notify(session.Notification{Title: "Failed", Color: session.ColorDanger})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageTypeNotification, msg.Type)
}

func TestUnregisterOnDisconnect(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "/ws/presentation")
	require.Eventually(t, func() bool { return ts.cm.Attached() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()
	require.Eventually(t, func() bool { return ts.cm.Attached() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestAudioFramesReachMicrophone(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "/ws/audio")
	require.Eventually(t, func() bool { return ts.mic.Attached() == 1 }, 2*time.Second, 5*time.Millisecond)

	capture, err := ts.mic.Acquire(context.Background())
	require.NoError(t, err)
	defer capture.Close()

	msg := make([]byte, audioring.HeaderSize+4)
	binary.LittleEndian.PutUint32(msg[0:4], 24000)
	binary.LittleEndian.PutUint16(msg[4:6], 1)
	copy(msg[audioring.HeaderSize:], []byte{1, 2, 3, 4})
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, msg))

	select {
	case pcm := <-capture.Frames():
		assert.Equal(t, []byte{1, 2, 3, 4}, pcm)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}

	_ = conn.Close()
	select {
	case _, ok := <-capture.Frames():
		assert.False(t, ok, "capture should end with its last socket")
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not end")
	}
}
