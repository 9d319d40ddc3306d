package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrSessionClosed = errors.New("websocket session closed")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Session is one attached browser socket. Outgoing messages go through a bounded
// queue drained by writePump, so enqueueing never blocks the caller.
type Session struct {
	SessionID   uuid.UUID
	Role        Role
	Conn        *websocket.Conn
	ConnectedAt time.Time

	send       chan WSMessage
	lastActive time.Time
	isActive   bool
	mutex      sync.RWMutex
	closeOnce  sync.Once
}

// NewSession creates a new WebSocket session
func NewSession(conn *websocket.Conn, role Role, queue int) *Session {
	if queue <= 0 {
		queue = 32
	}
	return &Session{
		SessionID:   uuid.New(),
		Role:        role,
		Conn:        conn,
		ConnectedAt: time.Now(),
		send:        make(chan WSMessage, queue),
		lastActive:  time.Now(),
		isActive:    true,
	}
}

// Enqueue queues msg for delivery. It reports false when the session is closed or
// its queue is full.
func (s *Session) Enqueue(msgType MessageType, data interface{}) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isActive {
		return false
	}
	msg := WSMessage{
		Type:      msgType,
		Data:      data,
		SessionID: s.SessionID.String(),
		Timestamp: time.Now(),
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// writePump writes queued messages and keepalive pings until the session closes.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.Conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes incoming frames, handing each to onMessage, until the peer
// goes away.
func (s *Session) readPump(onMessage func(messageType int, data []byte)) error {
	_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Touch()
		return s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		messageType, data, err := s.Conn.ReadMessage()
		if err != nil {
			return err
		}
		s.Touch()
		_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if onMessage != nil {
			onMessage(messageType, data)
		}
	}
}

// Touch updates the last activity timestamp
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

// IsExpired checks if the session has expired based on inactivity
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return time.Since(s.lastActive) > timeout
}

func (s *Session) IsAlive() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.isActive
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

// Close stops the writer, which sends a close frame and exits. The connection
// itself is closed by the handler that owns it.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mutex.Lock()
		s.isActive = false
		close(s.send)
		s.mutex.Unlock()
	})
	return nil
}
