package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/session"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	"github.com/xpanvictor/liveslides/pkg/metrics"
)

// ConnectionManager tracks the attached presentation and control sockets. It is
// the controller's Viewer and Notifier: every method returns without waiting on
// the network.
type ConnectionManager struct {
	logger         *Logger.Logger
	metrics        *metrics.Metrics
	sessions       map[uuid.UUID]*Session
	last           *session.Snapshot
	mutex          sync.RWMutex
	cleanupTicker  *time.Ticker
	stopCleanup    chan struct{}
	closeOnce      sync.Once
	sessionTimeout time.Duration
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger *Logger.Logger, m *metrics.Metrics) *ConnectionManager {
	cm := &ConnectionManager{
		logger:         logger,
		metrics:        m,
		sessions:       make(map[uuid.UUID]*Session),
		stopCleanup:    make(chan struct{}),
		sessionTimeout: 2 * pongWait,
	}

	cm.startCleanupRoutine()

	return cm
}

// RegisterConnection adds s. Control sockets immediately receive the latest state.
func (cm *ConnectionManager) RegisterConnection(s *Session) {
	cm.mutex.Lock()
	cm.sessions[s.SessionID] = s
	last := cm.last
	viewers := cm.countLocked(RoleViewer)
	cm.mutex.Unlock()

	cm.logger.Infof("registered %s socket %s", s.Role, s.SessionID)
	if s.Role == RoleViewer {
		cm.metrics.Viewers(viewers)
	}
	if s.Role == RoleControl && last != nil {
		s.Enqueue(MessageTypeState, *last)
	}
}

// UnregisterConnection removes a session
func (cm *ConnectionManager) UnregisterConnection(id uuid.UUID) {
	cm.mutex.Lock()
	s, exists := cm.sessions[id]
	if exists {
		delete(cm.sessions, id)
	}
	viewers := cm.countLocked(RoleViewer)
	cm.mutex.Unlock()

	if !exists {
		return
	}
	cm.logger.Infof("unregistering %s socket %s", s.Role, id)
	if err := s.Close(); err != nil {
		cm.logger.Errorf("error closing socket %s: %v", id, err)
	}
	if s.Role == RoleViewer {
		cm.metrics.Viewers(viewers)
	}
}

func (cm *ConnectionManager) GetSession(id uuid.UUID) (*Session, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	s, exists := cm.sessions[id]
	return s, exists
}

// Attached implements session.Viewer.
func (cm *ConnectionManager) Attached() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return cm.countLocked(RoleViewer)
}

// Push implements session.Viewer.
func (cm *ConnectionManager) Push(u presentation.Update) {
	cm.BroadcastMessage(RoleViewer, MessageTypeUpdate, u)
}

// Notify implements session.Notifier.
func (cm *ConnectionManager) Notify(n session.Notification) {
	cm.BroadcastMessage(RoleControl, MessageTypeNotification, n)
}

// Publish implements session.Notifier. The snapshot is kept for sockets that
// attach later.
func (cm *ConnectionManager) Publish(s session.Snapshot) {
	cm.mutex.Lock()
	cm.last = &s
	cm.mutex.Unlock()
	cm.BroadcastMessage(RoleControl, MessageTypeState, s)
}

// BroadcastMessage queues a message for every socket with the given role. Sockets
// whose queue is full miss the message.
func (cm *ConnectionManager) BroadcastMessage(role Role, msgType MessageType, data interface{}) {
	cm.mutex.RLock()
	targets := make([]*Session, 0, len(cm.sessions))
	for _, s := range cm.sessions {
		if s.Role == role {
			targets = append(targets, s)
		}
	}
	cm.mutex.RUnlock()

	for _, s := range targets {
		if !s.Enqueue(msgType, data) {
			cm.logger.Warnf("dropped %s message for %s socket %s", msgType, role, s.SessionID)
		}
	}
}

func (cm *ConnectionManager) GetSessionCount() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	return len(cm.sessions)
}

func (cm *ConnectionManager) countLocked(role Role) int {
	n := 0
	for _, s := range cm.sessions {
		if s.Role == role {
			n++
		}
	}
	return n
}

func (cm *ConnectionManager) startCleanupRoutine() {
	cm.cleanupTicker = time.NewTicker(pongWait)

	go func() {
		for {
			select {
			case <-cm.cleanupTicker.C:
				cm.cleanupExpiredSessions()
			case <-cm.stopCleanup:
				cm.cleanupTicker.Stop()
				return
			}
		}
	}()
}

// cleanupExpiredSessions drops sockets that stopped answering pings.
func (cm *ConnectionManager) cleanupExpiredSessions() {
	cm.mutex.RLock()
	expired := make([]uuid.UUID, 0)
	for id, s := range cm.sessions {
		if s.IsExpired(cm.sessionTimeout) {
			expired = append(expired, id)
		}
	}
	cm.mutex.RUnlock()

	for _, id := range expired {
		cm.UnregisterConnection(id)
	}
	if len(expired) > 0 {
		cm.logger.Infof("Cleaned up %d expired sockets", len(expired))
	}
}

// Close shuts down the connection manager
func (cm *ConnectionManager) Close() error {
	cm.closeOnce.Do(func() {
		close(cm.stopCleanup)

		cm.mutex.Lock()
		sessions := cm.sessions
		cm.sessions = make(map[uuid.UUID]*Session)
		cm.mutex.Unlock()

		for _, s := range sessions {
			_ = s.Close()
		}
		cm.metrics.Viewers(0)
		cm.logger.Infof("Connection manager closed")
	})
	return nil
}

// GetStats returns connection manager statistics
func (cm *ConnectionManager) GetStats() map[string]interface{} {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	return map[string]interface{}{
		"total_sockets":   len(cm.sessions),
		"viewer_sockets":  cm.countLocked(RoleViewer),
		"control_sockets": cm.countLocked(RoleControl),
		"session_timeout": cm.sessionTimeout.String(),
	}
}
