package websocket

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeUpdate carries a presentation.Update to viewers.
	MessageTypeUpdate       MessageType = "update"
	MessageTypeNotification MessageType = "notification"
	MessageTypeState        MessageType = "state"
	MessageTypeError        MessageType = "error"
)

// Role is what a socket is attached for.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleControl Role = "control"
)

// WSMessage represents the structure of WebSocket messages
type WSMessage struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorMessage contains error information
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
