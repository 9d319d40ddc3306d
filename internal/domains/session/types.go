package session

import (
	"context"
	"errors"

	"github.com/xpanvictor/liveslides/internal/domains/preferences"
	"github.com/xpanvictor/liveslides/internal/domains/presentation"
)

// Machine states.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// Status texts shown next to the state indicator.
const (
	StatusDisconnected = "Disconnected"
	StatusConnecting   = "Connecting..."
	StatusConnected    = "Connected"
	StatusFailed       = "Failed"
)

const (
	evStart = "start"
	evOpen  = "open"
	evFail  = "fail"
	evStop  = "stop"
)

var (
	ErrAlreadyRunning = errors.New("session already running")
	ErrNotRecording   = errors.New("session is not recording")
	ErrNoAPIKey       = errors.New("API key is not configured")
	ErrStopped        = errors.New("session stopped while connecting")
)

// Notification colors.
const (
	ColorSuccess = "success"
	ColorWarning = "warning"
	ColorDanger  = "danger"
	ColorInfo    = "info"
)

// Notification is a dismissable message for the control page.
type Notification struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Color   string `json:"color"`
	Timeout int    `json:"timeout,omitempty"`
}

// Snapshot is the control page's view of the session.
// @Description Recording session state
type Snapshot struct {
	State            string `json:"state" example:"connected"`
	Status           string `json:"status" example:"Connected"`
	Recording        bool   `json:"recording"`
	SlideCount       int    `json:"slideCount"`
	CurrentIndex     int    `json:"currentIndex"`
	CanRecord        bool   `json:"canRecord"`
	CanExport        bool   `json:"canExport"`
	CanPrev          bool   `json:"canPrev"`
	CanNext          bool   `json:"canNext"`
	TranscriptLength int    `json:"transcriptLength"`
	Cursor           int    `json:"cursor"`
	Viewers          int    `json:"viewers"`
	Theme            string `json:"theme"`
}

// Viewer is the set of attached presentation windows. Push must not block.
type Viewer interface {
	Attached() int
	Push(u presentation.Update)
}

// Notifier reaches the control page. Calls must not block.
type Notifier interface {
	Notify(n Notification)
	Publish(s Snapshot)
}

// Microphone hands out the browser's audio stream.
type Microphone interface {
	Acquire(ctx context.Context) (Capture, error)
}

// Capture is an acquired microphone. Frames is closed when the source goes away.
type Capture interface {
	Frames() <-chan []byte
	Close() error
}

// PreferencesSource is the part of preferences.Service the controller reads.
type PreferencesSource interface {
	Get(ctx context.Context) (preferences.Preferences, error)
}
