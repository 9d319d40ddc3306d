package session

import (
	"context"
	"errors"
	"sync"
	"time"

	audioring "github.com/xpanvictor/liveslides/pkg/io/audioRing"
	"github.com/xpanvictor/liveslides/pkg/Logger"
)

var ErrMicrophoneUnavailable = errors.New("no microphone stream attached; open the control page and allow microphone access")

// BrowserMicrophone is fed by the control page's audio socket. Frames written while
// nothing holds the microphone are dropped.
type BrowserMicrophone struct {
	mu      sync.Mutex
	ring    audioring.Buffer
	sockets int
	arrived chan struct{}
	capture *browserCapture
	logger  *Logger.Logger

	// AttachWait is how long Acquire waits for a socket that is still connecting.
	AttachWait time.Duration
}

func NewBrowserMicrophone(ring audioring.Buffer, logger *Logger.Logger) *BrowserMicrophone {
	if logger == nil {
		logger = Logger.Nop()
	}
	return &BrowserMicrophone{
		ring:       ring,
		arrived:    make(chan struct{}),
		logger:     logger,
		AttachWait: 2 * time.Second,
	}
}

// Attach registers an audio socket. The returned func detaches it; when the last
// socket goes away an active capture ends.
func (m *BrowserMicrophone) Attach() (detach func()) {
	m.mu.Lock()
	m.sockets++
	close(m.arrived)
	m.arrived = make(chan struct{})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.sockets--
			var c *browserCapture
			if m.sockets == 0 {
				c = m.capture
			}
			m.mu.Unlock()
			if c != nil {
				m.logger.Info("last audio socket detached, ending capture")
				_ = c.Close()
			}
		})
	}
}

func (m *BrowserMicrophone) Attached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sockets
}

// Write buffers one frame for the active capture.
func (m *BrowserMicrophone) Write(f audioring.Frame) error {
	m.mu.Lock()
	c := m.capture
	m.mu.Unlock()
	if c == nil {
		return nil
	}
	if err := m.ring.Enqueue(f); err != nil {
		return err
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// Acquire implements Microphone. A previous capture, if any, is ended.
func (m *BrowserMicrophone) Acquire(ctx context.Context) (Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.waitForSocket(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.sockets == 0 {
		m.mu.Unlock()
		return nil, ErrMicrophoneUnavailable
	}
	prev := m.capture
	c := &browserCapture{
		mic:    m,
		frames: make(chan []byte, 64),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
	m.capture = c
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	m.ring.Reset()
	go c.pump()
	return c, nil
}

func (m *BrowserMicrophone) waitForSocket(ctx context.Context) error {
	m.mu.Lock()
	if m.sockets > 0 {
		m.mu.Unlock()
		return nil
	}
	arrived := m.arrived
	m.mu.Unlock()

	if m.AttachWait <= 0 {
		return ErrMicrophoneUnavailable
	}
	timer := time.NewTimer(m.AttachWait)
	defer timer.Stop()
	select {
	case <-arrived:
		return nil
	case <-timer.C:
		return ErrMicrophoneUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *BrowserMicrophone) release(c *browserCapture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capture == c {
		m.capture = nil
		m.ring.Reset()
	}
}

type browserCapture struct {
	mic    *BrowserMicrophone
	frames chan []byte
	wake   chan struct{}
	quit   chan struct{}
	once   sync.Once
}

func (c *browserCapture) Frames() <-chan []byte { return c.frames }

func (c *browserCapture) Close() error {
	c.once.Do(func() {
		close(c.quit)
		c.mic.release(c)
	})
	return nil
}

func (c *browserCapture) pump() {
	defer close(c.frames)
	for {
		select {
		case <-c.quit:
			return
		case <-c.wake:
		}
		for {
			f, ok := c.mic.ring.Dequeue()
			if !ok {
				break
			}
			select {
			case c.frames <- f.PCM:
			case <-c.quit:
				return
			}
		}
	}
}
