package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrChannelClosed is returned by Send after Close or after the peer went away.
var ErrChannelClosed = errors.New("realtime: channel closed")

// Channel is an open, bidirectional event stream to the service.
type Channel interface {
	Send(ctx context.Context, ev ClientEvent) error
	// Events is closed when the channel ends; Err then reports why.
	Events() <-chan ServerEvent
	Err() error
	Close() error
}

type DialOptions struct {
	URL    string
	Model  string
	APIKey string
}

// Dialer opens channels. Tests substitute their own.
type Dialer interface {
	Dial(ctx context.Context, opts DialOptions) (Channel, error)
}

// StatusError reports a non-success HTTP status from the service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error: %d", e.Code)
}

// WebSocketDialer dials the realtime endpoint over a websocket.
type WebSocketDialer struct {
	Dialer *websocket.Dialer
	// Decoded events are buffered up to this many before the reader blocks.
	Buffer int
}

func NewWebSocketDialer() *WebSocketDialer {
	return &WebSocketDialer{
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
		Buffer: 256,
	}
}

// Dial implements Dialer.
func (d *WebSocketDialer) Dial(ctx context.Context, opts DialOptions) (Channel, error) {
	if opts.APIKey == "" {
		return nil, errors.New("realtime: api key is required")
	}
	target, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("realtime: bad url %q: %w", opts.URL, err)
	}
	q := target.Query()
	if opts.Model != "" {
		q.Set("model", opts.Model)
	}
	target.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+opts.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := d.Dialer.DialContext(ctx, target.String(), header)
	if err != nil {
		if resp != nil && resp.StatusCode >= 300 {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return nil, fmt.Errorf("realtime: dial: %w", err)
	}

	buffer := d.Buffer
	if buffer <= 0 {
		buffer = 256
	}
	ch := newWSChannel(conn, buffer)
	go ch.readLoop()
	return ch, nil
}

type wsChannel struct {
	conn   *websocket.Conn
	events chan ServerEvent

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}

	errMu sync.Mutex
	err   error
}

func newWSChannel(conn *websocket.Conn, buffer int) *wsChannel {
	return &wsChannel{
		conn:   conn,
		events: make(chan ServerEvent, buffer),
		closed: make(chan struct{}),
	}
}

func (c *wsChannel) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.setErr(ErrChannelClosed)
				} else {
					c.setErr(fmt.Errorf("realtime: read: %w", err))
				}
			}
			return
		}

		// undecodable frames still surface as EventUnknown so the consumer can log them
		ev, _ := Decode(data)
		select {
		case c.events <- ev:
		case <-c.closed:
			return
		}
	}
}

func (c *wsChannel) Send(ctx context.Context, ev ClientEvent) error {
	select {
	case <-c.closed:
		return ErrChannelClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if err := c.conn.WriteJSON(ev); err != nil {
		return fmt.Errorf("realtime: send %s: %w", ev.Type, err)
	}
	return nil
}

func (c *wsChannel) Events() <-chan ServerEvent {
	return c.events
}

func (c *wsChannel) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *wsChannel) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}
