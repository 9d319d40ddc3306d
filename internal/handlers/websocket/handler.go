package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/xpanvictor/liveslides/internal/domains/session"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	audioring "github.com/xpanvictor/liveslides/pkg/io/audioRing"
)

// WebSocketHandler serves the browser sockets: presentation viewers, the control
// page and the microphone stream.
type WebSocketHandler struct {
	logger            *Logger.Logger
	connectionManager *ConnectionManager
	microphone        *session.BrowserMicrophone
	upgrader          websocket.Upgrader
}

func NewWebSocketHandler(logger *Logger.Logger, cm *ConnectionManager, mic *session.BrowserMicrophone) *WebSocketHandler {
	return &WebSocketHandler{
		logger:            logger,
		connectionManager: cm,
		microphone:        mic,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// the app is served to localhost browsers only
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router gin.IRouter) {
	ws := router.Group("/ws")
	{
		ws.GET("/presentation", h.HandlePresentationWebSocket)
		ws.GET("/audio", h.HandleAudioWebSocket)
		ws.GET("/stats", h.HandleStats)
	}
}

// HandlePresentationWebSocket attaches a live viewer, or the control page when
// called with ?role=control.
func (h *WebSocketHandler) HandlePresentationWebSocket(c *gin.Context) {
	role := RoleViewer
	if Role(c.Query("role")) == RoleControl {
		role = RoleControl
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s := NewSession(conn, role, 64)
	h.connectionManager.RegisterConnection(s)
	defer h.connectionManager.UnregisterConnection(s.SessionID)

	go s.writePump()

	// viewers only listen; incoming frames just keep the socket alive
	if err := s.readPump(nil); err != nil && !isNormalClose(err) {
		h.logger.Debugf("%s socket %s closed: %v", role, s.SessionID, err)
	}
}

// HandleAudioWebSocket receives microphone PCM. Every binary message is an 8 byte
// header (sample rate, channels, reserved) followed by little endian PCM16.
func (h *WebSocketHandler) HandleAudioWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	detach := h.microphone.Attach()
	defer detach()
	h.logger.Infof("microphone socket attached from %s", c.ClientIP())

	// the writer only sends keepalive pings here
	s := NewSession(conn, RoleControl, 1)
	go s.writePump()
	defer s.Close()

	err = s.readPump(func(messageType int, data []byte) {
		if messageType != websocket.BinaryMessage {
			return
		}
		frame, err := audioring.ParseFrame(data, time.Now())
		if err != nil {
			h.logger.Warnf("bad audio frame (%d bytes): %v", len(data), err)
			return
		}
		if err := h.microphone.Write(frame); err != nil {
			h.logger.Warnf("audio frame dropped: %v", err)
		}
	})
	if err != nil && !isNormalClose(err) {
		h.logger.Debugf("microphone socket closed: %v", err)
	}
	h.logger.Infof("microphone socket detached")
}

// HandleStats reports socket counts.
// @Summary WebSocket statistics
// @Tags WebSocket
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ws/stats [get]
func (h *WebSocketHandler) HandleStats(c *gin.Context) {
	stats := h.connectionManager.GetStats()
	stats["microphone_sockets"] = h.microphone.Attached()
	c.JSON(http.StatusOK, stats)
}

func isNormalClose(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
	}
	return false
}
