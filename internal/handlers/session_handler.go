package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/session"
	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/pkg/Logger"
)

// SessionHandler handles recording and slide navigation requests
type SessionHandler struct {
	controller SessionController
	logger     *Logger.Logger
}

func NewSessionHandler(controller SessionController, logger *Logger.Logger) *SessionHandler {
	return &SessionHandler{
		controller: controller,
		logger:     logger,
	}
}

// StartSession starts recording
// @Summary Start recording
// @Description Acquire the microphone, connect to the realtime API and start slide synthesis
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse "Recording started"
// @Failure 409 {object} ErrorResponse "Session already running"
// @Failure 412 {object} ErrorResponse "API key or microphone missing"
// @Failure 502 {object} ErrorResponse "Realtime connection failed"
// @Router /api/session/start [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	err := h.controller.Start(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Session already running"})
		case errors.Is(err, session.ErrNoAPIKey):
			c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "API key is not configured", Details: "Save an API key in the preferences first"})
		case errors.Is(err, session.ErrMicrophoneUnavailable):
			c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "Microphone unavailable", Details: err.Error()})
		case errors.Is(err, session.ErrStopped):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Session stopped while connecting"})
		default:
			h.logger.Errorf("start session error: %v", err)
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to start session", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Message: "Recording started",
		Session: h.controller.Snapshot(),
	})
}

// StopSession stops recording
// @Summary Stop recording
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse "Recording stopped"
// @Router /api/session/stop [post]
func (h *SessionHandler) StopSession(c *gin.Context) {
	if err := h.controller.Stop(c.Request.Context()); err != nil {
		// teardown errors are logged; the session is stopped regardless
		h.logger.Warnf("stop session: %v", err)
	}
	c.JSON(http.StatusOK, SessionResponse{
		Message: "Recording stopped",
		Session: h.controller.Snapshot(),
	})
}

// AnalyzeNow requests a slide immediately
// @Summary Analyze now
// @Description Run the synthesis checks now instead of waiting for the timer
// @Tags Session
// @Produce json
// @Success 202 {object} SuccessResponse "Analysis requested"
// @Failure 409 {object} ErrorResponse "Not recording"
// @Failure 422 {object} ErrorResponse "Not enough new speech or too soon after the last slide"
// @Router /api/session/analyze [post]
func (h *SessionHandler) AnalyzeNow(c *gin.Context) {
	err := h.controller.Analyze(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotRecording):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Not recording"})
		case errors.Is(err, slides.ErrInsufficientContent):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Not enough new transcript", Details: err.Error()})
		case errors.Is(err, slides.ErrThrottled):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Too soon after the last slide"})
		default:
			h.logger.Errorf("analyze error: %v", err)
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to request analysis", Details: err.Error()})
		}
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "Analysis requested"})
}

// GetSession returns the session state
// @Summary Get session state
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, SessionResponse{Session: h.controller.Snapshot()})
}

// ListSlides returns the slides of the current session
// @Summary List slides
// @Tags Slides
// @Produce json
// @Success 200 {object} SlidesResponse
// @Router /api/slides [get]
func (h *SessionHandler) ListSlides(c *gin.Context) {
	list := h.controller.Slides()
	c.JSON(http.StatusOK, SlidesResponse{
		Slides:  toSlideResponses(list),
		Current: h.controller.Snapshot().CurrentIndex,
	})
}

// Navigate moves the current slide
// @Summary Navigate slides
// @Description Move the current slide by delta; the position stays within bounds
// @Tags Slides
// @Accept json
// @Produce json
// @Param request body NavigateRequest true "Navigation delta"
// @Success 200 {object} NavigateResponse
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Router /api/slides/navigate [post]
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	current, moved := h.controller.Navigate(req.Delta)
	c.JSON(http.StatusOK, NavigateResponse{Current: current, Moved: moved})
}

// Preview renders the current slide for the control page
// @Summary Current slide preview
// @Tags Slides
// @Produce json
// @Success 200 {object} PreviewResponse
// @Router /api/preview [get]
func (h *SessionHandler) Preview(c *gin.Context) {
	s, idx := h.controller.CurrentSlide()
	c.JSON(http.StatusOK, PreviewResponse{HTML: presentation.Preview(s), Index: idx})
}
