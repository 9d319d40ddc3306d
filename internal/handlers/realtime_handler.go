package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/liveslides/internal/domains/preferences"
	"github.com/xpanvictor/liveslides/pkg/Logger"
)

const maxOfferBytes = 64 << 10

type SDPExchanger interface {
	Exchange(ctx context.Context, apiKey, model, offer string) (string, error)
}

// RealtimeHandler relays WebRTC offers so the browser never sees the API key
type RealtimeHandler struct {
	exchanger SDPExchanger
	prefs     preferences.Service
	logger    *Logger.Logger
}

func NewRealtimeHandler(exchanger SDPExchanger, prefs preferences.Service, logger *Logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{exchanger: exchanger, prefs: prefs, logger: logger}
}

// ExchangeSDP forwards an SDP offer and returns the answer
// @Summary Relay SDP offer
// @Tags Realtime
// @Accept plain
// @Produce plain
// @Param offer body string true "SDP offer"
// @Success 200 {string} string "SDP answer"
// @Failure 400 {object} ErrorResponse "Empty offer"
// @Failure 412 {object} ErrorResponse "API key is not configured"
// @Failure 502 {object} ErrorResponse "Upstream rejected the offer"
// @Router /api/realtime/sdp [post]
func (h *RealtimeHandler) ExchangeSDP(c *gin.Context) {
	offer, err := io.ReadAll(io.LimitReader(c.Request.Body, maxOfferBytes))
	if err != nil || len(offer) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "SDP offer is required"})
		return
	}

	p, err := h.prefs.Get(c.Request.Context())
	if err != nil {
		h.logger.Warnf("sdp relay using default preferences: %v", err)
	}
	if !p.HasAPIKey() {
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "API key is not configured"})
		return
	}

	answer, err := h.exchanger.Exchange(c.Request.Context(), p.APIKey, p.Model, string(offer))
	if err != nil {
		h.logger.Errorf("sdp exchange error: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "SDP exchange failed", Details: err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/sdp", []byte(answer))
}
