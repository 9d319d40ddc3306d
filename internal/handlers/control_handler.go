package handlers

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed static/control.html
var controlPage []byte

// ControlPage serves the single-page control UI
func ControlPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", controlPage)
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Uptime  string `json:"uptime" example:"1h2m3s"`
	Session string `json:"session" example:"disconnected"`
}

// Health returns a liveness handler that also reports the session state
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(controller SessionController, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(started).Truncate(time.Second).String(),
			Session: controller.Snapshot().State,
		})
	}
}
