package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/session"
	"github.com/xpanvictor/liveslides/internal/domains/slides"
)

// SessionController is the part of session.Controller the HTTP layer drives.
type SessionController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Analyze(ctx context.Context) error
	Snapshot() session.Snapshot
	Slides() []slides.Slide
	CurrentSlide() (*slides.Slide, int)
	Navigate(delta int) (int, bool)
	Deck() presentation.Deck
}

var _ SessionController = (*session.Controller)(nil)

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
