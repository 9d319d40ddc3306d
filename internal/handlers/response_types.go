package handlers

import (
	"github.com/xpanvictor/liveslides/internal/domains/preferences"
	"github.com/xpanvictor/liveslides/internal/domains/session"
	"github.com/xpanvictor/liveslides/internal/domains/slides"
)

// Response wrapper types for Swagger documentation

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// SessionResponse wraps the session snapshot
type SessionResponse struct {
	Message string           `json:"message,omitempty" example:"Recording started"`
	Session session.Snapshot `json:"session"`
}

// SlideResponse is one slide as shown to API clients
type SlideResponse struct {
	Index     int    `json:"index" example:"0"`
	Title     string `json:"title" example:"Quarterly results"`
	Content   string `json:"content" example:"- Revenue up 12%"`
	Timestamp string `json:"timestamp" example:"2025-03-01T10:00:20Z"`
}

// SlidesResponse represents the response for listing slides
type SlidesResponse struct {
	Slides  []SlideResponse `json:"slides"`
	Current int             `json:"current" example:"0"`
}

// NavigateRequest moves the current slide by delta
type NavigateRequest struct {
	Delta int `json:"delta" binding:"required" example:"1"`
}

// NavigateResponse represents the response for slide navigation
type NavigateResponse struct {
	Current int  `json:"current" example:"1"`
	Moved   bool `json:"moved" example:"true"`
}

// PreviewResponse carries the control page preview fragment
type PreviewResponse struct {
	HTML  string `json:"html"`
	Index int    `json:"index" example:"0"`
}

// PreferencesResponse represents the response for preferences
type PreferencesResponse struct {
	Message     string               `json:"message,omitempty" example:"Preferences saved"`
	Preferences preferences.Response `json:"preferences"`
}

func toSlideResponses(list []slides.Slide) []SlideResponse {
	out := make([]SlideResponse, 0, len(list))
	for i, s := range list {
		out = append(out, SlideResponse{
			Index:     i,
			Title:     s.Title,
			Content:   s.Content,
			Timestamp: s.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
