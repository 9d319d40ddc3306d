package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/liveslides/internal/domains/preferences"
	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/pkg/Logger"
)

// PreferencesHandler reads and saves the user's configuration
type PreferencesHandler struct {
	service preferences.Service
	logger  *Logger.Logger
}

func NewPreferencesHandler(service preferences.Service, logger *Logger.Logger) *PreferencesHandler {
	return &PreferencesHandler{service: service, logger: logger}
}

// GetPreferences returns the saved preferences
// @Summary Get preferences
// @Description The API key is never returned, only whether one is set
// @Tags Preferences
// @Produce json
// @Success 200 {object} PreferencesResponse
// @Router /api/preferences [get]
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context())
	if err != nil {
		// Get still returns defaults when the store is unreadable
		h.logger.Warnf("get preferences: %v", err)
	}
	c.JSON(http.StatusOK, PreferencesResponse{Preferences: p.ToResponse()})
}

// UpdatePreferences saves changed fields
// @Summary Update preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body preferences.UpdateRequest true "Fields to change"
// @Success 200 {object} PreferencesResponse "Preferences saved"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/preferences [put]
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	var req preferences.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}
	if req.Theme != nil {
		normalized := presentation.NormalizeTheme(*req.Theme)
		req.Theme = &normalized
	}

	p, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorf("update preferences error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, PreferencesResponse{
		Message:     "Preferences saved",
		Preferences: p.ToResponse(),
	})
}

// ListThemes returns the available presentation themes
// @Summary List themes
// @Tags Preferences
// @Produce json
// @Success 200 {array} string
// @Router /api/themes [get]
func (h *PreferencesHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, presentation.ThemeNames())
}
