package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/liveslides/internal/domains/export"
	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	"github.com/xpanvictor/liveslides/pkg/metrics"
)

// ExportHandler serves the presentation window and exported documents
type ExportHandler struct {
	controller SessionController
	exports    export.Service
	metrics    *metrics.Metrics
	logger     *Logger.Logger
}

func NewExportHandler(controller SessionController, exports export.Service, m *metrics.Metrics, logger *Logger.Logger) *ExportHandler {
	return &ExportHandler{
		controller: controller,
		exports:    exports,
		metrics:    m,
		logger:     logger,
	}
}

// Presentation renders the live presentation window
// @Summary Live presentation
// @Description reveal.js document with every slide so far; new slides arrive over /ws/presentation
// @Tags Presentation
// @Produce html
// @Success 200 {string} string "HTML document"
// @Router /presentation [get]
func (h *ExportHandler) Presentation(c *gin.Context) {
	deck := h.controller.Deck()
	deck.Live = true
	doc, err := presentation.Build(deck)
	if err != nil {
		h.logger.Errorf("render presentation: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to render presentation"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

// Export downloads the deck
// @Summary Export presentation
// @Description Write the deck as a standalone reveal.js page or a Word document and download it
// @Tags Presentation
// @Produce octet-stream
// @Param format path string true "html or docx"
// @Success 200 {file} file "Exported document"
// @Failure 400 {object} ErrorResponse "Unsupported format"
// @Failure 409 {object} ErrorResponse "No slides to export"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/export/{format} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := export.Format(c.Param("format"))
	rec, err := h.exports.Export(c.Request.Context(), format, h.controller.Deck())
	if err != nil {
		switch {
		case errors.Is(err, export.ErrUnsupportedFormat):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unsupported format", Details: "use html or docx"})
		case errors.Is(err, export.ErrNoSlides):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "No slides to export"})
		default:
			h.logger.Errorf("export error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to export presentation"})
		}
		return
	}

	h.metrics.Export(string(rec.Format))
	c.Header("Content-Type", rec.Format.ContentType())
	c.FileAttachment(rec.Path, rec.Filename)
}

// ListDecks lists earlier exports
// @Summary List exported decks
// @Tags Presentation
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} export.ListResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/decks [get]
func (h *ExportHandler) ListDecks(c *gin.Context) {
	list, err := h.exports.List(c.Request.Context(), queryInt(c, "offset", 0), queryInt(c, "limit", 20))
	if err != nil {
		h.logger.Errorf("list decks error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list decks"})
		return
	}
	c.JSON(http.StatusOK, list)
}
