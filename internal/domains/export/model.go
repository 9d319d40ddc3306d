package export

import (
	"time"

	"github.com/google/uuid"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatDOCX Format = "docx"
)

func (f Format) Valid() bool {
	return f == FormatHTML || f == FormatDOCX
}

func (f Format) ContentType() string {
	if f == FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/html; charset=utf-8"
}

// Record is one exported document in the archive.
// @Description Exported deck
type Record struct {
	ID         uuid.UUID `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Format     Format    `json:"format" example:"html"`
	Filename   string    `json:"filename" example:"live-slides-2025-03-01.html"`
	Path       string    `json:"-"`
	SlideCount int       `json:"slideCount" example:"7"`
	Theme      string    `json:"theme" example:"black"`
	CreatedAt  time.Time `json:"createdAt" example:"2025-03-01T12:00:00Z"`
}

// ListResponse is a page of archive records.
// @Description Paged list of exported decks
type ListResponse struct {
	Decks  []Record `json:"decks"`
	Total  int64    `json:"total"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
}
