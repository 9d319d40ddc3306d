package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/pkg/Logger"
)

var (
	ErrNoSlides          = errors.New("no slides to export")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Repository archives export records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	List(ctx context.Context, offset, limit int) ([]Record, int64, error)
}

type Service interface {
	Export(ctx context.Context, format Format, deck presentation.Deck) (*Record, error)
	List(ctx context.Context, offset, limit int) (*ListResponse, error)
}

type service struct {
	dir    string
	repo   Repository
	logger *Logger.Logger
	now    func() time.Time
}

func NewService(dir string, repo Repository, logger *Logger.Logger) Service {
	return &service{dir: dir, repo: repo, logger: logger, now: time.Now}
}

// Export implements Service. The file lands in the export directory under its dated
// name; a second export on the same day replaces the first file.
func (s *service) Export(ctx context.Context, format Format, deck presentation.Deck) (*Record, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if len(deck.Slides) == 0 {
		return nil, ErrNoSlides
	}
	deck.Live = false

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}
	at := s.now()
	name := presentation.ExportFilename(at, string(format))
	path := filepath.Join(s.dir, name)

	switch format {
	case FormatHTML:
		doc, err := presentation.Build(deck)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	case FormatDOCX:
		if err := presentation.WriteDocx(deck, path); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	rec := &Record{
		ID:         uuid.New(),
		Format:     format,
		Filename:   name,
		Path:       path,
		SlideCount: len(deck.Slides),
		Theme:      presentation.NormalizeTheme(deck.Theme),
		CreatedAt:  at,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		// The file exists; only the archive entry is missing.
		s.logger.Errorf("error archiving export %s: %v", name, err)
	}
	s.logger.Infof("exported %d slides to %s", rec.SlideCount, path)
	return rec, nil
}

// List implements Service.
func (s *service) List(ctx context.Context, offset, limit int) (*ListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	records, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return &ListResponse{Decks: records, Total: total, Offset: offset, Limit: limit}, nil
}
