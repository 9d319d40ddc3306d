package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/pkg/Logger"
)

type stubRepo struct {
	created []Record
	err     error
}

func (s *stubRepo) Create(ctx context.Context, r *Record) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *r)
	return nil
}

func (s *stubRepo) List(ctx context.Context, offset, limit int) ([]Record, int64, error) {
	return s.created, int64(len(s.created)), s.err
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo Repository) (*service, string) {
	dir := filepath.Join(t.TempDir(), "exports")
	svc := NewService(dir, repo, Logger.Nop()).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, dir
}

func testDeck() presentation.Deck {
	return presentation.Deck{
		Slides: []slides.Slide{{Title: "One", Content: "- a", Timestamp: fixedNow}},
		Theme:  "moon",
		Live:   true,
	}
}

func TestExport_HTML(t *testing.T) {
	repo := &stubRepo{}
	svc, dir := newTestService(t, repo)

	rec, err := svc.Export(context.Background(), FormatHTML, testDeck())
	require.NoError(t, err)
	assert.Equal(t, "live-slides-2025-03-01.html", rec.Filename)
	assert.Equal(t, filepath.Join(dir, rec.Filename), rec.Path)
	assert.Equal(t, 1, rec.SlideCount)
	assert.Equal(t, "moon", rec.Theme)

	data, err := os.ReadFile(rec.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<section><h2>One</h2>")
	assert.NotContains(t, string(data), "/ws/presentation")
	require.Len(t, repo.created, 1)
}

func TestExport_DOCX(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})
	rec, err := svc.Export(context.Background(), FormatDOCX, testDeck())
	require.NoError(t, err)
	assert.Equal(t, "live-slides-2025-03-01.docx", rec.Filename)
	_, err = os.Stat(rec.Path)
	assert.NoError(t, err)
}

func TestExport_Rejections(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})
	_, err := svc.Export(context.Background(), Format("pdf"), testDeck())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = svc.Export(context.Background(), FormatHTML, presentation.Deck{})
	assert.ErrorIs(t, err, ErrNoSlides)
}

func TestExport_ArchiveFailureStillExports(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{err: errors.New("db down")})
	rec, err := svc.Export(context.Background(), FormatHTML, testDeck())
	require.NoError(t, err)
	_, err = os.Stat(rec.Path)
	assert.NoError(t, err)
}

func TestList_ClampsPaging(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})
	resp, err := svc.List(context.Background(), -3, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Offset)
	assert.Equal(t, 20, resp.Limit)
	assert.NotNil(t, resp.Decks)
}
