package deck

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/xpanvictor/liveslides/internal/domains/export"
)

func record(name string, at time.Time) *export.Record {
	return &export.Record{ID: uuid.New(), Format: export.FormatHTML, Filename: name, Path: "/tmp/" + name, SlideCount: 2, Theme: "black", CreatedAt: at}
}

func TestMemoryDeckRepo_NewestFirst(t *testing.T) {
	repo := NewMemoryDeckRepo()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, record(name, base.Add(time.Duration(i)*time.Hour))))
	}

	got, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Filename)
	assert.Equal(t, "b", got[1].Filename)

	got, _, err = repo.List(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Runs against a real MySQL when LIVESLIDES_TEST_MYSQL_DSN is set.
func TestGormDeckRepo_MySQL(t *testing.T) {
	dsn := os.Getenv("LIVESLIDES_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("LIVESLIDES_TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&DeckEntity{}))
	t.Cleanup(func() { db.Exec("DELETE FROM decks") })

	repo := NewGormDeckRepo(db)
	ctx := context.Background()
	rec := record("live-slides-2025-03-01.html", time.Now())
	require.NoError(t, repo.Create(ctx, rec))

	got, total, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	require.NotEmpty(t, got)
	assert.Equal(t, rec.ID, got[0].ID)
}
