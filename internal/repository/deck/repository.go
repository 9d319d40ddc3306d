package deck

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/xpanvictor/liveslides/internal/domains/export"
)

type GormDeckRepo struct {
	db *gorm.DB
}

func NewGormDeckRepo(db *gorm.DB) *GormDeckRepo {
	return &GormDeckRepo{db: db}
}

// Create implements export.Repository
func (g *GormDeckRepo) Create(ctx context.Context, r *export.Record) error {
	entity := NewDeckEntityFromDomain(r)
	if err := g.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	*r = entity.ToDomain()
	return nil
}

// List implements export.Repository
func (g *GormDeckRepo) List(ctx context.Context, offset, limit int) ([]export.Record, int64, error) {
	var entities []DeckEntity
	var total int64

	query := g.db.WithContext(ctx).Model(&DeckEntity{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count decks: %w", err)
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list decks: %w", err)
	}

	records := make([]export.Record, len(entities))
	for i := range entities {
		records[i] = entities[i].ToDomain()
	}
	return records, total, nil
}

// MemoryDeckRepo keeps the archive in process. Used when no database is configured.
type MemoryDeckRepo struct {
	mu      sync.RWMutex
	records []export.Record
}

func NewMemoryDeckRepo() *MemoryDeckRepo {
	return &MemoryDeckRepo{}
}

// Create implements export.Repository
func (m *MemoryDeckRepo) Create(ctx context.Context, r *export.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *r)
	return nil
}

// List implements export.Repository, newest first.
func (m *MemoryDeckRepo) List(ctx context.Context, offset, limit int) ([]export.Record, int64, error) {
	m.mu.RLock()
	sorted := make([]export.Record, len(m.records))
	copy(sorted, m.records)
	m.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	total := int64(len(sorted))
	if offset >= len(sorted) {
		return []export.Record{}, total, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], total, nil
}
