package deck

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xpanvictor/liveslides/internal/domains/export"
)

// DeckEntity is the archive row for one exported document.
type DeckEntity struct {
	ID         uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	Format     string    `gorm:"column:format;type:varchar(8);not null"`
	Filename   string    `gorm:"column:filename;type:varchar(255);not null"`
	Path       string    `gorm:"column:path;type:varchar(1024);not null"`
	SlideCount int       `gorm:"column:slide_count;not null"`
	Theme      string    `gorm:"column:theme;type:varchar(32)"`
	CreatedAt  time.Time `gorm:"autoCreateTime(3);index"`
}

func (DeckEntity) TableName() string {
	return "decks"
}

func (d *DeckEntity) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *DeckEntity) ToDomain() export.Record {
	return export.Record{
		ID:         d.ID,
		Format:     export.Format(d.Format),
		Filename:   d.Filename,
		Path:       d.Path,
		SlideCount: d.SlideCount,
		Theme:      d.Theme,
		CreatedAt:  d.CreatedAt,
	}
}

func NewDeckEntityFromDomain(r *export.Record) *DeckEntity {
	return &DeckEntity{
		ID:         r.ID,
		Format:     string(r.Format),
		Filename:   r.Filename,
		Path:       r.Path,
		SlideCount: r.SlideCount,
		Theme:      r.Theme,
		CreatedAt:  r.CreatedAt,
	}
}
