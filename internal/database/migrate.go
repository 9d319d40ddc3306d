package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/xpanvictor/liveslides/internal/repository/deck"
)

func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&deck.DeckEntity{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
