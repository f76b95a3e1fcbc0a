package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cinebridge-backend/internal/domain/catalog"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Item{},
		&catalog.Label{},
		&catalog.ItemLabel{},
		&catalog.Interaction{},
	)
}

// EnsureCatalogIndexes adds the case-insensitive label index. Names are
// already folded on write; this keeps rows inserted by other writers honest.
func EnsureCatalogIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_label_lower_name_kind
		ON labels (lower(name), kind);
	`).Error; err != nil {
		return fmt.Errorf("create idx_label_lower_name_kind: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_interaction_item_kind
		ON interactions (item_id, kind);
	`).Error; err != nil {
		return fmt.Errorf("create idx_interaction_item_kind: %w", err)
	}
	return nil
}
