package models

import (
	"time"

	"github.com/google/uuid"
)

// Category belongs to exactly one catalog; names are unique per catalog, not
// globally.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CatalogID uuid.UUID `gorm:"column:catalog_id;type:uuid;not null;uniqueIndex:idx_categories_catalog_name"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_categories_catalog_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
