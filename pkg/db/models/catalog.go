package models

import (
	"time"

	"github.com/google/uuid"
)

// Catalog represents the canonical tenant: the owning unit for a business's
// categories and products, addressed publicly by slug.
type Catalog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID `gorm:"column:owner;type:uuid;not null;index"`
	Name          string    `gorm:"column:name;not null"`
	Slug          string    `gorm:"column:slug;not null;uniqueIndex"`
	BillingActive bool      `gorm:"column:billing_active;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
