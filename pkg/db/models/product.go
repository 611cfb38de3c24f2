package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog listing. Slugs are unique within a catalog so tenants
// never collide over public URLs.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CatalogID   uuid.UUID      `gorm:"column:catalog_id;type:uuid;not null;uniqueIndex:idx_products_catalog_slug"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null;index"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex:idx_products_catalog_slug"`
	Name        string         `gorm:"column:name;not null"`
	Description *string        `gorm:"column:description"`
	Images      pq.StringArray `gorm:"column:images;type:text[]"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Spec        *ProductSpec   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	PriceTiers  []PriceTier    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductSpec holds the nested specification record, one per product.
type ProductSpec struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex"`
	Material    *string   `gorm:"column:material"`
	Dimensions  *string   `gorm:"column:dimensions"`
	WeightGrams *int      `gorm:"column:weight_grams"`
	Notes       *string   `gorm:"column:notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceTier is one {quantity bucket, price} entry; the product's starting
// price is the minimum price across its tiers.
type PriceTier struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	MinQty     int       `gorm:"column:min_qty;not null;default:1"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
