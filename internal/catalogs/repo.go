package catalogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, catalog *models.Catalog) error {
	if catalog.ID == uuid.Nil {
		catalog.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(catalog).Error
}

// FindByOwner returns the owner's catalog. Each user owns at most one.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := r.db.WithContext(ctx).Where("owner = ?", ownerID).First(&catalog).Error; err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := r.db.WithContext(ctx).First(&catalog, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&catalog).Error; err != nil {
		return nil, err
	}
	return &catalog, nil
}

// SlugExists reports whether any catalog already claims the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Catalog{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Catalog{}).
		Where("id = ?", id).
		UpdateColumn("name", name).Error
}

// SetBillingActive flips the billing flag, typically driven by payment webhooks.
func (r *Repository) SetBillingActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Catalog{}).
		Where("id = ?", id).
		UpdateColumn("billing_active", active).Error
}
