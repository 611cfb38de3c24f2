package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/pagination"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists the product together with its spec and price tiers.
// IDs are assigned here; the schema carries no generated defaults.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Spec != nil && product.Spec.ID == uuid.Nil {
		product.Spec.ID = uuid.New()
	}
	for i := range product.PriceTiers {
		if product.PriceTiers[i].ID == uuid.Nil {
			product.PriceTiers[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Preload("Spec").
		Preload("PriceTiers").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindBySlug scopes the lookup to one catalog; slugs are only unique inside
// a catalog.
func (r *Repository) FindBySlug(ctx context.Context, catalogID uuid.UUID, slug string) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Preload("Spec").
		Preload("PriceTiers").
		Where("catalog_id = ? AND slug = ?", catalogID, slug).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListByCatalog(ctx context.Context, catalogID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Spec").
		Preload("PriceTiers").
		Where("catalog_id = ?", catalogID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActivePage returns one cursor page of active products for the public
// storefront, newest first.
func (r *Repository) ListActivePage(ctx context.Context, catalogID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("PriceTiers").
		Where("catalog_id = ? AND is_active = ?", catalogID, true)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// ReplacePriceTiers deletes and reinserts the product's tiers.
func (r *Repository) ReplacePriceTiers(ctx context.Context, productID uuid.UUID, tiers []models.PriceTier) error {
	err := r.db.WithContext(ctx).
		Delete(&models.PriceTier{}, "product_id = ?", productID).Error
	if err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	for i := range tiers {
		tiers[i].ID = uuid.New()
		tiers[i].ProductID = productID
	}
	return r.db.WithContext(ctx).Create(&tiers).Error
}

// UpsertSpec writes the 1:1 specification row.
func (r *Repository) UpsertSpec(ctx context.Context, productID uuid.UUID, spec *models.ProductSpec) error {
	var existing models.ProductSpec
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		spec.ID = uuid.New()
		spec.ProductID = productID
		return r.db.WithContext(ctx).Create(spec).Error
	case err != nil:
		return err
	default:
		spec.ID = existing.ID
		spec.ProductID = productID
		return r.db.WithContext(ctx).Save(spec).Error
	}
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Spec", "PriceTiers").
		Delete(&models.Product{ID: id}).Error
}
