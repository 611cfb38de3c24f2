package categories

import (
	"context"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(category).Error
}

// CreateManySkipDuplicates bulk-inserts categories for a catalog, silently
// skipping names the catalog already has. Returns the rows as persisted, in
// the submitted order.
func (r *Repository) CreateManySkipDuplicates(ctx context.Context, catalogID uuid.UUID, names []string) ([]models.Category, error) {
	rows := make([]models.Category, 0, len(names))
	seen := map[string]struct{}{}
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, models.Category{
			ID:        uuid.New(),
			CatalogID: catalogID,
			Name:      name,
		})
	}
	if len(rows) == 0 {
		return nil, nil
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListByCatalog(ctx context.Context, catalogID uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var row models.Category
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FirstByCatalog returns the oldest category of a catalog.
func (r *Repository) FirstByCatalog(ctx context.Context, catalogID uuid.UUID) (*models.Category, error) {
	var row models.Category
	err := r.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Order("created_at ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("name", name).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Category{}, "id = ?", id).Error
}

// CountProducts reports how many products still reference the category.
func (r *Repository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return count, err
}
