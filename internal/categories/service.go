package categories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service owns tenant-scoped category CRUD. Every mutation loads the target
// row and checks it belongs to the caller's catalog before touching it.
type Service struct {
	db     *db.Client
	logger *logger.Logger
}

type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

func NewService(params ServiceParams) *Service {
	return &Service{db: params.DB, logger: params.Logger}
}

func (s *Service) List(ctx context.Context, catalogID uuid.UUID) ([]CategoryDTO, error) {
	rows, err := NewRepository(s.db.DB()).ListByCatalog(ctx, catalogID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing categories")
	}
	return FromModels(rows), nil
}

func (s *Service) Create(ctx context.Context, catalogID uuid.UUID, req CreateCategoryRequest) (*CategoryDTO, error) {
	category := &models.Category{
		CatalogID: catalogID,
		Name:      strings.TrimSpace(req.Name),
	}
	if err := NewRepository(s.db.DB()).Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "a category with this name already exists")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "creating category")
	}
	return FromModel(category), nil
}

func (s *Service) Update(ctx context.Context, catalogID, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryDTO, error) {
	repo := NewRepository(s.db.DB())

	category, err := s.loadOwned(ctx, repo, catalogID, categoryID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := repo.UpdateName(ctx, category.ID, name); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "a category with this name already exists")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "updating category")
	}

	category.Name = name
	return FromModel(category), nil
}

func (s *Service) Delete(ctx context.Context, catalogID, categoryID uuid.UUID) error {
	repo := NewRepository(s.db.DB())

	category, err := s.loadOwned(ctx, repo, catalogID, categoryID)
	if err != nil {
		return err
	}

	count, err := repo.CountProducts(ctx, category.ID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "counting category products")
	}
	if count > 0 {
		return errors.New(errors.CodeConflict, "category still has products")
	}

	if err := repo.Delete(ctx, category.ID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting category")
	}
	return nil
}

// loadOwned fetches the category and rejects cross-tenant access before any
// mutation happens.
func (s *Service) loadOwned(ctx context.Context, repo *Repository, catalogID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := repo.FindByID(ctx, categoryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "category not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading category")
	}
	if category.CatalogID != catalogID {
		return nil, errors.New(errors.CodeForbidden, "category belongs to another catalog")
	}
	return category, nil
}
