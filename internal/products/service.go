package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/internal/categories"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service owns tenant-scoped product CRUD. Mutations pass through the
// ownership guard; category references are checked against the same catalog.
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

func (s *Service) List(ctx context.Context, catalogID uuid.UUID) ([]ProductDTO, error) {
	rows, err := NewRepository(s.db.DB()).ListByCatalog(ctx, catalogID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing products")
	}
	return FromModels(rows), nil
}

func (s *Service) Get(ctx context.Context, catalogID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, NewRepository(s.db.DB()), catalogID, productID)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *Service) Create(ctx context.Context, catalogID uuid.UUID, req CreateProductRequest) (*ProductDTO, error) {
	if err := s.checkCategory(ctx, catalogID, req.CategoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	product := &models.Product{
		ID:          uuid.New(),
		CatalogID:   catalogID,
		CategoryID:  req.CategoryID,
		Slug:        Slugify(name),
		Name:        name,
		Description: req.Description,
		Images:      imagesToArray(req.Images),
		IsActive:    true,
	}
	if req.Spec != nil {
		product.Spec = &models.ProductSpec{
			Material:    req.Spec.Material,
			Dimensions:  req.Spec.Dimensions,
			WeightGrams: req.Spec.WeightGrams,
			Notes:       req.Spec.Notes,
		}
	}
	for _, tier := range req.PriceTiers {
		product.PriceTiers = append(product.PriceTiers, models.PriceTier{
			MinQty:     tier.MinQty,
			PriceCents: tier.PriceCents,
		})
	}

	if err := NewRepository(s.db.DB()).Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "a product with this slug already exists")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "creating product")
	}
	return FromModel(product), nil
}

func (s *Service) Update(ctx context.Context, catalogID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	var updated *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		product, err := s.loadOwned(ctx, repo, catalogID, productID)
		if err != nil {
			return err
		}

		if req.CategoryID != nil {
			if err := s.checkCategoryTx(ctx, tx, catalogID, *req.CategoryID); err != nil {
				return err
			}
			product.CategoryID = *req.CategoryID
		}
		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
			product.Slug = Slugify(product.Name)
		}
		if req.Description != nil {
			product.Description = req.Description
		}
		if req.Images != nil {
			product.Images = imagesToArray(req.Images)
		}
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}

		// Save without associations; spec and tiers are written explicitly.
		spec, tiers := product.Spec, product.PriceTiers
		product.Spec, product.PriceTiers = nil, nil
		if err := repo.Save(ctx, product); err != nil {
			if db.IsUniqueViolation(err) {
				return errors.New(errors.CodeConflict, "a product with this slug already exists")
			}
			return errors.Wrap(errors.CodeInternal, err, "updating product")
		}
		product.Spec, product.PriceTiers = spec, tiers

		if req.Spec != nil {
			newSpec := &models.ProductSpec{
				Material:    req.Spec.Material,
				Dimensions:  req.Spec.Dimensions,
				WeightGrams: req.Spec.WeightGrams,
				Notes:       req.Spec.Notes,
			}
			if err := repo.UpsertSpec(ctx, product.ID, newSpec); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "updating product spec")
			}
			product.Spec = newSpec
		}
		if req.PriceTiers != nil {
			tiers := make([]models.PriceTier, 0, len(req.PriceTiers))
			for _, t := range req.PriceTiers {
				tiers = append(tiers, models.PriceTier{MinQty: t.MinQty, PriceCents: t.PriceCents})
			}
			if err := repo.ReplacePriceTiers(ctx, product.ID, tiers); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "replacing price tiers")
			}
			product.PriceTiers = tiers
		}

		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *Service) Delete(ctx context.Context, catalogID, productID uuid.UUID) error {
	repo := NewRepository(s.db.DB())

	product, err := s.loadOwned(ctx, repo, catalogID, productID)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, product.ID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting product")
	}
	return nil
}

// loadOwned fetches the product and rejects cross-tenant access before any
// mutation happens.
func (s *Service) loadOwned(ctx context.Context, repo *Repository, catalogID, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading product")
	}
	if product.CatalogID != catalogID {
		return nil, errors.New(errors.CodeForbidden, "product belongs to another catalog")
	}
	return product, nil
}

func (s *Service) checkCategory(ctx context.Context, catalogID, categoryID uuid.UUID) error {
	return s.checkCategoryTx(ctx, s.db.DB(), catalogID, categoryID)
}

// checkCategoryTx verifies the category exists and belongs to the caller's
// catalog.
func (s *Service) checkCategoryTx(ctx context.Context, tx *gorm.DB, catalogID, categoryID uuid.UUID) error {
	category, err := categories.NewRepository(tx).FindByID(ctx, categoryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.New(errors.CodeNotFound, "category not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "loading category")
	}
	if category.CatalogID != catalogID {
		return errors.New(errors.CodeForbidden, "category belongs to another catalog")
	}
	return nil
}

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	lastHyphen := false
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen && b.Len() > 0:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
