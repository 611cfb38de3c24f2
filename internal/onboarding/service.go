package onboarding

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/internal/catalogs"
	"github.com/mateovidal/catalogbase-backend/internal/categories"
	"github.com/mateovidal/catalogbase-backend/internal/products"
	"github.com/mateovidal/catalogbase-backend/internal/users"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"gorm.io/gorm"
)

const seedDescription = "Tell your customers about this product."

// Service materializes a tenant in a single transaction: the catalog, its
// first categories, one seed product and the onboarding flag all commit
// together or not at all. Failures are not retried; the caller restarts
// onboarding from scratch.
type Service struct {
	db       *db.Client
	resolver *catalogs.Service
	logger   *logger.Logger
}

type ServiceParams struct {
	DB       *db.Client
	Resolver *catalogs.Service
	Logger   *logger.Logger
}

func NewService(params ServiceParams) *Service {
	return &Service{
		db:       params.DB,
		resolver: params.Resolver,
		logger:   params.Logger,
	}
}

func (s *Service) Onboard(ctx context.Context, userID uuid.UUID, req OnboardRequest) (*OnboardResponse, error) {
	// The HTTP layer validates too, but Onboard is callable on its own and
	// the seed product needs at least one category to attach to.
	names := make([]string, 0, len(req.Categories))
	for _, name := range req.Categories {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return nil, errors.New(errors.CodeValidation, "at least one category is required")
	}

	var resp *OnboardResponse

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeUnauthorized, "unknown principal")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading user")
		}

		// One catalog per user: a repeat onboarding reuses the existing row
		// and just renames it.
		catalog, err := s.resolver.ResolveForUser(ctx, tx, user)
		if err != nil {
			return err
		}
		businessName := strings.TrimSpace(req.BusinessName)
		if catalog.Name != businessName {
			if err := catalogs.NewRepository(tx).UpdateName(ctx, catalog.ID, businessName); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "renaming catalog")
			}
			catalog.Name = businessName
		}

		if _, err := categories.NewRepository(tx).CreateManySkipDuplicates(ctx, catalog.ID, names); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "creating categories")
		}

		// The seed product attaches to the first submitted category, re-read
		// by name so a duplicate skipped by the insert still resolves to the
		// stored row.
		seedCategory, err := s.firstCategory(ctx, tx, catalog.ID, names[0])
		if err != nil {
			return err
		}

		if err := s.createSeedProduct(ctx, tx, catalog.ID, seedCategory.ID, req.Product); err != nil {
			return err
		}

		if err := userRepo.SetOnboardingComplete(ctx, user.ID, true); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "setting onboarding flag")
		}

		resp = &OnboardResponse{CatalogID: catalog.ID, Slug: catalog.Slug}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"user_id":    userID,
		"catalog_id": resp.CatalogID,
	}), "onboarding completed")

	return resp, nil
}

// firstCategory resolves the category for the seed product: the first
// submitted name, falling back to the catalog's oldest category when that
// name cannot be found.
func (s *Service) firstCategory(ctx context.Context, tx *gorm.DB, catalogID uuid.UUID, firstName string) (*models.Category, error) {
	var row models.Category
	err := tx.WithContext(ctx).
		Where("catalog_id = ? AND name = ?", catalogID, firstName).
		First(&row).Error
	if err == nil {
		return &row, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading seed category")
	}

	oldest, err := categories.NewRepository(tx).FirstByCatalog(ctx, catalogID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading seed category")
	}
	return oldest, nil
}

func (s *Service) createSeedProduct(ctx context.Context, tx *gorm.DB, catalogID, categoryID uuid.UUID, seed SeedProduct) error {
	name := strings.TrimSpace(seed.Name)
	description := seedDescription

	product := &models.Product{
		ID:          uuid.New(),
		CatalogID:   catalogID,
		CategoryID:  categoryID,
		Slug:        products.Slugify(name),
		Name:        name,
		Description: &description,
		IsActive:    true,
		Spec:        &models.ProductSpec{},
		PriceTiers: []models.PriceTier{
			{MinQty: 1, PriceCents: seed.PriceCents},
		},
	}

	if err := products.NewRepository(tx).Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "a product with this slug already exists")
		}
		return errors.Wrap(errors.CodeInternal, err, "creating seed product")
	}
	return nil
}
