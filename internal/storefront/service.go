package storefront

import (
	"context"

	"github.com/mateovidal/catalogbase-backend/internal/catalogs"
	"github.com/mateovidal/catalogbase-backend/internal/products"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service serves the public, slug-addressed storefront. Reads are
// intentionally unguarded; only active products are visible.
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

func (s *Service) GetStore(ctx context.Context, slug string) (*StoreDTO, error) {
	catalog, err := s.loadCatalog(ctx, slug)
	if err != nil {
		return nil, err
	}
	return storeFromModel(catalog), nil
}

// ListProducts returns one cursor page of the store's active products,
// newest first.
func (s *Service) ListProducts(ctx context.Context, slug string, params pagination.Params) (*ListingPage, error) {
	catalog, err := s.loadCatalog(ctx, slug)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := products.NewRepository(s.db.DB()).
		ListActivePage(ctx, catalog.ID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing storefront products")
	}

	page := &ListingPage{Items: make([]ListingDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		page.Items = append(page.Items, listingFromModel(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *Service) GetProduct(ctx context.Context, slug, productSlug string) (*products.ProductDTO, error) {
	catalog, err := s.loadCatalog(ctx, slug)
	if err != nil {
		return nil, err
	}

	product, err := products.NewRepository(s.db.DB()).FindBySlug(ctx, catalog.ID, productSlug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return nil, errors.New(errors.CodeNotFound, "product not found")
	}
	return products.FromModel(product), nil
}

func (s *Service) loadCatalog(ctx context.Context, slug string) (*models.Catalog, error) {
	catalog, err := catalogs.NewRepository(s.db.DB()).FindBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "store not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading store")
	}
	return catalog, nil
}
