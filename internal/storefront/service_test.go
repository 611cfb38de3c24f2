package storefront

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/pagination"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Catalog{},
		&models.Category{},
		&models.Product{},
		&models.ProductSpec{},
		&models.PriceTier{},
	); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(ServiceParams{DB: db.FromConn(conn), Logger: logg}), conn
}

func seedStore(t *testing.T, conn *gorm.DB, slug string, productCount int) *models.Catalog {
	t.Helper()

	owner := &models.User{ID: uuid.New(), Email: slug + "@example.com", Name: "Owner"}
	if err := conn.Create(owner).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	catalog := &models.Catalog{ID: uuid.New(), OwnerID: owner.ID, Name: "Shop", Slug: slug}
	if err := conn.Create(catalog).Error; err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}
	category := &models.Category{ID: uuid.New(), CatalogID: catalog.ID, Name: "General"}
	if err := conn.Create(category).Error; err != nil {
		t.Fatalf("seeding category: %v", err)
	}

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < productCount; i++ {
		product := &models.Product{
			ID:         uuid.New(),
			CatalogID:  catalog.ID,
			CategoryID: category.ID,
			Slug:       fmt.Sprintf("item-%03d", i),
			Name:       fmt.Sprintf("Item %03d", i),
			IsActive:   true,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			PriceTiers: []models.PriceTier{
				{ID: uuid.New(), MinQty: 1, PriceCents: 100 * (i + 1)},
			},
		}
		if err := conn.Create(product).Error; err != nil {
			t.Fatalf("seeding product: %v", err)
		}
	}
	return catalog
}

func TestGetStoreUnknownSlug(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetStore(context.Background(), "nope")
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProductsPaginates(t *testing.T) {
	svc, conn := newTestService(t)
	seedStore(t, conn, "shop-a", 7)

	first, err := svc.ListProducts(context.Background(), "shop-a", pagination.Params{Limit: 5})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(first.Items))
	}
	if first.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}
	// Newest first.
	if first.Items[0].Name != "Item 006" {
		t.Errorf("expected newest first, got %q", first.Items[0].Name)
	}

	second, err := svc.ListProducts(context.Background(), "shop-a", pagination.Params{
		Limit:  5,
		Cursor: first.NextCursor,
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items on the last page, got %d", len(second.Items))
	}
	if second.NextCursor != "" {
		t.Error("last page must not carry a cursor")
	}

	seen := map[uuid.UUID]struct{}{}
	for _, item := range append(first.Items, second.Items...) {
		if _, dup := seen[item.ID]; dup {
			t.Fatalf("item %s appeared on both pages", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
}

func TestListProductsHidesInactive(t *testing.T) {
	svc, conn := newTestService(t)
	catalog := seedStore(t, conn, "shop-a", 3)

	if err := conn.Model(&models.Product{}).
		Where("catalog_id = ? AND slug = ?", catalog.ID, "item-001").
		UpdateColumn("is_active", false).Error; err != nil {
		t.Fatalf("deactivating: %v", err)
	}

	page, err := svc.ListProducts(context.Background(), "shop-a", pagination.Params{})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 active items, got %d", len(page.Items))
	}
	for _, item := range page.Items {
		if item.Slug == "item-001" {
			t.Error("inactive product leaked into the storefront")
		}
	}
}

func TestGetProductInactiveIsNotFound(t *testing.T) {
	svc, conn := newTestService(t)
	catalog := seedStore(t, conn, "shop-a", 1)

	got, err := svc.GetProduct(context.Background(), "shop-a", "item-000")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.StartingPriceCents != 100 {
		t.Errorf("starting price = %d", got.StartingPriceCents)
	}

	if err := conn.Model(&models.Product{}).
		Where("catalog_id = ?", catalog.ID).
		UpdateColumn("is_active", false).Error; err != nil {
		t.Fatalf("deactivating: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), "shop-a", "item-000")
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
