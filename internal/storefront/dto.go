package storefront

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/catalogbase-backend/internal/products"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
)

// StoreDTO is the public shape of a catalog; owner identity never leaves the
// backend.
type StoreDTO struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ListingDTO is the compact product card used on storefront grids.
type ListingDTO struct {
	ID                 uuid.UUID `json:"id"`
	Slug               string    `json:"slug"`
	Name               string    `json:"name"`
	Images             []string  `json:"images"`
	StartingPriceCents int       `json:"starting_price_cents"`
	CreatedAt          time.Time `json:"created_at"`
}

type ListingPage struct {
	Items      []ListingDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func storeFromModel(c *models.Catalog) *StoreDTO {
	return &StoreDTO{Name: c.Name, Slug: c.Slug}
}

func listingFromModel(p *models.Product) ListingDTO {
	return ListingDTO{
		ID:                 p.ID,
		Slug:               p.Slug,
		Name:               p.Name,
		Images:             []string(p.Images),
		StartingPriceCents: products.StartingPrice(p.PriceTiers),
		CreatedAt:          p.CreatedAt,
	}
}
