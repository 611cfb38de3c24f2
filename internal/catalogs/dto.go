package catalogs

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
)

type CatalogDTO struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	BillingActive bool      `json:"billing_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromModel(c *models.Catalog) *CatalogDTO {
	if c == nil {
		return nil
	}

	return &CatalogDTO{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Name:          c.Name,
		Slug:          c.Slug,
		BillingActive: c.BillingActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
