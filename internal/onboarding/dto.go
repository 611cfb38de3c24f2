package onboarding

import "github.com/google/uuid"

type SeedProduct struct {
	Name       string `json:"name" validate:"required,min=1,max=160"`
	PriceCents int    `json:"price_cents" validate:"required,min=1"`
}

type OnboardRequest struct {
	BusinessName string      `json:"business_name" validate:"required,min=1,max=160"`
	Categories   []string    `json:"categories" validate:"required,min=1,max=20,dive,required,min=1,max=120"`
	Product      SeedProduct `json:"product" validate:"required"`
}

type OnboardResponse struct {
	CatalogID uuid.UUID `json:"catalog_id"`
	Slug      string    `json:"slug"`
}
