package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
)

type SpecDTO struct {
	Material    *string `json:"material,omitempty"`
	Dimensions  *string `json:"dimensions,omitempty"`
	WeightGrams *int    `json:"weight_grams,omitempty" validate:"omitempty,min=0"`
	Notes       *string `json:"notes,omitempty"`
}

type PriceTierDTO struct {
	MinQty     int `json:"min_qty" validate:"required,min=1"`
	PriceCents int `json:"price_cents" validate:"required,min=1"`
}

type ProductDTO struct {
	ID                 uuid.UUID      `json:"id"`
	CatalogID          uuid.UUID      `json:"catalog_id"`
	CategoryID         uuid.UUID      `json:"category_id"`
	Slug               string         `json:"slug"`
	Name               string         `json:"name"`
	Description        *string        `json:"description,omitempty"`
	Images             []string       `json:"images"`
	IsActive           bool           `json:"is_active"`
	Spec               *SpecDTO       `json:"spec,omitempty"`
	PriceTiers         []PriceTierDTO `json:"price_tiers"`
	StartingPriceCents int            `json:"starting_price_cents"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type CreateProductRequest struct {
	CategoryID  uuid.UUID      `json:"category_id" validate:"required"`
	Name        string         `json:"name" validate:"required,min=1,max=160"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=4000"`
	Images      []string       `json:"images,omitempty" validate:"omitempty,dive,url"`
	Spec        *SpecDTO       `json:"spec,omitempty"`
	PriceTiers  []PriceTierDTO `json:"price_tiers" validate:"required,min=1,dive"`
}

type UpdateProductRequest struct {
	CategoryID  *uuid.UUID     `json:"category_id,omitempty"`
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=160"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=4000"`
	Images      []string       `json:"images,omitempty" validate:"omitempty,dive,url"`
	IsActive    *bool          `json:"is_active,omitempty"`
	Spec        *SpecDTO       `json:"spec,omitempty"`
	PriceTiers  []PriceTierDTO `json:"price_tiers,omitempty" validate:"omitempty,min=1,dive"`
}

func specFromModel(s *models.ProductSpec) *SpecDTO {
	if s == nil {
		return nil
	}
	return &SpecDTO{
		Material:    s.Material,
		Dimensions:  s.Dimensions,
		WeightGrams: s.WeightGrams,
		Notes:       s.Notes,
	}
}

func tiersFromModels(tiers []models.PriceTier) []PriceTierDTO {
	out := make([]PriceTierDTO, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, PriceTierDTO{MinQty: t.MinQty, PriceCents: t.PriceCents})
	}
	return out
}

// StartingPrice returns the minimum price across the product's tiers, zero
// when none exist.
func StartingPrice(tiers []models.PriceTier) int {
	min := 0
	for _, t := range tiers {
		if min == 0 || t.PriceCents < min {
			min = t.PriceCents
		}
	}
	return min
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:                 p.ID,
		CatalogID:          p.CatalogID,
		CategoryID:         p.CategoryID,
		Slug:               p.Slug,
		Name:               p.Name,
		Description:        p.Description,
		Images:             []string(p.Images),
		IsActive:           p.IsActive,
		Spec:               specFromModel(p.Spec),
		PriceTiers:         tiersFromModels(p.PriceTiers),
		StartingPriceCents: StartingPrice(p.PriceTiers),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func imagesToArray(images []string) pq.StringArray {
	if len(images) == 0 {
		return pq.StringArray{}
	}
	return pq.StringArray(images)
}
