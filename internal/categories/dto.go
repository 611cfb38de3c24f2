package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
)

type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	CatalogID uuid.UUID `json:"catalog_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

func FromModel(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        c.ID,
		CatalogID: c.CatalogID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromModels(rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
