package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// InitialQuantity > 0 genera una entrada sintética en la misma transacción.
type CreateProductRequest struct {
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Code            string           `json:"code" validate:"required,max=100"`
	Patrimony       string           `json:"patrimony" validate:"max=100"`
	Type            string           `json:"type" validate:"required,oneof=consumable permanent"`
	InitialQuantity int              `json:"initial_quantity" validate:"min=0,lte=2147483647"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Unit            string           `json:"unit" validate:"required,max=50"`
	Category        string           `json:"category" validate:"max=100"`
	Image           string           `json:"image" validate:"omitempty,max=1024"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Quantity ni Type).
type UpdateProductRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code      *string `json:"code" validate:"omitempty,min=1,max=100"`
	Patrimony *string `json:"patrimony" validate:"omitempty,max=100"`
	Unit      *string `json:"unit" validate:"omitempty,min=1,max=50"`
	Category  *string `json:"category" validate:"omitempty,max=100"`
	Image     *string `json:"image" validate:"omitempty,max=1024"`
}

// ProductQuery filtros de GET /api/products.
type ProductQuery struct {
	Search string `query:"search"`
	Type   string `query:"type" validate:"omitempty,oneof=consumable permanent"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Patrimony   string          `json:"patrimony"`
	Type        string          `json:"type"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	AverageCost decimal.Decimal `json:"average_cost"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}
