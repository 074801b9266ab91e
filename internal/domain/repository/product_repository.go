package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
)

// ProductFilter criterios de listado de productos.
// NamePrefix se compara contra name_lowercase (ya normalizado); Code es coincidencia exacta.
// Limit <= 0 significa sin límite. El orden siempre es por nombre ascendente.
type ProductFilter struct {
	NamePrefix string
	Code       string
	Type       string
	Limit      int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update persiste solo metadatos; nunca Quantity ni AverageCost. ErrNotFound si no existe.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock persiste cantidad y costo promedio (usado por el ledger).
	UpdateStock(ctx context.Context, productID string, quantity int, averageCost decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
