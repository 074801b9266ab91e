package inventory

import (
	"math"

	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
)

// MaxQuantity tope de cantidad por línea y de stock por producto (columna INTEGER en Postgres).
const MaxQuantity = math.MaxInt32

// ApplyMovement aplica la cantidad firmada del movimiento sobre el producto.
// Rechaza con InsufficientStockError cualquier salida mayor al stock disponible y con ErrInvalidInput
// una entrada o devolución que lleve el stock por encima de MaxQuantity; el producto no cambia en esos casos.
func ApplyMovement(p *entity.Product, m *entity.Movement) error {
	if m.Quantity <= 0 {
		return domain.InvalidInputf("cantidad debe ser mayor que cero (producto %s)", m.ProductID)
	}
	if m.Type == entity.MovementTypeExit && m.Quantity > p.Quantity {
		return &domain.InsufficientStockError{
			ProductID: p.ID,
			Requested: m.Quantity,
			Available: p.Quantity,
		}
	}
	if m.Type != entity.MovementTypeExit && m.Quantity > MaxQuantity-p.Quantity {
		return domain.InvalidInputf("stock del producto %s superaría el máximo de %d", p.ID, MaxQuantity)
	}
	p.Quantity += m.SignedQuantity()
	return nil
}

// Balance suma las cantidades firmadas de los movimientos (stock inicial implícito en cero).
func Balance(movements []*entity.Movement) int {
	total := 0
	for _, m := range movements {
		total += m.SignedQuantity()
	}
	return total
}
