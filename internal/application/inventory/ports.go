package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: si fn devuelve error no queda ninguna escritura.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// EventPublisher publica un lote ya confirmado. Se invoca después del commit.
type EventPublisher interface {
	PublishBatch(ctx context.Context, batch *Batch) error
}

// TermPDFGenerator renderiza el termo de responsabilidad de una salida.
type TermPDFGenerator interface {
	GenerateTerm(ctx context.Context, term *ResponsibilityTerm) ([]byte, error)
}

// Clock fuente de la hora actual (fecha por defecto de los movimientos).
type Clock func() time.Time
