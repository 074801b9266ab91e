package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
)

// MovementFilter criterios de consulta del ledger. Campos vacíos/nil no filtran.
// MaterialType filtra por el tipo del producto referenciado (join con products).
type MovementFilter struct {
	From         *time.Time
	To           *time.Time
	Type         string
	Department   string
	MaterialType string
	Limit        int
	Offset       int
}

// MovementRepository define el puerto de persistencia del ledger (solo inserción y lectura).
// List y ListByProduct se ordenan por fecha descendente; ListByTransaction en orden de inserción.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Movement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Movement, error)
	// DeleteByProduct solo se usa con la política de borrado en cascada.
	DeleteByProduct(ctx context.Context, productID string) (int, error)
}
