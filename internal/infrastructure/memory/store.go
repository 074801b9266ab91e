// Package memory implementa los repositorios sobre estado en proceso.
// Run serializa las transacciones con un mutex y trabaja sobre una copia del estado
// que solo reemplaza al original si fn no devuelve error.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products  map[string]productRow
	movements []movementRow
	seq       int64
}

func newState() *state {
	return &state{products: make(map[string]productRow)}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]productRow, len(s.products)),
		movements: make([]movementRow, len(s.movements)),
		seq:       s.seq,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	copy(c.movements, s.movements)
	return c
}

// Store agrupa productos, movimientos y usuarios.
type Store struct {
	mu     sync.Mutex
	st     *state
	users  *userTable
	faults map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), users: newUserTable(), faults: make(map[string]error)}
}

// InjectFault hace fallar la operación op ("product.create", "product.update_stock",
// "movement.create", "commit", ...) con err hasta que se llame ClearFaults.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults elimina las fallas inyectadas.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]error)
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Movements repositorio del ledger fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{t: s.users} }

// Run ejecuta fn con repositorios atados a una copia del estado y la confirma si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "begin transaction", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&ProductRepo{store: s, tx: work}, &MovementRepo{store: s, tx: work}); err != nil {
		return err
	}
	if err := s.fault("commit"); err != nil {
		return &domain.StorageError{Op: "commit transaction", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "commit transaction", Err: err}
	}
	s.st = work
	return nil
}

// fault se llama con mu tomado.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// with ejecuta fn sobre el estado de la tx o, fuera de ella, sobre el estado confirmado con mu tomado.
func (s *Store) with(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}
