package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

type movementRow struct {
	seq int64
	m   entity.Movement
}

// MovementRepo implementación en memoria del ledger.
type MovementRepo struct {
	store *Store
	tx    *state
}

// Create agrega un movimiento.
func (r *MovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	return r.store.with(r.tx, func(st *state) error {
		if err := r.store.fault("movement.create"); err != nil {
			return err
		}
		st.seq++
		st.movements = append(st.movements, movementRow{seq: st.seq, m: *movement})
		return nil
	})
}

// List filtra el ledger; MaterialType se resuelve contra los productos actuales.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	return r.collect(func(st *state, m *entity.Movement) bool {
		if f.From != nil && m.Date.Before(*f.From) {
			return false
		}
		if f.To != nil && m.Date.After(*f.To) {
			return false
		}
		if f.Type != "" && m.Type != f.Type {
			return false
		}
		if f.Department != "" && m.Department != f.Department {
			return false
		}
		if f.MaterialType != "" {
			p, ok := st.products[m.ProductID]
			if !ok || p.Type != f.MaterialType {
				return false
			}
		}
		return true
	}, true, f.Limit, f.Offset)
}

// ListByProduct historial de un producto, más reciente primero.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Movement, error) {
	return r.collect(func(_ *state, m *entity.Movement) bool {
		return m.ProductID == productID
	}, true, 0, 0)
}

// ListByTransaction líneas de un lote en orden de inserción.
func (r *MovementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.Movement, error) {
	return r.collect(func(_ *state, m *entity.Movement) bool {
		return m.TransactionID == transactionID
	}, false, 0, 0)
}

// DeleteByProduct elimina el historial de un producto.
func (r *MovementRepo) DeleteByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	err := r.store.with(r.tx, func(st *state) error {
		if err := r.store.fault("movement.delete"); err != nil {
			return err
		}
		kept := st.movements[:0:0]
		for _, row := range st.movements {
			if row.m.ProductID == productID {
				n++
				continue
			}
			kept = append(kept, row)
		}
		st.movements = kept
		return nil
	})
	return n, err
}

func (r *MovementRepo) collect(match func(*state, *entity.Movement) bool, byDateDesc bool, limit, offset int) ([]*entity.Movement, error) {
	var rows []movementRow
	err := r.store.with(r.tx, func(st *state) error {
		for _, row := range st.movements {
			if match(st, &row.m) {
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if byDateDesc {
		sort.SliceStable(rows, func(i, j int) bool {
			if !rows[i].m.Date.Equal(rows[j].m.Date) {
				return rows[i].m.Date.After(rows[j].m.Date)
			}
			return rows[i].seq > rows[j].seq
		})
	}
	if offset > 0 {
		if offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[offset:]
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		m := row.m
		out = append(out, &m)
	}
	return out, nil
}
