package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `m.id, m.transaction_id, m.product_id, m.date, m.type, m.quantity, m.unit_cost, m.responsible,
	m.supplier, m.invoice, m.department, m.requester, m.purpose, m.reason, m.created_at`

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, transaction_id, product_id, date, type, quantity, unit_cost, responsible,
			supplier, invoice, department, requester, purpose, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.ProductID, m.Date, m.Type, m.Quantity, m.UnitCost, m.Responsible,
		m.Supplier, m.Invoice, m.Department, m.Requester, m.Purpose, m.Reason, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// List filtra el ledger. MaterialType se resuelve con un EXISTS sobre products en la misma consulta.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var w whereBuilder
	if f.From != nil {
		w.add("m.date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("m.date <= $%d", *f.To)
	}
	if f.Type != "" {
		w.add("m.type = $%d", f.Type)
	}
	if f.Department != "" {
		w.add("m.department = $%d", f.Department)
	}
	if f.MaterialType != "" {
		w.add("EXISTS (SELECT 1 FROM products p WHERE p.id = m.product_id AND p.type = $%d)", f.MaterialType)
	}
	query := `SELECT ` + movementColumns + ` FROM movements m` + w.sql() + ` ORDER BY m.date DESC, m.seq DESC`
	if f.Limit > 0 {
		query += " LIMIT " + w.next(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + w.next(f.Offset)
	}
	return r.query(ctx, "list movements", query, w.args...)
}

// ListByProduct historial de un producto, más reciente primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Movement, error) {
	return r.query(ctx, "list product movements",
		`SELECT `+movementColumns+` FROM movements m WHERE m.product_id = $1 ORDER BY m.date DESC, m.seq DESC`, productID)
}

// ListByTransaction líneas de un lote en orden de inserción.
func (r *MovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Movement, error) {
	return r.query(ctx, "list transaction movements",
		`SELECT `+movementColumns+` FROM movements m WHERE m.transaction_id = $1 ORDER BY m.seq ASC`, transactionID)
}

// DeleteByProduct elimina el historial de un producto (política cascade).
func (r *MovementRepo) DeleteByProduct(ctx context.Context, productID string) (int, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movements WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete product movements: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *MovementRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.ProductID, &m.Date, &m.Type, &m.Quantity, &m.UnitCost, &m.Responsible,
		&m.Supplier, &m.Invoice, &m.Department, &m.Requester, &m.Purpose, &m.Reason, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
