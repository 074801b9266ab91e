package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

// InitialStockSupplier proveedor de la entrada sintética creada con el stock inicial de un producto.
const InitialStockSupplier = "Cadastro inicial"

// LineItem una línea de un lote. UnitCost solo se considera en entradas.
type LineItem struct {
	ProductID string
	Quantity  int
	UnitCost  *decimal.Decimal
}

// EntryInput entrada desde proveedor.
type EntryInput struct {
	Items       []LineItem
	Date        time.Time // cero = ahora
	Supplier    string
	Invoice     string
	Responsible string
}

// ExitInput salida hacia un departamento.
type ExitInput struct {
	Items       []LineItem
	Date        time.Time
	Requester   string
	Department  string
	Purpose     string
	Responsible string
}

// ReturnInput devolución desde un departamento.
type ReturnInput struct {
	Items       []LineItem
	Date        time.Time
	Department  string
	Reason      string
	Responsible string
}

// Batch resultado de un finalize confirmado.
type Batch struct {
	TransactionID string
	Type          string
	Date          time.Time
	Responsible   string
	Movements     []*entity.Movement
}

// LedgerUseCase aplica lotes de movimientos (Entry, Exit, Return) de forma atómica:
// o se actualizan todas las cantidades y se agregan todos los movimientos, o nada.
type LedgerUseCase struct {
	txRunner  TxRunner
	publisher EventPublisher
	log       zerolog.Logger
	now       Clock
}

// NewLedgerUseCase construye el caso de uso. publisher puede ser nil (sin eventos).
func NewLedgerUseCase(txRunner TxRunner, publisher EventPublisher, log zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, publisher: publisher, log: log, now: time.Now}
}

// WithClock reemplaza la fuente de hora (tests).
func (uc *LedgerUseCase) WithClock(c Clock) *LedgerUseCase {
	uc.now = c
	return uc
}

// FinalizeEntry suma stock por cada línea y recalcula el costo promedio ponderado.
func (uc *LedgerUseCase) FinalizeEntry(ctx context.Context, in EntryInput) (*Batch, error) {
	if err := validateItems(in.Items, true); err != nil {
		return nil, err
	}
	if err := required(map[string]string{
		"supplier": in.Supplier, "invoice": in.Invoice, "responsible": in.Responsible,
	}); err != nil {
		return nil, err
	}
	stamp := func(m *entity.Movement) {
		m.Supplier = strings.TrimSpace(in.Supplier)
		m.Invoice = strings.TrimSpace(in.Invoice)
	}
	return uc.finalize(ctx, entity.MovementTypeEntry, in.Items, in.Date, in.Responsible, stamp, nil)
}

// FinalizeExit resta stock por cada línea. Si cualquier línea supera el disponible
// (acumulando líneas repetidas del mismo producto) el lote completo se rechaza.
func (uc *LedgerUseCase) FinalizeExit(ctx context.Context, in ExitInput) (*Batch, error) {
	if err := validateItems(in.Items, false); err != nil {
		return nil, err
	}
	if err := required(map[string]string{
		"requester": in.Requester, "department": in.Department, "responsible": in.Responsible,
	}); err != nil {
		return nil, err
	}
	stamp := func(m *entity.Movement) {
		m.Requester = strings.TrimSpace(in.Requester)
		m.Department = strings.TrimSpace(in.Department)
		m.Purpose = strings.TrimSpace(in.Purpose)
	}
	return uc.finalize(ctx, entity.MovementTypeExit, in.Items, in.Date, in.Responsible, stamp, nil)
}

// FinalizeReturn devuelve stock desde un departamento.
func (uc *LedgerUseCase) FinalizeReturn(ctx context.Context, in ReturnInput) (*Batch, error) {
	if err := validateItems(in.Items, false); err != nil {
		return nil, err
	}
	if err := required(map[string]string{
		"department": in.Department, "reason": in.Reason, "responsible": in.Responsible,
	}); err != nil {
		return nil, err
	}
	if !entity.IsValidReturnReason(in.Reason) {
		return nil, domain.InvalidInputf("motivo de devolución desconocido %q", in.Reason)
	}
	stamp := func(m *entity.Movement) {
		m.Department = strings.TrimSpace(in.Department)
		m.Reason = in.Reason
	}
	return uc.finalize(ctx, entity.MovementTypeReturn, in.Items, in.Date, in.Responsible, stamp, nil)
}

// ProductGuard corre dentro de la transacción de OpenProduct antes de insertar el producto.
type ProductGuard func(ctx context.Context, productRepo repository.ProductRepository) error

// OpenProduct persiste un producto nuevo con stock cero y, si initialQty > 0, aplica su entrada
// sintética en la misma transacción. guard (opcional) valida contra el estado transaccional.
// Devuelve el lote de la entrada (nil si no hubo stock inicial).
func (uc *LedgerUseCase) OpenProduct(
	ctx context.Context,
	p *entity.Product,
	initialQty int,
	unitCost *decimal.Decimal,
	responsible string,
	guard ProductGuard,
) (*Batch, error) {
	if initialQty < 0 {
		return nil, domain.InvalidInputf("cantidad inicial negativa")
	}
	p.Quantity = 0
	p.AverageCost = decimal.Zero
	create := func(ctx context.Context, productRepo repository.ProductRepository) error {
		if guard != nil {
			if err := guard(ctx, productRepo); err != nil {
				return err
			}
		}
		return productRepo.Create(ctx, p)
	}
	if initialQty == 0 {
		err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, _ repository.MovementRepository) error {
			return create(ctx, productRepo)
		})
		return nil, domain.AsStorage("create product", err)
	}

	items := []LineItem{{ProductID: p.ID, Quantity: initialQty, UnitCost: unitCost}}
	if err := validateItems(items, true); err != nil {
		return nil, err
	}
	if strings.TrimSpace(responsible) == "" {
		return nil, domain.InvalidInputf("campos requeridos: responsible")
	}
	stamp := func(m *entity.Movement) {
		m.Supplier = InitialStockSupplier
	}
	batch, err := uc.finalize(ctx, entity.MovementTypeEntry, items, time.Time{}, responsible, stamp, create)
	if err != nil {
		return nil, err
	}
	p.Quantity = initialQty
	if unitCost != nil {
		p.AverageCost = *unitCost
	}
	return batch, nil
}

func (uc *LedgerUseCase) finalize(
	ctx context.Context,
	movType string,
	items []LineItem,
	date time.Time,
	responsible string,
	stamp func(*entity.Movement),
	before func(ctx context.Context, productRepo repository.ProductRepository) error,
) (*Batch, error) {
	now := uc.now()
	if date.IsZero() {
		date = now
	}
	batch := &Batch{
		TransactionID: uuid.New().String(),
		Type:          movType,
		Date:          date,
		Responsible:   strings.TrimSpace(responsible),
	}

	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.MovementRepository) error {
		if before != nil {
			if err := before(ctx, productRepo); err != nil {
				return err
			}
		}
		movs, err := applyLines(ctx, productRepo, movType, items, func(m *entity.Movement) {
			m.ID = uuid.New().String()
			m.TransactionID = batch.TransactionID
			m.Date = date
			m.Responsible = batch.Responsible
			m.CreatedAt = now
			stamp(m)
		})
		if err != nil {
			return err
		}
		for _, m := range movs {
			if err := movRepo.Create(ctx, m); err != nil {
				return err
			}
		}
		batch.Movements = movs
		return nil
	})
	if err != nil {
		return nil, domain.AsStorage("finalize "+strings.ToLower(movType), err)
	}

	uc.log.Info().
		Str("transaction_id", batch.TransactionID).
		Str("type", movType).
		Int("lines", len(batch.Movements)).
		Str("responsible", batch.Responsible).
		Msg("lote de movimientos confirmado")

	if uc.publisher != nil {
		if err := uc.publisher.PublishBatch(ctx, batch); err != nil {
			uc.log.Warn().Err(err).Str("transaction_id", batch.TransactionID).Msg("no se pudo publicar el evento del lote")
		}
	}
	return batch, nil
}

// applyLines bloquea los productos del lote (en orden de id para evitar deadlocks), aplica cada
// línea en orden sobre el saldo acumulado y persiste el stock final de cada producto una sola vez.
func applyLines(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movType string,
	items []LineItem,
	fill func(*entity.Movement),
) ([]*entity.Movement, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Strings(ids)

	products := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFoundf("producto %s", id)
		}
		products[id] = p
	}

	movs := make([]*entity.Movement, 0, len(items))
	for _, it := range items {
		p := products[it.ProductID]
		m := &entity.Movement{
			ProductID: it.ProductID,
			Type:      movType,
			Quantity:  it.Quantity,
			UnitCost:  p.AverageCost,
		}
		newCost := p.AverageCost
		if movType == entity.MovementTypeEntry && it.UnitCost != nil {
			m.UnitCost = *it.UnitCost
			newCost = inventory.CostCalculator(p.Quantity, p.AverageCost, it.Quantity, *it.UnitCost)
		}
		if err := inventory.ApplyMovement(p, m); err != nil {
			return nil, err
		}
		p.AverageCost = newCost
		fill(m)
		movs = append(movs, m)
	}

	for _, id := range ids {
		p := products[id]
		if err := productRepo.UpdateStock(ctx, id, p.Quantity, p.AverageCost); err != nil {
			return nil, err
		}
	}
	return movs, nil
}

// validateItems se ejecuta antes de abrir la transacción.
func validateItems(items []LineItem, allowCost bool) error {
	if len(items) == 0 {
		return domain.InvalidInputf("el lote no tiene ítems")
	}
	for i, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.InvalidInputf("ítem %d sin producto", i+1)
		}
		if it.Quantity <= 0 {
			return domain.InvalidInputf("ítem %d: cantidad debe ser mayor que cero", i+1)
		}
		if it.Quantity > inventory.MaxQuantity {
			return domain.InvalidInputf("ítem %d: cantidad supera el máximo de %d", i+1, inventory.MaxQuantity)
		}
		if it.UnitCost != nil {
			if !allowCost {
				return domain.InvalidInputf("ítem %d: costo unitario solo se acepta en entradas", i+1)
			}
			if it.UnitCost.IsNegative() {
				return domain.InvalidInputf("ítem %d: costo unitario negativo", i+1)
			}
		}
	}
	return nil
}

func required(fields map[string]string) error {
	missing := make([]string, 0, len(fields))
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return domain.InvalidInputf("campos requeridos: %s", strings.Join(missing, ", "))
}
