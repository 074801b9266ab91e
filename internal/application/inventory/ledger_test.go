package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almoxtrack-api/internal/domain/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/infrastructure/memory"
)

const operador = "operador@almox.local"

type fakePublisher struct {
	mu      sync.Mutex
	batches []*inventory.Batch
	err     error
}

func (f *fakePublisher) PublishBatch(_ context.Context, b *inventory.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, b)
	return f.err
}

// tickingClock avanza un minuto en cada llamada para que las fechas por defecto sean distintas.
func tickingClock(start time.Time) inventory.Clock {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Minute)
		return cur
	}
}

func newLedger(t *testing.T) (*inventory.LedgerUseCase, *memory.Store, *fakePublisher) {
	t.Helper()
	store := memory.NewStore()
	pub := &fakePublisher{}
	uc := inventory.NewLedgerUseCase(store, pub, zerolog.Nop()).
		WithClock(tickingClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
	return uc, store, pub
}

func seedProduct(t *testing.T, store *memory.Store, id string, qty int) {
	t.Helper()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: "Produto " + id, NameLowercase: "produto " + id, Code: id,
		Type: entity.MaterialConsumable, Patrimony: entity.PatrimonyNotApplicable, Quantity: qty, Unit: "und",
	}))
}

func quantity(t *testing.T, store *memory.Store, id string) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func TestLedger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	uc, store, pub := newLedger(t)
	seedProduct(t, store, "p1", 0)

	_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items: []inventory.LineItem{{ProductID: "p1", Quantity: 50}}, Supplier: "Kalunga", Invoice: "NF-1", Responsible: operador,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, quantity(t, store, "p1"))

	_, err = uc.FinalizeExit(ctx, inventory.ExitInput{
		Items: []inventory.LineItem{{ProductID: "p1", Quantity: 20}}, Requester: "Maria", Department: "TI", Responsible: operador,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, quantity(t, store, "p1"))

	_, err = uc.FinalizeReturn(ctx, inventory.ReturnInput{
		Items: []inventory.LineItem{{ProductID: "p1", Quantity: 5}}, Department: "TI", Reason: entity.ReturnReasonExcess, Responsible: operador,
	})
	require.NoError(t, err)
	assert.Equal(t, 35, quantity(t, store, "p1"))

	movs, err := inventory.NewMovementQueryUseCase(store.Movements()).ListMovementsForProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.MovementTypeReturn, movs[0].Type)
	assert.Equal(t, 5, movs[0].Quantity)
	assert.Equal(t, entity.MovementTypeExit, movs[1].Type)
	assert.Equal(t, 20, movs[1].Quantity)
	assert.Equal(t, entity.MovementTypeEntry, movs[2].Type)
	assert.Equal(t, 50, movs[2].Quantity)
	assert.Equal(t, 35, domaininv.Balance(movs))
	assert.Equal(t, operador, movs[0].Responsible)

	assert.Len(t, pub.batches, 3)
}

func TestLedger_ExitAtomicaConStockInsuficiente(t *testing.T) {
	ctx := context.Background()
	uc, store, pub := newLedger(t)
	seedProduct(t, store, "a", 10)
	seedProduct(t, store, "b", 2)

	_, err := uc.FinalizeExit(ctx, inventory.ExitInput{
		Items: []inventory.LineItem{
			{ProductID: "a", Quantity: 5},
			{ProductID: "b", Quantity: 3},
		},
		Requester: "João", Department: "Compras", Responsible: operador,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "b", ise.ProductID)
	assert.Equal(t, 3, ise.Requested)
	assert.Equal(t, 2, ise.Available)

	assert.Equal(t, 10, quantity(t, store, "a"))
	assert.Equal(t, 2, quantity(t, store, "b"))
	for _, id := range []string{"a", "b"} {
		movs, err := store.Movements().ListByProduct(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, movs)
	}
	assert.Empty(t, pub.batches)
}

func TestLedger_ExitLimite(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "p", 7)
	seedProduct(t, store, "q", 7)

	exit := func(id string, qty int) error {
		_, err := uc.FinalizeExit(ctx, inventory.ExitInput{
			Items: []inventory.LineItem{{ProductID: id, Quantity: qty}}, Requester: "Ana", Department: "RH", Responsible: operador,
		})
		return err
	}
	require.NoError(t, exit("p", 7))
	assert.Equal(t, 0, quantity(t, store, "p"))

	assert.ErrorIs(t, exit("q", 8), domain.ErrInsufficientStock)
	assert.Equal(t, 7, quantity(t, store, "q"))
}

func TestLedger_ExitAcumulaLineasRepetidas(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "p", 5)

	_, err := uc.FinalizeExit(ctx, inventory.ExitInput{
		Items:     []inventory.LineItem{{ProductID: "p", Quantity: 3}, {ProductID: "p", Quantity: 3}},
		Requester: "Ana", Department: "RH", Responsible: operador,
	})
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 5, quantity(t, store, "p"))
}

func TestLedger_EntryComparteTransaccionYCosto(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "p", 0)
	seedProduct(t, store, "q", 0)

	cost10, cost20 := decimal.NewFromInt(10), decimal.NewFromInt(20)
	batch, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items: []inventory.LineItem{
			{ProductID: "p", Quantity: 10, UnitCost: &cost10},
			{ProductID: "q", Quantity: 1},
			{ProductID: "p", Quantity: 10, UnitCost: &cost20},
		},
		Supplier: "Kalunga", Invoice: "NF-9", Responsible: operador,
	})
	require.NoError(t, err)
	require.Len(t, batch.Movements, 3)
	for _, m := range batch.Movements {
		assert.Equal(t, batch.TransactionID, m.TransactionID)
		assert.Equal(t, "Kalunga", m.Supplier)
	}

	p, err := store.Products().GetByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 20, p.Quantity)
	assert.True(t, decimal.NewFromInt(15).Equal(p.AverageCost), "costo promedio: %s", p.AverageCost)
	assert.Equal(t, 1, quantity(t, store, "q"))

	lines, err := store.Movements().ListByTransaction(ctx, batch.TransactionID)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "p", lines[0].ProductID)
	assert.Equal(t, "q", lines[1].ProductID)
}

func TestLedger_ProductoInexistente(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "p", 1)

	_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items:    []inventory.LineItem{{ProductID: "p", Quantity: 1}, {ProductID: "nope", Quantity: 1}},
		Supplier: "X", Invoice: "1", Responsible: operador,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, quantity(t, store, "p"))
}

func TestLedger_ArgumentosInvalidos(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "p", 1)
	neg := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		run  func() error
	}{
		{"lote vacío", func() error {
			_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{Supplier: "X", Invoice: "1", Responsible: operador})
			return err
		}},
		{"cantidad cero", func() error {
			_, err := uc.FinalizeReturn(ctx, inventory.ReturnInput{
				Items: []inventory.LineItem{{ProductID: "p", Quantity: 0}}, Department: "TI", Reason: "unused", Responsible: operador,
			})
			return err
		}},
		{"sin proveedor", func() error {
			_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
				Items: []inventory.LineItem{{ProductID: "p", Quantity: 1}}, Invoice: "1", Responsible: operador,
			})
			return err
		}},
		{"sin responsable", func() error {
			_, err := uc.FinalizeExit(ctx, inventory.ExitInput{
				Items: []inventory.LineItem{{ProductID: "p", Quantity: 1}}, Requester: "A", Department: "TI",
			})
			return err
		}},
		{"motivo desconocido", func() error {
			_, err := uc.FinalizeReturn(ctx, inventory.ReturnInput{
				Items: []inventory.LineItem{{ProductID: "p", Quantity: 1}}, Department: "TI", Reason: "perdido", Responsible: operador,
			})
			return err
		}},
		{"cantidad por encima del máximo", func() error {
			_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
				Items: []inventory.LineItem{{ProductID: "p", Quantity: domaininv.MaxQuantity + 1}}, Supplier: "X", Invoice: "1", Responsible: operador,
			})
			return err
		}},
		{"costo negativo", func() error {
			_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
				Items: []inventory.LineItem{{ProductID: "p", Quantity: 1, UnitCost: &neg}}, Supplier: "X", Invoice: "1", Responsible: operador,
			})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.run(), domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 1, quantity(t, store, "p"))
}

func TestLedger_EntradaNoDesbordaElStock(t *testing.T) {
	ctx := context.Background()
	uc, store, pub := newLedger(t)
	seedProduct(t, store, "p", 1)

	_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items:    []inventory.LineItem{{ProductID: "p", Quantity: domaininv.MaxQuantity}},
		Supplier: "X", Invoice: "1", Responsible: operador,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.FinalizeReturn(ctx, inventory.ReturnInput{
		Items:      []inventory.LineItem{{ProductID: "p", Quantity: domaininv.MaxQuantity}},
		Department: "TI", Reason: "unused", Responsible: operador,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 1, quantity(t, store, "p"))
	movs, err := store.Movements().ListByProduct(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, movs)
	assert.Empty(t, pub.batches)

	// justo hasta el tope sí se acepta
	_, err = uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items:    []inventory.LineItem{{ProductID: "p", Quantity: domaininv.MaxQuantity - 1}},
		Supplier: "X", Invoice: "2", Responsible: operador,
	})
	require.NoError(t, err)
	assert.Equal(t, domaininv.MaxQuantity, quantity(t, store, "p"))
}

func TestLedger_FallaDeAlmacenamientoNoDejaEscrituras(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "p", 4)
	store.InjectFault("movement.create", errors.New("timeout"))

	_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items: []inventory.LineItem{{ProductID: "p", Quantity: 1}}, Supplier: "X", Invoice: "1", Responsible: operador,
	})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 4, quantity(t, store, "p"))

	store.ClearFaults()
	_, err = uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items: []inventory.LineItem{{ProductID: "p", Quantity: 1}}, Supplier: "X", Invoice: "1", Responsible: operador,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, quantity(t, store, "p"))
}

func TestLedger_FallaDelPublicadorNoRevierte(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &fakePublisher{err: errors.New("broker caído")}
	uc := inventory.NewLedgerUseCase(store, pub, zerolog.Nop())
	seedProduct(t, store, "p", 0)

	_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items: []inventory.LineItem{{ProductID: "p", Quantity: 2}}, Supplier: "X", Invoice: "1", Responsible: operador,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, quantity(t, store, "p"))
	assert.Len(t, pub.batches, 1)
}

func TestLedger_ConsistenciaBajoConcurrencia(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "p", 0)

	_, err := uc.FinalizeEntry(ctx, inventory.EntryInput{
		Items: []inventory.LineItem{{ProductID: "p", Quantity: 100}}, Supplier: "X", Invoice: "1", Responsible: operador,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.FinalizeExit(ctx, inventory.ExitInput{
				Items: []inventory.LineItem{{ProductID: "p", Quantity: 7}}, Requester: "A", Department: "TI", Responsible: operador,
			})
		}()
	}
	wg.Wait()

	movs, err := store.Movements().ListByProduct(ctx, "p")
	require.NoError(t, err)
	q := quantity(t, store, "p")
	assert.Equal(t, domaininv.Balance(movs), q)
	assert.Equal(t, 2, q) // 100 - 14*7
}

func TestLedger_OpenProductConStockInicial(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	cost := decimal.RequireFromString("2.50")
	p := &entity.Product{ID: "n", Name: "Papel A4", NameLowercase: "papel a4", Type: entity.MaterialConsumable}

	batch, err := uc.OpenProduct(ctx, p, 12, &cost, operador, nil)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, 12, p.Quantity)

	movs, err := store.Movements().ListByProduct(ctx, "n")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, inventory.InitialStockSupplier, movs[0].Supplier)
	assert.Equal(t, 12, quantity(t, store, "n"))

	empty := &entity.Product{ID: "z", Name: "Quadro", Type: entity.MaterialPermanent}
	batch, err = uc.OpenProduct(ctx, empty, 0, nil, operador, nil)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.Equal(t, 0, quantity(t, store, "z"))
}
