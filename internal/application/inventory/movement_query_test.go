package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

func TestNormalizeRange(t *testing.T) {
	from := time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC)
	to := time.Date(2024, 2, 12, 9, 0, 0, 0, time.UTC)
	nf, nt := inventory.NormalizeRange(&from, &to)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), *nf)
	assert.Equal(t, time.Date(2024, 2, 12, 23, 59, 59, 999999999, time.UTC), *nt)

	nf, nt = inventory.NormalizeRange(nil, nil)
	assert.Nil(t, nf)
	assert.Nil(t, nt)
}

func TestListMovements_Filtros(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	seedProduct(t, store, "c", 10)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "perm", Name: "Quadro", Type: entity.MaterialPermanent, Quantity: 3}))

	day := func(d, h int) time.Time { return time.Date(2024, 6, d, h, 0, 0, 0, time.UTC) }
	_, err := uc.FinalizeExit(ctx, inventory.ExitInput{
		Items: []inventory.LineItem{{ProductID: "c", Quantity: 1}}, Date: day(3, 9),
		Requester: "Ana", Department: "TI", Responsible: operador,
	})
	require.NoError(t, err)
	_, err = uc.FinalizeExit(ctx, inventory.ExitInput{
		Items: []inventory.LineItem{{ProductID: "perm", Quantity: 1}}, Date: day(5, 18),
		Requester: "Rui", Department: "RH", Responsible: operador,
	})
	require.NoError(t, err)
	_, err = uc.FinalizeReturn(ctx, inventory.ReturnInput{
		Items: []inventory.LineItem{{ProductID: "c", Quantity: 1}}, Date: day(6, 7),
		Department: "TI", Reason: entity.ReturnReasonUnused, Responsible: operador,
	})
	require.NoError(t, err)

	q := inventory.NewMovementQueryUseCase(store.Movements())

	// "to" en el mismo día incluye el movimiento de las 18h
	from, to := day(5, 0), day(5, 0)
	list, err := q.ListMovements(ctx, repository.MovementFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "perm", list[0].ProductID)

	list, err = q.ListMovements(ctx, repository.MovementFilter{Department: "TI"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.MovementTypeReturn, list[0].Type)

	list, err = q.ListMovements(ctx, repository.MovementFilter{Type: entity.MovementTypeExit, MaterialType: entity.MaterialConsumable})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].ProductID)

	_, err = q.ListMovements(ctx, repository.MovementFilter{Type: "Transfer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	later, earlier := day(9, 0), day(1, 0)
	_, err = q.ListMovements(ctx, repository.MovementFilter{From: &later, To: &earlier})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type fakeTermGenerator struct {
	got *inventory.ResponsibilityTerm
}

func (f *fakeTermGenerator) GenerateTerm(_ context.Context, term *inventory.ResponsibilityTerm) ([]byte, error) {
	f.got = term
	return []byte("%PDF-fake"), nil
}

func TestResponsibilityTerm(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newLedger(t)
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "nb", Name: "Notebook", Code: "NB-01", Patrimony: "PAT-778", Type: entity.MaterialPermanent, Quantity: 2, Unit: "und",
	}))
	batch, err := uc.FinalizeExit(ctx, inventory.ExitInput{
		Items: []inventory.LineItem{{ProductID: "nb", Quantity: 1}}, Requester: "Carla", Department: "Financeiro",
		Purpose: "Home office", Responsible: operador,
	})
	require.NoError(t, err)

	gen := &fakeTermGenerator{}
	termUC := inventory.NewResponsibilityTermUseCase(store.Products(), store.Movements(), gen)
	pdf, err := termUC.GeneratePDF(ctx, batch.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	require.NotNil(t, gen.got)
	assert.Equal(t, "Carla", gen.got.Requester)
	require.Len(t, gen.got.Lines, 1)
	assert.Equal(t, "PAT-778", gen.got.Lines[0].Patrimony)

	_, err = termUC.GeneratePDF(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
