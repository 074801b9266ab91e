package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxtrack-api/internal/application/dto"
	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/application/usecase"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almoxtrack-api/internal/domain/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
	"github.com/jhoicas/almoxtrack-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxtrack-api/pkg/config"
)

const admin = "admin@almox.local"

type fakeUploader struct {
	name string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, filename, _ string) (string, error) {
	f.name = filename
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.almox.local/" + filename, nil
}

type fixture struct {
	store    *memory.Store
	ledger   *inventory.LedgerUseCase
	products *usecase.ProductUseCase
	uploader *fakeUploader
}

func newFixture(t *testing.T, opts usecase.ProductOptions) *fixture {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewLedgerUseCase(store, nil, zerolog.Nop())
	up := &fakeUploader{}
	return &fixture{
		store:    store,
		ledger:   ledger,
		products: usecase.NewProductUseCase(store.Products(), ledger, store, up, opts),
		uploader: up,
	}
}

func (f *fixture) create(t *testing.T, name, code, typ string, qty int) *dto.ProductResponse {
	t.Helper()
	in := dto.CreateProductRequest{Name: name, Code: code, Type: typ, InitialQuantity: qty, Unit: "und"}
	if typ == entity.MaterialPermanent {
		in.Patrimony = "PAT-" + code
	}
	p, err := f.products.Create(context.Background(), admin, in)
	require.NoError(t, err)
	return p
}

func TestProduct_BusquedaPorPrefijo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{UniqueCode: true})
	f.create(t, "Caneta Preta", "CAN-02", entity.MaterialConsumable, 0)
	f.create(t, "Caneta Azul", "CAN-01", entity.MaterialConsumable, 0)
	f.create(t, "Papel A4", "PAP-01", entity.MaterialConsumable, 0)

	res, err := f.products.List(ctx, dto.ProductQuery{Search: "can"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Caneta Azul", res.Items[0].Name)
	assert.Equal(t, "Caneta Preta", res.Items[1].Name)

	res, err = f.products.List(ctx, dto.ProductQuery{Search: "CANETA A"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	res, err = f.products.List(ctx, dto.ProductQuery{Search: "xyz"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestProduct_BusquedaPorCodigoComoRespaldo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{})
	f.create(t, "Quadro Branco", "QB-900", entity.MaterialPermanent, 0)

	res, err := f.products.List(ctx, dto.ProductQuery{Search: "QB-900"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Quadro Branco", res.Items[0].Name)

	res, err = f.products.List(ctx, dto.ProductQuery{Search: "QB-900", Type: entity.MaterialConsumable})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestProduct_TopeSoloSinTermino(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{ListLimit: 2})
	f.create(t, "Clip 1", "C1", entity.MaterialConsumable, 0)
	f.create(t, "Clip 2", "C2", entity.MaterialConsumable, 0)
	f.create(t, "Clip 3", "C3", entity.MaterialConsumable, 0)

	res, err := f.products.List(ctx, dto.ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	res, err = f.products.List(ctx, dto.ProductQuery{Search: "clip"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)
}

func TestProduct_CreateConStockInicial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{})
	cost := decimal.RequireFromString("24.90")
	p, err := f.products.Create(ctx, admin, dto.CreateProductRequest{
		Name: "Papel A4", Code: "PAP-01", Type: entity.MaterialConsumable, Patrimony: "ignorado",
		InitialQuantity: 40, UnitCost: &cost, Unit: "Resma",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, p.Quantity)
	assert.Equal(t, entity.PatrimonyNotApplicable, p.Patrimony)

	movs, err := f.store.Movements().ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntry, movs[0].Type)
	assert.Equal(t, 40, movs[0].Quantity)
	assert.Equal(t, admin, movs[0].Responsible)
}

func TestProduct_CreateValidaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{UniqueCode: true})
	f.create(t, "Caneta Azul", "CAN-01", entity.MaterialConsumable, 0)

	_, err := f.products.Create(ctx, admin, dto.CreateProductRequest{Name: "Outra", Code: "CAN-01", Type: entity.MaterialConsumable, Unit: "und"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.products.Create(ctx, admin, dto.CreateProductRequest{Name: "Mesa", Code: "M-1", Type: entity.MaterialPermanent, Unit: "und"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.products.Create(ctx, admin, dto.CreateProductRequest{Name: "Mesa", Code: "M-1", Type: "durable", Unit: "und"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.products.Create(ctx, admin, dto.CreateProductRequest{
		Name: "Clipes", Code: "CLP-01", Type: entity.MaterialConsumable, Unit: "cx", InitialQuantity: domaininv.MaxQuantity + 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	res, err := f.products.List(ctx, dto.ProductQuery{Search: "CLP-01"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestProduct_CreateCodigoUnicoBajoConcurrencia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{UniqueCode: true})

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.products.Create(ctx, admin, dto.CreateProductRequest{
				Name: "Grampeador", Code: "GRA-01", Type: entity.MaterialConsumable, Unit: "und", InitialQuantity: i % 3,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	}
	assert.Equal(t, 1, ok)

	list, err := f.store.Products().List(ctx, repository.ProductFilter{Code: "GRA-01", Limit: n})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProduct_UpdateRechazaUnidadVacia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{})
	p := f.create(t, "Caneta Azul", "CAN-01", entity.MaterialConsumable, 0)

	blank := "   "
	_, err := f.products.Update(ctx, p.ID, dto.UpdateProductRequest{Unit: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "und", got.Unit)

	cx := " cx "
	out, err := f.products.Update(ctx, p.ID, dto.UpdateProductRequest{Unit: &cx})
	require.NoError(t, err)
	assert.Equal(t, "cx", out.Unit)
}

func TestProduct_UpdateNoTocaCantidad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{UniqueCode: true})
	p := f.create(t, "Caneta Azul", "CAN-01", entity.MaterialConsumable, 10)
	f.create(t, "Caneta Preta", "CAN-02", entity.MaterialConsumable, 0)

	name := "Caneta Azul Fina"
	out, err := f.products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.Equal(t, 10, out.Quantity)

	res, err := f.products.List(ctx, dto.ProductQuery{Search: "caneta azul f"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	dup := "CAN-02"
	_, err = f.products.Update(ctx, p.ID, dto.UpdateProductRequest{Code: &dup})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.products.Update(ctx, "no-existe", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_DeleteConservaHistorial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{DeletePolicy: config.DeletePolicyRetain})
	p := f.create(t, "Caneta Azul", "CAN-01", entity.MaterialConsumable, 5)
	_, err := f.ledger.FinalizeExit(ctx, inventory.ExitInput{
		Items: []inventory.LineItem{{ProductID: p.ID, Quantity: 2}}, Requester: "Ana", Department: "TI", Responsible: admin,
	})
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, p.ID))
	_, err = f.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	movs, err := inventory.NewMovementQueryUseCase(f.store.Movements()).ListMovementsForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	assert.ErrorIs(t, f.products.Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestProduct_DeleteEnCascada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{DeletePolicy: config.DeletePolicyCascade})
	p := f.create(t, "Caneta Azul", "CAN-01", entity.MaterialConsumable, 5)

	require.NoError(t, f.products.Delete(ctx, p.ID))
	movs, err := f.store.Movements().ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestProduct_UploadImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.ProductOptions{})
	p := f.create(t, "Quadro", "Q-1", entity.MaterialPermanent, 0)

	out, err := f.products.UploadImage(ctx, p.ID, []byte{0xff, 0xd8}, "quadro.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.almox.local/quadro.jpg", out.Image)

	f.uploader.err = errors.New("s3 indisponível")
	_, err = f.products.UploadImage(ctx, p.ID, []byte{0x00}, "x.png", "image/png")
	assert.ErrorIs(t, err, domain.ErrStorage)
}
