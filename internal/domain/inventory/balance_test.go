package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/inventory"
)

func TestApplyMovement_SalidaExactaDejaCero(t *testing.T) {
	p := &entity.Product{ID: "p1", Quantity: 7}
	err := inventory.ApplyMovement(p, &entity.Movement{ProductID: "p1", Type: entity.MovementTypeExit, Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
}

func TestApplyMovement_SalidaMayorAlStock(t *testing.T) {
	p := &entity.Product{ID: "p1", Quantity: 7}
	err := inventory.ApplyMovement(p, &entity.Movement{ProductID: "p1", Type: entity.MovementTypeExit, Quantity: 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "p1", ise.ProductID)
	assert.Equal(t, 8, ise.Requested)
	assert.Equal(t, 7, ise.Available)
	assert.Equal(t, 7, p.Quantity, "el producto no debe cambiar")
}

func TestApplyMovement_CantidadNoPositiva(t *testing.T) {
	p := &entity.Product{ID: "p1", Quantity: 3}
	err := inventory.ApplyMovement(p, &entity.Movement{ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyMovement_EntradaQueSuperaElMaximo(t *testing.T) {
	p := &entity.Product{ID: "p1", Quantity: 1}
	for _, typ := range []string{entity.MovementTypeEntry, entity.MovementTypeReturn} {
		err := inventory.ApplyMovement(p, &entity.Movement{ProductID: "p1", Type: typ, Quantity: inventory.MaxQuantity})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 1, p.Quantity, "el producto no debe cambiar")
	}

	require.NoError(t, inventory.ApplyMovement(p, &entity.Movement{ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: inventory.MaxQuantity - 1}))
	assert.Equal(t, inventory.MaxQuantity, p.Quantity)
}

func TestBalance(t *testing.T) {
	movs := []*entity.Movement{
		{Type: entity.MovementTypeEntry, Quantity: 50},
		{Type: entity.MovementTypeExit, Quantity: 20},
		{Type: entity.MovementTypeReturn, Quantity: 5},
	}
	assert.Equal(t, 35, inventory.Balance(movs))
}
