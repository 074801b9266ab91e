package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

func TestRun_RollbackDescartaEscrituras(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", Name: "Papel A4", Quantity: 10}))

	boom := errors.New("boom")
	err := s.Run(ctx, func(pr repository.ProductRepository, mr repository.MovementRepository) error {
		require.NoError(t, pr.UpdateStock(ctx, "p1", 3, decimal.Zero))
		require.NoError(t, mr.Create(ctx, &entity.Movement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeExit, Quantity: 7}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity)
	movs, err := s.Movements().ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRun_FallaEnCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.InjectFault("commit", errors.New("conexión perdida"))

	err := s.Run(ctx, func(pr repository.ProductRepository, _ repository.MovementRepository) error {
		return pr.Create(ctx, &entity.Product{ID: "p1", Name: "Quadro"})
	})
	assert.ErrorIs(t, err, domain.ErrStorage)

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductRepo_CopiasIndependientes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	in := &entity.Product{ID: "p1", Name: "Caneta Azul", Quantity: 1}
	require.NoError(t, s.Products().Create(ctx, in))
	in.Quantity = 99

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Quantity)
}

func TestProductRepo_UpdateInexistente(t *testing.T) {
	err := NewStore().Products().Update(context.Background(), &entity.Product{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovementRepo_ListFiltros(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	pr, mr := s.Products(), s.Movements()
	require.NoError(t, pr.Create(ctx, &entity.Product{ID: "c", Name: "Caneta", Type: entity.MaterialConsumable}))
	require.NoError(t, pr.Create(ctx, &entity.Product{ID: "q", Name: "Quadro", Type: entity.MaterialPermanent}))

	day := func(d int) time.Time { return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC) }
	for _, m := range []*entity.Movement{
		{ID: "1", ProductID: "c", Type: entity.MovementTypeEntry, Quantity: 5, Date: day(1)},
		{ID: "2", ProductID: "c", Type: entity.MovementTypeExit, Quantity: 2, Date: day(2), Department: "TI"},
		{ID: "3", ProductID: "q", Type: entity.MovementTypeExit, Quantity: 1, Date: day(3), Department: "RH"},
	} {
		require.NoError(t, mr.Create(ctx, m))
	}

	all, err := mr.List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	perm, err := mr.List(ctx, repository.MovementFilter{MaterialType: entity.MaterialPermanent})
	require.NoError(t, err)
	require.Len(t, perm, 1)
	assert.Equal(t, "3", perm[0].ID)

	from, to := day(2), day(2).Add(time.Hour)
	ranged, err := mr.List(ctx, repository.MovementFilter{From: &from, To: &to, Department: "TI"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "2", ranged[0].ID)

	n, err := mr.DeleteByProduct(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUserRepo_EmailUnico(t *testing.T) {
	ctx := context.Background()
	r := NewStore().Users()
	require.NoError(t, r.Create(ctx, &entity.User{ID: "u1", Email: "ana@almox.local"}))
	err := r.Create(ctx, &entity.User{ID: "u2", Email: "ANA@almox.local"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	u, err := r.GetByEmail(ctx, "ana@almox.local")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}
