package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

// MovementQueryUseCase lecturas del ledger (historial y filtros).
type MovementQueryUseCase struct {
	movRepo repository.MovementRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(movRepo repository.MovementRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{movRepo: movRepo}
}

// ListMovements aplica los filtros normalizando el rango al día calendario completo
// (from al inicio del día, to al final). Orden: fecha descendente.
func (uc *MovementQueryUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Type != "" && !entity.IsValidMovementType(f.Type) {
		return nil, domain.InvalidInputf("tipo de movimiento desconocido %q", f.Type)
	}
	if f.MaterialType != "" && !entity.IsValidMaterialType(f.MaterialType) {
		return nil, domain.InvalidInputf("tipo de material desconocido %q", f.MaterialType)
	}
	f.From, f.To = NormalizeRange(f.From, f.To)
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, domain.InvalidInputf("rango de fechas inválido")
	}
	list, err := uc.movRepo.List(ctx, f)
	if err != nil {
		return nil, domain.AsStorage("list movements", err)
	}
	return list, nil
}

// ListMovementsForProduct historial de un producto, más reciente primero.
// No exige que el producto exista: con la política retain el historial sobrevive al borrado.
func (uc *MovementQueryUseCase) ListMovementsForProduct(ctx context.Context, productID string) ([]*entity.Movement, error) {
	if productID == "" {
		return nil, domain.InvalidInputf("producto requerido")
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, domain.AsStorage("list product movements", err)
	}
	return list, nil
}

// NormalizeRange lleva from al inicio de su día y to al último instante de su día.
func NormalizeRange(from, to *time.Time) (*time.Time, *time.Time) {
	var nf, nt *time.Time
	if from != nil {
		t := StartOfDay(*from)
		nf = &t
	}
	if to != nil {
		t := StartOfDay(*to).AddDate(0, 0, 1).Add(-time.Nanosecond)
		nt = &t
	}
	return nf, nt
}

// StartOfDay medianoche del día de t en su zona horaria.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
