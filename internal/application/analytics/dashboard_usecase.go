// Package analytics contiene el resumen del dashboard de movimientos.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almoxtrack-api/internal/application/dto"
	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

const (
	dashboardTopItems    = 10 // ítems en el ranking por cantidad movida
	dashboardDefaultDays = 30 // período por defecto, incluyendo hoy
)

// DashboardUseCase agrega el ledger para el dashboard.
//
// Fuente de datos: repositorios de productos y movimientos (solo lectura).
type DashboardUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(productRepo repository.ProductRepository, movRepo repository.MovementRepository) *DashboardUseCase {
	return &DashboardUseCase{productRepo: productRepo, movRepo: movRepo, now: time.Now}
}

// WithClock reemplaza la fuente de hora (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el resumen para los filtros dados. Sin rango usa los últimos 30 días.
//
// Tres lecturas en paralelo:
//  1. movimientos filtrados      → contadores, rankings y serie diaria
//  2. todos los movimientos       → lista de departamentos (para el selector)
//  3. productos                  → nombres de los ítems
func (uc *DashboardUseCase) GetSummary(ctx context.Context, f repository.MovementFilter) (*dto.DashboardSummaryDTO, error) {
	if f.Type != "" && !entity.IsValidMovementType(f.Type) {
		return nil, domain.InvalidInputf("tipo de movimiento desconocido %q", f.Type)
	}
	if f.MaterialType != "" && !entity.IsValidMaterialType(f.MaterialType) {
		return nil, domain.InvalidInputf("tipo de material desconocido %q", f.MaterialType)
	}
	now := uc.now()
	if f.To == nil {
		f.To = &now
	}
	if f.From == nil {
		from := f.To.AddDate(0, 0, -(dashboardDefaultDays - 1))
		f.From = &from
	}
	f.From, f.To = inventory.NormalizeRange(f.From, f.To)
	if f.From.After(*f.To) {
		return nil, domain.InvalidInputf("rango de fechas inválido")
	}
	f.Limit, f.Offset = 0, 0

	var (
		movs     []*entity.Movement
		all      []*entity.Movement
		products []*entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movs, err = uc.movRepo.List(gctx, f)
		if err != nil {
			return fmt.Errorf("dashboard: movimientos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		all, err = uc.movRepo.List(gctx, repository.MovementFilter{})
		if err != nil {
			return fmt.Errorf("dashboard: departamentos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = uc.productRepo.List(gctx, repository.ProductFilter{})
		if err != nil {
			return fmt.Errorf("dashboard: productos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, domain.AsStorage("dashboard summary", err)
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	out := summarize(movs, names, f.To.Location())
	out.From, out.To = *f.From, *f.To
	out.Departments = departments(all)
	return out, nil
}

func summarize(movs []*entity.Movement, names map[string]string, loc *time.Location) *dto.DashboardSummaryDTO {
	out := &dto.DashboardSummaryDTO{TotalMovements: len(movs)}
	items := map[string]*dto.ItemCountDTO{}
	deptCount := map[string]int{}
	daily := map[string]*dto.DailyFlowDTO{}

	for _, m := range movs {
		switch m.Type {
		case entity.MovementTypeEntry:
			out.EntryCount++
		case entity.MovementTypeExit:
			out.ExitCount++
		case entity.MovementTypeReturn:
			out.ReturnCount++
		}

		it, ok := items[m.ProductID]
		if !ok {
			it = &dto.ItemCountDTO{ProductID: m.ProductID, Name: names[m.ProductID]}
			items[m.ProductID] = it
		}
		it.Movements++
		it.TotalQuantity += m.Quantity

		if m.Department != "" {
			deptCount[m.Department]++
		}

		day := m.Date.In(loc).Format("2006-01-02")
		d, ok := daily[day]
		if !ok {
			d = &dto.DailyFlowDTO{Day: day}
			daily[day] = d
		}
		switch m.Type {
		case entity.MovementTypeEntry:
			d.Entries += m.Quantity
		case entity.MovementTypeExit:
			d.Exits += m.Quantity
		}
	}

	ranked := make([]dto.ItemCountDTO, 0, len(items))
	for _, it := range items {
		ranked = append(ranked, *it)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Movements != ranked[j].Movements {
			return ranked[i].Movements > ranked[j].Movements
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > 0 {
		top := ranked[0]
		out.MostMovedItem = &top
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalQuantity != ranked[j].TotalQuantity {
			return ranked[i].TotalQuantity > ranked[j].TotalQuantity
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > dashboardTopItems {
		ranked = ranked[:dashboardTopItems]
	}
	out.TopItems = ranked

	best := 0
	for dept, n := range deptCount {
		if n > best || (n == best && dept < out.TopDepartment) {
			best, out.TopDepartment = n, dept
		}
	}

	out.Daily = make([]dto.DailyFlowDTO, 0, len(daily))
	for _, d := range daily {
		out.Daily = append(out.Daily, *d)
	}
	sort.Slice(out.Daily, func(i, j int) bool { return out.Daily[i].Day < out.Daily[j].Day })
	return out
}

func departments(movs []*entity.Movement) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range movs {
		if m.Department != "" && !seen[m.Department] {
			seen[m.Department] = true
			out = append(out, m.Department)
		}
	}
	sort.Strings(out)
	return out
}
