package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// productRow copia por valor; nunca se comparten punteros con el llamador.
type productRow = entity.Product

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	store *Store
	tx    *state
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.store.with(r.tx, func(st *state) error {
		if err := r.store.fault("product.create"); err != nil {
			return err
		}
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = *product
		return nil
	})
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.with(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: la tx ya tiene el estado en exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update actualiza solo metadatos.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.store.with(r.tx, func(st *state) error {
		if err := r.store.fault("product.update"); err != nil {
			return err
		}
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.NotFoundf("producto %s", product.ID)
		}
		cur.Name = product.Name
		cur.NameLowercase = product.NameLowercase
		cur.Code = product.Code
		cur.Patrimony = product.Patrimony
		cur.Unit = product.Unit
		cur.Category = product.Category
		cur.Image = product.Image
		cur.UpdatedAt = product.UpdatedAt
		st.products[product.ID] = cur
		return nil
	})
}

// UpdateStock persiste cantidad y costo promedio.
func (r *ProductRepo) UpdateStock(_ context.Context, productID string, quantity int, averageCost decimal.Decimal) error {
	return r.store.with(r.tx, func(st *state) error {
		if err := r.store.fault("product.update_stock"); err != nil {
			return err
		}
		cur, ok := st.products[productID]
		if !ok {
			return domain.NotFoundf("producto %s", productID)
		}
		cur.Quantity = quantity
		cur.AverageCost = averageCost
		cur.UpdatedAt = time.Now()
		st.products[productID] = cur
		return nil
	})
}

// Delete elimina un producto por ID. ErrNotFound si no existe.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.store.with(r.tx, func(st *state) error {
		if err := r.store.fault("product.delete"); err != nil {
			return err
		}
		if _, ok := st.products[id]; !ok {
			return domain.NotFoundf("producto %s", id)
		}
		delete(st.products, id)
		return nil
	})
}

// List filtra por prefijo de name_lowercase, código exacto y tipo; ordena por nombre.
func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.store.with(r.tx, func(st *state) error {
		for _, p := range st.products {
			if f.NamePrefix != "" && !strings.HasPrefix(p.NameLowercase, f.NamePrefix) {
				continue
			}
			if f.Code != "" && p.Code != f.Code {
				continue
			}
			if f.Type != "" && p.Type != f.Type {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
