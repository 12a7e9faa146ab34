package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"tillpoint/internal/model"
	"tillpoint/internal/predicate"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type productRepo struct{ ss *session }

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	defer r.ss.rlock()()
	p, ok := r.ss.store.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) GetByCode(ctx context.Context, code string) (*model.Product, error) {
	defer r.ss.rlock()()
	for _, p := range r.ss.store.products {
		if p.Code == code {
			out := p
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	defer r.ss.rlock()()

	var matched []model.Product
	for _, p := range r.ss.store.products {
		switch f.Active {
		case "false":
			if p.Active {
				continue
			}
		case "all":
		default:
			if !p.Active {
				continue
			}
		}
		if f.Code != "" && p.Code != f.Code {
			continue
		}
		if f.Description != "" && !strings.Contains(strings.ToLower(p.Description), strings.ToLower(f.Description)) {
			continue
		}
		matched = append(matched, p)
	}
	sortProducts(matched)
	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (r *productRepo) Search(ctx context.Context, pred predicate.Predicate, page, limit int) ([]model.Product, int64, error) {
	defer r.ss.rlock()()

	var matched []model.Product
	for _, p := range r.ss.store.products {
		ok, err := pred.Eval(productFields(p))
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, p)
		}
	}
	sortProducts(matched)
	total := int64(len(matched))
	return paginate(matched, page, limit), total, nil
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	defer r.ss.lock()()

	for _, existing := range r.ss.store.products {
		if existing.Code == p.Code {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.ss.store.products[p.ID] = *p
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	defer r.ss.lock()()

	if _, ok := r.ss.store.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.ss.store.products {
		if existing.Code == p.Code && existing.ID != p.ID {
			return repository.ErrDuplicate
		}
	}
	p.UpdatedAt = time.Now()
	r.ss.store.products[p.ID] = *p
	return nil
}

func (r *productRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	defer r.ss.lock()()

	p, ok := r.ss.store.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Active = active
	p.UpdatedAt = time.Now()
	r.ss.store.products[id] = p
	return nil
}

func (r *productRepo) UpdateStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal, guarded bool) error {
	defer r.ss.lock()()

	p, ok := r.ss.store.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := p.QuantityInStock.Add(delta)
	if guarded && next.IsNegative() {
		return repository.ErrStockConflict
	}
	p.QuantityInStock = next
	p.UpdatedAt = time.Now()
	r.ss.store.products[id] = p
	return nil
}

func (r *productRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	defer r.ss.rlock()()

	var out []model.Product
	for _, p := range r.ss.store.products {
		if p.Active && p.TracksInventory && p.QuantityInStock.LessThan(p.MinStock) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

// productFields exposes the same field names the postgres whitelist maps,
// so a predicate behaves identically against either backend.
func productFields(p model.Product) map[string]any {
	return map[string]any{
		"code":              p.Code,
		"description":       p.Description,
		"unit":              p.Unit,
		"cost_price":        p.CostPrice,
		"sell_price":        p.SellPrice,
		"quantity_in_stock": p.QuantityInStock,
		"min_stock":         p.MinStock,
		"max_stock":         p.MaxStock,
		"tracks_inventory":  p.TracksInventory,
		"active":            p.Active,
	}
}

func sortProducts(products []model.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].Description < products[j].Description
	})
}

func paginate[T any](rows []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return rows
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
