package postgres

import (
	"context"

	"tillpoint/internal/model"
	"tillpoint/internal/predicate"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productSearchColumns is the whitelist for predicate search — only these
// fields are reachable from the wire.
var productSearchColumns = map[string]string{
	"code":              "code",
	"description":       "description",
	"unit":              "unit",
	"cost_price":        "cost_price",
	"sell_price":        "sell_price",
	"quantity_in_stock": "quantity_in_stock",
	"min_stock":         "min_stock",
	"max_stock":         "max_stock",
	"tracks_inventory":  "tracks_inventory",
	"active":            "active",
}

type productRepo struct{ db *gorm.DB }

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *productRepo) GetByCode(ctx context.Context, code string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Active filter: "false" = inactive only, "all" = everything, default active.
	switch f.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if f.Code != "" {
		q = q.Where("code = ?", f.Code)
	}
	if f.Description != "" {
		q = q.Where("description ILIKE ?", "%"+f.Description+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	var products []model.Product
	offset := (f.Page - 1) * f.Limit
	err := q.Order("description ASC").Limit(f.Limit).Offset(offset).Find(&products).Error
	return products, total, mapErr(err)
}

func (r *productRepo) Search(ctx context.Context, p predicate.Predicate, page, limit int) ([]model.Product, int64, error) {
	clause, args, err := p.ToSQL(productSearchColumns)
	if err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Model(&model.Product{}).Where(clause, args...)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	var products []model.Product
	offset := (page - 1) * limit
	err = q.Order("description ASC").Limit(limit).Offset(offset).Find(&products).Error
	return products, total, mapErr(err)
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return mapErr(r.db.WithContext(ctx).Create(p).Error)
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return mapErr(r.db.WithContext(ctx).Save(p).Error)
}

func (r *productRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateStock applies the delta in a single statement. The guarded form adds
// a floor check so two overlapping writers cannot drive stock negative: zero
// rows affected means the floor would be crossed.
func (r *productRepo) UpdateStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal, guarded bool) error {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id)
	if guarded {
		q = q.Where("quantity_in_stock + ? >= 0", delta)
	}
	res := q.Update("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", delta))
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		if guarded {
			return repository.ErrStockConflict
		}
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("active = true AND tracks_inventory = true AND quantity_in_stock < min_stock").
		Order("description ASC").
		Find(&products).Error
	return products, mapErr(err)
}
