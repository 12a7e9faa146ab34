package postgres

import (
	"context"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerRepo struct{ db *gorm.DB }

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]model.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{})

	switch f.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if f.Name != "" {
		q = q.Where("name ILIKE ?", "%"+f.Name+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	var customers []model.Customer
	offset := (f.Page - 1) * f.Limit
	err := q.Order("name ASC").Limit(f.Limit).Offset(offset).Find(&customers).Error
	return customers, total, mapErr(err)
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return mapErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return mapErr(r.db.WithContext(ctx).Save(c).Error)
}

func (r *customerRepo) AdjustCreditBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Update("credit_balance", gorm.Expr("credit_balance + ?", delta))
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
