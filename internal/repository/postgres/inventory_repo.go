package postgres

import (
	"context"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type inventoryRepo struct{ db *gorm.DB }

func (r *inventoryRepo) AddMovement(ctx context.Context, m *model.InventoryMovement) error {
	return mapErr(r.db.WithContext(ctx).Create(m).Error)
}

func (r *inventoryRepo) List(ctx context.Context, f repository.MovementFilter) ([]model.InventoryMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{})

	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movements []model.InventoryMovement
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&movements).Error
	return movements, total, mapErr(err)
}

func (r *inventoryRepo) SumMovements(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.InventoryMovement{}).
		Select("SUM(quantity)").
		Where("product_id = ?", productID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, mapErr(err)
	}
	if !sum.Valid {
		// No movements yet.
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
