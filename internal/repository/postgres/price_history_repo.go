package postgres

import (
	"context"

	"tillpoint/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type priceHistoryRepo struct{ db *gorm.DB }

func (r *priceHistoryRepo) Add(ctx context.Context, h *model.PriceHistory) error {
	return mapErr(r.db.WithContext(ctx).Create(h).Error)
}

// ListByProduct returns paginated price-change records for one product,
// newest first (append-only table, so this reflects natural insert order).
func (r *priceHistoryRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceHistory{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	var rows []model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	return rows, total, mapErr(err)
}
