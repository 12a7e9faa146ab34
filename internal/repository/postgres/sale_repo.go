package postgres

import (
	"context"

	"tillpoint/internal/model"
	"tillpoint/internal/predicate"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var saleSearchColumns = map[string]string{
	"folio":          "folio",
	"total_amount":   "total_amount",
	"payment_type":   "payment_type",
	"is_credit_sale": "is_credit_sale",
	"created_at":     "created_at",
}

type saleRepo struct{ db *gorm.DB }

func (r *saleRepo) Add(ctx context.Context, s *model.Sale) error {
	// Items ride along through the association — one aggregate, one write.
	return mapErr(r.db.WithContext(ctx).Create(s).Error)
}

func (r *saleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context, f repository.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if f.Date != "" {
		q = q.Where("DATE(created_at) = ?", f.Date)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.PaymentType != "" {
		q = q.Where("payment_type = ?", f.PaymentType)
	}
	if f.CreditOnly {
		q = q.Where("is_credit_sale = true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	var sales []model.Sale
	offset := (f.Page - 1) * f.Limit
	err := q.Preload("Items").Order("created_at DESC").Limit(f.Limit).Offset(offset).Find(&sales).Error
	return sales, total, mapErr(err)
}

func (r *saleRepo) Search(ctx context.Context, p predicate.Predicate, page, limit int) ([]model.Sale, int64, error) {
	clause, args, err := p.ToSQL(saleSearchColumns)
	if err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where(clause, args...)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	var sales []model.Sale
	offset := (page - 1) * limit
	err = q.Preload("Items").Order("created_at DESC").Limit(limit).Offset(offset).Find(&sales).Error
	return sales, total, mapErr(err)
}

func (r *saleRepo) NextFolio(ctx context.Context) (int, error) {
	// PostgreSQL sequence — atomic even across concurrent transactions.
	var folio int
	err := r.db.WithContext(ctx).Raw("SELECT nextval('sales_folio_seq')").Scan(&folio).Error
	return folio, mapErr(err)
}
