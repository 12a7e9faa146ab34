package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory records every cost/sell price change of a product.
// Rows are immutable — never updated or deleted.
type PriceHistory struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UserID     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt  time.Time
}

// TableName overrides GORM's default pluralization.
func (PriceHistory) TableName() string { return "price_history" }
