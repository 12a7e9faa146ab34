package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ReceiveStockRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required"`
	Reason    string          `json:"reason"     validate:"omitempty,max=200"`
	UserID    *string         `json:"user_id"    validate:"omitempty,uuid"`
}

// AdjustStockRequest positions stock at an absolute value. NewQuantity is a
// pointer so an explicit zero survives validation.
type AdjustStockRequest struct {
	ProductID   string           `json:"product_id"   validate:"required,uuid"`
	NewQuantity *decimal.Decimal `json:"new_quantity" validate:"required"`
	Reason      string           `json:"reason"       validate:"required,min=3,max=200"`
	UserID      *string          `json:"user_id"      validate:"omitempty,uuid"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

type MovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Kind      string `form:"kind"       validate:"omitempty,oneof=SALE PURCHASE ADJUSTMENT INITIAL"`
	From      string `form:"from"` // YYYY-MM-DD inclusive
	To        string `form:"to"`   // YYYY-MM-DD inclusive
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Kind        string          `json:"kind"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	Reason      string          `json:"reason"`
	RelatedID   *string         `json:"related_id,omitempty"`
	UserID      *string         `json:"user_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// LowStockProduct is one row of the low stock alert report.
type LowStockProduct struct {
	ProductID       string          `json:"product_id"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	QuantityInStock decimal.Decimal `json:"quantity_in_stock"`
	MinStock        decimal.Decimal `json:"min_stock"`
	MaxStock        decimal.Decimal `json:"max_stock"`
	// SuggestedOrder tops the product back up to max_stock (zero when no max is set).
	SuggestedOrder decimal.Decimal `json:"suggested_order"`
}
