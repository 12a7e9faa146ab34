package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code        string          `json:"code"        validate:"required,min=1,max=40"`
	Description string          `json:"description" validate:"required,min=2,max=200"`
	Unit        string          `json:"unit"        validate:"omitempty,max=20"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SellPrice   decimal.Decimal `json:"sell_price"  validate:"required"`
	// InitialStock enters the ledger as an INITIAL movement, not a raw column write.
	InitialStock decimal.Decimal `json:"initial_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	// TracksInventory defaults to true when omitted.
	TracksInventory *bool   `json:"tracks_inventory"`
	UserID          *string `json:"user_id" validate:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Description *string          `json:"description" validate:"omitempty,min=2,max=200"`
	Unit        *string          `json:"unit"        validate:"omitempty,max=20"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	SellPrice   *decimal.Decimal `json:"sell_price"`
	MinStock    *decimal.Decimal `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock"`
	UserID      *string          `json:"user_id" validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Code        string `form:"code"`
	Description string `form:"description"`
	Active      string `form:"active,default=true"` // true | false | all
	Page        int    `form:"page,default=1"  validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	Unit            string          `json:"unit"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellPrice       decimal.Decimal `json:"sell_price"`
	MarginPct       decimal.Decimal `json:"margin_pct"`
	QuantityInStock decimal.Decimal `json:"quantity_in_stock"`
	MinStock        decimal.Decimal `json:"min_stock"`
	MaxStock        decimal.Decimal `json:"max_stock"`
	TracksInventory bool            `json:"tracks_inventory"`
	Active          bool            `json:"active"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type PriceHistoryResponse struct {
	ID         string          `json:"id"`
	CostBefore decimal.Decimal `json:"cost_before"`
	CostAfter  decimal.Decimal `json:"cost_after"`
	SellBefore decimal.Decimal `json:"sell_before"`
	SellAfter  decimal.Decimal `json:"sell_after"`
	UserID     *string         `json:"user_id,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type PriceHistoryListResponse struct {
	Data  []PriceHistoryResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

// PriceCheckResponse is returned by the public price check endpoint.
type PriceCheckResponse struct {
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	Unit           string          `json:"unit"`
	SellPrice      decimal.Decimal `json:"sell_price"`
	AvailableStock decimal.Decimal `json:"available_stock"`
}
