package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date        string `form:"date"` // YYYY-MM-DD; empty = all days
	CustomerID  string `form:"customer_id"  validate:"omitempty,uuid"`
	PaymentType string `form:"payment_type" validate:"omitempty,oneof=cash card transfer credit"`
	CreditOnly  bool   `form:"credit_only"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required"`
	// UnitPrice overrides the catalog sell price for this line when present.
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CreateSaleRequest struct {
	Items       []SaleItemRequest `json:"items"        validate:"required,min=1,dive"`
	CustomerID  *string           `json:"customer_id"  validate:"omitempty,uuid"`
	UserID      string            `json:"user_id"      validate:"required,uuid"`
	PaymentType string            `json:"payment_type" validate:"required,oneof=cash card transfer credit"`
	// IsCreditSale posts the total to the customer's account; requires customer_id.
	IsCreditSale bool `json:"is_credit_sale"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID          string          `json:"product_id"`
	ProductCode        string          `json:"product_code"`
	ProductDescription string          `json:"product_description"`
	ProductUnit        string          `json:"product_unit"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID           string             `json:"id"`
	Folio        int                `json:"folio"`
	Items        []SaleItemResponse `json:"items"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	CustomerID   *string            `json:"customer_id,omitempty"`
	UserID       string             `json:"user_id"`
	PaymentType  string             `json:"payment_type"`
	IsCreditSale bool               `json:"is_credit_sale"`
	CreatedAt    string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
