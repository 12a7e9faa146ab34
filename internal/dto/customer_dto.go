package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name        string          `json:"name"         validate:"required,min=2,max=120"`
	Email       *string         `json:"email"        validate:"omitempty,email"`
	Phone       *string         `json:"phone"        validate:"omitempty,max=30"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

type UpdateCustomerRequest struct {
	Name        *string          `json:"name"         validate:"omitempty,min=2,max=120"`
	Email       *string          `json:"email"        validate:"omitempty,email"`
	Phone       *string          `json:"phone"        validate:"omitempty,max=30"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Active      *bool            `json:"active"`
}

type PostPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

type CustomerFilter struct {
	Name   string `form:"name"`
	Active string `form:"active,default=true"` // true | false | all
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         *string         `json:"email,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	Active        bool            `json:"active"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
