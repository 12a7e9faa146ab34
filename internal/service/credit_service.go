package service

import (
	"context"
	"errors"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditService tracks what customers owe. Balances only move through credit
// sales and payments; both run inside a caller-supplied scope so a sale and
// its balance update commit or roll back together.
//
// The credit limit is informational. Sales above the limit are accepted and
// the balance reflects them; the limit surfaces in reports for the back
// office to chase, it does not block the till.
type CreditService interface {
	PostCreditSale(ctx context.Context, r repository.Repos, customerID uuid.UUID, amount decimal.Decimal) error
	PostPayment(ctx context.Context, r repository.Repos, customerID uuid.UUID, amount decimal.Decimal) (*model.Customer, error)
	Status(ctx context.Context, r repository.Repos, customerID uuid.UUID) (*CreditStatus, error)
}

// CreditStatus is a point-in-time view of one customer's account.
type CreditStatus struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Name       string          `json:"name"`
	Limit      decimal.Decimal `json:"credit_limit"`
	Balance    decimal.Decimal `json:"credit_balance"`
	Available  decimal.Decimal `json:"available"`
	OverLimit  bool            `json:"over_limit"`
}

type creditService struct{}

func NewCreditService() CreditService {
	return &creditService{}
}

func (s *creditService) PostCreditSale(ctx context.Context, r repository.Repos, customerID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newValidation("credit amount must be greater than zero")
	}

	c, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "customer", Ref: customerID.String()}
		}
		return persistence("load customer", err)
	}
	if !c.Active {
		return newValidation("customer account is inactive")
	}

	if err := r.Customers.AdjustCreditBalance(ctx, customerID, amount); err != nil {
		return persistence("post credit sale", err)
	}
	return nil
}

func (s *creditService) PostPayment(ctx context.Context, r repository.Repos, customerID uuid.UUID, amount decimal.Decimal) (*model.Customer, error) {
	if !amount.IsPositive() {
		return nil, newValidation("payment amount must be greater than zero")
	}

	c, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "customer", Ref: customerID.String()}
		}
		return nil, persistence("load customer", err)
	}
	if amount.GreaterThan(c.CreditBalance) {
		return nil, newValidation("payment exceeds outstanding balance")
	}

	if err := r.Customers.AdjustCreditBalance(ctx, customerID, amount.Neg()); err != nil {
		return nil, persistence("post payment", err)
	}

	c.CreditBalance = c.CreditBalance.Sub(amount)
	return c, nil
}

func (s *creditService) Status(ctx context.Context, r repository.Repos, customerID uuid.UUID) (*CreditStatus, error) {
	c, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "customer", Ref: customerID.String()}
		}
		return nil, persistence("load customer", err)
	}

	return &CreditStatus{
		CustomerID: c.ID,
		Name:       c.Name,
		Limit:      c.CreditLimit,
		Balance:    c.CreditBalance,
		Available:  c.CreditLimit.Sub(c.CreditBalance),
		OverLimit:  c.CreditBalance.GreaterThan(c.CreditLimit),
	}, nil
}
