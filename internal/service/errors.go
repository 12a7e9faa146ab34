package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Typed errors returned by the service layer. Handlers inspect them with
// errors.As to pick the HTTP status; everything else maps to 500.

// ValidationError reports a request rejected before any state was touched.
type ValidationError struct {
	Detail string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Detail }

func newValidation(detail string) *ValidationError {
	return &ValidationError{Detail: detail}
}

// NotFoundError identifies the entity and the reference that missed.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Ref)
}

// InsufficientStockError names the product whose stock could not cover the
// requested quantity, so the client can point at the failing line.
type InsufficientStockError struct {
	ProductCode string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %s, available %s",
		e.ProductCode, e.Requested.String(), e.Available.String())
}

// DuplicateError reports a uniqueness violation (product code, sale folio).
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// PersistenceError wraps an unexpected storage failure. The wrapped error is
// logged server-side and never shown to clients.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
