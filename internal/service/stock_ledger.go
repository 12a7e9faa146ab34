package service

import (
	"context"
	"errors"
	"fmt"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService owns every write to product stock. Each mutation records an
// InventoryMovement with before/after snapshots so the movement log stays the
// audit source of truth: for any tracked product, the sum of movement
// quantities equals quantity_in_stock.
//
// All operations take the repository bundle of the caller's transaction scope.
// Calling through an open scope makes the read-check-write atomic with the
// rest of the sale; calling with the root bundle runs standalone.
type LedgerService interface {
	DecreaseStockForSale(ctx context.Context, r repository.Repos, productID uuid.UUID, qty decimal.Decimal, saleID uuid.UUID, userID *uuid.UUID) error
	ReceiveStock(ctx context.Context, r repository.Repos, productID uuid.UUID, qty decimal.Decimal, reason string, userID *uuid.UUID) (*model.InventoryMovement, error)
	AdjustStock(ctx context.Context, r repository.Repos, productID uuid.UUID, newQty decimal.Decimal, reason string, userID *uuid.UUID) (*model.InventoryMovement, error)
	RecordInitialStock(ctx context.Context, r repository.Repos, productID uuid.UUID, qty decimal.Decimal, userID *uuid.UUID) error
	VerifyLedger(ctx context.Context, r repository.Repos, productID uuid.UUID) (*LedgerReport, error)
	LowStockAlerts(ctx context.Context, r repository.Repos) ([]model.Product, error)
}

// LedgerReport compares a product's recorded stock against the sum of its
// movements.
type LedgerReport struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Recorded    decimal.Decimal `json:"recorded"`
	LedgerSum   decimal.Decimal `json:"ledger_sum"`
	Drift       decimal.Decimal `json:"drift"`
	Consistent  bool            `json:"consistent"`
}

type ledgerService struct{}

func NewLedgerService() LedgerService {
	return &ledgerService{}
}

// ── DecreaseStockForSale ──────────────────────────────────────────────────────
// Called per sale line inside the sale's transaction scope. Re-reads stock
// through r so the check sees uncommitted writes of the same scope, never a
// stale pre-transaction snapshot.

func (s *ledgerService) DecreaseStockForSale(ctx context.Context, r repository.Repos, productID uuid.UUID, qty decimal.Decimal, saleID uuid.UUID, userID *uuid.UUID) error {
	if !qty.IsPositive() {
		return newValidation("quantity must be greater than zero")
	}

	p, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "product", Ref: productID.String()}
		}
		return persistence("load product", err)
	}

	// Products that do not track inventory sell without touching the ledger.
	if !p.TracksInventory {
		return nil
	}

	before := p.QuantityInStock
	after := before.Sub(qty)
	if after.IsNegative() {
		return &InsufficientStockError{ProductCode: p.Code, Requested: qty, Available: before}
	}

	if err := r.Products.UpdateStock(ctx, productID, qty.Neg(), true); err != nil {
		if errors.Is(err, repository.ErrStockConflict) {
			// A concurrent sale consumed the stock between our read and the
			// guarded write. Report with the quantities we observed.
			return &InsufficientStockError{ProductCode: p.Code, Requested: qty, Available: before}
		}
		return persistence("decrement stock", err)
	}

	mov := &model.InventoryMovement{
		ProductID:   productID,
		Quantity:    qty.Neg(),
		Kind:        model.MovementSale,
		StockBefore: before,
		StockAfter:  after,
		Reason:      fmt.Sprintf("sale %s", saleID),
		RelatedID:   &saleID,
		UserID:      userID,
	}
	if err := r.Inventory.AddMovement(ctx, mov); err != nil {
		return persistence("record stock movement", err)
	}
	return nil
}

// ── ReceiveStock ──────────────────────────────────────────────────────────────

func (s *ledgerService) ReceiveStock(ctx context.Context, r repository.Repos, productID uuid.UUID, qty decimal.Decimal, reason string, userID *uuid.UUID) (*model.InventoryMovement, error) {
	if !qty.IsPositive() {
		return nil, newValidation("quantity must be greater than zero")
	}

	p, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Ref: productID.String()}
		}
		return nil, persistence("load product", err)
	}
	if !p.TracksInventory {
		return nil, newValidation(fmt.Sprintf("product %s does not track inventory", p.Code))
	}

	before := p.QuantityInStock
	if err := r.Products.UpdateStock(ctx, productID, qty, false); err != nil {
		return nil, persistence("increment stock", err)
	}

	if reason == "" {
		reason = "stock received"
	}
	mov := &model.InventoryMovement{
		ProductID:   productID,
		Quantity:    qty,
		Kind:        model.MovementPurchase,
		StockBefore: before,
		StockAfter:  before.Add(qty),
		Reason:      reason,
		UserID:      userID,
	}
	if err := r.Inventory.AddMovement(ctx, mov); err != nil {
		return nil, persistence("record stock movement", err)
	}
	return mov, nil
}

// ── AdjustStock ───────────────────────────────────────────────────────────────
// Positions stock at an absolute value (cycle count, shrinkage, correction).
// The movement records the signed delta, keeping the ledger sum consistent.

func (s *ledgerService) AdjustStock(ctx context.Context, r repository.Repos, productID uuid.UUID, newQty decimal.Decimal, reason string, userID *uuid.UUID) (*model.InventoryMovement, error) {
	if newQty.IsNegative() {
		return nil, newValidation("adjusted stock cannot be negative")
	}

	p, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Ref: productID.String()}
		}
		return nil, persistence("load product", err)
	}
	if !p.TracksInventory {
		return nil, newValidation(fmt.Sprintf("product %s does not track inventory", p.Code))
	}

	before := p.QuantityInStock
	delta := newQty.Sub(before)
	if delta.IsZero() {
		return nil, newValidation("adjustment matches current stock")
	}

	if err := r.Products.UpdateStock(ctx, productID, delta, false); err != nil {
		return nil, persistence("adjust stock", err)
	}

	if reason == "" {
		reason = "manual adjustment"
	}
	mov := &model.InventoryMovement{
		ProductID:   productID,
		Quantity:    delta,
		Kind:        model.MovementAdjustment,
		StockBefore: before,
		StockAfter:  newQty,
		Reason:      reason,
		UserID:      userID,
	}
	if err := r.Inventory.AddMovement(ctx, mov); err != nil {
		return nil, persistence("record stock movement", err)
	}
	return mov, nil
}

// ── RecordInitialStock ────────────────────────────────────────────────────────
// Called once at product creation. The product row starts at zero and the
// opening balance enters through the ledger like every other quantity.

func (s *ledgerService) RecordInitialStock(ctx context.Context, r repository.Repos, productID uuid.UUID, qty decimal.Decimal, userID *uuid.UUID) error {
	if !qty.IsPositive() {
		return nil
	}

	p, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "product", Ref: productID.String()}
		}
		return persistence("load product", err)
	}
	if !p.TracksInventory {
		return nil
	}

	before := p.QuantityInStock
	if err := r.Products.UpdateStock(ctx, productID, qty, false); err != nil {
		return persistence("set initial stock", err)
	}

	mov := &model.InventoryMovement{
		ProductID:   productID,
		Quantity:    qty,
		Kind:        model.MovementInitial,
		StockBefore: before,
		StockAfter:  before.Add(qty),
		Reason:      "initial stock",
		UserID:      userID,
	}
	if err := r.Inventory.AddMovement(ctx, mov); err != nil {
		return persistence("record stock movement", err)
	}
	return nil
}

// ── VerifyLedger ──────────────────────────────────────────────────────────────

func (s *ledgerService) VerifyLedger(ctx context.Context, r repository.Repos, productID uuid.UUID) (*LedgerReport, error) {
	p, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", Ref: productID.String()}
		}
		return nil, persistence("load product", err)
	}

	report := &LedgerReport{
		ProductID:   p.ID,
		ProductCode: p.Code,
		Recorded:    p.QuantityInStock,
	}
	if !p.TracksInventory {
		report.Consistent = true
		return report, nil
	}

	sum, err := r.Inventory.SumMovements(ctx, productID)
	if err != nil {
		return nil, persistence("sum stock movements", err)
	}
	report.LedgerSum = sum
	report.Drift = p.QuantityInStock.Sub(sum)
	report.Consistent = report.Drift.IsZero()
	return report, nil
}

func (s *ledgerService) LowStockAlerts(ctx context.Context, r repository.Repos) ([]model.Product, error) {
	products, err := r.Products.LowStock(ctx)
	if err != nil {
		return nil, persistence("list low stock products", err)
	}
	return products, nil
}
