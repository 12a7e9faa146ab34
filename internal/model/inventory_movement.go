package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement kinds. The ledger accepts nothing else.
const (
	MovementSale       = "SALE"
	MovementPurchase   = "PURCHASE"
	MovementAdjustment = "ADJUSTMENT"
	MovementInitial    = "INITIAL"
)

// InventoryMovement is one immutable entry in the stock ledger. Entries are
// only ever appended — never updated or deleted — so for every product the
// sum of Quantity over its movements equals Product.QuantityInStock.
type InventoryMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Quantity is the signed delta: positive = stock in, negative = stock out.
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Kind        string          `gorm:"type:varchar(20);not null;index"`
	StockBefore decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	StockAfter  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Reason      string
	// RelatedID links the originating entity (the sale id for SALE entries).
	RelatedID *uuid.UUID `gorm:"type:uuid"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"index"`
}

// TableName overrides GORM's default pluralization.
func (InventoryMovement) TableName() string { return "inventory_movements" }
