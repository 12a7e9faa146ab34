package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Prices are 2-decimal fixed point, stock
// quantities 3-decimal so fractional units (kg, liters) are exact.
// QuantityInStock is mutated exclusively by the stock ledger; when
// TracksInventory is false the ledger leaves it untouched.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string    `gorm:"uniqueIndex;not null"`
	Description string    `gorm:"index;not null"`
	// Unit is the sale unit label (snapshotted onto sale items).
	Unit            string          `gorm:"not null;default:'unit'"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	QuantityInStock decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MinStock        decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MaxStock        decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	TracksInventory bool            `gorm:"not null;default:true"`
	Active          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
