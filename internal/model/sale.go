package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment types accepted on a sale.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCredit   = "credit"
)

// Sale is the aggregate root for one completed sale. A sale and its items
// are created together in one transaction and are immutable afterwards.
// TotalAmount always equals the sum of quantity*unit_price over Items.
type Sale struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Folio is the sequential receipt number, claimed inside the sale
	// transaction from sales_folio_seq.
	Folio        int             `gorm:"uniqueIndex;not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CustomerID   *uuid.UUID      `gorm:"type:uuid;index"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null"`
	PaymentType  string          `gorm:"type:varchar(20);not null"`
	IsCreditSale bool            `gorm:"not null;default:false"`
	CreatedAt    time.Time       `gorm:"index"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one line of a sale. Product code, description, and unit are
// snapshotted at sale time so the line stays accurate when the catalog
// changes later.
type SaleItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity           decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProductCode        string          `gorm:"not null"`
	ProductDescription string          `gorm:"not null"`
	ProductUnit        string          `gorm:"not null"`
	CreatedAt          time.Time
}

// Subtotal is quantity * unit price rounded to cents.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice).Round(2)
}
