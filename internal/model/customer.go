package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries the credit account: CreditBalance is raised by credit
// sales and lowered by payments, always inside the caller's transaction.
// Both credit fields are non-negative; CreditBalance <= CreditLimit is
// intentionally NOT enforced (see DESIGN.md).
type Customer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	Email         *string
	Phone         *string
	CreditLimit   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
