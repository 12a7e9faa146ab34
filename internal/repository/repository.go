// Package repository defines the persistence ports the services depend on,
// plus the transaction scope that binds them into one atomic unit of work.
// Two implementations exist: repository/postgres (GORM) for production and
// repository/memory for tests.
package repository

import (
	"context"
	"errors"
	"time"

	"tillpoint/internal/model"
	"tillpoint/internal/predicate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors every implementation maps its storage failures onto.
// Raw driver errors never cross a port.
var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate reports a uniqueness violation (product code, folio).
	ErrDuplicate = errors.New("duplicate")
	// ErrStockConflict reports a guarded stock decrement that found less
	// stock than required.
	ErrStockConflict = errors.New("stock conflict")
)

// TxManager runs a unit of work. On normal return from fn the scope commits;
// on error everything is rolled back and the original error is returned.
// A manager that is already inside a transaction joins it: nested Run calls
// see the same transaction and neither commit nor roll back — only the
// outermost owner does.
type TxManager interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Repos bundles the ports bound to one data source. Inside TxManager.Run the
// bundle is bound to the open transaction, so every read observes
// uncommitted writes of the same scope. Tx joins that scope for nested work.
type Repos struct {
	Products     ProductRepository
	Inventory    InventoryRepository
	Sales        SaleRepository
	Customers    CustomerRepository
	PriceHistory PriceHistoryRepository
	Tx           TxManager
}

// ── Ports ────────────────────────────────────────────────────────────────────

type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByCode(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, int64, error)
	Search(ctx context.Context, p predicate.Predicate, page, limit int) ([]model.Product, int64, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// UpdateStock applies a signed delta to quantity_in_stock. With guarded
	// set, the update only succeeds when the resulting stock stays >= 0 and
	// fails with ErrStockConflict otherwise.
	UpdateStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal, guarded bool) error
	// LowStock returns active, inventory-tracked products whose stock has
	// fallen below their minimum.
	LowStock(ctx context.Context) ([]model.Product, error)
}

type InventoryRepository interface {
	AddMovement(ctx context.Context, m *model.InventoryMovement) error
	List(ctx context.Context, f MovementFilter) ([]model.InventoryMovement, int64, error)
	// SumMovements totals the signed movement quantities of one product.
	SumMovements(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

type SaleRepository interface {
	// Add persists the sale aggregate with its items in one write.
	Add(ctx context.Context, s *model.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]model.Sale, int64, error)
	Search(ctx context.Context, p predicate.Predicate, page, limit int) ([]model.Sale, int64, error)
	NextFolio(ctx context.Context) (int, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, f CustomerFilter) ([]model.Customer, int64, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	// AdjustCreditBalance applies a signed delta to credit_balance.
	AdjustCreditBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

type PriceHistoryRepository interface {
	Add(ctx context.Context, h *model.PriceHistory) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceHistory, int64, error)
}

// ── Filters ──────────────────────────────────────────────────────────────────

// ProductFilter narrows List. Active: "true" (default) | "false" | "all".
type ProductFilter struct {
	Code        string
	Description string
	Active      string
	Page        int
	Limit       int
}

type SaleFilter struct {
	// Date filters on the calendar day (YYYY-MM-DD); empty = no date filter.
	Date        string
	CustomerID  *uuid.UUID
	PaymentType string
	CreditOnly  bool
	Page        int
	Limit       int
}

type MovementFilter struct {
	ProductID *uuid.UUID
	Kind      string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

type CustomerFilter struct {
	Name   string
	Active string
	Page   int
	Limit  int
}
