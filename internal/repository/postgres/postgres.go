// Package postgres implements the repository ports on GORM/PostgreSQL.
// All write paths used by the sale transaction run through TxManager, which
// wraps gorm's Transaction so reads inside a scope observe that scope's
// uncommitted writes.
package postgres

import (
	"context"
	"errors"

	"tillpoint/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// New binds the full port bundle to db. The bundle's Tx field is the root
// transaction manager; inside Run the bundle is re-bound to the open tx.
func New(db *gorm.DB) repository.Repos {
	r := bind(db)
	r.Tx = &TxManager{db: db}
	return r
}

func bind(db *gorm.DB) repository.Repos {
	return repository.Repos{
		Products:     &productRepo{db: db},
		Inventory:    &inventoryRepo{db: db},
		Sales:        &saleRepo{db: db},
		Customers:    &customerRepo{db: db},
		PriceHistory: &priceHistoryRepo{db: db},
	}
}

// TxManager is the GORM-backed unit of work. A manager constructed by New
// owns its scopes; the joined managers handed out inside Run do not commit
// or roll back — the outermost Transaction call does.
type TxManager struct {
	db   *gorm.DB
	inTx bool
}

func (m *TxManager) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if m.inTx {
		r := bind(m.db)
		r.Tx = m
		return fn(r)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := bind(tx)
		r.Tx = &TxManager{db: tx, inTx: true}
		return fn(r)
	})
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// mapErr converts driver errors to the port sentinels so callers never see
// gorm or pgconn types.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}
