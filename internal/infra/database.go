package infra

import (
	"fmt"

	"tillpoint/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (the folio sequence and partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RegisterSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RegisterSchema creates or updates every table plus the SQL objects the
// models alone cannot declare. Safe to re-run on a live schema.
func RegisterSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.InventoryMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Customer{},
		&model.PriceHistory{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements. Each uses IF NOT EXISTS
// semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Folio numbers come from a dedicated sequence, not a serial column:
		// the sale row is inserted with the folio already assigned.
		{"folio sequence",
			`CREATE SEQUENCE IF NOT EXISTS sales_folio_seq START 1`},

		// Partial index backing the low-stock alert query.
		{"low stock partial index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_products_low_stock') THEN
    CREATE INDEX idx_products_low_stock
        ON products (quantity_in_stock)
        WHERE active AND tracks_inventory AND min_stock > 0;
  END IF;
END $$`},

		// Movement listings and the ledger sum are always per product.
		{"movements product index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_inventory_movements_product') THEN
    CREATE INDEX idx_inventory_movements_product
        ON inventory_movements (product_id, created_at);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
