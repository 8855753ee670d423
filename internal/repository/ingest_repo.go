package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

type IngestRepository struct {
	db *sql.DB
}

func NewIngestRepository(db *sql.DB) *IngestRepository {
	return &IngestRepository{db: db}
}

// ApplySchema runs DDL statements, typically Schema or a file passed to the seeder.
func (r *IngestRepository) ApplySchema(ctx context.Context, ddl string) error {
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// IngestDataset upserts all three datasets in a single transaction.
func (r *IngestRepository) IngestDataset(ctx context.Context, ds *domain.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertProducts(ctx, tx, ds.Products); err != nil {
		return err
	}
	if err := upsertSales(ctx, tx, ds.Sales); err != nil {
		return err
	}
	if err := upsertInventory(ctx, tx, ds.Inventory); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertProducts(ctx context.Context, tx *sql.Tx, products []domain.Product) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (product_id, product_name, category, supplier, cost_price, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (product_id)
		DO UPDATE SET
			product_name = EXCLUDED.product_name,
			category = EXCLUDED.category,
			supplier = EXCLUDED.supplier,
			cost_price = EXCLUDED.cost_price,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare product upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ProductID, p.ProductName, p.Category, p.Supplier, p.CostPrice); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", p.ProductID, err)
		}
	}
	return nil
}

func upsertSales(ctx context.Context, tx *sql.Tx, sales []domain.SalesRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records (date, product_id, quantity_sold, revenue)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, product_id)
		DO UPDATE SET quantity_sold = EXCLUDED.quantity_sold, revenue = EXCLUDED.revenue
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sales upsert: %w", err)
	}
	defer stmt.Close()

	for _, s := range sales {
		if _, err := stmt.ExecContext(ctx, s.Date, s.ProductID, s.QuantitySold, s.Revenue); err != nil {
			return fmt.Errorf("failed to upsert sales record %s/%s: %w", s.ProductID, s.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func upsertInventory(ctx context.Context, tx *sql.Tx, snapshots []domain.InventorySnapshot) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_snapshots (date, product_id, current_stock)
		VALUES ($1, $2, $3)
		ON CONFLICT (date, product_id)
		DO UPDATE SET current_stock = EXCLUDED.current_stock
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare inventory upsert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		if _, err := stmt.ExecContext(ctx, s.Date, s.ProductID, s.CurrentStock); err != nil {
			return fmt.Errorf("failed to upsert inventory snapshot %s/%s: %w", s.ProductID, s.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}
