package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
)

const (
	selectSales = `
		SELECT date, product_id, quantity_sold, revenue
		FROM sales_records
		ORDER BY date, product_id`

	selectInventory = `
		SELECT date, product_id, current_stock
		FROM inventory_snapshots
		ORDER BY date, product_id`

	selectProducts = `
		SELECT product_id, product_name, category, supplier, cost_price
		FROM products
		ORDER BY product_id`
)

// RecordStore loads datasets from the sales_records, inventory_snapshots and
// products tables.
type RecordStore struct {
	db *DB
}

var _ repository.RecordStore = (*RecordStore)(nil)

func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Load(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()
	ds := &domain.Dataset{}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &ds.Sales, selectSales); err != nil {
			return fmt.Errorf("select sales: %w", err)
		}
		if err := tx.SelectContext(ctx, &ds.Inventory, selectInventory); err != nil {
			return fmt.Errorf("select inventory: %w", err)
		}
		if err := tx.SelectContext(ctx, &ds.Products, selectProducts); err != nil {
			return fmt.Errorf("select products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	normalizeDates(ds)

	log.Debug().
		Int("sales", len(ds.Sales)).
		Int("inventory", len(ds.Inventory)).
		Int("products", len(ds.Products)).
		Dur("elapsed", time.Since(start)).
		Msg("Loaded datasets from postgres")

	return ds, nil
}

// normalizeDates drops any time-of-day or zone the driver attached to DATE columns.
func normalizeDates(ds *domain.Dataset) {
	for i := range ds.Sales {
		ds.Sales[i].Date = repository.CalendarDate(ds.Sales[i].Date)
	}
	for i := range ds.Inventory {
		ds.Inventory[i].Date = repository.CalendarDate(ds.Inventory[i].Date)
	}
}
