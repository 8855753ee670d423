package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// Dataset names shared by every record store and sync source.
const (
	SalesDataset     = "sales_data"
	InventoryDataset = "inventory_data"
	ProductsDataset  = "products_data"
)

// DatasetNames lists the three datasets in load order.
var DatasetNames = []string{SalesDataset, InventoryDataset, ProductsDataset}

// ErrDatasetNotFound is returned when a dataset file is missing.
var ErrDatasetNotFound = errors.New("dataset not found")

// RecordStore supplies a consistent snapshot of sales, inventory and products.
type RecordStore interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}
