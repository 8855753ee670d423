package optimizer

import "github.com/andresuchdata/inventory-optimizer/internal/domain"

// CurrentStock maps product ids to the stock level of their latest snapshot.
type CurrentStock map[string]float64

// LatestStock picks the most recent snapshot per product. On equal dates the later
// row wins.
func LatestStock(snapshots []domain.InventorySnapshot) CurrentStock {
	latest := make(map[string]domain.InventorySnapshot, len(snapshots))
	for _, snap := range snapshots {
		prev, ok := latest[snap.ProductID]
		if !ok || !snap.Date.Before(prev.Date) {
			latest[snap.ProductID] = snap
		}
	}

	stock := make(CurrentStock, len(latest))
	for id, snap := range latest {
		stock[id] = snap.CurrentStock
	}
	return stock
}

// Of returns the current stock for a product, 0 when it has never been counted.
func (c CurrentStock) Of(productID string) float64 {
	return c[productID]
}
