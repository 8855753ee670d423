package optimizer

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// priorityRules maps stock/reorder-point ratios to priorities. Bounds are inclusive.
var priorityRules = []struct {
	maxRatio float64
	priority domain.Priority
}{
	{maxRatio: 0.3, priority: domain.PriorityCritical},
	{maxRatio: 0.6, priority: domain.PriorityHigh},
	{maxRatio: 0.8, priority: domain.PriorityMedium},
}

// ClassifyPriority returns the urgency for a current stock to reorder point ratio.
func ClassifyPriority(stockRatio float64) domain.Priority {
	for _, rule := range priorityRules {
		if stockRatio <= rule.maxRatio {
			return rule.priority
		}
	}
	return domain.PriorityLow
}

// GeneratePurchaseOrders recommends an order for every product at or below its
// reorder point, most urgent first.
func GeneratePurchaseOrders(profiles []domain.VelocityProfile, snapshots []domain.InventorySnapshot) []domain.PurchaseOrder {
	stock := LatestStock(snapshots)
	orders := make([]domain.PurchaseOrder, 0)

	for _, p := range profiles {
		current := stock.Of(p.ProductID)
		if current > p.ReorderPoint {
			continue
		}

		shortfall := p.OptimalStock - current
		quantity := toInt(shortfall)
		if quantity <= 0 {
			continue
		}

		// Cost is priced on the untruncated shortfall.
		cost := decimal.NewFromFloat(shortfall).
			Mul(decimal.NewFromFloat(p.CostPrice)).
			Round(2).
			InexactFloat64()

		orders = append(orders, domain.PurchaseOrder{
			ProductID:     p.ProductID,
			ProductName:   p.ProductName,
			Supplier:      p.Supplier,
			CurrentStock:  toInt(current),
			ReorderPoint:  toInt(p.ReorderPoint),
			OrderQuantity: quantity,
			Priority:      ClassifyPriority(ratio(current, p.ReorderPoint, 0)),
			EstimatedCost: cost,
			LeadTimeDays:  p.LeadTimeDays,
		})
	}

	sort.SliceStable(orders, func(i, j int) bool {
		ri, rj := orders[i].Priority.Rank(), orders[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return orders[i].ProductID < orders[j].ProductID
	})

	return orders
}
