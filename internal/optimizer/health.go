package optimizer

import (
	"fmt"
	"math"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

type stockBucket int

const (
	bucketOptimal stockBucket = iota
	bucketOverstock
	bucketUnderstock
)

// classifyStock puts a product into exactly one bucket. Overstock is checked first.
func classifyStock(current float64, p domain.VelocityProfile) stockBucket {
	switch {
	case current > p.OptimalStock*2:
		return bucketOverstock
	case current < p.ReorderPoint:
		return bucketUnderstock
	default:
		return bucketOptimal
	}
}

// ComputeHealthMetrics summarizes stock balance, inventory value and service level
// across all profiled products.
func ComputeHealthMetrics(profiles []domain.VelocityProfile, snapshots []domain.InventorySnapshot) (domain.HealthMetrics, error) {
	if len(profiles) == 0 {
		return domain.HealthMetrics{}, fmt.Errorf("compute health metrics: %w", domain.ErrEmptyDataset)
	}

	stock := LatestStock(snapshots)

	var (
		metrics        domain.HealthMetrics
		totalValue     float64
		overstockValue float64
		fastTotal      int
		fastInStock    int
	)
	metrics.TotalProducts = len(profiles)

	for _, p := range profiles {
		current := stock.Of(p.ProductID)
		value := current * p.CostPrice
		totalValue += value

		switch classifyStock(current, p) {
		case bucketOverstock:
			metrics.OverstockCount++
			overstockValue += value
		case bucketUnderstock:
			metrics.UnderstockCount++
		default:
			metrics.OptimalCount++
		}

		if p.VelocityCategory == domain.FastMoving {
			fastTotal++
			if current > 0 {
				fastInStock++
			}
		}
	}

	total := float64(metrics.TotalProducts)
	score := 100 -
		float64(metrics.OverstockCount)/total*50 -
		float64(metrics.UnderstockCount)/total*50

	metrics.TotalInventoryValue = roundTo(totalValue, 2)
	metrics.OverstockValue = roundTo(overstockValue, 2)
	metrics.ServiceLevel = roundTo(ratio(float64(fastInStock), float64(fastTotal), 0)*100, 2)
	metrics.HealthScore = roundTo(math.Max(0, score), 2)

	return metrics, nil
}
