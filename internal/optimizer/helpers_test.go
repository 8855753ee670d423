package optimizer

import (
	"math"
	"time"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

const tolerance = 1e-6

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func profile(id string, avg, std float64, leadTime int, cost float64) domain.VelocityProfile {
	levels := CalculateStockLevels(avg, std, leadTime)
	return domain.VelocityProfile{
		ProductID:        id,
		ProductName:      "Product " + id,
		Category:         "General",
		Supplier:         "Supplier A",
		CostPrice:        cost,
		AvgDailySold:     avg,
		StdDailySold:     std,
		LeadTimeDays:     leadTime,
		SafetyStock:      levels.SafetyStock,
		ReorderPoint:     levels.ReorderPoint,
		OptimalStock:     levels.OptimalStock,
		VelocityCategory: ClassifyVelocity(avg),
	}
}

func snapshot(date, id string, stock float64) domain.InventorySnapshot {
	return domain.InventorySnapshot{Date: day(date), ProductID: id, CurrentStock: stock}
}
