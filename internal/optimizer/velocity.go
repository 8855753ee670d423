package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

const (
	// serviceLevelZ is the z-score for a 95% service level.
	serviceLevelZ = 1.65
	// optimalStockFactor sizes the target stock relative to the reorder point.
	optimalStockFactor = 1.5
	// statPrecision is the number of decimals sales statistics are rounded to before use.
	statPrecision = 2
)

// velocityRules is evaluated top to bottom; the first rule whose minimum is met wins.
var velocityRules = []struct {
	minAvgDaily float64
	category    domain.VelocityCategory
}{
	{minAvgDaily: 10, category: domain.FastMoving},
	{minAvgDaily: 5, category: domain.MediumMoving},
	{minAvgDaily: 1, category: domain.SlowMoving},
}

// ClassifyVelocity returns the velocity category for an average daily sales rate.
func ClassifyVelocity(avgDailySold float64) domain.VelocityCategory {
	for _, rule := range velocityRules {
		if avgDailySold >= rule.minAvgDaily {
			return rule.category
		}
	}
	return domain.DeadStock
}

type salesStats struct {
	count    int
	total    float64
	revenue  float64
	quantity []float64
}

func (s *salesStats) add(r domain.SalesRecord) {
	s.count++
	s.total += r.QuantitySold
	s.revenue += r.Revenue
	s.quantity = append(s.quantity, r.QuantitySold)
}

func (s *salesStats) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.total / float64(s.count)
}

// stddev is the sample standard deviation. A single observation has no spread.
func (s *salesStats) stddev() float64 {
	if s.count < 2 {
		return 0
	}
	mean := s.mean()
	var sq float64
	for _, q := range s.quantity {
		d := q - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(s.count-1))
	if math.IsNaN(std) || math.IsInf(std, 0) {
		return 0
	}
	return std
}

// StockLevels holds the derived stock thresholds for one product.
type StockLevels struct {
	SafetyStock  float64
	ReorderPoint float64
	OptimalStock float64
}

// CalculateStockLevels derives safety stock, reorder point and optimal stock.
func CalculateStockLevels(avgDailySold, stdDailySold float64, leadTimeDays int) StockLevels {
	lead := float64(leadTimeDays)

	// 1. Safety stock = std daily sales × lead time × z
	safety := stdDailySold * lead * serviceLevelZ

	// 2. Reorder point = avg daily sales × lead time + safety stock
	reorder := avgDailySold*lead + safety

	// 3. Optimal stock = reorder point × 1.5
	return StockLevels{
		SafetyStock:  safety,
		ReorderPoint: reorder,
		OptimalStock: reorder * optimalStockFactor,
	}
}

// ComputeVelocityProfiles joins per-product sales statistics with the catalog and
// derives stock levels. Products with sales but no catalog entry are skipped.
func ComputeVelocityProfiles(sales []domain.SalesRecord, products []domain.Product, leadTimes LeadTimes) ([]domain.VelocityProfile, error) {
	if len(sales) == 0 {
		return nil, fmt.Errorf("compute velocity profiles: no sales: %w", domain.ErrEmptyDataset)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("compute velocity profiles: no products: %w", domain.ErrEmptyDataset)
	}

	catalog := make(map[string]domain.Product, len(products))
	for _, p := range products {
		catalog[p.ProductID] = p
	}

	stats := make(map[string]*salesStats)
	for _, r := range sales {
		s, ok := stats[r.ProductID]
		if !ok {
			s = &salesStats{}
			stats[r.ProductID] = s
		}
		s.add(r)
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	profiles := make([]domain.VelocityProfile, 0, len(ids))
	missing := 0
	for _, id := range ids {
		product, ok := catalog[id]
		if !ok {
			missing++
			log.Warn().Str("product_id", id).Msg("Sales reference a product missing from the catalog, skipping")
			continue
		}

		leadTime, err := leadTimes.Lookup(product.Supplier)
		if err != nil {
			return nil, fmt.Errorf("compute velocity profiles: product %s: %w", id, err)
		}

		s := stats[id]
		avg := roundTo(s.mean(), statPrecision)
		std := roundTo(s.stddev(), statPrecision)
		levels := CalculateStockLevels(avg, std, leadTime)

		profiles = append(profiles, domain.VelocityProfile{
			ProductID:        product.ProductID,
			ProductName:      product.ProductName,
			Category:         product.Category,
			Supplier:         product.Supplier,
			CostPrice:        product.CostPrice,
			TotalSold:        roundTo(s.total, statPrecision),
			AvgDailySold:     avg,
			StdDailySold:     std,
			TotalRevenue:     roundTo(s.revenue, statPrecision),
			LeadTimeDays:     leadTime,
			SafetyStock:      levels.SafetyStock,
			ReorderPoint:     levels.ReorderPoint,
			OptimalStock:     levels.OptimalStock,
			VelocityCategory: ClassifyVelocity(avg),
		})
	}

	if missing > 0 {
		log.Debug().Int("missing_products", missing).Int("profiles", len(profiles)).Msg("Velocity profiles computed with excluded products")
	}

	return profiles, nil
}
