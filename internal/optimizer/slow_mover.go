package optimizer

import (
	"sort"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

const (
	// noSalesDaysOfSupply stands in for infinite cover when a product does not sell.
	noSalesDaysOfSupply = 999
	// slowMoverDays is the cover above which a product is treated as slow.
	slowMoverDays = 60
	// markdownRate is the share of stock value expected to be lost to promotion.
	markdownRate = 0.3
)

var promoRules = []struct {
	minDays   float64
	promotion domain.Promotion
}{
	{minDays: 120, promotion: domain.PromoClearance},
	{minDays: 90, promotion: domain.PromoBundle},
	{minDays: 60, promotion: domain.PromoDiscount},
}

// RecommendPromotion picks a promotion for the given days of supply. Bounds are exclusive.
func RecommendPromotion(daysOfSupply float64) domain.Promotion {
	for _, rule := range promoRules {
		if daysOfSupply > rule.minDays {
			return rule.promotion
		}
	}
	return domain.PromoFeatured
}

// DaysOfSupply estimates how many days the current stock lasts at the average sales rate.
// It is not truncated; callers compare thresholds on the exact cover.
func DaysOfSupply(currentStock, avgDailySold float64) float64 {
	if avgDailySold <= 0 {
		return noSalesDaysOfSupply
	}
	return ratio(currentStock, avgDailySold, noSalesDaysOfSupply)
}

// DetectSlowMovers flags products with more than 60 days of cover or a slow velocity
// category, in product id order.
func DetectSlowMovers(profiles []domain.VelocityProfile, snapshots []domain.InventorySnapshot) []domain.SlowMover {
	stock := LatestStock(snapshots)
	movers := make([]domain.SlowMover, 0)

	for _, p := range profiles {
		current := stock.Of(p.ProductID)
		days := DaysOfSupply(current, p.AvgDailySold)
		if days <= slowMoverDays && !p.VelocityCategory.IsSlow() {
			continue
		}

		movers = append(movers, domain.SlowMover{
			ProductID:           p.ProductID,
			ProductName:         p.ProductName,
			Category:            p.Category,
			CurrentStock:        toInt(current),
			AvgDailySold:        roundTo(p.AvgDailySold, 1),
			DaysOfSupply:        toInt(days),
			VelocityCategory:    p.VelocityCategory,
			PromoRecommendation: RecommendPromotion(days),
			PotentialLoss:       roundTo(current*p.CostPrice*markdownRate, 2),
		})
	}

	sort.SliceStable(movers, func(i, j int) bool {
		return movers[i].ProductID < movers[j].ProductID
	})

	return movers
}
