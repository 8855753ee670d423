package domain

import "strings"

// VelocityCategory classifies a product by its average daily sales.
type VelocityCategory string

const (
	FastMoving   VelocityCategory = "Fast-Moving"
	MediumMoving VelocityCategory = "Medium-Moving"
	SlowMoving   VelocityCategory = "Slow-Moving"
	DeadStock    VelocityCategory = "Dead-Stock"
)

// Priority ranks how urgently a purchase order should be placed.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Promotion is the action suggested for a slow-moving product.
type Promotion string

const (
	PromoClearance Promotion = "Clearance Sale - 50% Off"
	PromoBundle    Promotion = "Bundle Promotion - Buy 1 Get 1"
	PromoDiscount  Promotion = "Discount - 25% Off"
	PromoFeatured  Promotion = "Featured Placement"
)

// Confidence labels a forecast point.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
)

var priorityRanks = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

var velocityCategories = map[string]VelocityCategory{
	"fast-moving":   FastMoving,
	"medium-moving": MediumMoving,
	"slow-moving":   SlowMoving,
	"dead-stock":    DeadStock,
}

// Rank orders priorities from most to least urgent. Unknown values sort last.
func (p Priority) Rank() int {
	if rank, ok := priorityRanks[p]; ok {
		return rank
	}

	return len(priorityRanks)
}

// IsSlow reports whether the category is flagged for promotion regardless of stock cover.
func (v VelocityCategory) IsSlow() bool {
	return v == SlowMoving || v == DeadStock
}

// ParseVelocityCategory returns the category for a label (case-insensitive).
func ParseVelocityCategory(label string) (VelocityCategory, bool) {
	category, ok := velocityCategories[strings.ToLower(strings.TrimSpace(label))]

	return category, ok
}
