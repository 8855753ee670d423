// internal/domain/models.go
package domain

import "time"

// SalesRecord is one day of sales for a product, pre-aggregated by the source.
type SalesRecord struct {
	Date         time.Time `json:"date" db:"date" validate:"required"`
	ProductID    string    `json:"product_id" db:"product_id" validate:"required"`
	QuantitySold float64   `json:"quantity_sold" db:"quantity_sold" validate:"gte=0"`
	Revenue      float64   `json:"revenue" db:"revenue"`
}

// InventorySnapshot is a recorded stock check for a product.
type InventorySnapshot struct {
	Date         time.Time `json:"date" db:"date" validate:"required"`
	ProductID    string    `json:"product_id" db:"product_id" validate:"required"`
	CurrentStock float64   `json:"current_stock" db:"current_stock"`
}

// Product is the static catalog entry keyed by ProductID.
type Product struct {
	ProductID   string  `json:"product_id" db:"product_id" validate:"required"`
	ProductName string  `json:"product_name" db:"product_name"`
	Category    string  `json:"category" db:"category"`
	Supplier    string  `json:"supplier" db:"supplier"`
	CostPrice   float64 `json:"cost_price" db:"cost_price" validate:"gte=0"`
}

// Dataset is an immutable snapshot of the three source tables.
type Dataset struct {
	Sales     []SalesRecord       `json:"sales"`
	Inventory []InventorySnapshot `json:"inventory"`
	Products  []Product           `json:"products"`
}

// VelocityProfile holds the sales statistics and stock levels derived for one product.
type VelocityProfile struct {
	ProductID        string           `json:"product_id"`
	ProductName      string           `json:"product_name"`
	Category         string           `json:"category"`
	Supplier         string           `json:"supplier"`
	CostPrice        float64          `json:"cost_price"`
	TotalSold        float64          `json:"total_sold"`
	AvgDailySold     float64          `json:"avg_daily_sold"`
	StdDailySold     float64          `json:"std_daily_sold"`
	TotalRevenue     float64          `json:"total_revenue"`
	LeadTimeDays     int              `json:"lead_time_days"`
	SafetyStock      float64          `json:"safety_stock"`
	ReorderPoint     float64          `json:"reorder_point"`
	OptimalStock     float64          `json:"optimal_stock"`
	VelocityCategory VelocityCategory `json:"velocity_category"`
}

// PurchaseOrder is a reorder recommendation for a product below its reorder point.
type PurchaseOrder struct {
	ProductID     string   `json:"product_id"`
	ProductName   string   `json:"product_name"`
	Supplier      string   `json:"supplier"`
	CurrentStock  int      `json:"current_stock"`
	ReorderPoint  int      `json:"reorder_point"`
	OrderQuantity int      `json:"order_quantity"`
	Priority      Priority `json:"priority"`
	EstimatedCost float64  `json:"estimated_cost"`
	LeadTimeDays  int      `json:"lead_time_days"`
}

// SlowMover flags an overstocked or stale product with a promotional action.
type SlowMover struct {
	ProductID           string           `json:"product_id"`
	ProductName         string           `json:"product_name"`
	Category            string           `json:"category"`
	CurrentStock        int              `json:"current_stock"`
	AvgDailySold        float64          `json:"avg_daily_sold"`
	DaysOfSupply        int              `json:"days_of_supply"`
	VelocityCategory    VelocityCategory `json:"velocity_category"`
	PromoRecommendation Promotion        `json:"promo_recommendation"`
	PotentialLoss       float64          `json:"potential_loss"`
}

// HealthMetrics aggregates the stock position of every profiled product.
type HealthMetrics struct {
	TotalProducts       int     `json:"total_products"`
	OverstockCount      int     `json:"overstock_count"`
	UnderstockCount     int     `json:"understock_count"`
	OptimalCount        int     `json:"optimal_count"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
	OverstockValue      float64 `json:"overstock_value"`
	ServiceLevel        float64 `json:"service_level"`
	HealthScore         float64 `json:"health_score"`
}

// ForecastPoint is the predicted demand for one future day.
type ForecastPoint struct {
	Date            string     `json:"date"`
	PredictedDemand int        `json:"predicted_demand"`
	Confidence      Confidence `json:"confidence"`
}

// Dashboard bundles the reports shown on the overview page.
type Dashboard struct {
	Health         HealthMetrics   `json:"health_metrics"`
	PurchaseOrders []PurchaseOrder `json:"purchase_orders"`
	SlowMovers     []SlowMover     `json:"slow_movers"`
	Forecast       []ForecastPoint `json:"demand_predictions"`
	GeneratedAt    time.Time       `json:"generated_at"`
}
