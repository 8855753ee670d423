package pipeline

import (
	"context"
	"strconv"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// ReportSource produces the reports an export renders.
type ReportSource interface {
	VelocityProfiles(ctx context.Context) ([]domain.VelocityProfile, error)
	PurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error)
	SlowMovers(ctx context.Context) ([]domain.SlowMover, error)
	Health(ctx context.Context) (domain.HealthMetrics, error)
	Forecast(ctx context.Context, productID string, days int) ([]domain.ForecastPoint, error)
}

type reportJob struct {
	name   string
	render func(ctx context.Context) (Table, error)
}

func (j reportJob) Name() string { return j.name }

func (j reportJob) Render(ctx context.Context) (Table, error) { return j.render(ctx) }

// NewJob wraps a render function as a Job.
func NewJob(name string, render func(ctx context.Context) (Table, error)) Job {
	return reportJob{name: name, render: render}
}

// ReportJobs returns one job per report. A zero forecastDays uses the source default.
func ReportJobs(src ReportSource, forecastDays int) []Job {
	return []Job{
		NewJob(domain.ReportVelocity, func(ctx context.Context) (Table, error) {
			profiles, err := src.VelocityProfiles(ctx)
			if err != nil {
				return Table{}, err
			}
			return velocityTable(profiles), nil
		}),
		NewJob(domain.ReportPurchaseOrders, func(ctx context.Context) (Table, error) {
			orders, err := src.PurchaseOrders(ctx)
			if err != nil {
				return Table{}, err
			}
			return purchaseOrderTable(orders), nil
		}),
		NewJob(domain.ReportSlowMovers, func(ctx context.Context) (Table, error) {
			movers, err := src.SlowMovers(ctx)
			if err != nil {
				return Table{}, err
			}
			return slowMoverTable(movers), nil
		}),
		NewJob(domain.ReportHealth, func(ctx context.Context) (Table, error) {
			metrics, err := src.Health(ctx)
			if err != nil {
				return Table{}, err
			}
			return healthTable(metrics), nil
		}),
		NewJob(domain.ReportForecast, func(ctx context.Context) (Table, error) {
			points, err := src.Forecast(ctx, "", forecastDays)
			if err != nil {
				return Table{}, err
			}
			return forecastTable(points), nil
		}),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func velocityTable(profiles []domain.VelocityProfile) Table {
	t := Table{Header: []string{
		"product_id", "product_name", "category", "supplier", "total_sold", "avg_daily_sold",
		"std_daily_sold", "total_revenue", "lead_time_days", "safety_stock", "reorder_point",
		"optimal_stock", "velocity_category",
	}}
	for _, p := range profiles {
		t.Rows = append(t.Rows, []string{
			p.ProductID, p.ProductName, p.Category, p.Supplier,
			formatFloat(p.TotalSold), formatFloat(p.AvgDailySold), formatFloat(p.StdDailySold),
			formatFloat(p.TotalRevenue), strconv.Itoa(p.LeadTimeDays), formatFloat(p.SafetyStock),
			formatFloat(p.ReorderPoint), formatFloat(p.OptimalStock), string(p.VelocityCategory),
		})
	}
	return t
}

func purchaseOrderTable(orders []domain.PurchaseOrder) Table {
	t := Table{Header: []string{
		"product_id", "product_name", "supplier", "current_stock", "reorder_point",
		"order_quantity", "priority", "estimated_cost", "lead_time_days",
	}}
	for _, o := range orders {
		t.Rows = append(t.Rows, []string{
			o.ProductID, o.ProductName, o.Supplier, strconv.Itoa(o.CurrentStock),
			strconv.Itoa(o.ReorderPoint), strconv.Itoa(o.OrderQuantity), string(o.Priority),
			formatFloat(o.EstimatedCost), strconv.Itoa(o.LeadTimeDays),
		})
	}
	return t
}

func slowMoverTable(movers []domain.SlowMover) Table {
	t := Table{Header: []string{
		"product_id", "product_name", "category", "current_stock", "avg_daily_sold",
		"days_of_supply", "velocity_category", "promo_recommendation", "potential_loss",
	}}
	for _, m := range movers {
		t.Rows = append(t.Rows, []string{
			m.ProductID, m.ProductName, m.Category, strconv.Itoa(m.CurrentStock),
			formatFloat(m.AvgDailySold), strconv.Itoa(m.DaysOfSupply), string(m.VelocityCategory),
			string(m.PromoRecommendation), formatFloat(m.PotentialLoss),
		})
	}
	return t
}

func healthTable(m domain.HealthMetrics) Table {
	return Table{
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"total_products", strconv.Itoa(m.TotalProducts)},
			{"overstock_count", strconv.Itoa(m.OverstockCount)},
			{"understock_count", strconv.Itoa(m.UnderstockCount)},
			{"optimal_count", strconv.Itoa(m.OptimalCount)},
			{"total_inventory_value", formatFloat(m.TotalInventoryValue)},
			{"overstock_value", formatFloat(m.OverstockValue)},
			{"service_level", formatFloat(m.ServiceLevel)},
			{"health_score", formatFloat(m.HealthScore)},
		},
	}
}

func forecastTable(points []domain.ForecastPoint) Table {
	t := Table{Header: []string{"date", "predicted_demand", "confidence"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{p.Date, strconv.Itoa(p.PredictedDemand), string(p.Confidence)})
	}
	return t
}
