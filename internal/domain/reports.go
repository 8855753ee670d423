package domain

// Report names. They key cached results and name exported files.
const (
	ReportVelocity       = "velocity"
	ReportPurchaseOrders = "purchase_orders"
	ReportSlowMovers     = "slow_movers"
	ReportHealth         = "health"
	ReportForecast       = "forecast"
)
