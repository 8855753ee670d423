package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// InventoryReports is the read side of the inventory service.
type InventoryReports interface {
	Forecast(ctx context.Context, productID string, days int) ([]domain.ForecastPoint, error)
	VelocityProfiles(ctx context.Context) ([]domain.VelocityProfile, error)
	PurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error)
	SlowMovers(ctx context.Context) ([]domain.SlowMover, error)
	Health(ctx context.Context) (domain.HealthMetrics, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	InvalidateCache(ctx context.Context) (int, error)
}

type InventoryHandler struct {
	service InventoryReports
}

func NewInventoryHandler(service InventoryReports) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type forecastQuery struct {
	ProductID string `form:"product_id"`
	Days      int    `form:"days" binding:"omitempty,min=1,max=365"`
}

func (h *InventoryHandler) GetForecast(c *gin.Context) {
	var q forecastQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, "invalid forecast query", err)
		return
	}

	points, err := h.service.Forecast(c.Request.Context(), strings.TrimSpace(q.ProductID), q.Days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":  q.ProductID,
		"predictions": points,
	})
}

// GetVelocity lists velocity profiles, optionally filtered by ?category=.
func (h *InventoryHandler) GetVelocity(c *gin.Context) {
	var (
		category domain.VelocityCategory
		filtered bool
	)
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		parsed, ok := domain.ParseVelocityCategory(raw)
		if !ok {
			respondBadRequest(c, "unknown velocity category: "+raw, nil)
			return
		}
		category, filtered = parsed, true
	}

	profiles, err := h.service.VelocityProfiles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if filtered {
		kept := make([]domain.VelocityProfile, 0, len(profiles))
		for _, p := range profiles {
			if p.VelocityCategory == category {
				kept = append(kept, p)
			}
		}
		profiles = kept
	}

	c.JSON(http.StatusOK, gin.H{
		"items": profiles,
		"total": len(profiles),
	})
}

func (h *InventoryHandler) GetPurchaseOrders(c *gin.Context) {
	orders, err := h.service.PurchaseOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	totalCost := decimal.Zero
	for _, o := range orders {
		totalCost = totalCost.Add(decimal.NewFromFloat(o.EstimatedCost))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      orders,
		"total":      len(orders),
		"total_cost": totalCost.Round(2).InexactFloat64(),
	})
}

func (h *InventoryHandler) GetSlowMovers(c *gin.Context) {
	movers, err := h.service.SlowMovers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	potentialLoss := decimal.Zero
	for _, m := range movers {
		potentialLoss = potentialLoss.Add(decimal.NewFromFloat(m.PotentialLoss))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":          movers,
		"total":          len(movers),
		"potential_loss": potentialLoss.Round(2).InexactFloat64(),
	})
}

func (h *InventoryHandler) GetHealth(c *gin.Context) {
	metrics, err := h.service.Health(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *InventoryHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *InventoryHandler) InvalidateCache(c *gin.Context) {
	removed, err := h.service.InvalidateCache(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invalidated": removed})
}
