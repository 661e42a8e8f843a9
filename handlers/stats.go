package handlers

import (
	"net/http"

	"inventory-svc/database"
	"inventory-svc/middleware"
	"inventory-svc/stock"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type statsResponse struct {
	TotalProducts int                  `json:"totalProducts"`
	TotalCities   int                  `json:"totalCities"`
	OutOfStock    int                  `json:"outOfStock"`
	TotalValue    float64              `json:"totalValue"`
	ByStatus      map[stock.Status]int `json:"byStatus"`
}

// Stats serves the dashboard overview numbers. Admin only: the figures
// cover the whole catalog, not one warehouseman's slice.
func (h *ProductHandler) Stats(c *gin.Context) {
	ctx, span := otel.Tracer("inventory-service").Start(c.Request.Context(), "Stats")
	defer span.End()

	session, _ := middleware.GetSession(c)
	if !session.Admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	products, err := database.FetchProducts(ctx, h.db)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	counts := stock.CountByStatus(products, h.policy)
	resp := statsResponse{
		TotalProducts: len(products),
		TotalCities:   stock.DistinctLocationCount(products),
		OutOfStock:    counts[stock.StatusRupture],
		TotalValue:    stock.TotalInventoryValue(products),
		ByStatus:      counts,
	}

	span.SetAttributes(attribute.Int("products.count", resp.TotalProducts))
	c.JSON(http.StatusOK, resp)
}
