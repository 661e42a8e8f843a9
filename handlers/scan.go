package handlers

import (
	"net/http"

	"inventory-svc/catalog"
	"inventory-svc/database"
	"inventory-svc/middleware"
	"inventory-svc/scan"
	"inventory-svc/stock"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Barcodes shorter than this are rejected before lookup, matching the
// manual-entry rule on the scan screen.
const minBarcodeLength = 8

// scanResponse wraps the resolution outcome; on a hit it carries the
// derived stock facts under the scan threshold policy.
type scanResponse struct {
	scan.Outcome
	TotalStock *int          `json:"totalStock,omitempty"`
	Status     *stock.Status `json:"status,omitempty"`
}

// Scan resolves a scanned or typed barcode to an existing product or a
// pre-filled creation outcome.
func (h *ProductHandler) Scan(c *gin.Context) {
	ctx, span := otel.Tracer("inventory-service").Start(c.Request.Context(), "Scan")
	defer span.End()

	barcode := c.Param("barcode")
	span.SetAttributes(attribute.String("scan.barcode", barcode))

	if len(barcode) < minBarcodeLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Barcode must contain at least 8 characters"})
		return
	}

	products, err := database.FetchProducts(ctx, h.db)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	session, _ := middleware.GetSession(c)
	if !session.Admin {
		products = catalog.ScopeToWarehouseman(products, session.WarehousemanID)
	}

	outcome := scan.Resolve(products, barcode)
	middleware.RecordScanLookup(string(outcome.Kind))
	span.SetAttributes(attribute.String("scan.outcome", string(outcome.Kind)))

	resp := scanResponse{Outcome: outcome}
	if outcome.Kind == scan.OutcomeExisting {
		total := stock.TotalStock(outcome.Product.Stocks)
		status := stock.ScanPolicy.Classify(total)
		resp.TotalStock = &total
		resp.Status = &status
	}

	h.logger.Info("Barcode resolved",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.String("barcode", barcode),
		zap.String("outcome", string(outcome.Kind)),
	)
	c.JSON(http.StatusOK, resp)
}
