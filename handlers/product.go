package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"inventory-svc/cache"
	"inventory-svc/catalog"
	"inventory-svc/circuitbreaker"
	"inventory-svc/database"
	"inventory-svc/kafka"
	"inventory-svc/middleware"
	"inventory-svc/models"
	"inventory-svc/scan"
	"inventory-svc/stock"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ProductHandler struct {
	db             *sql.DB
	redisClient    *redis.Client
	producer       sarama.SyncProducer
	logger         *zap.Logger
	circuitBreaker *circuitbreaker.CircuitBreaker
	policy         stock.Policy
	requiredSet    string // "", "minimal" or "extended"; "" follows the session's admin flag
}

func NewProductHandler(db *sql.DB, redisClient *redis.Client, producer sarama.SyncProducer, logger *zap.Logger, policy stock.Policy, requiredSet string) *ProductHandler {
	return &ProductHandler{
		db:             db,
		redisClient:    redisClient,
		producer:       producer,
		logger:         logger,
		circuitBreaker: circuitbreaker.NewCircuitBreaker(5, 30*time.Second),
		policy:         policy,
		requiredSet:    requiredSet,
	}
}

// productView is a product enriched with the derived stock facts clients
// render next to it.
type productView struct {
	models.Product
	TotalStock int          `json:"totalStock"`
	Status     stock.Status `json:"status"`
}

func (h *ProductHandler) view(p models.Product) productView {
	total := stock.TotalStock(p.Stocks)
	return productView{Product: p, TotalStock: total, Status: h.policy.Classify(total)}
}

// GetProducts lists the session's catalog, filtered and sorted
// server-side with the same semantics the list screens used.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx, span := otel.Tracer("inventory-service").Start(c.Request.Context(), "GetProducts")
	defer span.End()

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

	category := c.DefaultQuery("category", catalog.AllCategories)
	search := c.Query("q")
	sortKey := catalog.SortKey(c.DefaultQuery("sort", string(catalog.SortByName)))
	direction := catalog.Direction(c.DefaultQuery("order", string(catalog.Ascending)))

	products = catalog.Query(products, category, search, sortKey, direction)

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, h.view(p))
	}

	span.SetAttributes(attribute.Int("products.count", len(views)))
	c.JSON(http.StatusOK, views)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := otel.Tracer("inventory-service").Start(c.Request.Context(), "GetProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	// Try to get from cache first
	if h.redisClient != nil {
		cachedData, err := cache.GetProduct(ctx, h.redisClient, id)
		if err == nil {
			var product models.Product
			if err := json.Unmarshal(cachedData, &product); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				c.JSON(http.StatusOK, h.view(product))
				return
			}
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
	}

	var product models.Product
	dbErr := h.circuitBreaker.Execute(ctx, func() error {
		var err error
		product, err = database.FetchProduct(ctx, h.db, id)
		return err
	})

	if dbErr != nil {
		if dbErr == circuitbreaker.ErrCircuitOpen {
			span.SetAttributes(attribute.String("circuit.state", "open"))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return
		}
		if dbErr == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		span.RecordError(dbErr)
		h.logger.Error("Failed to fetch product", zap.Error(dbErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if h.redisClient != nil {
		cache.SetProduct(ctx, h.redisClient, id, product, cache.ProductTTL)
	}

	c.JSON(http.StatusOK, h.view(product))
}

func (h *ProductHandler) requiredFields(session models.Session) scan.RequiredFields {
	if h.requiredSet != "" {
		return scan.RequiredFieldsByName(h.requiredSet)
	}
	if session.Admin {
		return scan.ExtendedRequired
	}
	return scan.MinimalRequired
}

// CreateProduct validates the creation payload and inserts the product,
// its stock locations and the initial edit entry.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("inventory-service").Start(c.Request.Context(), "CreateProduct")
	defer span.End()

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, _ := middleware.GetSession(c)
	if result := scan.ValidateNewProduct(req, h.requiredFields(session)); !result.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": result})
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to begin transaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer tx.Rollback()

	var product models.Product
	var solde sql.NullFloat64
	if req.Solde != nil {
		solde = sql.NullFloat64{Float64: *req.Solde, Valid: true}
	}
	err = tx.QueryRowContext(ctx,
		"INSERT INTO products (name, type, barcode, price, solde, supplier, description, image) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at",
		req.Name, req.Type, req.Barcode, *req.Price, solde, req.Supplier, req.Description, req.Image,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	product.Name = req.Name
	product.Type = req.Type
	product.Barcode = req.Barcode
	product.Price = *req.Price
	product.Solde = req.Solde
	product.Supplier = req.Supplier
	product.Description = req.Description
	product.Image = req.Image
	product.Stocks = []models.StockLocation{}

	for _, s := range req.Stocks {
		var location models.StockLocation
		err = tx.QueryRowContext(ctx,
			"INSERT INTO stocks (product_id, name, city, latitude, longitude, quantity) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
			product.ID, s.Name, s.Localisation.City, s.Localisation.Latitude, s.Localisation.Longitude, s.Quantity,
		).Scan(&location.ID)
		if err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to create stock location", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		location.Name = s.Name
		location.Quantity = s.Quantity
		location.Localisation = s.Localisation
		product.Stocks = append(product.Stocks, location)
	}

	var editedAt time.Time
	err = tx.QueryRowContext(ctx,
		"INSERT INTO product_edits (product_id, warehouseman_id) VALUES ($1, $2) RETURNING edited_at",
		product.ID, session.WarehousemanID,
	).Scan(&editedAt)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to record edit entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	product.EditedBy = []models.EditEntry{{WarehousemanID: session.WarehousemanID, At: editedAt}}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to commit product creation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if h.producer != nil {
		event := models.StockEvent{
			EventType:      models.EventProductCreated,
			ProductID:      product.ID,
			Barcode:        product.Barcode,
			TotalStock:     stock.TotalStock(product.Stocks),
			WarehousemanID: session.WarehousemanID,
			OccurredAt:     time.Now().UTC(),
		}
		if err := kafka.PublishStockEvent(ctx, h.producer, event, h.logger); err != nil {
			h.logger.Error("Failed to publish product event", zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int("product.id", product.ID))
	h.logger.Info("Product created", zap.Int("product_id", product.ID), zap.String("barcode", product.Barcode))
	c.JSON(http.StatusCreated, h.view(product))
}

// UpdateProduct partially replaces product fields and appends an edit
// entry. Stock quantities go through UpdateStock, not here.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("inventory-service").Start(c.Request.Context(), "UpdateProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Price != nil && *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": scan.ValidationResult{InvalidFields: []string{scan.FieldPrice}}})
		return
	}

	// Build update query dynamically
	query := "UPDATE products SET updated_at = CURRENT_TIMESTAMP"
	args := []interface{}{}
	argPos := 1

	if req.Name != "" {
		query += ", name = $" + strconv.Itoa(argPos)
		args = append(args, req.Name)
		argPos++
	}
	if req.Type != "" {
		query += ", type = $" + strconv.Itoa(argPos)
		args = append(args, req.Type)
		argPos++
	}
	if req.Supplier != "" {
		query += ", supplier = $" + strconv.Itoa(argPos)
		args = append(args, req.Supplier)
		argPos++
	}
	if req.Description != "" {
		query += ", description = $" + strconv.Itoa(argPos)
		args = append(args, req.Description)
		argPos++
	}
	if req.Image != "" {
		query += ", image = $" + strconv.Itoa(argPos)
		args = append(args, req.Image)
		argPos++
	}
	if req.Price != nil {
		query += ", price = $" + strconv.Itoa(argPos)
		args = append(args, *req.Price)
		argPos++
	}
	if req.Solde != nil {
		query += ", solde = $" + strconv.Itoa(argPos)
		args = append(args, *req.Solde)
		argPos++
	}

	query += " WHERE id = $" + strconv.Itoa(argPos) + " RETURNING id"
	args = append(args, id)

	var productID int
	if err := h.db.QueryRowContext(ctx, query, args...).Scan(&productID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	session, _ := middleware.GetSession(c)
	if _, err := h.db.ExecContext(ctx,
		"INSERT INTO product_edits (product_id, warehouseman_id) VALUES ($1, $2)",
		productID, session.WarehousemanID); err != nil {
		h.logger.Error("Failed to record edit entry", zap.Error(err))
	}

	// Invalidate cache
	if h.redisClient != nil {
		cache.DeleteProduct(ctx, h.redisClient, id)
	}

	product, err := database.FetchProduct(ctx, h.db, id)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to reload product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id))
	c.JSON(http.StatusOK, h.view(product))
}

// UpdateStock replaces one location's quantity on a product.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	ctx, span := otel.Tracer("inventory-service").Start(c.Request.Context(), "UpdateStock")
	defer span.End()

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}
	locationID, err := strconv.Atoi(c.Param("stockId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock location id"})
		return
	}
	span.SetAttributes(attribute.Int("product.id", productID), attribute.Int("stock.id", locationID))

	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		middleware.RecordStockUpdate("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": scan.ErrInvalidQuantity.Error()})
		return
	}

	var barcode string
	if err := h.db.QueryRowContext(ctx, "SELECT barcode FROM products WHERE id = $1", productID).Scan(&barcode); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to fetch product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	stocks, err := database.FetchStocks(ctx, h.db, productID)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch stocks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updated, err := scan.ApplyStockUpdate(stocks, locationID, *req.Quantity)
	if err != nil {
		middleware.RecordStockUpdate("rejected")
		switch err {
		case scan.ErrLocationNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case scan.ErrInvalidQuantity:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			span.RecordError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if _, err := h.db.ExecContext(ctx,
		"UPDATE stocks SET quantity = $1 WHERE id = $2 AND product_id = $3",
		*req.Quantity, locationID, productID); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update stock", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	session, _ := middleware.GetSession(c)
	if _, err := h.db.ExecContext(ctx,
		"INSERT INTO product_edits (product_id, warehouseman_id) VALUES ($1, $2)",
		productID, session.WarehousemanID); err != nil {
		h.logger.Error("Failed to record edit entry", zap.Error(err))
	}

	// Invalidate cache
	if h.redisClient != nil {
		cache.DeleteProduct(ctx, h.redisClient, c.Param("id"))
	}

	total := stock.TotalStock(updated)
	if h.producer != nil {
		var locationName string
		for _, s := range updated {
			if s.ID == locationID {
				locationName = s.Name
			}
		}
		event := models.StockEvent{
			EventType:      models.EventStockUpdated,
			ProductID:      productID,
			Barcode:        barcode,
			LocationID:     locationID,
			LocationName:   locationName,
			Quantity:       *req.Quantity,
			TotalStock:     total,
			WarehousemanID: session.WarehousemanID,
			OccurredAt:     time.Now().UTC(),
		}
		if err := kafka.PublishStockEvent(ctx, h.producer, event, h.logger); err != nil {
			h.logger.Error("Failed to publish stock event", zap.Error(err))
		}
	}

	middleware.RecordStockUpdate("applied")
	h.logger.Info("Stock updated",
		zap.Int("product_id", productID),
		zap.Int("location_id", locationID),
		zap.Int("quantity", *req.Quantity),
		zap.Int("total_stock", total),
	)
	c.JSON(http.StatusOK, gin.H{
		"stocks":     updated,
		"totalStock": total,
		"status":     h.policy.Classify(total),
	})
}
