package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory-svc/models"
	"inventory-svc/stock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func setupProductTest(t *testing.T, session models.Session) (*ProductHandler, sqlmock.Sqlmock, *gin.Engine) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewProductHandler(db, nil, nil, logger, stock.DashboardPolicy, "")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("session", session)
		c.Next()
	})
	router.GET("/products", handler.GetProducts)
	router.GET("/products/:id", handler.GetProduct)
	router.POST("/products", handler.CreateProduct)
	router.PUT("/products/:id", handler.UpdateProduct)
	router.PATCH("/products/:id/stocks/:stockId", handler.UpdateStock)

	return handler, mock, router
}

func adminSession() models.Session {
	return models.Session{WarehousemanID: "1444", Name: "Admin", Admin: true}
}

func productColumns() []string {
	return []string{"id", "name", "type", "barcode", "price", "solde", "supplier", "description", "image", "created_at", "updated_at"}
}

func expectCatalogFetch(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT id, name, type, barcode, price, solde, supplier, description, image, created_at, updated_at FROM products ORDER BY id").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(1, "Clavier Logitech", "Informatique", "12345678", 250.0, nil, "Logitech", "", "", time.Now(), time.Now()).
			AddRow(2, "Casque Razer", "Gaming", "87654321", 800.0, 700.0, "Razer", "", "", time.Now(), time.Now()))

	mock.ExpectQuery("SELECT id, product_id, name, city, latitude, longitude, quantity FROM stocks ORDER BY product_id, id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "name", "city", "latitude", "longitude", "quantity"}).
			AddRow(1, 1, "Gueliz B2", "Marrakech", 31.63, -8.01, 5).
			AddRow(2, 2, "Lazari H2", "Oujda", 34.68, -1.91, 25))

	mock.ExpectQuery("SELECT product_id, warehouseman_id, edited_at FROM product_edits ORDER BY product_id, id").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "warehouseman_id", "edited_at"}).
			AddRow(1, "1444", time.Now()).
			AddRow(2, "1583", time.Now()))
}

func TestProductHandler_GetProducts_Success(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	expectCatalogFetch(mock)

	req := httptest.NewRequest("GET", "/products", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var views []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(views))
	}
	// Default sort is name ascending: Casque before Clavier.
	if views[0]["name"] != "Casque Razer" {
		t.Errorf("Expected Casque Razer first, got %v", views[0]["name"])
	}
	if views[0]["totalStock"].(float64) != 25 {
		t.Errorf("Expected totalStock 25, got %v", views[0]["totalStock"])
	}
	if views[1]["status"] != "low" {
		t.Errorf("Expected low status for total 5, got %v", views[1]["status"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestProductHandler_GetProducts_ScopedToWarehouseman(t *testing.T) {
	session := models.Session{WarehousemanID: "1583", Name: "Hicham", Admin: false}
	handler, mock, router := setupProductTest(t, session)
	defer handler.db.Close()

	expectCatalogFetch(mock)

	req := httptest.NewRequest("GET", "/products", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var views []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(views) != 1 || views[0]["name"] != "Casque Razer" {
		t.Errorf("Expected only the product first-edited by 1583, got %v", views)
	}
}

func TestProductHandler_GetProducts_FilterAndSort(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	expectCatalogFetch(mock)

	req := httptest.NewRequest("GET", "/products?category=Gaming&sort=price&order=desc", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	var views []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(views) != 1 || views[0]["name"] != "Casque Razer" {
		t.Errorf("Expected only the Gaming product, got %v", views)
	}
}

func TestProductHandler_GetProduct_Success(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	mock.ExpectQuery("SELECT id, name, type, barcode, price, solde, supplier, description, image, created_at, updated_at FROM products WHERE id = \\$1").
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows(productColumns()).
			AddRow(1, "Clavier Logitech", "Informatique", "12345678", 250.0, nil, "Logitech", "", "", time.Now(), time.Now()))

	mock.ExpectQuery("SELECT id, name, city, latitude, longitude, quantity FROM stocks WHERE product_id = \\$1 ORDER BY id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city", "latitude", "longitude", "quantity"}).
			AddRow(1, "Gueliz B2", "Marrakech", 31.63, -8.01, 0))

	mock.ExpectQuery("SELECT warehouseman_id, edited_at FROM product_edits WHERE product_id = \\$1 ORDER BY id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"warehouseman_id", "edited_at"}).
			AddRow("1444", time.Now()))

	req := httptest.NewRequest("GET", "/products/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var view map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if view["status"] != "rupture" {
		t.Errorf("Expected rupture status for zero total, got %v", view["status"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestProductHandler_GetProduct_NotFound(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	mock.ExpectQuery("SELECT id, name, type, barcode, price, solde, supplier, description, image, created_at, updated_at FROM products WHERE id = \\$1").
		WithArgs("999").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest("GET", "/products/999", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestProductHandler_CreateProduct_Success(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Souris HP", "Accessoires", "11223344", 150.0, sqlmock.AnyArg(), "HP", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(7, time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO stocks").
		WithArgs(7, "Gueliz B2", "Marrakech", 31.63, -8.01, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("INSERT INTO product_edits").
		WithArgs(7, "1444").
		WillReturnRows(sqlmock.NewRows([]string{"edited_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	price := 150.0
	reqBody := models.CreateProductRequest{
		Name:     "Souris HP",
		Type:     "Accessoires",
		Barcode:  "11223344",
		Price:    &price,
		Supplier: "HP",
		Stocks: []models.StockLocation{
			{Name: "Gueliz B2", Quantity: 10, Localisation: models.Localisation{City: "Marrakech", Latitude: 31.63, Longitude: -8.01}},
		},
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestProductHandler_CreateProduct_MissingFields(t *testing.T) {
	handler, _, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	// Admin session enforces the extended required set.
	price := 10.0
	reqBody := models.CreateProductRequest{Barcode: "12345678", Price: &price}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp struct {
		Details struct {
			MissingFields []string `json:"missing_fields"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Details.MissingFields) != 3 {
		t.Errorf("Expected name, type and supplier reported missing, got %v", resp.Details.MissingFields)
	}
}

func TestProductHandler_UpdateStock_Success(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	mock.ExpectQuery("SELECT barcode FROM products WHERE id = \\$1").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"barcode"}).AddRow("12345678"))

	mock.ExpectQuery("SELECT id, name, city, latitude, longitude, quantity FROM stocks WHERE product_id = \\$1 ORDER BY id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city", "latitude", "longitude", "quantity"}).
			AddRow(1, "Gueliz B2", "Marrakech", 31.63, -8.01, 5).
			AddRow(2, "Lazari H2", "Oujda", 34.68, -1.91, 3))

	mock.ExpectExec("UPDATE stocks SET quantity = \\$1 WHERE id = \\$2 AND product_id = \\$3").
		WithArgs(10, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO product_edits").
		WithArgs(1, "1444").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body, _ := json.Marshal(models.UpdateStockRequest{Quantity: intPtr(10)})
	req := httptest.NewRequest("PATCH", "/products/1/stocks/2", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		Stocks     []models.StockLocation `json:"stocks"`
		TotalStock int                    `json:"totalStock"`
		Status     string                 `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Stocks) != 2 || resp.Stocks[1].Quantity != 10 || resp.Stocks[0].Quantity != 5 {
		t.Errorf("Expected only location 2 updated, got %+v", resp.Stocks)
	}
	if resp.TotalStock != 15 {
		t.Errorf("Expected total stock 15, got %d", resp.TotalStock)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestProductHandler_UpdateStock_LocationNotFound(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	mock.ExpectQuery("SELECT barcode FROM products WHERE id = \\$1").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"barcode"}).AddRow("12345678"))

	mock.ExpectQuery("SELECT id, name, city, latitude, longitude, quantity FROM stocks WHERE product_id = \\$1 ORDER BY id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city", "latitude", "longitude", "quantity"}).
			AddRow(1, "Gueliz B2", "Marrakech", 31.63, -8.01, 5))

	body, _ := json.Marshal(models.UpdateStockRequest{Quantity: intPtr(10)})
	req := httptest.NewRequest("PATCH", "/products/1/stocks/99", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestProductHandler_UpdateStock_NegativeQuantity(t *testing.T) {
	handler, mock, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	mock.ExpectQuery("SELECT barcode FROM products WHERE id = \\$1").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"barcode"}).AddRow("12345678"))

	mock.ExpectQuery("SELECT id, name, city, latitude, longitude, quantity FROM stocks WHERE product_id = \\$1 ORDER BY id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city", "latitude", "longitude", "quantity"}).
			AddRow(1, "Gueliz B2", "Marrakech", 31.63, -8.01, 5))

	body, _ := json.Marshal(models.UpdateStockRequest{Quantity: intPtr(-4)})
	req := httptest.NewRequest("PATCH", "/products/1/stocks/1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestProductHandler_UpdateStock_MissingQuantity(t *testing.T) {
	handler, _, router := setupProductTest(t, adminSession())
	defer handler.db.Close()

	req := httptest.NewRequest("PATCH", "/products/1/stocks/1", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func intPtr(v int) *int {
	return &v
}
