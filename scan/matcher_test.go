package scan

import (
	"reflect"
	"testing"

	"inventory-svc/models"
)

func testCatalog() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Clavier Logitech", Barcode: "123", Stocks: []models.StockLocation{{ID: 1, Quantity: 5}}},
		{ID: 2, Name: "Souris HP", Barcode: "0456", Stocks: nil},
	}
}

func TestLookupByBarcode_Found(t *testing.T) {
	p, ok := LookupByBarcode(testCatalog(), "123")
	if !ok {
		t.Fatal("Expected a match for barcode 123")
	}
	if p.ID != 1 {
		t.Errorf("Expected product 1, got %d", p.ID)
	}
}

func TestLookupByBarcode_NotFound(t *testing.T) {
	if _, ok := LookupByBarcode(testCatalog(), "999"); ok {
		t.Error("Expected no match for barcode 999")
	}
}

func TestLookupByBarcode_EmptyCatalog(t *testing.T) {
	if _, ok := LookupByBarcode(nil, "123"); ok {
		t.Error("Expected no match on empty catalog")
	}
}

func TestLookupByBarcode_Verbatim(t *testing.T) {
	// Leading zeros are significant; "456" must not match "0456".
	if _, ok := LookupByBarcode(testCatalog(), "456"); ok {
		t.Error("Expected no match: barcodes compare verbatim")
	}
	if _, ok := LookupByBarcode(testCatalog(), "0456"); !ok {
		t.Error("Expected exact match on 0456")
	}
}

func TestResolve_Existing(t *testing.T) {
	outcome := Resolve(testCatalog(), "123")
	if outcome.Kind != OutcomeExisting {
		t.Fatalf("Expected existing outcome, got %s", outcome.Kind)
	}
	if outcome.Product == nil || outcome.Product.ID != 1 {
		t.Error("Expected outcome to carry the matched product")
	}
	if outcome.Barcode != "123" {
		t.Errorf("Expected barcode 123, got %s", outcome.Barcode)
	}
}

func TestResolve_CreateNew_CarriesBarcode(t *testing.T) {
	outcome := Resolve(testCatalog(), "777000111")
	if outcome.Kind != OutcomeCreateNew {
		t.Fatalf("Expected create_new outcome, got %s", outcome.Kind)
	}
	if outcome.Product != nil {
		t.Error("Expected no product on create_new outcome")
	}
	if outcome.Barcode != "777000111" {
		t.Errorf("Expected scanned barcode carried forward, got %s", outcome.Barcode)
	}
}

func TestValidateNewProduct_MissingFields(t *testing.T) {
	price := 10.0
	req := models.CreateProductRequest{Name: "", Barcode: "123", Price: &price}

	result := ValidateNewProduct(req, MinimalRequired)
	if result.OK() {
		t.Fatal("Expected validation failure")
	}
	if !reflect.DeepEqual(result.MissingFields, []string{"name"}) {
		t.Errorf("Expected missing [name], got %v", result.MissingFields)
	}

	result = ValidateNewProduct(req, ExtendedRequired)
	if !reflect.DeepEqual(result.MissingFields, []string{"name", "type", "supplier"}) {
		t.Errorf("Expected missing [name type supplier], got %v", result.MissingFields)
	}
}

func TestValidateNewProduct_AllViolationsAtOnce(t *testing.T) {
	result := ValidateNewProduct(models.CreateProductRequest{}, MinimalRequired)
	if !reflect.DeepEqual(result.MissingFields, []string{"name", "barcode", "price"}) {
		t.Errorf("Expected every missing field reported, got %v", result.MissingFields)
	}
}

func TestValidateNewProduct_InvalidPrice(t *testing.T) {
	price := -5.0
	req := models.CreateProductRequest{Name: "X", Barcode: "1", Price: &price}
	result := ValidateNewProduct(req, MinimalRequired)
	if !reflect.DeepEqual(result.InvalidFields, []string{"price"}) {
		t.Errorf("Expected invalid [price], got %v", result.InvalidFields)
	}
}

func TestValidateNewProduct_SoldeAbovePrice(t *testing.T) {
	price, solde := 100.0, 150.0
	req := models.CreateProductRequest{Name: "X", Barcode: "1", Price: &price, Solde: &solde}
	result := ValidateNewProduct(req, MinimalRequired)
	if !reflect.DeepEqual(result.InvalidFields, []string{"solde"}) {
		t.Errorf("Expected invalid [solde], got %v", result.InvalidFields)
	}
}

func TestValidateNewProduct_Valid(t *testing.T) {
	price := 49.9
	req := models.CreateProductRequest{
		Name: "Casque Gamer", Type: "Gaming", Barcode: "885911", Price: &price, Supplier: "HP",
	}
	if result := ValidateNewProduct(req, ExtendedRequired); !result.OK() {
		t.Errorf("Expected valid payload, got %+v", result)
	}
}

func TestValidateStockUpdate(t *testing.T) {
	stocks := []models.StockLocation{{ID: 1, Quantity: 5}, {ID: 2, Quantity: 3}}

	if err := ValidateStockUpdate(stocks, 2, 10); err != nil {
		t.Errorf("Expected valid update, got %v", err)
	}
	if err := ValidateStockUpdate(stocks, 9, 10); err != ErrLocationNotFound {
		t.Errorf("Expected ErrLocationNotFound, got %v", err)
	}
	if err := ValidateStockUpdate(stocks, 1, -1); err != ErrInvalidQuantity {
		t.Errorf("Expected ErrInvalidQuantity, got %v", err)
	}
}

func TestApplyStockUpdate(t *testing.T) {
	stocks := []models.StockLocation{
		{ID: 1, Name: "Gueliz B2", Quantity: 5, Localisation: models.Localisation{City: "Marrakech"}},
		{ID: 2, Name: "Lazari H2", Quantity: 3, Localisation: models.Localisation{City: "Oujda"}},
	}

	updated, err := ApplyStockUpdate(stocks, 2, 10)
	if err != nil {
		t.Fatalf("Expected successful update, got %v", err)
	}
	if len(updated) != len(stocks) {
		t.Fatalf("Expected length preserved, got %d", len(updated))
	}
	if updated[1].Quantity != 10 {
		t.Errorf("Expected matched quantity 10, got %d", updated[1].Quantity)
	}
	if !reflect.DeepEqual(updated[0], stocks[0]) {
		t.Error("Untouched location must deep-equal its input")
	}
	if updated[1].Name != "Lazari H2" || updated[1].Localisation.City != "Oujda" {
		t.Error("Matched location's non-quantity fields must not change")
	}
	if stocks[1].Quantity != 3 {
		t.Error("Input list must not be mutated")
	}
}

func TestApplyStockUpdate_Idempotent(t *testing.T) {
	stocks := []models.StockLocation{{ID: 1, Quantity: 5}, {ID: 2, Quantity: 3}}

	once, err := ApplyStockUpdate(stocks, 1, 7)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := ApplyStockUpdate(once, 1, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Error("Applying the same update twice must equal applying it once")
	}
}

func TestApplyStockUpdate_LocationNotFound(t *testing.T) {
	if _, err := ApplyStockUpdate([]models.StockLocation{{ID: 1}}, 99, 4); err != ErrLocationNotFound {
		t.Errorf("Expected ErrLocationNotFound, got %v", err)
	}
}
