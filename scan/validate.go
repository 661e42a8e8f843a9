package scan

import (
	"errors"

	"inventory-svc/models"
)

var (
	ErrLocationNotFound = errors.New("stock location not found")
	ErrInvalidQuantity  = errors.New("quantity must be a non-negative integer")
)

// Field names as they appear on the creation form.
const (
	FieldName     = "name"
	FieldBarcode  = "barcode"
	FieldPrice    = "price"
	FieldType     = "type"
	FieldSupplier = "supplier"
)

// RequiredFields is the set of fields a creation payload must carry.
// The two variants ship as configuration; neither is hardcoded into the
// validation itself.
type RequiredFields []string

var (
	// MinimalRequired matches the standard creation form.
	MinimalRequired = RequiredFields{FieldName, FieldBarcode, FieldPrice}
	// ExtendedRequired matches the admin creation form.
	ExtendedRequired = RequiredFields{FieldName, FieldBarcode, FieldPrice, FieldType, FieldSupplier}
)

// RequiredFieldsByName resolves a configured set name. Unknown names fall
// back to the minimal set.
func RequiredFieldsByName(name string) RequiredFields {
	if name == "extended" {
		return ExtendedRequired
	}
	return MinimalRequired
}

// ValidationResult lists every violation at once so a client can render
// all inline errors together.
type ValidationResult struct {
	MissingFields []string `json:"missing_fields,omitempty"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
}

func (r ValidationResult) OK() bool {
	return len(r.MissingFields) == 0 && len(r.InvalidFields) == 0
}

// ValidateNewProduct checks a creation payload against the required field
// set and the price constraints. It never returns on the first violation.
func ValidateNewProduct(req models.CreateProductRequest, required RequiredFields) ValidationResult {
	var result ValidationResult

	present := map[string]bool{
		FieldName:     req.Name != "",
		FieldBarcode:  req.Barcode != "",
		FieldPrice:    req.Price != nil,
		FieldType:     req.Type != "",
		FieldSupplier: req.Supplier != "",
	}
	for _, field := range required {
		if !present[field] {
			result.MissingFields = append(result.MissingFields, field)
		}
	}

	if req.Price != nil && *req.Price < 0 {
		result.InvalidFields = append(result.InvalidFields, FieldPrice)
	}
	if req.Solde != nil && (*req.Solde < 0 || (req.Price != nil && *req.Solde > *req.Price)) {
		result.InvalidFields = append(result.InvalidFields, "solde")
	}
	for _, s := range req.Stocks {
		if s.Quantity < 0 {
			result.InvalidFields = append(result.InvalidFields, "stocks")
			break
		}
	}

	return result
}

// ValidateStockUpdate checks that the referenced location exists and the
// quantity is usable, without touching the list.
func ValidateStockUpdate(stocks []models.StockLocation, locationID, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	for _, s := range stocks {
		if s.ID == locationID {
			return nil
		}
	}
	return ErrLocationNotFound
}

// ApplyStockUpdate returns a fresh stock list with only the matched
// location's quantity replaced. Length, ids, names and localisations are
// preserved; the input list is left untouched.
func ApplyStockUpdate(stocks []models.StockLocation, locationID, quantity int) ([]models.StockLocation, error) {
	if err := ValidateStockUpdate(stocks, locationID, quantity); err != nil {
		return nil, err
	}

	updated := make([]models.StockLocation, len(stocks))
	copy(updated, stocks)
	for i := range updated {
		if updated[i].ID == locationID {
			updated[i].Quantity = quantity
		}
	}
	return updated, nil
}
