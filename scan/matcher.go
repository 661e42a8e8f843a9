// Package scan resolves barcodes against the catalog and validates
// product and stock mutations before they are persisted.
package scan

import "inventory-svc/models"

type OutcomeKind string

const (
	// OutcomeExisting means the barcode matched a catalog product and the
	// client should open the stock-update flow.
	OutcomeExisting OutcomeKind = "existing"
	// OutcomeCreateNew means no product carries the barcode; the creation
	// form is pre-filled with it.
	OutcomeCreateNew OutcomeKind = "create_new"
)

// Outcome is the result of resolving a scanned or manually entered
// barcode. Product is set only for OutcomeExisting; Barcode is always the
// scanned value.
type Outcome struct {
	Kind    OutcomeKind     `json:"outcome"`
	Product *models.Product `json:"product,omitempty"`
	Barcode string          `json:"barcode"`
}

// LookupByBarcode finds the product with exactly the given barcode.
// Barcodes are compared verbatim; leading zeros and whitespace are
// significant. The catalog is never modified.
func LookupByBarcode(catalog []models.Product, barcode string) (*models.Product, bool) {
	for i := range catalog {
		if catalog[i].Barcode == barcode {
			return &catalog[i], true
		}
	}
	return nil, false
}

// Resolve decides whether a barcode maps to an existing product or routes
// to the creation flow. A miss is a valid outcome, not an error.
func Resolve(catalog []models.Product, barcode string) Outcome {
	if p, ok := LookupByBarcode(catalog, barcode); ok {
		return Outcome{Kind: OutcomeExisting, Product: p, Barcode: barcode}
	}
	return Outcome{Kind: OutcomeCreateNew, Barcode: barcode}
}
