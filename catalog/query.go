// Package catalog computes the visible product subset and ordering for a
// given set of list controls.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"inventory-svc/models"
	"inventory-svc/stock"
)

// AllCategories is the sentinel that disables category filtering.
const AllCategories = "Tous"

type SortKey string

const (
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
	SortByStock SortKey = "stock"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// FilterByCategory keeps products whose type matches exactly. The
// AllCategories sentinel passes everything through unchanged.
func FilterByCategory(products []models.Product, category string) []models.Product {
	if category == "" || category == AllCategories {
		return products
	}
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Type == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterBySearch keeps products whose name, type, stringified price or
// supplier contains the query, case-insensitively. An empty query matches
// everything.
func FilterBySearch(products []models.Product, query string) []models.Product {
	if query == "" {
		return products
	}
	q := strings.ToLower(query)
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matchesSearch(p, q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matchesSearch(p models.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Type), query) ||
		strings.Contains(strconv.FormatFloat(p.Price, 'f', -1, 64), query) ||
		strings.Contains(strings.ToLower(p.Supplier), query)
}

// SortProducts returns a sorted copy. The sort is stable: products with
// equal keys keep their relative input order. Direction toggling lives in
// the caller; this is a pure (list, key, direction) transformation.
func SortProducts(products []models.Product, key SortKey, direction Direction) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)

	// Product names are French labels; collate gives the ordering a
	// byte-wise compare would get wrong on accents. Collators are not
	// safe for concurrent use, so each sort builds its own.
	collator := collate.New(language.French)
	compare := func(a, b models.Product) int {
		switch key {
		case SortByPrice:
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return 0
		case SortByStock:
			return stock.TotalStock(a.Stocks) - stock.TotalStock(b.Stocks)
		default:
			return collator.CompareString(a.Name, b.Name)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if direction == Descending {
			return compare(sorted[i], sorted[j]) > 0
		}
		return compare(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// Query applies the full pipeline in its fixed order: category filter,
// then search filter, then sort.
func Query(products []models.Product, category, search string, key SortKey, direction Direction) []models.Product {
	filtered := FilterByCategory(products, category)
	filtered = FilterBySearch(filtered, search)
	return SortProducts(filtered, key, direction)
}

// ScopeToWarehouseman keeps products whose first edit entry belongs to the
// given warehouseman. This is the visibility rule the mobile client
// applied with its stored secret key, made an explicit parameter.
func ScopeToWarehouseman(products []models.Product, warehousemanID string) []models.Product {
	scoped := make([]models.Product, 0, len(products))
	for _, p := range products {
		if len(p.EditedBy) > 0 && p.EditedBy[0].WarehousemanID == warehousemanID {
			scoped = append(scoped, p)
		}
	}
	return scoped
}
