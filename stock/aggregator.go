// Package stock derives quantities and status tiers from a product's
// per-location stock records.
package stock

import "inventory-svc/models"

// TotalStock sums the quantities across all locations. An empty or nil
// list is 0.
func TotalStock(stocks []models.StockLocation) int {
	total := 0
	for _, s := range stocks {
		total += s.Quantity
	}
	return total
}

// TotalInventoryValue sums price * total stock over the catalog. Products
// without stock locations contribute nothing.
func TotalInventoryValue(products []models.Product) float64 {
	value := 0.0
	for _, p := range products {
		value += p.Price * float64(TotalStock(p.Stocks))
	}
	return value
}

// DistinctLocationCount counts unique stock location names across the
// catalog, regardless of which product holds them.
func DistinctLocationCount(products []models.Product) int {
	seen := make(map[string]struct{})
	for _, p := range products {
		for _, s := range p.Stocks {
			seen[s.Name] = struct{}{}
		}
	}
	return len(seen)
}

// CountByStatus classifies every product under the given policy and
// returns the number of products in each tier.
func CountByStatus(products []models.Product, policy Policy) map[Status]int {
	counts := make(map[Status]int)
	for _, p := range products {
		counts[policy.Classify(TotalStock(p.Stocks))]++
	}
	return counts
}
