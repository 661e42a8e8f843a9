package stock

// Status is a stock level tier. The mapping to colors and icons belongs
// to clients.
type Status string

const (
	StatusRupture Status = "rupture"
	StatusLow     Status = "low"
	StatusMedium  Status = "medium"
	StatusInStock Status = "in_stock"
)

// Policy is a named threshold scheme mapping a total quantity to a Status.
// Tiers partition the non-negative integers: rupture (when enabled) at 0,
// then low through LowMax, then medium through MediumMax (when the tier is
// enabled), then in stock.
type Policy struct {
	Name          string
	RuptureAtZero bool
	LowMax        int // highest total still classified low
	MediumMax     int // highest total still classified medium; <= LowMax disables the tier
}

var (
	// DashboardPolicy matches the dashboard and product-list screens:
	// 0 is rupture, anything below 10 is low.
	DashboardPolicy = Policy{Name: "dashboard", RuptureAtZero: true, LowMax: 9}

	// ScanPolicy matches the scan flow: totals through 10 are low,
	// through 30 medium, above that in stock. Zero is low, not rupture.
	ScanPolicy = Policy{Name: "scan", LowMax: 10, MediumMax: 30}
)

// PolicyByName resolves a configured policy name. Unknown names fall back
// to the dashboard policy.
func PolicyByName(name string) Policy {
	switch name {
	case ScanPolicy.Name:
		return ScanPolicy
	default:
		return DashboardPolicy
	}
}

// Classify maps a total quantity to its tier. Negative totals never occur
// (quantities are validated non-negative) but classify as the lowest tier.
func (p Policy) Classify(total int) Status {
	if p.RuptureAtZero && total <= 0 {
		return StatusRupture
	}
	if total <= p.LowMax {
		return StatusLow
	}
	if p.MediumMax > p.LowMax && total <= p.MediumMax {
		return StatusMedium
	}
	return StatusInStock
}
