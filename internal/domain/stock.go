package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// StockStatus is derived from (quantity, reorder level) on every read; it is
// never stored.
type StockStatus string

const (
	StatusGood     StockStatus = "GOOD"
	StatusMedium   StockStatus = "MEDIUM"
	StatusLowStock StockStatus = "LOW_STOCK"
)

// Label is the display form used in badges and exports.
func (s StockStatus) Label() string {
	switch s {
	case StatusLowStock:
		return "Low Stock"
	case StatusMedium:
		return "Medium"
	default:
		return "Good"
	}
}

// Class is the CSS modifier used by the templates.
func (s StockStatus) Class() string {
	switch s {
	case StatusLowStock:
		return "low"
	case StatusMedium:
		return "medium"
	default:
		return "good"
	}
}

// Classify buckets a quantity against its reorder level. First match wins:
//
//	quantity <= reorderLevel       -> LOW_STOCK
//	quantity <= reorderLevel * 1.5 -> MEDIUM
//	otherwise                      -> GOOD
//
// The medium bound is evaluated as 2*quantity <= 3*reorderLevel so halves stay
// exact. With reorderLevel == 0 only quantity == 0 is low stock and every
// positive quantity is GOOD; the MEDIUM band is empty.
func Classify(quantity, reorderLevel int) StockStatus {
	if quantity <= reorderLevel {
		return StatusLowStock
	}
	if 2*quantity <= 3*reorderLevel {
		return StatusMedium
	}
	return StatusGood
}

// Metrics are the aggregates shown on the dashboard cards and the reports page.
type Metrics struct {
	TotalCount    int
	TotalValue    decimal.Decimal
	LowStockCount int
}

// HealthPercent is the rounded share of products not currently low on stock.
// ok is false for an empty collection; there is no meaningful default and
// callers must guard.
func (m Metrics) HealthPercent() (int, bool) {
	if m.TotalCount == 0 {
		return 0, false
	}
	pct := math.Round(100 * float64(m.TotalCount-m.LowStockCount) / float64(m.TotalCount))
	return int(pct), true
}

// Aggregate computes Metrics over a product snapshot. Pure: the slice is not
// mutated and ordering never changes the result. Values accumulate in
// decimal.Decimal so currency sums carry no float drift.
func Aggregate(products []Product) Metrics {
	m := Metrics{TotalCount: len(products), TotalValue: decimal.Zero}
	for _, p := range products {
		m.TotalValue = m.TotalValue.Add(p.Value())
		if Classify(p.Quantity, p.ReorderLevel) == StatusLowStock {
			m.LowStockCount++
		}
	}
	return m
}

// ProposeRestock is the replenishment delta suggested for a product: twice the
// reorder level, floored at 10 units. The caller passes the delta on, never an
// absolute quantity.
func ProposeRestock(reorderLevel int) int {
	if d := reorderLevel * 2; d > 10 {
		return d
	}
	return 10
}
