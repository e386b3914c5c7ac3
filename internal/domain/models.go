// Package domain holds the core inventory types and the stock rules that
// the services and handlers share.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a tracked inventory line. Timestamps are sqlite TEXT
// (CURRENT_TIMESTAMP) passed through for display.
type Product struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	SKU          string          `db:"sku"`
	Quantity     int             `db:"quantity"`
	Price        decimal.Decimal `db:"price"`
	ReorderLevel int             `db:"reorder_level"`
	CreatedAt    string          `db:"created_at"`
	UpdatedAt    string          `db:"updated_at"`
}

// Value is the stock value of the line: price times units on hand.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Status classifies the line against its reorder level.
func (p Product) Status() StockStatus {
	return Classify(p.Quantity, p.ReorderLevel)
}

// ProductDraft carries validated form input for a product create or edit.
type ProductDraft struct {
	Name         string
	SKU          string
	Quantity     int
	Price        decimal.Decimal
	ReorderLevel int
}

// Movement reasons, one per stock-changing operation. The rows themselves
// live in the repos layer, joined to their product for display.
const (
	ReasonRestock = "RESTOCK"
	ReasonSale    = "SALE"
	ReasonAdjust  = "ADJUST"
)

// ReportSnapshot is the frozen view of the inventory handed to exporters,
// so the PDF and the spreadsheet always describe the same instant.
type ReportSnapshot struct {
	Products    []Product
	LowStock    []Product
	TotalValue  decimal.Decimal
	GeneratedAt time.Time
}
