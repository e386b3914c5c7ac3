// Package alerts fans low-stock transitions out to whoever is listening.
package alerts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	applog "stockroom/internal/log"
)

// Alert describes a product that just crossed to LOW_STOCK.
type Alert struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	Price        decimal.Decimal `json:"price"`
	SuggestedQty int             `json:"suggested_qty"`
	At           time.Time       `json:"at"`
}

// Notifier delivers low-stock alerts. Implementations must be safe for
// concurrent use; delivery failures must not block the stock operation.
type Notifier interface {
	LowStock(ctx context.Context, a Alert) error
}

// LogNotifier writes alerts to the application log. It is the fallback
// when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) LowStock(_ context.Context, a Alert) error {
	applog.Info(nil, "alert.low_stock", map[string]any{
		"product_id": a.ProductID,
		"sku":        a.SKU,
		"quantity":   a.Quantity,
		"reorder":    a.ReorderLevel,
		"suggested":  a.SuggestedQty,
	})
	return nil
}
