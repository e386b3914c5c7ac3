package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"stockroom/internal/alerts"
	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE products(
	  id TEXT PRIMARY KEY,
	  name TEXT NOT NULL,
	  sku TEXT NOT NULL,
	  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	  price TEXT NOT NULL,
	  reorder_level INTEGER NOT NULL DEFAULT 0,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  updated_at TEXT
	);
	CREATE UNIQUE INDEX idx_products_sku_nocase ON products(LOWER(sku));
	CREATE TABLE stock_movements(
	  id TEXT PRIMARY KEY,
	  product_id TEXT NOT NULL,
	  delta INTEGER NOT NULL,
	  reason TEXT NOT NULL,
	  quantity_after INTEGER NOT NULL,
	  actor_id TEXT,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	INSERT INTO products(id,name,sku,quantity,price,reorder_level) VALUES
	  ('p-mouse','Wireless Mouse','MSE-WL-01',16,'549.00',10),
	  ('p-pen','Gel Pen Blue','PEN-GL-BL',1,'12.50',0);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

type fakeNotifier struct{ ch chan alerts.Alert }

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan alerts.Alert, 8)}
}

func (f *fakeNotifier) LowStock(_ context.Context, a alerts.Alert) error {
	f.ch <- a
	return nil
}

func waitAlert(t *testing.T, f *fakeNotifier) alerts.Alert {
	t.Helper()
	select {
	case a := <-f.ch:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("no alert published")
		return alerts.Alert{}
	}
}

func wantNoAlert(t *testing.T, f *fakeNotifier) {
	t.Helper()
	select {
	case a := <-f.ch:
		t.Fatalf("unexpected alert for %s", a.SKU)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStockService_SellToZeroThenRefuse(t *testing.T) {
	svc := services.NewStockService(repos.NewProductRepo(memdb(t)), newFakeNotifier())

	p, err := svc.Sell("p-pen", 1, "u-asha")
	if err != nil {
		t.Fatal(err)
	}
	if p.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0", p.Quantity)
	}

	if _, err := svc.Sell("p-pen", 1, "u-asha"); !errors.Is(err, repos.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestStockService_SellAlertsOnCrossingIn(t *testing.T) {
	f := newFakeNotifier()
	svc := services.NewStockService(repos.NewProductRepo(memdb(t)), f)

	// 16 -> 10 crosses onto the reorder level
	p, err := svc.Sell("p-mouse", 6, "u-asha")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status() != domain.StatusLowStock {
		t.Fatalf("status = %s, want LOW_STOCK", p.Status())
	}
	a := waitAlert(t, f)
	if a.SKU != "MSE-WL-01" || a.Quantity != 10 || a.SuggestedQty != 20 {
		t.Fatalf("alert = %+v", a)
	}

	// Already low: a further sale stays quiet
	if _, err := svc.Sell("p-mouse", 1, "u-asha"); err != nil {
		t.Fatal(err)
	}
	wantNoAlert(t, f)
}

func TestStockService_RestockNeverAlerts(t *testing.T) {
	f := newFakeNotifier()
	svc := services.NewStockService(repos.NewProductRepo(memdb(t)), f)

	p, err := svc.Restock("p-pen", 20, "u-asha")
	if err != nil {
		t.Fatal(err)
	}
	if p.Quantity != 21 {
		t.Fatalf("quantity = %d, want 21", p.Quantity)
	}
	wantNoAlert(t, f)

	if _, err := svc.Restock("p-pen", 0, "u-asha"); !errors.Is(err, services.ErrBadQuantity) {
		t.Fatalf("err = %v, want ErrBadQuantity", err)
	}
}

func TestStockService_CreateOpeningBalance(t *testing.T) {
	db := memdb(t)
	f := newFakeNotifier()
	svc := services.NewStockService(repos.NewProductRepo(db), f)

	draft := domain.ProductDraft{
		Name: "A5 Notebook", SKU: "NTB-A5-100", Quantity: 75,
		Price: decimal.RequireFromString("49.00"), ReorderLevel: 20,
	}
	p, err := svc.Create(draft, "u-admin")
	if err != nil {
		t.Fatal(err)
	}
	if p.Quantity != 75 || p.Status() != domain.StatusGood {
		t.Fatalf("created product: %+v", p)
	}

	moves, err := repos.NewMovementRepo(db).ByProduct(p.ID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 1 || moves[0].Reason != domain.ReasonAdjust || moves[0].QuantityAfter != 75 {
		t.Fatalf("opening movement: %+v", moves)
	}
	wantNoAlert(t, f)
}

func TestStockService_CreateBornLowAlerts(t *testing.T) {
	f := newFakeNotifier()
	svc := services.NewStockService(repos.NewProductRepo(memdb(t)), f)

	draft := domain.ProductDraft{
		Name: "Stapler No.10", SKU: "STP-10", Quantity: 2,
		Price: decimal.RequireFromString("89.50"), ReorderLevel: 15,
	}
	if _, err := svc.Create(draft, "u-admin"); err != nil {
		t.Fatal(err)
	}
	if a := waitAlert(t, f); a.SKU != "STP-10" {
		t.Fatalf("alert = %+v", a)
	}
}

func TestStockService_CreateDuplicateSKU(t *testing.T) {
	svc := services.NewStockService(repos.NewProductRepo(memdb(t)), newFakeNotifier())

	draft := domain.ProductDraft{
		Name: "Another Mouse", SKU: "mse-wl-01", Quantity: 4,
		Price: decimal.RequireFromString("99.00"), ReorderLevel: 2,
	}
	if _, err := svc.Create(draft, "u-admin"); !errors.Is(err, repos.ErrDuplicateSKU) {
		t.Fatalf("err = %v, want ErrDuplicateSKU", err)
	}
}

func TestStockService_UpdateReorderRaiseAlerts(t *testing.T) {
	f := newFakeNotifier()
	svc := services.NewStockService(repos.NewProductRepo(memdb(t)), f)

	// 16 on hand, level 10: GOOD. Raising the level to 16 makes it low
	// with no stock movement at all.
	draft := domain.ProductDraft{
		Name: "Wireless Mouse", SKU: "MSE-WL-01",
		Price: decimal.RequireFromString("549.00"), ReorderLevel: 16,
	}
	p, err := svc.Update("p-mouse", draft)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status() != domain.StatusLowStock || p.Quantity != 16 {
		t.Fatalf("after update: %+v", p)
	}
	if a := waitAlert(t, f); a.ReorderLevel != 16 {
		t.Fatalf("alert = %+v", a)
	}
}

func TestStockService_UpdateRejectsTakenSKU(t *testing.T) {
	svc := services.NewStockService(repos.NewProductRepo(memdb(t)), newFakeNotifier())

	draft := domain.ProductDraft{
		Name: "Gel Pen Blue", SKU: "MSE-WL-01",
		Price: decimal.RequireFromString("12.50"), ReorderLevel: 0,
	}
	if _, err := svc.Update("p-pen", draft); !errors.Is(err, repos.ErrDuplicateSKU) {
		t.Fatalf("err = %v, want ErrDuplicateSKU", err)
	}
}
