package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/alerts"
	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
)

var ErrBadQuantity = errors.New("quantity must be positive")

// StockService owns product lifecycle and every quantity change. Alerts go
// out when a product crosses into LOW_STOCK, never on the way out.
type StockService struct {
	Products *repos.ProductRepo
	Notify   alerts.Notifier
}

func NewStockService(products *repos.ProductRepo, notify alerts.Notifier) *StockService {
	if notify == nil {
		notify = alerts.LogNotifier{}
	}
	return &StockService{Products: products, Notify: notify}
}

func (s *StockService) List(q string) ([]domain.Product, error) {
	if q != "" {
		return s.Products.Search(q)
	}
	return s.Products.List()
}

func (s *StockService) Get(id string) (domain.Product, error) {
	return s.Products.Get(id)
}

func (s *StockService) BySKU(sku string) (domain.Product, error) {
	return s.Products.BySKU(sku)
}

// Create registers a new product. The opening quantity is applied as an
// ADJUST movement so the audit trail starts at the true balance.
func (s *StockService) Create(d domain.ProductDraft, actorID string) (domain.Product, error) {
	if existing, err := s.Products.BySKU(d.SKU); err == nil && existing.ID != "" {
		return domain.Product{}, repos.ErrDuplicateSKU
	} else if err != nil && !errors.Is(err, repos.ErrNotFound) {
		return domain.Product{}, err
	}

	p := domain.Product{
		ID:           uuid.NewString(),
		Name:         d.Name,
		SKU:          d.SKU,
		Price:        d.Price,
		ReorderLevel: d.ReorderLevel,
	}
	if err := s.Products.Create(p); err != nil {
		return domain.Product{}, err
	}
	if d.Quantity > 0 {
		var err error
		p, err = s.Products.AdjustQuantity(p.ID, d.Quantity, domain.ReasonAdjust, actorID)
		if err != nil {
			return domain.Product{}, err
		}
	}
	if p.Status() == domain.StatusLowStock {
		s.alert(p)
	}
	return p, nil
}

// Restock adds units. Stock can only rise here, so no alert check.
func (s *StockService) Restock(id string, units int, actorID string) (domain.Product, error) {
	if units <= 0 {
		return domain.Product{}, ErrBadQuantity
	}
	return s.Products.AdjustQuantity(id, units, domain.ReasonRestock, actorID)
}

// Sell removes units and fires an alert when the product crosses into
// LOW_STOCK. Selling below zero is refused by the repo.
func (s *StockService) Sell(id string, units int, actorID string) (domain.Product, error) {
	if units <= 0 {
		return domain.Product{}, ErrBadQuantity
	}
	before, err := s.Products.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	after, err := s.Products.AdjustQuantity(id, -units, domain.ReasonSale, actorID)
	if err != nil {
		return domain.Product{}, err
	}
	if before.Status() != domain.StatusLowStock && after.Status() == domain.StatusLowStock {
		s.alert(after)
	}
	return after, nil
}

// Update rewrites the editable fields. Raising the reorder level can push
// a product into LOW_STOCK without its quantity moving, so the transition
// check runs here too.
func (s *StockService) Update(id string, d domain.ProductDraft) (domain.Product, error) {
	before, err := s.Products.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	wasLow := before.Status() == domain.StatusLowStock
	if existing, err := s.Products.BySKU(d.SKU); err == nil && existing.ID != id {
		return domain.Product{}, repos.ErrDuplicateSKU
	} else if err != nil && !errors.Is(err, repos.ErrNotFound) {
		return domain.Product{}, err
	}

	before.Name = d.Name
	before.SKU = d.SKU
	before.Price = d.Price
	before.ReorderLevel = d.ReorderLevel
	if err := s.Products.Update(before); err != nil {
		return domain.Product{}, err
	}
	after, err := s.Products.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	if !wasLow && after.Status() == domain.StatusLowStock {
		s.alert(after)
	}
	return after, nil
}

func (s *StockService) Delete(id string) error {
	return s.Products.Delete(id)
}

// alert publishes off the request path; a slow or missing broker must not
// hold up the stock operation.
func (s *StockService) alert(p domain.Product) {
	a := alerts.Alert{
		ProductID:    p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Quantity:     p.Quantity,
		ReorderLevel: p.ReorderLevel,
		Price:        p.Price,
		SuggestedQty: domain.ProposeRestock(p.ReorderLevel),
		At:           time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.Notify.LowStock(ctx, a); err != nil {
			applog.Error(nil, "alert.publish", err, map[string]any{"sku": a.SKU})
		}
	}()
}
