package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	"stockroom/internal/inflight"
	applog "stockroom/internal/log"
	"stockroom/internal/money"
	"stockroom/internal/repos"
	"stockroom/internal/services"
	"stockroom/internal/validate"
)

type DashboardHandler struct {
	Stock   *services.StockService
	Actions *inflight.Tracker
	Now     func() time.Time
}

// dashboardRow decorates a product with everything the table template needs.
type dashboardRow struct {
	domain.Product
	Status       domain.StockStatus
	StatusLabel  string
	Pending      bool
	SuggestedQty int
	PriceDisplay string
	ValueDisplay string
}

func (h *DashboardHandler) rows(products []domain.Product) []dashboardRow {
	out := make([]dashboardRow, 0, len(products))
	for _, p := range products {
		st := p.Status()
		out = append(out, dashboardRow{
			Product:      p,
			Status:       st,
			StatusLabel:  st.Label(),
			Pending:      h.Actions.Busy(p.ID),
			SuggestedQty: domain.ProposeRestock(p.ReorderLevel),
			PriceDisplay: money.Format(p.Price),
			ValueDisplay: money.Format(p.Value()),
		})
	}
	return out
}

// GET /
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	all, err := h.Stock.List("")
	if err != nil {
		applog.Error(c, "dashboard.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the dashboard. Please retry."})
	}

	// The search box filters the table; the summary cards always cover
	// the whole inventory.
	shown := all
	q := ""
	if rawQ := strings.TrimSpace(c.Query("q")); rawQ != "" {
		qq, ok := validate.Q(rawQ)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Enter a valid keyword (letters/numbers only)"})
		}
		q = qq
		if shown, err = h.Stock.List(q); err != nil {
			applog.Error(c, "dashboard.search.fail", err, nil)
			return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the dashboard. Please retry."})
		}
	}

	m := domain.Aggregate(all)
	data := fiber.Map{
		"Greeting":    h.greeting(c),
		"Rows":        h.rows(shown),
		"Q":           q,
		"TotalCount":  m.TotalCount,
		"TotalValue":  money.Format(m.TotalValue),
		"LowCount":    m.LowStockCount,
		"HealthKnown": false,
		"HealthPct":   0,
	}
	if pct, ok := m.HealthPercent(); ok {
		data["HealthKnown"] = true
		data["HealthPct"] = pct
	}
	return render(c, "dashboard", data)
}

func (h *DashboardHandler) greeting(c *fiber.Ctx) string {
	period := "evening"
	switch hr := h.Now().Hour(); {
	case hr < 12:
		period = "morning"
	case hr < 17:
		period = "afternoon"
	}
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		return "Good " + period + ", " + u.Name
	}
	return "Good " + period
}

// POST /products/:id/restock
func (h *DashboardHandler) Restock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	units, ok := validate.Quantity(c.FormValue("quantity"))
	if !ok || units < 1 {
		setFlash(c, "error", "Enter a whole number of units to add.")
		return c.Redirect("/")
	}

	if !h.Actions.Begin(id) {
		applog.Info(c, "stock.restock.busy", map[string]any{"product_id": id})
		setFlash(c, "error", "An update for this product is still running. Try again in a moment.")
		return c.Redirect("/")
	}
	defer h.Actions.End(id)

	p, err := h.Stock.Restock(id, units, actorID(c))
	switch {
	case errors.Is(err, repos.ErrNotFound):
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	case err != nil:
		applog.Error(c, "stock.restock.fail", err, map[string]any{"product_id": id})
		setFlash(c, "error", "Could not restock. Please retry.")
		return c.Redirect("/")
	}

	applog.Audit(c, "stock.restock", map[string]any{"product_id": id, "units": units, "quantity": p.Quantity})
	setFlash(c, "success", "Restocked "+p.Name+": now "+strconv.Itoa(p.Quantity)+" units.")
	return c.Redirect("/")
}

// POST /products/:id/sell
func (h *DashboardHandler) Sell(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}

	if !h.Actions.Begin(id) {
		applog.Info(c, "stock.sell.busy", map[string]any{"product_id": id})
		setFlash(c, "error", "An update for this product is still running. Try again in a moment.")
		return c.Redirect("/")
	}
	defer h.Actions.End(id)

	p, err := h.Stock.Sell(id, 1, actorID(c))
	switch {
	case errors.Is(err, repos.ErrNotFound):
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	case errors.Is(err, repos.ErrInsufficientStock):
		setFlash(c, "error", "Out of stock: nothing left to sell.")
		return c.Redirect("/")
	case err != nil:
		applog.Error(c, "stock.sell.fail", err, map[string]any{"product_id": id})
		setFlash(c, "error", "Could not record the sale. Please retry.")
		return c.Redirect("/")
	}

	applog.Audit(c, "stock.sell", map[string]any{"product_id": id, "quantity": p.Quantity})
	setFlash(c, "success", "Sold one "+p.Name+": "+strconv.Itoa(p.Quantity)+" left.")
	return c.Redirect("/")
}
