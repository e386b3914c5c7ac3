package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	"stockroom/internal/inflight"
	applog "stockroom/internal/log"
	"stockroom/internal/money"
	"stockroom/internal/repos"
	"stockroom/internal/services"
	"stockroom/internal/validate"
)

type ProductHandler struct {
	Stock     *services.StockService
	Movements *repos.MovementRepo
	Actions   *inflight.Tracker
}

// productForm holds the raw form fields so a failed submit renders back
// exactly what the user typed.
type productForm struct {
	Name         string
	SKU          string
	Quantity     string
	Price        string
	ReorderLevel string
}

func readProductForm(c *fiber.Ctx) productForm {
	return productForm{
		Name:         c.FormValue("name"),
		SKU:          c.FormValue("sku"),
		Quantity:     c.FormValue("quantity"),
		Price:        c.FormValue("price"),
		ReorderLevel: c.FormValue("reorder_level"),
	}
}

// parse validates the raw fields into a draft. withQuantity is false on
// edits, where stock moves only through restock and sell.
func (f productForm) parse(withQuantity bool) (domain.ProductDraft, map[string]string) {
	var d domain.ProductDraft
	errs := map[string]string{}

	var ok bool
	if d.Name, ok = validate.Name(f.Name); !ok {
		errs["Name"] = "Enter a name (up to 80 characters)."
	}
	if d.SKU, ok = validate.SKU(f.SKU); !ok {
		errs["SKU"] = "Enter a stock code (up to 40 characters)."
	}
	if withQuantity {
		if d.Quantity, ok = validate.Quantity(f.Quantity); !ok {
			errs["Quantity"] = "Quantity must be a whole number, zero or more."
		}
	}
	if d.Price, ok = validate.Price(f.Price); !ok {
		errs["Price"] = "Price must be a non-negative amount."
	}
	if d.ReorderLevel, ok = validate.Quantity(f.ReorderLevel); !ok {
		errs["ReorderLevel"] = "Reorder level must be a whole number, zero or more."
	}
	return d, errs
}

// GET /products/new
func (h *ProductHandler) New(c *fiber.Ctx) error {
	return render(c, "product_form", fiber.Map{
		"Form":   productForm{},
		"Errors": map[string]string{},
	})
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	form := readProductForm(c)
	draft, errs := form.parse(true)
	if len(errs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "product", "fields": len(errs)})
		c.Status(400)
		return render(c, "product_form", fiber.Map{
			"Form":   form,
			"Errors": errs,
		})
	}

	// One create per session at a time; a double submit waits its turn.
	key := "create:" + c.Cookies("sid")
	if !h.Actions.Begin(key) {
		applog.Info(c, "product.create.busy", nil)
		c.Status(400)
		return render(c, "product_form", fiber.Map{
			"Form":   form,
			"Errors": map[string]string{"Form": "A product is already being added. Give it a second."},
		})
	}
	defer h.Actions.End(key)

	p, err := h.Stock.Create(draft, actorID(c))
	switch {
	case errors.Is(err, repos.ErrDuplicateSKU):
		c.Status(400)
		return render(c, "product_form", fiber.Map{
			"Form":   form,
			"Errors": map[string]string{"SKU": "That stock code is already in use."},
		})
	case err != nil:
		applog.Error(c, "product.create.fail", err, map[string]any{"sku": draft.SKU})
		c.Status(500)
		return render(c, "product_form", fiber.Map{
			"Form":   form,
			"Errors": map[string]string{"Form": "Could not save the product. Please retry."},
		})
	}

	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "sku": p.SKU})
	setFlash(c, "success", p.Name+" added to the inventory.")
	return c.Redirect("/")
}

// GET /products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	p, err := h.Stock.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	moves, err := h.Movements.ByProduct(id, 20)
	if err != nil {
		applog.Error(c, "product.history.fail", err, map[string]any{"product_id": id})
		moves = nil
	}
	st := p.Status()
	return render(c, "product", fiber.Map{
		"P":            p,
		"Status":       st,
		"StatusLabel":  st.Label(),
		"PriceDisplay": money.Format(p.Price),
		"ValueDisplay": money.Format(p.Value()),
		"SuggestedQty": domain.ProposeRestock(p.ReorderLevel),
		"Movements":    moves,
	})
}

// GET /products/:id/edit
func (h *ProductHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	p, err := h.Stock.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	form := productForm{
		Name:         p.Name,
		SKU:          p.SKU,
		Price:        p.Price.StringFixed(2),
		ReorderLevel: strconv.Itoa(p.ReorderLevel),
	}
	return render(c, "product_form", fiber.Map{
		"Form":    form,
		"Errors":  map[string]string{},
		"Editing": true,
		"P":       p,
	})
}

// POST /products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	p, err := h.Stock.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}

	form := readProductForm(c)
	draft, errs := form.parse(false)
	if len(errs) > 0 {
		c.Status(400)
		return render(c, "product_form", fiber.Map{
			"Form": form, "Errors": errs, "Editing": true, "P": p,
		})
	}

	updated, err := h.Stock.Update(id, draft)
	switch {
	case errors.Is(err, repos.ErrDuplicateSKU):
		c.Status(400)
		return render(c, "product_form", fiber.Map{
			"Form": form, "Errors": map[string]string{"SKU": "That stock code is already in use."},
			"Editing": true, "P": p,
		})
	case errors.Is(err, repos.ErrNotFound):
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	case err != nil:
		applog.Error(c, "product.update.fail", err, map[string]any{"product_id": id})
		c.Status(500)
		return render(c, "product_form", fiber.Map{
			"Form": form, "Errors": map[string]string{"Form": "Could not save the changes. Please retry."},
			"Editing": true, "P": p,
		})
	}

	applog.Audit(c, "product.update", map[string]any{"product_id": id, "sku": updated.SKU})
	setFlash(c, "success", updated.Name+" updated.")
	return c.Redirect("/products/" + id)
}

// POST /products/:id/delete
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	p, err := h.Stock.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer tracked"})
	}
	if err := h.Stock.Delete(id); err != nil {
		applog.Error(c, "product.delete.fail", err, map[string]any{"product_id": id})
		setFlash(c, "error", "Could not remove the product. Please retry.")
		return c.Redirect("/")
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id, "sku": p.SKU})
	setFlash(c, "success", p.Name+" removed from the inventory.")
	return c.Redirect("/")
}
