package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

// StockAPIHandler exposes a read-only stock probe for other systems
// (ordering tools, shop frontends) keyed by stock code.
type StockAPIHandler struct {
	Stock *services.StockService
}

func (h *StockAPIHandler) Status(c *fiber.Ctx) error {
	sku := strings.TrimSpace(c.Query("sku"))
	if sku == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing sku",
		})
	}

	p, err := h.Stock.BySKU(sku)
	if errors.Is(err, repos.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown sku",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"sku":             p.SKU,
		"name":            p.Name,
		"quantity":        p.Quantity,
		"reorder_level":   p.ReorderLevel,
		"status":          p.Status(),
		"suggested_order": domain.ProposeRestock(p.ReorderLevel),
	})
}
