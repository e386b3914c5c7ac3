package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	"stockroom/internal/export"
	applog "stockroom/internal/log"
	"stockroom/internal/money"
	"stockroom/internal/services"
)

type ReportHandler struct {
	Reports  *services.ReportService
	Exporter export.Exporter
}

// chartRow is one bar of the quantity chart, scaled against the largest
// holding so the widest bar always spans the track.
type chartRow struct {
	Name     string
	SKU      string
	Quantity int
	Percent  int
	Status   domain.StockStatus
}

// lowRow is one line of the low-stock call-to-action list.
type lowRow struct {
	domain.Product
	SuggestedQty int
}

// GET /reports
func (h *ReportHandler) Page(c *fiber.Ctx) error {
	o, err := h.Reports.Overview()
	if err != nil {
		applog.Error(c, "reports.overview.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not build the report. Please retry."})
	}

	chart := make([]chartRow, 0, len(o.Products))
	for _, p := range o.Products {
		pct := 0
		if o.MaxQuantity > 0 {
			pct = p.Quantity * 100 / o.MaxQuantity
		}
		chart = append(chart, chartRow{
			Name:     p.Name,
			SKU:      p.SKU,
			Quantity: p.Quantity,
			Percent:  pct,
			Status:   p.Status(),
		})
	}
	low := make([]lowRow, 0, len(o.LowStock))
	for _, p := range o.LowStock {
		low = append(low, lowRow{Product: p, SuggestedQty: domain.ProposeRestock(p.ReorderLevel)})
	}

	data := fiber.Map{
		"TotalCount":  o.Metrics.TotalCount,
		"TotalValue":  money.Format(o.Metrics.TotalValue),
		"LowCount":    o.Metrics.LowStockCount,
		"HealthKnown": false,
		"HealthPct":   0,
		"Chart":       chart,
		"Low":         low,
		"Movements":   o.Movements,
		"Stats":       o.Stats,
		"GeneratedAt": o.GeneratedAt.Format("02 Jan 2006 15:04"),
	}
	if pct, ok := o.Metrics.HealthPercent(); ok {
		data["HealthKnown"] = true
		data["HealthPct"] = pct
	}
	return render(c, "reports", data)
}

// POST /reports/export
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	kind, err := export.ParseKind(c.FormValue("format"))
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "format", "value": c.FormValue("format")})
		return c.Status(400).SendString("unknown export format")
	}

	snap, err := h.Reports.Snapshot()
	if err != nil {
		applog.Error(c, "reports.snapshot.fail", err, nil)
		setFlash(c, "error", "Could not build the report. Please retry.")
		return c.Redirect("/reports")
	}

	artifact, err := h.Exporter.Export(kind, snap)
	if err != nil {
		applog.Error(c, "reports.export.fail", err, map[string]any{"format": string(kind)})
		setFlash(c, "error", exportFailureMessage(err))
		return c.Redirect("/reports")
	}

	applog.Audit(c, "reports.export", map[string]any{
		"format": string(kind), "products": len(snap.Products), "bytes": len(artifact.Data),
	})
	c.Set(fiber.HeaderContentType, artifact.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+artifact.Filename+`"`)
	return c.Send(artifact.Data)
}

// exportFailureMessage surfaces the renderer's own words when it has any,
// and a generic line otherwise.
func exportFailureMessage(err error) string {
	if err != nil && err.Error() != "" {
		return "Export failed: " + err.Error()
	}
	return "Export failed. Please retry."
}
