package export

import (
	"bytes"
	"strconv"

	"github.com/go-pdf/fpdf"

	"stockroom/internal/domain"
	"stockroom/internal/money"
)

// Column layout for the product table, 190mm printable width on A4.
var pdfCols = []struct {
	title string
	width float64
	align string
}{
	{"Name", 52, "L"},
	{"SKU", 30, "L"},
	{"Qty", 16, "R"},
	{"Unit Price", 30, "R"},
	{"Stock Value", 32, "R"},
	{"Status", 30, "L"},
}

// renderPDF lays the report out as a summary block, the product table and
// a low-stock section. Amounts carry an ASCII "Rs." prefix because the
// built-in cp1252 fonts cannot encode the rupee glyph.
func renderPDF(snap domain.ReportSnapshot) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Inventory Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Inventory Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Generated "+snap.GeneratedAt.Format("02 Jan 2006 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	writeSummaryLine(pdf, "Total Products", strconv.Itoa(len(snap.Products)))
	writeSummaryLine(pdf, "Low Stock Items", strconv.Itoa(len(snap.LowStock)))
	writeSummaryLine(pdf, "Total Stock Value", "Rs. "+money.Plain(snap.TotalValue))
	pdf.Ln(4)

	writeTableHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	fill := false
	for _, p := range snap.Products {
		cells := []string{
			clip(p.Name, 34), p.SKU, strconv.Itoa(p.Quantity),
			"Rs. " + money.Plain(p.Price), "Rs. " + money.Plain(p.Value()),
			p.Status().Label(),
		}
		for i, c := range pdfCols {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	if len(snap.LowStock) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Low Stock", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, p := range snap.LowStock {
			line := clip(p.Name, 40) + " (" + p.SKU + "): " + strconv.Itoa(p.Quantity) +
				" on hand, reorder at " + strconv.Itoa(p.ReorderLevel) +
				", suggested order " + strconv.Itoa(domain.ProposeRestock(p.ReorderLevel))
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummaryLine(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func writeTableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range pdfCols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFillColor(245, 245, 245)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}
