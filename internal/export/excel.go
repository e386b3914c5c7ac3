package export

import (
	"github.com/xuri/excelize/v2"

	"stockroom/internal/domain"
)

// renderExcel builds a two-sheet workbook: the full inventory plus a
// low-stock sheet with suggested order quantities.
func renderExcel(snap domain.ReportSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	headers := []string{"Name", "SKU", "Quantity", "Unit Price", "Stock Value", "Reorder Level", "Status"}
	if err := writeRow(f, sheet, 1, toAny(headers)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", headerStyle); err != nil {
		return nil, err
	}

	row := 1
	for _, p := range snap.Products {
		row++
		cells := []any{
			p.Name, p.SKU, p.Quantity,
			p.Price.InexactFloat64(), p.Value().InexactFloat64(),
			p.ReorderLevel, p.Status().Label(),
		}
		if err := writeRow(f, sheet, row, cells); err != nil {
			return nil, err
		}
	}
	if row > 1 {
		first, err := excelize.CoordinatesToCellName(4, 2)
		if err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(5, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, first, last, moneyStyle); err != nil {
			return nil, err
		}
	}

	// Summary block under the table
	row += 2
	summary := [][]any{
		{"Total Products", len(snap.Products)},
		{"Low Stock Items", len(snap.LowStock)},
		{"Total Stock Value", snap.TotalValue.InexactFloat64()},
		{"Generated At", snap.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
	}
	for _, line := range summary {
		if err := writeRow(f, sheet, row, line); err != nil {
			return nil, err
		}
		row++
	}
	valueCell, err := excelize.CoordinatesToCellName(2, row-2)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, valueCell, valueCell, moneyStyle); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "G", 15); err != nil {
		return nil, err
	}

	if err := addLowStockSheet(f, snap, headerStyle); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addLowStockSheet(f *excelize.File, snap domain.ReportSnapshot, headerStyle int) error {
	const sheet = "Low Stock"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	headers := []string{"Name", "SKU", "Quantity", "Reorder Level", "Suggested Order"}
	if err := writeRow(f, sheet, 1, toAny(headers)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", headerStyle); err != nil {
		return err
	}
	for i, p := range snap.LowStock {
		cells := []any{p.Name, p.SKU, p.Quantity, p.ReorderLevel, domain.ProposeRestock(p.ReorderLevel)}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "E", 15)
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
