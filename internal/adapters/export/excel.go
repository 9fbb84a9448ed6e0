package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

// ExcelRenderer renders a quotation into an Excel workbook: an items sheet
// with the full per-line breakdown and a summary sheet with the cascade
// totals and per-type subtotals.
type ExcelRenderer struct{}

func NewExcelRenderer() *ExcelRenderer { return &ExcelRenderer{} }

func (e *ExcelRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (e *ExcelRenderer) Extension() string { return "xlsx" }

func (e *ExcelRenderer) Render(q *core.Quotation, calc *core.QuotationCalculations) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	itemsSheet := "Items"
	f.SetSheetName("Sheet1", itemsSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"Item", "Type", "Subtype", "Unit Price (ILS)", "Cost (ILS)", "Customer Price (ILS)"}
	for i, name := range headers {
		f.SetCellValue(itemsSheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(itemsSheet, "A1", cellName(len(headers), 1), headerStyle)

	for i, item := range calc.Items {
		rowNum := i + 2
		f.SetCellValue(itemsSheet, cellName(1, rowNum), item.Name)
		f.SetCellValue(itemsSheet, cellName(2, rowNum), string(item.ItemType))
		f.SetCellValue(itemsSheet, cellName(3, rowNum), string(item.LaborSubtype))
		f.SetCellValue(itemsSheet, cellName(4, rowNum), item.UnitPriceILS.Round(2).InexactFloat64())
		f.SetCellValue(itemsSheet, cellName(5, rowNum), item.TotalPriceILS.Round(2).InexactFloat64())
		f.SetCellValue(itemsSheet, cellName(6, rowNum), item.CustomerPriceILS.Round(2).InexactFloat64())
	}

	f.SetPanes(itemsSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(itemsSheet, "A", "A", 35)
	f.SetColWidth(itemsSheet, "B", "F", 18)

	summarySheet := "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	f.SetCellValue(summarySheet, "A1", "Quotation")
	f.SetCellValue(summarySheet, "B1", q.QuoteNumber)
	f.SetCellValue(summarySheet, "A2", "Customer")
	f.SetCellValue(summarySheet, "B2", q.CustomerName)
	f.SetCellValue(summarySheet, "A3", "Status")
	f.SetCellValue(summarySheet, "B3", string(q.Status))

	rowNum := 5
	writeTotal := func(name string, v string) {
		f.SetCellValue(summarySheet, cellName(1, rowNum), name)
		f.SetCellValue(summarySheet, cellName(2, rowNum), v)
		rowNum++
	}
	writeTotal("Cost subtotal (ILS)", calc.SubtotalILS.Round(2).StringFixed(2))
	writeTotal("Customer subtotal (ILS)", calc.TotalCustomerPriceILS.Round(2).StringFixed(2))
	writeTotal("Risk addition (ILS)", calc.RiskAdditionILS.Round(2).StringFixed(2))
	writeTotal("Total before VAT (ILS)", calc.TotalQuoteILS.Round(2).StringFixed(2))
	writeTotal("VAT (ILS)", calc.TotalVATILS.Round(2).StringFixed(2))
	writeTotal("Final total (ILS)", calc.FinalTotalILS.Round(2).StringFixed(2))
	writeTotal("Profit margin (%)", calc.ProfitMarginPercent.Round(2).StringFixed(2))

	rowNum++
	f.SetCellValue(summarySheet, cellName(1, rowNum), "By type")
	f.SetCellStyle(summarySheet, cellName(1, rowNum), cellName(1, rowNum), headerStyle)
	rowNum++
	for _, t := range []core.ItemType{core.ItemTypeHardware, core.ItemTypeSoftware, core.ItemTypeLabor} {
		sub, ok := calc.ByType[t]
		if !ok {
			continue
		}
		f.SetCellValue(summarySheet, cellName(1, rowNum), string(t))
		f.SetCellValue(summarySheet, cellName(2, rowNum), sub.CustomerPriceILS.Round(2).StringFixed(2))
		rowNum++
	}
	for _, st := range []core.LaborSubtype{core.LaborEngineering, core.LaborCommissioning, core.LaborInstallation, core.LaborProgramming} {
		sub, ok := calc.LaborBySubtype[st]
		if !ok {
			continue
		}
		f.SetCellValue(summarySheet, cellName(1, rowNum), "labor / "+string(st))
		f.SetCellValue(summarySheet, cellName(2, rowNum), sub.CustomerPriceILS.Round(2).StringFixed(2))
		rowNum++
	}
	f.SetColWidth(summarySheet, "A", "B", 26)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
