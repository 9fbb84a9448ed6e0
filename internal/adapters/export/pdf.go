// Package export renders calculated quotations into customer-facing
// documents (PDF and Excel).
package export

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	mcore "github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

// PDFRenderer renders a quotation with its calculation breakdown into a PDF.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

func (p *PDFRenderer) ContentType() string { return "application/pdf" }
func (p *PDFRenderer) Extension() string   { return "pdf" }

func (p *PDFRenderer) Render(q *core.Quotation, calc *core.QuotationCalculations) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuoteHeader(m, q)
	addItemsHeader(m)
	for _, item := range calc.Items {
		addItemRow(m, item)
	}
	addTotals(m, q, calc)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addQuoteHeader(m mcore.Maroto, q *core.Quotation) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Quotation %s", q.QuoteNumber), props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Customer: %s", q.CustomerName), props.Text{
					Size: 9, Align: align.Left, Color: grey,
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", q.CreatedAt.Format("2006-01-02")), props.Text{
					Size: 9, Align: align.Right, Color: grey,
				}),
			),
		),
	)
	if q.ProjectName != "" {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New(fmt.Sprintf("Project: %s", q.ProjectName), props.Text{
						Size: 9, Align: align.Left, Color: grey,
					}),
				),
			),
		)
	}
	m.AddRows(row.New(4))
}

func addItemsHeader(m mcore.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(5).Add(text.New("Item", headerTextLeft)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Type", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Unit (ILS)", headerText)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Price (ILS)", headerText)).WithStyle(&headerCell),
		),
	)
}

func addItemRow(m mcore.Maroto, item core.ItemPricing) {
	baseText := props.Text{Size: 8, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	kind := string(item.ItemType)
	if item.ItemType == core.ItemTypeLabor && item.LaborSubtype != "" {
		kind = string(item.LaborSubtype)
	}

	m.AddRows(
		row.New(7).Add(
			col.New(5).Add(text.New(item.Name, leftText)),
			col.New(2).Add(text.New(kind, baseText)),
			col.New(2).Add(text.New(formatILS(item.UnitPriceILS), rightText)),
			col.New(3).Add(text.New(formatILS(item.CustomerPriceILS), rightText)),
		),
	)
}

func addTotals(m mcore.Maroto, q *core.Quotation, calc *core.QuotationCalculations) {
	m.AddRows(row.New(6))

	totalBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	totalCell := &props.Cell{BackgroundColor: totalBg}
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	totalRow := func(name string, amount decimal.Decimal) {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(name, label)).WithStyle(totalCell),
				col.New(4).Add(text.New(formatILS(amount), value)).WithStyle(totalCell),
			),
		)
	}

	totalRow("Subtotal", calc.TotalCustomerPriceILS)
	totalRow(fmt.Sprintf("Risk (%s%%)", q.Parameters.RiskPercent.String()), calc.RiskAdditionILS)
	totalRow("Total before VAT", calc.TotalQuoteILS)
	if q.Parameters.IncludeVAT {
		totalRow(fmt.Sprintf("VAT (%s%%)", q.Parameters.VATRate.String()), calc.TotalVATILS)
	}
	totalRow("Final total", calc.FinalTotalILS)

	grey := &props.Color{Red: 120, Green: 120, Blue: 120}
	m.AddRows(
		row.New(10).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")), props.Text{
					Size: 7, Align: align.Right, Color: grey,
				}),
			),
		),
	)
}

func formatILS(d decimal.Decimal) string {
	return "₪ " + d.Round(2).StringFixed(2)
}
