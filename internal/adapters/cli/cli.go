package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/eliko2000/CPQ-System-sub009/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "components", "comp":
		category := ""
		if len(args) > 1 {
			category = args[1]
		}
		result, err := svc.ListComponents(ctx, category)
		if err != nil {
			log.Fatalf("Failed to list components: %v", err)
		}
		printComponents(result)

	case "quotes", "quotations", "q":
		status := ""
		if len(args) > 1 {
			status = args[1]
		}
		result, err := svc.ListQuotations(ctx, status)
		if err != nil {
			log.Fatalf("Failed to list quotations: %v", err)
		}
		printQuotations(result)

	case "show":
		id := mustID(args, "Usage: app show <quotation-id>")
		result, err := svc.GetQuotation(ctx, id)
		if err != nil {
			log.Fatalf("Failed to get quotation: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Quotation)

	case "recalc":
		id := mustID(args, "Usage: app recalc <quotation-id>")
		result, err := svc.RecalculateQuotation(ctx, id)
		if err != nil {
			log.Fatalf("Failed to recalculate: %v", err)
		}
		printCalculations(result)

	case "export-pdf":
		id := mustID(args, "Usage: app export-pdf <quotation-id>")
		writeExport(svc.ExportQuotationPDF, ctx, id)

	case "export-excel":
		id := mustID(args, "Usage: app export-excel <quotation-id>")
		writeExport(svc.ExportQuotationExcel, ctx, id)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: components, quotes, show, recalc, export-pdf, export-excel", args[0])
	}
}

func mustID(args []string, usage string) int {
	if len(args) < 2 {
		log.Fatal(usage)
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		log.Fatal(usage)
	}
	return id
}

func writeExport(export func(ctx context.Context, id int) (*app.ExportResult, error), ctx context.Context, id int) {
	result, err := export(ctx, id)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if err := os.WriteFile(result.Filename, result.Data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", result.Filename, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", result.Filename, len(result.Data))
}

func printComponents(result *app.ComponentListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	title := "COMPONENTS"
	if result.Category != "" {
		title += " — " + result.Category
	}
	fmt.Printf("  %-74s\n", title)
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-5s %-30s %-16s %4s %14s\n", "ID", "NAME", "PART NO", "CCY", "COST")
	fmt.Println(strings.Repeat("-", 78))
	for _, c := range result.Components {
		fmt.Printf("  %-5d %-30s %-16s %4s %14s\n",
			c.ID, truncate(c.Name, 30), truncate(c.PartNumber, 16),
			string(c.OriginalCurrency), c.OriginalCost.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printQuotations(result *app.QuotationListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-68s\n", "QUOTATIONS")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-5s %-14s %-28s %-8s\n", "ID", "NUMBER", "CUSTOMER", "STATUS")
	fmt.Println(strings.Repeat("-", 72))
	for _, q := range result.Quotations {
		fmt.Printf("  %-5d %-14s %-28s %-8s\n",
			q.ID, q.QuoteNumber, truncate(q.CustomerName, 28), string(q.Status))
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printCalculations(result *app.CalculationResult) {
	calc := result.Calculations
	fmt.Println()
	fmt.Println(strings.Repeat("=", 54))
	fmt.Printf("  %s — %s\n", result.Quotation.QuoteNumber, result.Quotation.CustomerName)
	fmt.Println(strings.Repeat("-", 54))
	line := func(name string, v string) {
		fmt.Printf("  %-32s %18s\n", name, v)
	}
	line("Cost subtotal (ILS)", calc.SubtotalILS.StringFixed(2))
	line("Customer subtotal (ILS)", calc.TotalCustomerPriceILS.StringFixed(2))
	line("Risk addition (ILS)", calc.RiskAdditionILS.StringFixed(2))
	line("Total before VAT (ILS)", calc.TotalQuoteILS.StringFixed(2))
	line("VAT (ILS)", calc.TotalVATILS.StringFixed(2))
	line("Final total (ILS)", calc.FinalTotalILS.StringFixed(2))
	line("Profit margin (%)", calc.ProfitMarginPercent.StringFixed(2))
	fmt.Println(strings.Repeat("=", 54))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
