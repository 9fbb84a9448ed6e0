package app

import "github.com/eliko2000/CPQ-System-sub009/internal/core"

// ComponentResult is returned by single-component operations.
type ComponentResult struct {
	Component *core.Component
}

// ComponentListResult is returned by ListComponents.
type ComponentListResult struct {
	Components []core.Component
	Category   string
}

// RefreshResult is returned by RefreshComponentCosts.
type RefreshResult struct {
	Updated int
	Rates   core.ExchangeRateSet
}

// AssemblyResult is returned by single-assembly operations.
type AssemblyResult struct {
	Assembly *core.Assembly
}

// AssemblyListResult is returned by ListAssemblies.
type AssemblyListResult struct {
	Assemblies []core.Assembly
}

// AssemblyPricingResult is returned by PriceAssembly.
type AssemblyPricingResult struct {
	Assembly *core.Assembly
	Pricing  *core.AssemblyPricing
}

// QuotationResult is returned by quotation header operations.
type QuotationResult struct {
	Quotation *core.Quotation
}

// QuotationListResult is returned by ListQuotations.
type QuotationListResult struct {
	Quotations []core.Quotation
}

// CalculationResult is returned by every operation that recalculates a
// quotation: the refreshed document plus the full cascade output.
type CalculationResult struct {
	Quotation    *core.Quotation
	Calculations *core.QuotationCalculations
}

// ExportResult is a rendered document ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}
