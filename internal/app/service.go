package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

// ApplicationService is the single interface all UI adapters call. It
// decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// CreateComponent adds a catalog component priced in its original currency.
	CreateComponent(ctx context.Context, req ComponentRequest) (*ComponentResult, error)

	// GetComponent returns a single component by ID.
	GetComponent(ctx context.Context, id int) (*ComponentResult, error)

	// ListComponents returns catalog components, optionally filtered by category.
	ListComponents(ctx context.Context, category string) (*ComponentListResult, error)

	// UpdateComponent updates descriptive fields only; price is untouched.
	UpdateComponent(ctx context.Context, id int, req ComponentRequest) (*ComponentResult, error)

	// UpdateComponentPrice is the explicit price edit: the only path that
	// changes a component's original currency and cost after creation.
	UpdateComponentPrice(ctx context.Context, id int, req PriceUpdateRequest) (*ComponentResult, error)

	// DeleteComponent removes a component; assemblies referencing it become
	// partial rather than broken.
	DeleteComponent(ctx context.Context, id int) error

	// RefreshComponentCosts recomputes every component's derived currency
	// columns at the given exchange rates. Original prices never move.
	RefreshComponentCosts(ctx context.Context, req RatesRequest) (*RefreshResult, error)

	// CreateAssembly creates an assembly from a list of component references.
	CreateAssembly(ctx context.Context, req CreateAssemblyRequest) (*AssemblyResult, error)

	// GetAssembly returns an assembly with its references resolved where possible.
	GetAssembly(ctx context.Context, id int) (*AssemblyResult, error)

	// ListAssemblies returns all assemblies.
	ListAssemblies(ctx context.Context) (*AssemblyListResult, error)

	// DeleteAssembly removes an assembly and its component references.
	DeleteAssembly(ctx context.Context, id int) error

	// AddAssemblyComponent appends a component reference to an assembly.
	AddAssemblyComponent(ctx context.Context, assemblyID int, req AssemblyComponentRequest) (*AssemblyResult, error)

	// RemoveAssemblyComponent removes one reference row from an assembly.
	RemoveAssemblyComponent(ctx context.Context, assemblyID, refID int) (*AssemblyResult, error)

	// ReorderAssemblyComponents applies a new display order; refIDs must list
	// every reference of the assembly exactly once.
	ReorderAssemblyComponents(ctx context.Context, assemblyID int, refIDs []int) (*AssemblyResult, error)

	// PriceAssembly rolls the assembly up at the given rates, returning totals
	// in all three currencies plus a per-currency breakdown. Unresolved
	// references are reported, not fatal.
	PriceAssembly(ctx context.Context, assemblyID int, req RatesRequest) (*AssemblyPricingResult, error)

	// CreateQuotation opens a draft quotation with its own parameter set.
	CreateQuotation(ctx context.Context, req CreateQuotationRequest) (*QuotationResult, error)

	// GetQuotation returns a quotation with parameters and items.
	GetQuotation(ctx context.Context, id int) (*QuotationResult, error)

	// ListQuotations returns quotations, optionally filtered by status.
	ListQuotations(ctx context.Context, status string) (*QuotationListResult, error)

	// DeleteQuotation removes a quotation with its parameters and items.
	DeleteQuotation(ctx context.Context, id int) error

	// UpdateQuotationParameters replaces the parameter set and recalculates.
	UpdateQuotationParameters(ctx context.Context, id int, req ParametersRequest) (*CalculationResult, error)

	// AddQuotationItem adds a line item (sourced from a component or assembly,
	// labor, or fully custom) and recalculates.
	AddQuotationItem(ctx context.Context, quotationID int, req AddItemRequest) (*CalculationResult, error)

	// UpdateItemPrice edits one item's snapshot price and recalculates.
	UpdateItemPrice(ctx context.Context, quotationID, itemID int, req PriceUpdateRequest) (*CalculationResult, error)

	// RemoveQuotationItem deletes a line item and recalculates.
	RemoveQuotationItem(ctx context.Context, quotationID, itemID int) (*CalculationResult, error)

	// TransitionQuotationStatus moves the quotation along draft → sent → {won | lost}.
	TransitionQuotationStatus(ctx context.Context, id int, status string) (*QuotationResult, error)

	// RecalculateQuotation reruns the calculation cascade and persists the
	// derived totals.
	RecalculateQuotation(ctx context.Context, id int) (*CalculationResult, error)

	// ExportQuotationPDF renders the quotation as a customer-facing PDF.
	ExportQuotationPDF(ctx context.Context, id int) (*ExportResult, error)

	// ExportQuotationExcel renders the quotation as an Excel workbook with the
	// full calculation breakdown.
	ExportQuotationExcel(ctx context.Context, id int) (*ExportResult, error)

	// ConvertAmount converts one amount into all three supported currencies.
	ConvertAmount(ctx context.Context, amount decimal.Decimal, currency string, req RatesRequest) (*core.CurrencyAmounts, error)
}
