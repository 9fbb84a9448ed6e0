package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component is a purchasable catalog entity. OriginalCurrency and OriginalCost
// are the authoritative price — they change only on an explicit user edit,
// never as a side effect of a rate change or recomputation. The Cost* columns
// are derived equivalents kept for display and may be rewritten freely.
type Component struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	Manufacturer     string          `json:"manufacturer"`
	PartNumber       string          `json:"part_number"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	OriginalCurrency Currency        `json:"original_currency"`
	OriginalCost     decimal.Decimal `json:"original_cost"`
	CostNIS          decimal.Decimal `json:"cost_nis"` // derived
	CostUSD          decimal.Decimal `json:"cost_usd"` // derived
	CostEUR          decimal.Decimal `json:"cost_eur"` // derived
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ComponentSnapshot is the display data captured when a component is linked
// into an assembly. It survives deletion of the component itself, so a partial
// assembly still renders something meaningful.
type ComponentSnapshot struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	PartNumber   string `json:"part_number"`
}

// ComponentRef links an assembly to a component with a quantity.
// Component is nil when the referenced component no longer exists; the ref is
// then unresolved — kept for display via Snapshot, excluded from cost totals.
type ComponentRef struct {
	ID          int               `json:"id"`
	AssemblyID  int               `json:"assembly_id"`
	ComponentID int               `json:"component_id"`
	Position    int               `json:"position"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Snapshot    ComponentSnapshot `json:"snapshot"`
	Component   *Component        `json:"component,omitempty"`
}

// Resolved reports whether the ref still points at a live component.
func (r ComponentRef) Resolved() bool {
	return r.Component != nil
}

// Assembly is a named group of component references. IsComplete is true iff
// every ref resolves; it is recomputed by the pricing roll-up, not stored as
// an independent fact.
type Assembly struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Components  []ComponentRef `json:"components"`
	IsComplete  bool           `json:"is_complete"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CurrencyBreakdown reports, for one original currency, how many resolved
// components priced in it and their un-converted subtotal. Used for audit
// and display alongside the converted totals.
type CurrencyBreakdown struct {
	ComponentCount int             `json:"component_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// AssemblyPricing is the derived multi-currency total of an assembly.
type AssemblyPricing struct {
	AssemblyID            int                            `json:"assembly_id"`
	TotalCostNIS          decimal.Decimal                `json:"total_cost_nis"`
	TotalCostUSD          decimal.Decimal                `json:"total_cost_usd"`
	TotalCostEUR          decimal.Decimal                `json:"total_cost_eur"`
	ComponentCount        int                            `json:"component_count"`
	MissingComponentCount int                            `json:"missing_component_count"`
	IsComplete            bool                           `json:"is_complete"`
	Breakdown             map[Currency]CurrencyBreakdown `json:"breakdown"`
}

type QuotationStatus string

const (
	QuotationStatusDraft QuotationStatus = "draft"
	QuotationStatusSent  QuotationStatus = "sent"
	QuotationStatusWon   QuotationStatus = "won"
	QuotationStatusLost  QuotationStatus = "lost"
)

// legalStatusTransitions is the quotation lifecycle: draft → sent → {won | lost}.
// Status is orthogonal to calculation — the cascade produces identical totals
// regardless of it.
var legalStatusTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft: {QuotationStatusSent},
	QuotationStatusSent:  {QuotationStatusWon, QuotationStatusLost},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s QuotationStatus) CanTransition(next QuotationStatus) bool {
	for _, allowed := range legalStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ItemType string

const (
	ItemTypeHardware ItemType = "hardware"
	ItemTypeSoftware ItemType = "software"
	ItemTypeLabor    ItemType = "labor"
)

type LaborSubtype string

const (
	LaborEngineering   LaborSubtype = "engineering"
	LaborCommissioning LaborSubtype = "commissioning"
	LaborInstallation  LaborSubtype = "installation"
	LaborProgramming   LaborSubtype = "programming"
)

// PricingMode selects one of the two mutually exclusive pricing bases for an
// item: cost plus a markup percentage, or an MSRP list price reduced by a
// partner discount. Only the fields of the chosen mode are consulted.
type PricingMode string

const (
	PricingCostPlus PricingMode = "cost_plus"
	PricingMSRP     PricingMode = "msrp"
)

// QuotationItem is one priced line in a quotation. OriginalCurrency and
// OriginalCost are snapshots taken from the source component or assembly at
// the moment the item was added; later rate changes recompute only the
// derived ILS figures, never these fields.
type QuotationItem struct {
	ID                int             `json:"id"`
	QuotationID       int             `json:"quotation_id"`
	SourceComponentID *int            `json:"source_component_id,omitempty"`
	SourceAssemblyID  *int            `json:"source_assembly_id,omitempty"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	ItemType          ItemType        `json:"item_type"`
	LaborSubtype      LaborSubtype    `json:"labor_subtype,omitempty"` // labor items only
	Quantity          decimal.Decimal `json:"quantity"`
	OriginalCurrency  Currency        `json:"original_currency"`
	OriginalCost      decimal.Decimal `json:"original_cost"`
	PricingMode       PricingMode     `json:"pricing_mode"`

	// cost_plus mode
	MarkupPercent decimal.Decimal `json:"markup_percent"`

	// msrp mode
	MSRPPrice              decimal.Decimal `json:"msrp_price"`
	MSRPCurrency           Currency        `json:"msrp_currency,omitempty"`
	PartnerDiscountPercent decimal.Decimal `json:"partner_discount_percent"`
}

// QuotationParameters is the per-quotation parameter set: live exchange rates,
// default markup, risk buffer, and VAT handling. One row per quotation.
type QuotationParameters struct {
	QuotationID   int             `json:"quotation_id"`
	USDToILSRate  decimal.Decimal `json:"usd_to_ils_rate"`
	EURToILSRate  decimal.Decimal `json:"eur_to_ils_rate"`
	MarkupPercent decimal.Decimal `json:"markup_percent"`
	RiskPercent   decimal.Decimal `json:"risk_percent"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	IncludeVAT    bool            `json:"include_vat"`
	DayWorkCost   decimal.Decimal `json:"day_work_cost"` // default daily labor cost, ILS
}

// Rates builds the ExchangeRateSet used for every conversion in this quotation.
func (p QuotationParameters) Rates() ExchangeRateSet {
	return ExchangeRateSet{USDToILS: p.USDToILSRate, EURToILS: p.EURToILSRate}
}

// Quotation is a per-customer quotation document.
type Quotation struct {
	ID           int                 `json:"id"`
	QuoteNumber  string              `json:"quote_number"`
	CustomerName string              `json:"customer_name"`
	ProjectName  string              `json:"project_name"`
	Status       QuotationStatus     `json:"status"`
	Parameters   QuotationParameters `json:"parameters"`
	Items        []QuotationItem     `json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ItemPricing is the derived ILS pricing of one quotation item.
type ItemPricing struct {
	ItemID           int             `json:"item_id"`
	Name             string          `json:"name"`
	ItemType         ItemType        `json:"item_type"`
	LaborSubtype     LaborSubtype    `json:"labor_subtype,omitempty"`
	UnitPriceILS     decimal.Decimal `json:"unit_price_ils"`
	TotalPriceILS    decimal.Decimal `json:"total_price_ils"`    // cost basis
	CustomerPriceILS decimal.Decimal `json:"customer_price_ils"` // price basis
}

// TypeSubtotal accumulates the cost and customer-price bases for one bucket
// of items (a type, or a labor subtype).
type TypeSubtotal struct {
	ItemCount        int             `json:"item_count"`
	TotalPriceILS    decimal.Decimal `json:"total_price_ils"`
	CustomerPriceILS decimal.Decimal `json:"customer_price_ils"`
}

// QuotationCalculations is the recomputable output of the calculation cascade.
// It is never the source of truth for original prices: it is always
// reconstructible from the quotation's items and parameters.
type QuotationCalculations struct {
	QuotationID           int                           `json:"quotation_id"`
	Items                 []ItemPricing                 `json:"items"`
	ByType                map[ItemType]TypeSubtotal     `json:"by_type"`
	LaborBySubtype        map[LaborSubtype]TypeSubtotal `json:"labor_by_subtype"`
	SubtotalILS           decimal.Decimal               `json:"subtotal_ils"`
	TotalCustomerPriceILS decimal.Decimal               `json:"total_customer_price_ils"`
	RiskAdditionILS       decimal.Decimal               `json:"risk_addition_ils"`
	TotalQuoteILS         decimal.Decimal               `json:"total_quote_ils"`
	TotalVATILS           decimal.Decimal               `json:"total_vat_ils"`
	FinalTotalILS         decimal.Decimal               `json:"final_total_ils"`
	ProfitMarginPercent   decimal.Decimal               `json:"profit_margin_percent"`
}
