package app

import (
	"github.com/shopspring/decimal"
)

// ComponentRequest carries the descriptive and (on create) pricing fields of
// a catalog component.
type ComponentRequest struct {
	Name         string          `json:"name"`
	Manufacturer string          `json:"manufacturer"`
	PartNumber   string          `json:"part_number"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Currency     string          `json:"currency"` // create only
	Cost         decimal.Decimal `json:"cost"`     // create only
	Rates        RatesRequest    `json:"rates"`    // derived-cost rates; zero means server defaults
}

// PriceUpdateRequest is the explicit price edit for a component or a
// quotation item.
type PriceUpdateRequest struct {
	Currency string          `json:"currency"`
	Cost     decimal.Decimal `json:"cost"`
	Rates    RatesRequest    `json:"rates"` // derived-cost rates; zero means server defaults
}

// RatesRequest supplies the exchange rates for a conversion or roll-up.
type RatesRequest struct {
	USDToILS decimal.Decimal `json:"usd_to_ils"`
	EURToILS decimal.Decimal `json:"eur_to_ils"`
}

// CreateAssemblyRequest creates an assembly from component references.
type CreateAssemblyRequest struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Components  []AssemblyComponentRequest `json:"components"`
}

// AssemblyComponentRequest is one component reference within an assembly.
type AssemblyComponentRequest struct {
	ComponentID int             `json:"component_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ParametersRequest is the per-quotation parameter set.
type ParametersRequest struct {
	USDToILSRate  decimal.Decimal `json:"usd_to_ils_rate"`
	EURToILSRate  decimal.Decimal `json:"eur_to_ils_rate"`
	MarkupPercent decimal.Decimal `json:"markup_percent"`
	RiskPercent   decimal.Decimal `json:"risk_percent"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	IncludeVAT    bool            `json:"include_vat"`
	DayWorkCost   decimal.Decimal `json:"day_work_cost"`
}

// CreateQuotationRequest opens a draft quotation.
type CreateQuotationRequest struct {
	CustomerName string            `json:"customer_name"`
	ProjectName  string            `json:"project_name"`
	Parameters   ParametersRequest `json:"parameters"`
}

// AddItemRequest adds one line to a quotation. Exactly one source applies:
// a component ID, an assembly ID, a labor subtype, or none (custom item with
// explicit currency/cost). For MSRP-priced items set PricingMode to "msrp"
// and fill the MSRP fields.
type AddItemRequest struct {
	ComponentID  *int   `json:"component_id,omitempty"`
	AssemblyID   *int   `json:"assembly_id,omitempty"`
	LaborSubtype string `json:"labor_subtype,omitempty"`

	Name        string          `json:"name"`
	Description string          `json:"description"`
	ItemType    string          `json:"item_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Currency    string          `json:"currency"`
	Cost        decimal.Decimal `json:"cost"`

	PricingMode   string           `json:"pricing_mode,omitempty"`
	MarkupPercent *decimal.Decimal `json:"markup_percent,omitempty"`
	DayCost       *decimal.Decimal `json:"day_cost,omitempty"`

	MSRPPrice              decimal.Decimal `json:"msrp_price"`
	MSRPCurrency           string          `json:"msrp_currency,omitempty"`
	PartnerDiscountPercent decimal.Decimal `json:"partner_discount_percent"`
}
