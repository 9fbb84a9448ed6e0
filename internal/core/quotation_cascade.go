package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Normalize cleans up user input on a quotation item before validation:
// trims the name, upper-cases currency codes, and defaults the pricing mode
// to cost-plus when unset (legacy rows predate the mode column).
func (it *QuotationItem) Normalize() {
	it.Name = strings.TrimSpace(it.Name)
	it.ItemType = ItemType(strings.ToLower(strings.TrimSpace(string(it.ItemType))))
	it.LaborSubtype = LaborSubtype(strings.ToLower(strings.TrimSpace(string(it.LaborSubtype))))
	if c, err := ParseCurrency(string(it.OriginalCurrency)); err == nil {
		it.OriginalCurrency = c
	}
	if c, err := ParseCurrency(string(it.MSRPCurrency)); err == nil {
		it.MSRPCurrency = c
	}
	if it.PricingMode == "" {
		it.PricingMode = PricingCostPlus
	}
}

// Validate enforces the rules a quotation item must satisfy before pricing.
// The two pricing modes are mutually exclusive: a cost-plus item must not
// carry MSRP fields and an MSRP item must carry a usable list price and
// discount. Never combined.
func (it *QuotationItem) Validate() error {
	if it.Name == "" {
		return validationErr("item.name", "name must not be empty")
	}

	switch it.ItemType {
	case ItemTypeHardware, ItemTypeSoftware:
		if it.LaborSubtype != "" {
			return validationErr("item.labor_subtype", "labor subtype is only valid on labor items")
		}
	case ItemTypeLabor:
		switch it.LaborSubtype {
		case LaborEngineering, LaborCommissioning, LaborInstallation, LaborProgramming:
		default:
			return validationErr("item.labor_subtype", "unrecognized labor subtype %q", string(it.LaborSubtype))
		}
	default:
		return validationErr("item.item_type", "unrecognized item type %q", string(it.ItemType))
	}

	if !it.Quantity.IsPositive() {
		return validationErr("item.quantity", "quantity must be > 0, got %s", it.Quantity)
	}
	if it.OriginalCost.IsNegative() {
		return validationErr("item.original_cost", "cost must not be negative, got %s", it.OriginalCost)
	}
	if _, err := ParseCurrency(string(it.OriginalCurrency)); err != nil {
		return err
	}

	switch it.PricingMode {
	case PricingCostPlus:
		if it.MarkupPercent.IsNegative() {
			return validationErr("item.markup_percent", "markup must not be negative, got %s", it.MarkupPercent)
		}
		if !it.MSRPPrice.IsZero() || it.MSRPCurrency != "" || !it.PartnerDiscountPercent.IsZero() {
			return validationErr("item.pricing_mode", "cost-plus item must not carry MSRP fields")
		}
	case PricingMSRP:
		if !it.MSRPPrice.IsPositive() {
			return validationErr("item.msrp_price", "MSRP list price must be > 0, got %s", it.MSRPPrice)
		}
		if _, err := ParseCurrency(string(it.MSRPCurrency)); err != nil {
			return err
		}
		if it.PartnerDiscountPercent.IsNegative() || it.PartnerDiscountPercent.GreaterThan(hundred) {
			return validationErr("item.partner_discount_percent", "discount must be between 0 and 100, got %s", it.PartnerDiscountPercent)
		}
		if !it.MarkupPercent.IsZero() {
			return validationErr("item.pricing_mode", "MSRP item must not carry a markup percent")
		}
	default:
		return validationErr("item.pricing_mode", "unrecognized pricing mode %q", string(it.PricingMode))
	}

	return nil
}

// Validate checks that a parameter set can drive a calculation: rates must be
// positive (ConfigurationError otherwise, never defaulted) and the percentage
// knobs must not be negative.
func (p QuotationParameters) Validate() error {
	if err := p.Rates().Validate(); err != nil {
		return err
	}
	if p.MarkupPercent.IsNegative() {
		return configErr("markup_percent", "must not be negative, got %s", p.MarkupPercent)
	}
	if p.RiskPercent.IsNegative() {
		return configErr("risk_percent", "must not be negative, got %s", p.RiskPercent)
	}
	if p.VATRate.IsNegative() {
		return configErr("vat_rate", "must not be negative, got %s", p.VATRate)
	}
	if p.DayWorkCost.IsNegative() {
		return configErr("day_work_cost", "must not be negative, got %s", p.DayWorkCost)
	}
	return nil
}

// PriceItem derives the ILS pricing of a single item from its original
// currency and cost at the given rates. Every recompute starts here, from the
// originals — never from a previous run's ILS values — so repeated rate edits
// cannot drift.
//
// Cost-plus: customer price = unit × qty × (1 + markup/100).
// MSRP: customer price = list-price-in-ILS × qty × (1 − discount/100);
// the cost fields still feed TotalPriceILS so margin reporting works.
func PriceItem(it QuotationItem, rates ExchangeRateSet) (*ItemPricing, error) {
	it.Normalize()
	if err := it.Validate(); err != nil {
		return nil, err
	}

	cost, err := ConvertToAllCurrencies(it.OriginalCost, it.OriginalCurrency, rates)
	if err != nil {
		return nil, err
	}

	pricing := &ItemPricing{
		ItemID:        it.ID,
		Name:          it.Name,
		ItemType:      it.ItemType,
		LaborSubtype:  it.LaborSubtype,
		UnitPriceILS:  cost.NIS,
		TotalPriceILS: cost.NIS.Mul(it.Quantity),
	}

	switch it.PricingMode {
	case PricingMSRP:
		list, err := ConvertToAllCurrencies(it.MSRPPrice, it.MSRPCurrency, rates)
		if err != nil {
			return nil, err
		}
		discount := one.Sub(it.PartnerDiscountPercent.Div(hundred))
		pricing.CustomerPriceILS = list.NIS.Mul(it.Quantity).Mul(discount)
	default:
		markup := one.Add(it.MarkupPercent.Div(hundred))
		pricing.CustomerPriceILS = pricing.TotalPriceILS.Mul(markup)
	}

	return pricing, nil
}

// CalculateQuotation runs the full calculation cascade over a quotation's
// items at the given parameters:
//
//  1. subtotal            = Σ totalPriceILS (cost basis)
//  2. total customer price = Σ customerPriceILS
//  3. risk addition        = total customer price × riskPercent/100
//  4. total quote          = total customer price + risk addition
//  5. VAT                  = total quote × vatRate/100 when IncludeVAT, else 0
//  6. final total          = total quote + VAT
//  7. profit margin %      = (customer − subtotal) / customer × 100, 0 when customer is 0
//
// The order matters: the percentages compound, they do not add independently.
// Items are also grouped by type, and labor items additionally by subtype,
// with the cost and customer-price bases summed per bucket.
//
// Pure and deterministic: same items and parameters always produce the same
// result, and the inputs are never mutated.
func CalculateQuotation(quotationID int, items []QuotationItem, params QuotationParameters) (*QuotationCalculations, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	calc := &QuotationCalculations{
		QuotationID:    quotationID,
		ByType:         map[ItemType]TypeSubtotal{},
		LaborBySubtype: map[LaborSubtype]TypeSubtotal{},
	}

	rates := params.Rates()
	for _, it := range items {
		pricing, err := PriceItem(it, rates)
		if err != nil {
			return nil, err
		}
		calc.Items = append(calc.Items, *pricing)

		bucket := calc.ByType[pricing.ItemType]
		bucket.ItemCount++
		bucket.TotalPriceILS = bucket.TotalPriceILS.Add(pricing.TotalPriceILS)
		bucket.CustomerPriceILS = bucket.CustomerPriceILS.Add(pricing.CustomerPriceILS)
		calc.ByType[pricing.ItemType] = bucket

		if pricing.ItemType == ItemTypeLabor {
			sub := calc.LaborBySubtype[pricing.LaborSubtype]
			sub.ItemCount++
			sub.TotalPriceILS = sub.TotalPriceILS.Add(pricing.TotalPriceILS)
			sub.CustomerPriceILS = sub.CustomerPriceILS.Add(pricing.CustomerPriceILS)
			calc.LaborBySubtype[pricing.LaborSubtype] = sub
		}

		calc.SubtotalILS = calc.SubtotalILS.Add(pricing.TotalPriceILS)
		calc.TotalCustomerPriceILS = calc.TotalCustomerPriceILS.Add(pricing.CustomerPriceILS)
	}

	calc.RiskAdditionILS = calc.TotalCustomerPriceILS.Mul(params.RiskPercent.Div(hundred))
	calc.TotalQuoteILS = calc.TotalCustomerPriceILS.Add(calc.RiskAdditionILS)
	if params.IncludeVAT {
		calc.TotalVATILS = calc.TotalQuoteILS.Mul(params.VATRate.Div(hundred))
	}
	calc.FinalTotalILS = calc.TotalQuoteILS.Add(calc.TotalVATILS)

	if calc.TotalCustomerPriceILS.IsPositive() {
		calc.ProfitMarginPercent = calc.TotalCustomerPriceILS.Sub(calc.SubtotalILS).
			Div(calc.TotalCustomerPriceILS).Mul(hundred)
	}

	return calc, nil
}
