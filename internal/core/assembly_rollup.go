package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateAssembly enforces the structural rules an assembly must satisfy
// before pricing is attempted: a non-empty name, at least one component ref,
// and a strictly positive quantity on every ref. Fails fast — nothing is
// partially computed when it returns an error.
//
// An unresolved ref is NOT a validation failure. Legacy and partial data must
// still produce a usable (if incomplete) total, so missing components are
// handled inside the roll-up instead.
func ValidateAssembly(a *Assembly) error {
	if strings.TrimSpace(a.Name) == "" {
		return validationErr("assembly.name", "name must not be empty")
	}
	if len(a.Components) == 0 {
		return validationErr("assembly.components", "assembly must have at least one component")
	}
	for _, ref := range a.Components {
		if !ref.Quantity.IsPositive() {
			return validationErr("assembly.components", "component %q has quantity %s, must be > 0",
				ref.Snapshot.Name, ref.Quantity)
		}
	}
	return nil
}

// CalculateAssemblyPricing rolls the assembly's resolved component costs up
// into totals in all three currencies.
//
// Each resolved ref contributes originalCost × quantity in the component's
// original currency. The contributions are accumulated per original currency
// first, and only the three bucket totals are converted (through
// ConvertToAllCurrencies) and summed — so the authoritative amounts are never
// converted line by line and full precision is kept through accumulation.
//
// Unresolved refs are skipped from the sums and counted in
// MissingComponentCount; ComponentCount counts resolved refs only.
// IsComplete is recomputed here (true iff nothing is missing).
// The assembly itself is never mutated.
func CalculateAssemblyPricing(a *Assembly, rates ExchangeRateSet) (*AssemblyPricing, error) {
	if err := ValidateAssembly(a); err != nil {
		return nil, err
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	subtotals := map[Currency]decimal.Decimal{}
	counts := map[Currency]int{}
	missing := 0

	for _, ref := range a.Components {
		if !ref.Resolved() {
			missing++
			continue
		}
		c := ref.Component.OriginalCurrency
		line := ref.Component.OriginalCost.Mul(ref.Quantity)
		subtotals[c] = subtotals[c].Add(line)
		counts[c]++
	}

	pricing := &AssemblyPricing{
		AssemblyID:            a.ID,
		MissingComponentCount: missing,
		IsComplete:            missing == 0,
		Breakdown:             map[Currency]CurrencyBreakdown{},
	}

	var total CurrencyAmounts
	for _, currency := range []Currency{NIS, USD, EUR} {
		count := counts[currency]
		if count == 0 {
			continue
		}
		subtotal := subtotals[currency]
		pricing.Breakdown[currency] = CurrencyBreakdown{ComponentCount: count, Subtotal: subtotal}
		pricing.ComponentCount += count

		converted, err := ConvertToAllCurrencies(subtotal, currency, rates)
		if err != nil {
			return nil, err
		}
		total = total.Add(converted)
	}

	pricing.TotalCostNIS = total.NIS
	pricing.TotalCostUSD = total.USD
	pricing.TotalCostEUR = total.EUR
	return pricing, nil
}
