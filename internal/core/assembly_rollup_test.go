package core_test

import (
	"errors"
	"testing"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

func component(id int, name string, currency core.Currency, cost string) *core.Component {
	return &core.Component{
		ID:               id,
		Name:             name,
		OriginalCurrency: currency,
		OriginalCost:     d(cost),
	}
}

func resolvedRef(c *core.Component, qty string) core.ComponentRef {
	return core.ComponentRef{
		ComponentID: c.ID,
		Quantity:    d(qty),
		Snapshot:    core.ComponentSnapshot{Name: c.Name},
		Component:   c,
	}
}

func missingRef(name, qty string) core.ComponentRef {
	return core.ComponentRef{
		Quantity: d(qty),
		Snapshot: core.ComponentSnapshot{Name: name},
	}
}

func TestValidateAssembly(t *testing.T) {
	plc := component(1, "PLC", core.NIS, "100")

	tests := []struct {
		name      string
		assembly  core.Assembly
		expectErr bool
	}{
		{
			name:     "valid",
			assembly: core.Assembly{Name: "Control Panel", Components: []core.ComponentRef{resolvedRef(plc, "1")}},
		},
		{
			name:      "empty name",
			assembly:  core.Assembly{Name: "  ", Components: []core.ComponentRef{resolvedRef(plc, "1")}},
			expectErr: true,
		},
		{
			name:      "no components",
			assembly:  core.Assembly{Name: "Control Panel"},
			expectErr: true,
		},
		{
			name:      "zero quantity",
			assembly:  core.Assembly{Name: "Control Panel", Components: []core.ComponentRef{resolvedRef(plc, "0")}},
			expectErr: true,
		},
		{
			name:      "negative quantity",
			assembly:  core.Assembly{Name: "Control Panel", Components: []core.ComponentRef{resolvedRef(plc, "-2")}},
			expectErr: true,
		},
		{
			name:     "fractional and large quantities accepted",
			assembly: core.Assembly{Name: "Cabling", Components: []core.ComponentRef{resolvedRef(plc, "0.5"), resolvedRef(plc, "100000")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateAssembly(&tt.assembly)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var verr *core.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCalculateAssemblyPricing_MixedCurrencies(t *testing.T) {
	// 100 NIS × 1 and 100 USD × 1 at usdToIls = 3.7 → 100 + 370 = 470 NIS.
	a := core.Assembly{
		Name: "IO Rack",
		Components: []core.ComponentRef{
			resolvedRef(component(1, "Terminal Block", core.NIS, "100"), "1"),
			resolvedRef(component(2, "IO Module", core.USD, "100"), "1"),
		},
	}

	pricing, err := core.CalculateAssemblyPricing(&a, testRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !pricing.TotalCostNIS.Equal(d("470")) {
		t.Errorf("TotalCostNIS = %s, want 470", pricing.TotalCostNIS)
	}
	if pricing.ComponentCount != 2 {
		t.Errorf("ComponentCount = %d, want 2", pricing.ComponentCount)
	}
	if pricing.MissingComponentCount != 0 {
		t.Errorf("MissingComponentCount = %d, want 0", pricing.MissingComponentCount)
	}
	if !pricing.IsComplete {
		t.Error("IsComplete = false, want true")
	}

	nis := pricing.Breakdown[core.NIS]
	if nis.ComponentCount != 1 || !nis.Subtotal.Equal(d("100")) {
		t.Errorf("NIS breakdown = %+v, want 1 component subtotal 100", nis)
	}
	usd := pricing.Breakdown[core.USD]
	if usd.ComponentCount != 1 || !usd.Subtotal.Equal(d("100")) {
		t.Errorf("USD breakdown = %+v, want 1 component subtotal 100", usd)
	}
}

func TestCalculateAssemblyPricing_MissingComponentExcluded(t *testing.T) {
	// One resolved component (100 NIS × 2) plus one unresolved ref:
	// total 200, componentCount 1, missingComponentCount 1, incomplete.
	a := core.Assembly{
		Name: "Panel",
		Components: []core.ComponentRef{
			resolvedRef(component(1, "Relay", core.NIS, "100"), "2"),
			missingRef("Deleted Sensor", "3"),
		},
	}

	pricing, err := core.CalculateAssemblyPricing(&a, testRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pricing.TotalCostNIS.Equal(d("200")) {
		t.Errorf("TotalCostNIS = %s, want 200", pricing.TotalCostNIS)
	}
	if pricing.ComponentCount != 1 {
		t.Errorf("ComponentCount = %d, want 1", pricing.ComponentCount)
	}
	if pricing.MissingComponentCount != 1 {
		t.Errorf("MissingComponentCount = %d, want 1", pricing.MissingComponentCount)
	}
	if pricing.IsComplete {
		t.Error("IsComplete = true, want false")
	}
}

func TestCalculateAssemblyPricing_AllRefsMissing(t *testing.T) {
	a := core.Assembly{
		Name: "Legacy Panel",
		Components: []core.ComponentRef{
			missingRef("Gone A", "1"),
			missingRef("Gone B", "2"),
		},
	}

	pricing, err := core.CalculateAssemblyPricing(&a, testRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pricing.TotalCostNIS.IsZero() || !pricing.TotalCostUSD.IsZero() || !pricing.TotalCostEUR.IsZero() {
		t.Errorf("totals = %s/%s/%s, want all zero",
			pricing.TotalCostNIS, pricing.TotalCostUSD, pricing.TotalCostEUR)
	}
	if pricing.ComponentCount != 0 || pricing.MissingComponentCount != 2 {
		t.Errorf("counts = %d resolved / %d missing, want 0/2",
			pricing.ComponentCount, pricing.MissingComponentCount)
	}
	if pricing.IsComplete {
		t.Error("IsComplete = true, want false")
	}
}

func TestCalculateAssemblyPricing_ZeroCostContributesNothing(t *testing.T) {
	a := core.Assembly{
		Name: "Freebies",
		Components: []core.ComponentRef{
			resolvedRef(component(1, "Sample", core.USD, "0"), "500"),
		},
	}
	pricing, err := core.CalculateAssemblyPricing(&a, testRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pricing.TotalCostNIS.IsZero() {
		t.Errorf("TotalCostNIS = %s, want 0", pricing.TotalCostNIS)
	}
}

func TestCalculateAssemblyPricing_Idempotent(t *testing.T) {
	a := core.Assembly{
		Name: "Panel",
		Components: []core.ComponentRef{
			resolvedRef(component(1, "Relay", core.EUR, "12.34"), "3"),
			missingRef("Gone", "1"),
		},
	}
	first, err := core.CalculateAssemblyPricing(&a, testRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := core.CalculateAssemblyPricing(&a, testRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.TotalCostNIS.Equal(second.TotalCostNIS) ||
		first.ComponentCount != second.ComponentCount ||
		first.MissingComponentCount != second.MissingComponentCount {
		t.Errorf("two identical runs differ: %+v vs %+v", first, second)
	}
}

func TestCalculateAssemblyPricing_DoesNotMutateInput(t *testing.T) {
	c := component(1, "Relay", core.USD, "50")
	a := core.Assembly{
		Name:       "Panel",
		Components: []core.ComponentRef{resolvedRef(c, "2")},
	}

	if _, err := core.CalculateAssemblyPricing(&a, testRates()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !c.OriginalCost.Equal(d("50")) || c.OriginalCurrency != core.USD {
		t.Errorf("component originals mutated: %s %s", c.OriginalCost, c.OriginalCurrency)
	}
	if !a.Components[0].Quantity.Equal(d("2")) {
		t.Errorf("ref quantity mutated: %s", a.Components[0].Quantity)
	}
}

func TestCalculateAssemblyPricing_BadRates(t *testing.T) {
	a := core.Assembly{
		Name:       "Panel",
		Components: []core.ComponentRef{resolvedRef(component(1, "Relay", core.NIS, "10"), "1")},
	}
	_, err := core.CalculateAssemblyPricing(&a, core.ExchangeRateSet{USDToILS: d("-3.7"), EURToILS: d("4")})
	if err == nil {
		t.Fatal("expected configuration error, got nil")
	}
	var cerr *core.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Errorf("expected ConfigurationError, got %T: %v", err, err)
	}
}
