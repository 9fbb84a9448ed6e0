package core_test

import (
	"errors"
	"testing"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

func testParams() core.QuotationParameters {
	return core.QuotationParameters{
		USDToILSRate: d("3.7"),
		EURToILSRate: d("4.0"),
		RiskPercent:  d("5"),
		VATRate:      d("17"),
		IncludeVAT:   true,
		DayWorkCost:  d("1800"),
	}
}

func hardwareItem(id int, currency core.Currency, cost, qty, markup string) core.QuotationItem {
	return core.QuotationItem{
		ID:               id,
		Name:             "Hardware Line",
		ItemType:         core.ItemTypeHardware,
		Quantity:         d(qty),
		OriginalCurrency: currency,
		OriginalCost:     d(cost),
		PricingMode:      core.PricingCostPlus,
		MarkupPercent:    d(markup),
	}
}

func TestQuotationItem_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*core.QuotationItem)
		expectErr bool
	}{
		{name: "valid cost-plus", mutate: func(it *core.QuotationItem) {}},
		{name: "empty name", mutate: func(it *core.QuotationItem) { it.Name = " " }, expectErr: true},
		{name: "zero quantity", mutate: func(it *core.QuotationItem) { it.Quantity = d("0") }, expectErr: true},
		{name: "negative quantity", mutate: func(it *core.QuotationItem) { it.Quantity = d("-1") }, expectErr: true},
		{name: "negative cost", mutate: func(it *core.QuotationItem) { it.OriginalCost = d("-10") }, expectErr: true},
		{name: "bad currency", mutate: func(it *core.QuotationItem) { it.OriginalCurrency = "GBP" }, expectErr: true},
		{name: "bad item type", mutate: func(it *core.QuotationItem) { it.ItemType = "firmware" }, expectErr: true},
		{
			name:      "labor without subtype",
			mutate:    func(it *core.QuotationItem) { it.ItemType = core.ItemTypeLabor },
			expectErr: true,
		},
		{
			name: "labor with subtype",
			mutate: func(it *core.QuotationItem) {
				it.ItemType = core.ItemTypeLabor
				it.LaborSubtype = core.LaborCommissioning
			},
		},
		{
			name:      "subtype on hardware",
			mutate:    func(it *core.QuotationItem) { it.LaborSubtype = core.LaborEngineering },
			expectErr: true,
		},
		{
			name:      "negative markup",
			mutate:    func(it *core.QuotationItem) { it.MarkupPercent = d("-5") },
			expectErr: true,
		},
		{
			name: "cost-plus with MSRP fields",
			mutate: func(it *core.QuotationItem) {
				it.MSRPPrice = d("500")
				it.MSRPCurrency = core.USD
			},
			expectErr: true,
		},
		{
			name: "valid msrp",
			mutate: func(it *core.QuotationItem) {
				it.PricingMode = core.PricingMSRP
				it.MarkupPercent = d("0")
				it.MSRPPrice = d("500")
				it.MSRPCurrency = core.USD
				it.PartnerDiscountPercent = d("30")
			},
		},
		{
			name: "msrp without list price",
			mutate: func(it *core.QuotationItem) {
				it.PricingMode = core.PricingMSRP
				it.MarkupPercent = d("0")
				it.MSRPCurrency = core.USD
			},
			expectErr: true,
		},
		{
			name: "msrp with markup set",
			mutate: func(it *core.QuotationItem) {
				it.PricingMode = core.PricingMSRP
				it.MSRPPrice = d("500")
				it.MSRPCurrency = core.USD
			},
			expectErr: true,
		},
		{
			name: "msrp discount over 100",
			mutate: func(it *core.QuotationItem) {
				it.PricingMode = core.PricingMSRP
				it.MarkupPercent = d("0")
				it.MSRPPrice = d("500")
				it.MSRPCurrency = core.USD
				it.PartnerDiscountPercent = d("120")
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := hardwareItem(1, core.NIS, "100", "1", "25")
			tt.mutate(&it)
			it.Normalize()
			err := it.Validate()
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

func TestCalculateQuotation_CascadeScenario(t *testing.T) {
	// One hardware item, cost 1000 ILS, markup 25%:
	//   customer price 1250, risk 5% → 62.5, quote 1312.5,
	//   VAT 17% → 223.125, final 1535.625.
	items := []core.QuotationItem{hardwareItem(1, core.NIS, "1000", "1", "25")}

	calc, err := core.CalculateQuotation(7, items, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"SubtotalILS", calc.SubtotalILS.String(), "1000"},
		{"TotalCustomerPriceILS", calc.TotalCustomerPriceILS.String(), "1250"},
		{"RiskAdditionILS", calc.RiskAdditionILS.String(), "62.5"},
		{"TotalQuoteILS", calc.TotalQuoteILS.String(), "1312.5"},
		{"TotalVATILS", calc.TotalVATILS.String(), "223.125"},
		{"FinalTotalILS", calc.FinalTotalILS.String(), "1535.625"},
		{"ProfitMarginPercent", calc.ProfitMarginPercent.String(), "20"},
	}
	for _, c := range checks {
		if !d(c.got).Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	hw := calc.ByType[core.ItemTypeHardware]
	if hw.ItemCount != 1 || !hw.TotalPriceILS.Equal(d("1000")) || !hw.CustomerPriceILS.Equal(d("1250")) {
		t.Errorf("hardware bucket = %+v", hw)
	}
}

func TestCalculateQuotation_ExcludeVAT(t *testing.T) {
	params := testParams()
	params.IncludeVAT = false

	calc, err := core.CalculateQuotation(1, []core.QuotationItem{hardwareItem(1, core.NIS, "1000", "1", "25")}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !calc.TotalVATILS.IsZero() {
		t.Errorf("TotalVATILS = %s, want 0", calc.TotalVATILS)
	}
	if !calc.FinalTotalILS.Equal(d("1312.5")) {
		t.Errorf("FinalTotalILS = %s, want 1312.5", calc.FinalTotalILS)
	}
}

func TestCalculateQuotation_RateChangeDoesNotDrift(t *testing.T) {
	// A USD item recomputes unitPriceILS from its own originals at the new
	// rate — never from the previous run's ILS values.
	item := hardwareItem(1, core.USD, "100", "1", "0")

	params := testParams()
	first, err := core.CalculateQuotation(1, []core.QuotationItem{item}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Items[0].UnitPriceILS.Equal(d("370")) {
		t.Errorf("UnitPriceILS at 3.7 = %s, want 370", first.Items[0].UnitPriceILS)
	}

	params.USDToILSRate = d("4.0")
	second, err := core.CalculateQuotation(1, []core.QuotationItem{item}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Items[0].UnitPriceILS.Equal(d("400")) {
		t.Errorf("UnitPriceILS at 4.0 = %s, want 400", second.Items[0].UnitPriceILS)
	}

	// Originals untouched.
	if !item.OriginalCost.Equal(d("100")) || item.OriginalCurrency != core.USD {
		t.Errorf("item originals changed: %s %s", item.OriginalCost, item.OriginalCurrency)
	}

	// Re-running at the original rate converges back to the original result.
	params.USDToILSRate = d("3.7")
	third, err := core.CalculateQuotation(1, []core.QuotationItem{item}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !third.FinalTotalILS.Equal(first.FinalTotalILS) {
		t.Errorf("rate round-trip drifted: %s vs %s", third.FinalTotalILS, first.FinalTotalILS)
	}
}

func TestCalculateQuotation_MSRPMode(t *testing.T) {
	// MSRP 500 USD at 3.7 = 1850 ILS list; 30% partner discount → 1295 customer.
	// Cost 300 USD = 1110 ILS still feeds the cost basis for margin.
	item := core.QuotationItem{
		ID:                     2,
		Name:                   "Licensed SCADA Package",
		ItemType:               core.ItemTypeSoftware,
		Quantity:               d("1"),
		OriginalCurrency:       core.USD,
		OriginalCost:           d("300"),
		PricingMode:            core.PricingMSRP,
		MSRPPrice:              d("500"),
		MSRPCurrency:           core.USD,
		PartnerDiscountPercent: d("30"),
	}

	calc, err := core.CalculateQuotation(1, []core.QuotationItem{item}, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := calc.Items[0]
	if !got.CustomerPriceILS.Equal(d("1295")) {
		t.Errorf("CustomerPriceILS = %s, want 1295", got.CustomerPriceILS)
	}
	if !got.TotalPriceILS.Equal(d("1110")) {
		t.Errorf("TotalPriceILS (cost basis) = %s, want 1110", got.TotalPriceILS)
	}
	if !calc.SubtotalILS.Equal(d("1110")) || !calc.TotalCustomerPriceILS.Equal(d("1295")) {
		t.Errorf("cascade bases = %s / %s, want 1110 / 1295", calc.SubtotalILS, calc.TotalCustomerPriceILS)
	}
}

func TestCalculateQuotation_LaborSubtypeGrouping(t *testing.T) {
	labor := func(id int, subtype core.LaborSubtype, days string) core.QuotationItem {
		return core.QuotationItem{
			ID:               id,
			Name:             string(subtype) + " days",
			ItemType:         core.ItemTypeLabor,
			LaborSubtype:     subtype,
			Quantity:         d(days),
			OriginalCurrency: core.NIS,
			OriginalCost:     d("1800"),
			PricingMode:      core.PricingCostPlus,
			MarkupPercent:    d("10"),
		}
	}

	items := []core.QuotationItem{
		labor(1, core.LaborEngineering, "5"),
		labor(2, core.LaborEngineering, "3"),
		labor(3, core.LaborCommissioning, "2"),
		hardwareItem(4, core.NIS, "100", "1", "25"),
	}

	calc, err := core.CalculateQuotation(1, items, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lb := calc.ByType[core.ItemTypeLabor]
	if lb.ItemCount != 3 || !lb.TotalPriceILS.Equal(d("18000")) {
		t.Errorf("labor bucket = %+v, want 3 items costing 18000", lb)
	}

	eng := calc.LaborBySubtype[core.LaborEngineering]
	if eng.ItemCount != 2 || !eng.TotalPriceILS.Equal(d("14400")) {
		t.Errorf("engineering bucket = %+v, want 2 items costing 14400", eng)
	}
	com := calc.LaborBySubtype[core.LaborCommissioning]
	if com.ItemCount != 1 || !com.TotalPriceILS.Equal(d("3600")) {
		t.Errorf("commissioning bucket = %+v, want 1 item costing 3600", com)
	}
	if _, ok := calc.LaborBySubtype[core.LaborInstallation]; ok {
		t.Error("unexpected installation bucket")
	}
}

func TestCalculateQuotation_EmptyAndZeroGuards(t *testing.T) {
	calc, err := core.CalculateQuotation(1, nil, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !calc.FinalTotalILS.IsZero() {
		t.Errorf("FinalTotalILS = %s, want 0", calc.FinalTotalILS)
	}
	// Division guard: no customer price means margin 0, not a panic or NaN.
	if !calc.ProfitMarginPercent.IsZero() {
		t.Errorf("ProfitMarginPercent = %s, want 0", calc.ProfitMarginPercent)
	}

	// Zero-cost item contributes 0 regardless of quantity.
	calc, err = core.CalculateQuotation(1, []core.QuotationItem{hardwareItem(1, core.USD, "0", "9999", "25")}, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !calc.SubtotalILS.IsZero() || !calc.TotalCustomerPriceILS.IsZero() {
		t.Errorf("zero-cost item produced %s / %s", calc.SubtotalILS, calc.TotalCustomerPriceILS)
	}
}

func TestCalculateQuotation_InvalidItemFailsFast(t *testing.T) {
	items := []core.QuotationItem{
		hardwareItem(1, core.NIS, "100", "1", "25"),
		hardwareItem(2, core.NIS, "100", "-1", "25"), // rejected, not silently ignored
	}
	_, err := core.CalculateQuotation(1, items, testParams())
	if err == nil {
		t.Fatal("expected validation error for non-positive quantity, got nil")
	}
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestCalculateQuotation_BadParamsFailLoudly(t *testing.T) {
	params := testParams()
	params.USDToILSRate = d("0")
	_, err := core.CalculateQuotation(1, []core.QuotationItem{hardwareItem(1, core.NIS, "100", "1", "0")}, params)
	if err == nil {
		t.Fatal("expected configuration error, got nil")
	}
	var cerr *core.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Errorf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestCalculateQuotation_Idempotent(t *testing.T) {
	items := []core.QuotationItem{
		hardwareItem(1, core.USD, "123.45", "2.5", "18"),
		hardwareItem(2, core.EUR, "67.89", "4", "22"),
	}
	first, err := core.CalculateQuotation(1, items, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := core.CalculateQuotation(1, items, testParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.FinalTotalILS.Equal(second.FinalTotalILS) ||
		!first.ProfitMarginPercent.Equal(second.ProfitMarginPercent) {
		t.Errorf("two identical runs differ: %s vs %s", first.FinalTotalILS, second.FinalTotalILS)
	}
}
