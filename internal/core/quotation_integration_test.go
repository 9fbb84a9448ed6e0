package core_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

func testQuotationParams() core.QuotationParameters {
	d := decimal.RequireFromString
	return core.QuotationParameters{
		USDToILSRate:  d("3.7"),
		EURToILSRate:  d("4.0"),
		MarkupPercent: d("25"),
		RiskPercent:   d("5"),
		VATRate:       d("17"),
		IncludeVAT:    true,
		DayWorkCost:   d("1800"),
	}
}

func TestQuotationService_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	assemblies := core.NewAssemblyService(pool)
	quotations := core.NewQuotationService(pool, assemblies)

	q, err := quotations.CreateQuotation(ctx, "Acme", "Line 4", testQuotationParams())
	if err != nil {
		t.Fatalf("CreateQuotation: %v", err)
	}
	if q.Status != core.QuotationStatusDraft {
		t.Errorf("new quotation status = %s, want draft", q.Status)
	}
	if !strings.HasPrefix(q.QuoteNumber, "Q-") {
		t.Errorf("quote number = %q", q.QuoteNumber)
	}

	// draft → won is illegal
	if _, err := quotations.TransitionStatus(ctx, q.ID, core.QuotationStatusWon); err == nil {
		t.Error("expected error for draft → won")
	}

	sent, err := quotations.TransitionStatus(ctx, q.ID, core.QuotationStatusSent)
	if err != nil {
		t.Fatalf("TransitionStatus draft → sent: %v", err)
	}
	if sent.Status != core.QuotationStatusSent {
		t.Errorf("status = %s, want sent", sent.Status)
	}
	if _, err := quotations.TransitionStatus(ctx, q.ID, core.QuotationStatusLost); err != nil {
		t.Fatalf("TransitionStatus sent → lost: %v", err)
	}
	// lost is terminal
	if _, err := quotations.TransitionStatus(ctx, q.ID, core.QuotationStatusDraft); err == nil {
		t.Error("expected error for lost → draft")
	}
}

func TestQuotationService_NumbersAreSequential(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	assemblies := core.NewAssemblyService(pool)
	quotations := core.NewQuotationService(pool, assemblies)

	first, err := quotations.CreateQuotation(ctx, "A", "", testQuotationParams())
	if err != nil {
		t.Fatalf("CreateQuotation: %v", err)
	}
	second, err := quotations.CreateQuotation(ctx, "B", "", testQuotationParams())
	if err != nil {
		t.Fatalf("CreateQuotation: %v", err)
	}
	if first.QuoteNumber == second.QuoteNumber {
		t.Fatalf("duplicate quote numbers: %s", first.QuoteNumber)
	}
	if !strings.HasSuffix(first.QuoteNumber, "0001") || !strings.HasSuffix(second.QuoteNumber, "0002") {
		t.Errorf("numbers = %s, %s; want ...0001, ...0002", first.QuoteNumber, second.QuoteNumber)
	}
}

func TestQuotationService_ItemsAndRecalculate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	d := decimal.RequireFromString
	components := core.NewComponentService(pool)
	assemblies := core.NewAssemblyService(pool)
	quotations := core.NewQuotationService(pool, assemblies)

	cpu := mustCreateComponent(t, components, "CPU", core.USD, "100")

	q, err := quotations.CreateQuotation(ctx, "Acme", "", testQuotationParams())
	if err != nil {
		t.Fatalf("CreateQuotation: %v", err)
	}

	item, err := quotations.AddComponentItem(ctx, q.ID, cpu.ID, d("2"), nil)
	if err != nil {
		t.Fatalf("AddComponentItem: %v", err)
	}
	// snapshot of the source originals
	if item.OriginalCurrency != core.USD || !item.OriginalCost.Equal(d("100")) {
		t.Errorf("snapshot = %s %s, want USD 100", item.OriginalCurrency, item.OriginalCost)
	}
	// default markup from parameters
	if !item.MarkupPercent.Equal(d("25")) {
		t.Errorf("markup = %s, want 25 (quotation default)", item.MarkupPercent)
	}

	if _, err := quotations.AddLaborItem(ctx, q.ID, core.LaborEngineering, "Design", d("3"), nil, nil); err != nil {
		t.Fatalf("AddLaborItem: %v", err)
	}

	calc, err := quotations.Recalculate(ctx, q.ID)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	// 2 × 100 USD @3.7 = 740; labor 3 × 1800 = 5400
	if !calc.SubtotalILS.Equal(d("6140")) {
		t.Errorf("cost subtotal = %s, want 6140", calc.SubtotalILS)
	}
	hw := calc.ByType[core.ItemTypeHardware]
	if !hw.TotalPriceILS.Equal(d("740")) {
		t.Errorf("hardware cost = %s, want 740", hw.TotalPriceILS)
	}
	eng := calc.LaborBySubtype[core.LaborEngineering]
	if !eng.TotalPriceILS.Equal(d("5400")) {
		t.Errorf("engineering cost = %s, want 5400", eng.TotalPriceILS)
	}

	// Changing the source component's price must not move the snapshot.
	if _, err := components.UpdateComponentPrice(ctx, cpu.ID, core.USD, d("999"), testRates()); err != nil {
		t.Fatalf("UpdateComponentPrice: %v", err)
	}
	again, err := quotations.Recalculate(ctx, q.ID)
	if err != nil {
		t.Fatalf("Recalculate after source edit: %v", err)
	}
	if !again.SubtotalILS.Equal(calc.SubtotalILS) {
		t.Errorf("source price edit leaked into quotation: %s", again.SubtotalILS)
	}

	// The explicit item edit is the one path that moves it.
	updated, err := quotations.UpdateItemPrice(ctx, q.ID, item.ID, core.USD, d("150"))
	if err != nil {
		t.Fatalf("UpdateItemPrice: %v", err)
	}
	if !updated.OriginalCost.Equal(d("150")) {
		t.Errorf("edited cost = %s, want 150", updated.OriginalCost)
	}
	final, err := quotations.Recalculate(ctx, q.ID)
	if err != nil {
		t.Fatalf("Recalculate after item edit: %v", err)
	}
	// 2 × 150 USD @3.7 = 1110; + 5400 labor
	if !final.SubtotalILS.Equal(d("6510")) {
		t.Errorf("cost subtotal after edit = %s, want 6510", final.SubtotalILS)
	}
}

func TestQuotationService_AssemblyItemSnapshot(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	d := decimal.RequireFromString
	components := core.NewComponentService(pool)
	assemblies := core.NewAssemblyService(pool)
	quotations := core.NewQuotationService(pool, assemblies)

	c := mustCreateComponent(t, components, "IO card", core.USD, "100")
	a, err := assemblies.CreateAssembly(ctx, "IO rack", "")
	if err != nil {
		t.Fatalf("CreateAssembly: %v", err)
	}
	if _, err := assemblies.AddComponent(ctx, a.ID, c.ID, d("3")); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}

	q, err := quotations.CreateQuotation(ctx, "Acme", "", testQuotationParams())
	if err != nil {
		t.Fatalf("CreateQuotation: %v", err)
	}
	item, err := quotations.AddAssemblyItem(ctx, q.ID, a.ID, d("1"), nil)
	if err != nil {
		t.Fatalf("AddAssemblyItem: %v", err)
	}
	// rolled up at the quotation's rates: 3 × 100 USD @3.7 = 1110 NIS
	if item.OriginalCurrency != core.NIS || !item.OriginalCost.Equal(d("1110")) {
		t.Errorf("assembly snapshot = %s %s, want NIS 1110", item.OriginalCurrency, item.OriginalCost)
	}
	if item.SourceAssemblyID == nil || *item.SourceAssemblyID != a.ID {
		t.Error("item does not record its source assembly")
	}
}
