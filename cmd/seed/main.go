// seed loads a small demo catalog: a handful of components, one assembly,
// and a draft quotation. Run it against a fresh database after ./cmd/migrate.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
	"github.com/eliko2000/CPQ-System-sub009/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	d := decimal.RequireFromString
	rates := core.ExchangeRateSet{USDToILS: d("3.7"), EURToILS: d("4.0")}

	components := core.NewComponentService(pool)
	assemblies := core.NewAssemblyService(pool)
	quotations := core.NewQuotationService(pool, assemblies)

	log.Println("Seeding components...")
	catalog := []core.ComponentInput{
		{Name: "S7-1500 CPU 1511-1 PN", Manufacturer: "Siemens", PartNumber: "6ES7511-1AK02-0AB0", Category: "plc", OriginalCurrency: core.EUR, OriginalCost: d("1850")},
		{Name: "ET 200SP IO module", Manufacturer: "Siemens", PartNumber: "6ES7131-6BF01-0BA0", Category: "io", OriginalCurrency: core.EUR, OriginalCost: d("95.50")},
		{Name: "PowerFlex 525 drive 2.2kW", Manufacturer: "Allen-Bradley", PartNumber: "25B-D6P0N104", Category: "drives", OriginalCurrency: core.USD, OriginalCost: d("640")},
		{Name: "24V 10A power supply", Manufacturer: "Mean Well", PartNumber: "SDR-240-24", Category: "power", OriginalCurrency: core.USD, OriginalCost: d("88")},
		{Name: "Control cabinet 800x2000", Manufacturer: "Rittal", PartNumber: "VX 8806.000", Category: "enclosures", OriginalCurrency: core.NIS, OriginalCost: d("4200")},
	}
	ids := make([]int, 0, len(catalog))
	for _, in := range catalog {
		c, err := components.CreateComponent(ctx, in, rates)
		if err != nil {
			log.Fatalf("Failed to create component %q: %v", in.Name, err)
		}
		ids = append(ids, c.ID)
	}

	log.Println("Seeding assembly...")
	a, err := assemblies.CreateAssembly(ctx, "Main control panel", "CPU, IO, power and enclosure for one line")
	if err != nil {
		log.Fatalf("Failed to create assembly: %v", err)
	}
	for i, qty := range []string{"1", "4", "2", "1", "1"} {
		if _, err := assemblies.AddComponent(ctx, a.ID, ids[i], d(qty)); err != nil {
			log.Fatalf("Failed to add assembly component: %v", err)
		}
	}

	log.Println("Seeding quotation...")
	q, err := quotations.CreateQuotation(ctx, "Demo Customer Ltd", "Packaging line retrofit", core.QuotationParameters{
		USDToILSRate:  rates.USDToILS,
		EURToILSRate:  rates.EURToILS,
		MarkupPercent: d("25"),
		RiskPercent:   d("5"),
		VATRate:       d("17"),
		IncludeVAT:    true,
		DayWorkCost:   d("1800"),
	})
	if err != nil {
		log.Fatalf("Failed to create quotation: %v", err)
	}
	if _, err := quotations.AddAssemblyItem(ctx, q.ID, a.ID, d("1"), nil); err != nil {
		log.Fatalf("Failed to add assembly item: %v", err)
	}
	if _, err := quotations.AddLaborItem(ctx, q.ID, core.LaborEngineering, "Electrical design", d("8"), nil, nil); err != nil {
		log.Fatalf("Failed to add labor item: %v", err)
	}
	if _, err := quotations.Recalculate(ctx, q.ID); err != nil {
		log.Fatalf("Failed to recalculate: %v", err)
	}

	log.Printf("Seed complete: quotation %s", q.QuoteNumber)
}
