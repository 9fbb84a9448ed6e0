// app is the one-shot command line interface: list the catalog, inspect and
// recalculate quotations, and export documents without running the server.
//
// Usage: go run ./cmd/app <command> [args]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/eliko2000/CPQ-System-sub009/internal/adapters/cli"
	"github.com/eliko2000/CPQ-System-sub009/internal/adapters/export"
	"github.com/eliko2000/CPQ-System-sub009/internal/app"
	"github.com/eliko2000/CPQ-System-sub009/internal/config"
	"github.com/eliko2000/CPQ-System-sub009/internal/core"
	"github.com/eliko2000/CPQ-System-sub009/internal/db"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: app <command> [args]")
		fmt.Fprintln(os.Stderr, "Commands: components, quotes, show, recalc, export-pdf, export-excel")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	componentService := core.NewComponentService(pool)
	assemblyService := core.NewAssemblyService(pool)
	quotationService := core.NewQuotationService(pool, assemblyService)

	defaultRates, err := config.DefaultRates()
	if err != nil {
		log.Fatalf("rates: %v", err)
	}

	svc := app.NewAppService(
		componentService,
		assemblyService,
		quotationService,
		export.NewPDFRenderer(),
		export.NewExcelRenderer(),
		defaultRates,
	)

	cli.Run(ctx, svc, os.Args[1:])
}
