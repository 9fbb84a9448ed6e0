package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/eliko2000/CPQ-System-sub009/internal/adapters/export"
	webAdapter "github.com/eliko2000/CPQ-System-sub009/internal/adapters/web"
	"github.com/eliko2000/CPQ-System-sub009/internal/app"
	"github.com/eliko2000/CPQ-System-sub009/internal/config"
	"github.com/eliko2000/CPQ-System-sub009/internal/core"
	"github.com/eliko2000/CPQ-System-sub009/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
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

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
