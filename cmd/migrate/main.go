// migrate applies the SQL files under migrations/ in lexical order.
// Each file is applied in its own transaction and recorded in
// schema_migrations, so reruns are no-ops.
//
// Usage: go run ./cmd/migrate [migrations-dir]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/eliko2000/CPQ-System-sub009/internal/db"
)

func main() {
	_ = godotenv.Load()

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("failed to create schema_migrations: %v", err)
	}

	files, err := sqlFiles(dir)
	if err != nil {
		log.Fatalf("failed to list migrations: %v", err)
	}

	applied := 0
	for _, name := range files {
		done, err := apply(ctx, pool, dir, name)
		if err != nil {
			log.Fatalf("migration %s: %v", name, err)
		}
		if done {
			log.Printf("applied %s", name)
			applied++
		}
	}
	log.Printf("done, %d new migration(s)", applied)
}

func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// apply runs one migration file inside a transaction. Returns false when the
// file was already applied.
func apply(ctx context.Context, pool *pgxpool.Pool, dir, name string) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)", name,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check state: %w", err)
	}
	if exists {
		return false, nil
	}

	sql, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return false, fmt.Errorf("failed to execute: %w", err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (filename) VALUES ($1)", name); err != nil {
		return false, fmt.Errorf("failed to record: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}
