package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// componentColumns is the scan list shared by every component query.
const componentColumns = `id, name, manufacturer, part_number, description, category,
		original_currency, original_cost, cost_nis, cost_usd, cost_eur, created_at, updated_at`

// ComponentService manages the purchasable component catalog.
//
// The original currency and cost of a component are written only on create
// and on an explicit price edit. A rate change touches derived columns only
// (see RefreshDerivedCosts) — the engine invariant that originals never move
// as a side effect is enforced here at the persistence boundary.
type ComponentService interface {
	CreateComponent(ctx context.Context, in ComponentInput, rates ExchangeRateSet) (*Component, error)
	GetComponent(ctx context.Context, id int) (*Component, error)
	// ListComponents returns the catalog, optionally filtered by category
	// (empty string means all).
	ListComponents(ctx context.Context, category string) ([]Component, error)
	// UpdateComponent edits descriptive fields without touching any price column.
	UpdateComponent(ctx context.Context, id int, in ComponentInput) (*Component, error)
	// UpdateComponentPrice is the explicit price edit: the only write path
	// for original_currency and original_cost after creation.
	UpdateComponentPrice(ctx context.Context, id int, currency Currency, cost decimal.Decimal, rates ExchangeRateSet) (*Component, error)
	// DeleteComponent removes a component. Assembly refs pointing at it become
	// unresolved and fall back to their snapshots.
	DeleteComponent(ctx context.Context, id int) error
	// RefreshDerivedCosts recomputes cost_nis/cost_usd/cost_eur for the whole
	// catalog from the original columns at the given rates. Returns the number
	// of components updated.
	RefreshDerivedCosts(ctx context.Context, rates ExchangeRateSet) (int, error)
}

// ComponentInput holds the caller-supplied fields of a component.
type ComponentInput struct {
	Name             string
	Manufacturer     string
	PartNumber       string
	Description      string
	Category         string
	OriginalCurrency Currency
	OriginalCost     decimal.Decimal
}

func (in ComponentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationErr("component.name", "name must not be empty")
	}
	if in.OriginalCost.IsNegative() {
		return validationErr("component.original_cost", "cost must not be negative, got %s", in.OriginalCost)
	}
	if _, err := ParseCurrency(string(in.OriginalCurrency)); err != nil {
		return err
	}
	return nil
}

type componentService struct {
	pool *pgxpool.Pool
}

func NewComponentService(pool *pgxpool.Pool) ComponentService {
	return &componentService{pool: pool}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanComponent(row pgx.Row) (*Component, error) {
	var c Component
	var currency string
	if err := row.Scan(
		&c.ID, &c.Name, &c.Manufacturer, &c.PartNumber, &c.Description, &c.Category,
		&currency, &c.OriginalCost, &c.CostNIS, &c.CostUSD, &c.CostEUR,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.OriginalCurrency = Currency(currency)
	return &c, nil
}

func (s *componentService) CreateComponent(ctx context.Context, in ComponentInput, rates ExchangeRateSet) (*Component, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	derived, err := ConvertToAllCurrencies(in.OriginalCost, in.OriginalCurrency, rates)
	if err != nil {
		return nil, err
	}
	derived = derived.Round(2)

	c, err := scanComponent(s.pool.QueryRow(ctx, `
		INSERT INTO components (name, manufacturer, part_number, description, category,
			original_currency, original_cost, cost_nis, cost_usd, cost_eur)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+componentColumns,
		in.Name, in.Manufacturer, in.PartNumber, in.Description, in.Category,
		string(in.OriginalCurrency), in.OriginalCost, derived.NIS, derived.USD, derived.EUR,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create component: %w", err)
	}
	return c, nil
}

func (s *componentService) GetComponent(ctx context.Context, id int) (*Component, error) {
	c, err := scanComponent(s.pool.QueryRow(ctx,
		"SELECT "+componentColumns+" FROM components WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("component %d not found", id)
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}
	return c, nil
}

func (s *componentService) ListComponents(ctx context.Context, category string) ([]Component, error) {
	q := "SELECT " + componentColumns + " FROM components"
	args := []any{}
	if category != "" {
		q += " WHERE category = $1"
		args = append(args, category)
	}
	q += " ORDER BY name, id"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	var components []Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, *c)
	}
	return components, rows.Err()
}

func (s *componentService) UpdateComponent(ctx context.Context, id int, in ComponentInput) (*Component, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationErr("component.name", "name must not be empty")
	}
	c, err := scanComponent(s.pool.QueryRow(ctx, `
		UPDATE components
		SET name = $2, manufacturer = $3, part_number = $4, description = $5,
		    category = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+componentColumns,
		id, in.Name, in.Manufacturer, in.PartNumber, in.Description, in.Category,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("component %d not found", id)
		}
		return nil, fmt.Errorf("failed to update component: %w", err)
	}
	return c, nil
}

func (s *componentService) UpdateComponentPrice(ctx context.Context, id int, currency Currency, cost decimal.Decimal, rates ExchangeRateSet) (*Component, error) {
	parsed, err := ParseCurrency(string(currency))
	if err != nil {
		return nil, err
	}
	if cost.IsNegative() {
		return nil, validationErr("component.original_cost", "cost must not be negative, got %s", cost)
	}
	derived, err := ConvertToAllCurrencies(cost, parsed, rates)
	if err != nil {
		return nil, err
	}
	derived = derived.Round(2)

	c, err := scanComponent(s.pool.QueryRow(ctx, `
		UPDATE components
		SET original_currency = $2, original_cost = $3,
		    cost_nis = $4, cost_usd = $5, cost_eur = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+componentColumns,
		id, string(parsed), cost, derived.NIS, derived.USD, derived.EUR,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("component %d not found", id)
		}
		return nil, fmt.Errorf("failed to update component price: %w", err)
	}
	return c, nil
}

func (s *componentService) DeleteComponent(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM components WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %d not found", id)
	}
	// Assemblies that referenced it are now incomplete; their is_complete flag
	// is corrected by the next pricing run, which recomputes it from the refs.
	_, err = s.pool.Exec(ctx, `
		UPDATE assemblies SET is_complete = false, updated_at = now()
		WHERE id IN (SELECT assembly_id FROM assembly_components WHERE component_id = $1)`, id)
	if err != nil {
		return fmt.Errorf("failed to flag incomplete assemblies: %w", err)
	}
	return nil
}

func (s *componentService) RefreshDerivedCosts(ctx context.Context, rates ExchangeRateSet) (int, error) {
	if err := rates.Validate(); err != nil {
		return 0, err
	}

	rows, err := s.pool.Query(ctx, "SELECT id, original_currency, original_cost FROM components")
	if err != nil {
		return 0, fmt.Errorf("failed to query components for refresh: %w", err)
	}
	defer rows.Close()

	type row struct {
		id       int
		currency string
		cost     decimal.Decimal
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.currency, &r.cost); err != nil {
			return 0, fmt.Errorf("failed to scan component for refresh: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	updated := 0
	for _, r := range all {
		derived, err := ConvertToAllCurrencies(r.cost, Currency(r.currency), rates)
		if err != nil {
			return updated, fmt.Errorf("failed to convert component %d: %w", r.id, err)
		}
		derived = derived.Round(2)
		// Derived columns only — originals are untouched by a rate refresh.
		if _, err := s.pool.Exec(ctx, `
			UPDATE components SET cost_nis = $2, cost_usd = $3, cost_eur = $4, updated_at = now()
			WHERE id = $1`,
			r.id, derived.NIS, derived.USD, derived.EUR,
		); err != nil {
			return updated, fmt.Errorf("failed to refresh component %d: %w", r.id, err)
		}
		updated++
	}
	return updated, nil
}
