package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AssemblyService manages assemblies and their component refs. Refs carry a
// snapshot of the component's display fields taken at link time, so a ref
// stays renderable after the component is deleted; such refs load as
// unresolved and are excluded from cost totals by the roll-up.
type AssemblyService interface {
	CreateAssembly(ctx context.Context, name, description string) (*Assembly, error)
	GetAssembly(ctx context.Context, id int) (*Assembly, error)
	ListAssemblies(ctx context.Context) ([]Assembly, error)
	DeleteAssembly(ctx context.Context, id int) error

	// AddComponent links a component into the assembly with the given quantity,
	// capturing the snapshot. Quantity must be > 0.
	AddComponent(ctx context.Context, assemblyID, componentID int, quantity decimal.Decimal) (*Assembly, error)
	// RemoveComponent removes one ref (by ref id, not component id — the same
	// component may appear more than once).
	RemoveComponent(ctx context.Context, assemblyID, refID int) (*Assembly, error)
	// ReorderComponents rewrites ref positions to match the given ref id order.
	// Every current ref of the assembly must appear exactly once.
	ReorderComponents(ctx context.Context, assemblyID int, refIDs []int) (*Assembly, error)

	// PriceAssembly loads the assembly, runs the cost roll-up at the given
	// rates, and persists the recomputed is_complete flag.
	PriceAssembly(ctx context.Context, id int, rates ExchangeRateSet) (*AssemblyPricing, error)
}

type assemblyService struct {
	pool *pgxpool.Pool
}

func NewAssemblyService(pool *pgxpool.Pool) AssemblyService {
	return &assemblyService{pool: pool}
}

func (s *assemblyService) CreateAssembly(ctx context.Context, name, description string) (*Assembly, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("assembly.name", "name must not be empty")
	}
	var a Assembly
	err := s.pool.QueryRow(ctx, `
		INSERT INTO assemblies (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, is_complete, created_at, updated_at`,
		name, description,
	).Scan(&a.ID, &a.Name, &a.Description, &a.IsComplete, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create assembly: %w", err)
	}
	return &a, nil
}

// GetAssembly loads the assembly with its refs resolved against the live
// catalog via LEFT JOIN: a ref whose component row is gone comes back with a
// nil Component and only its snapshot populated.
func (s *assemblyService) GetAssembly(ctx context.Context, id int) (*Assembly, error) {
	var a Assembly
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, is_complete, created_at, updated_at
		FROM assemblies WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Description, &a.IsComplete, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assembly %d not found", id)
		}
		return nil, fmt.Errorf("failed to get assembly: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ac.id, ac.assembly_id, ac.component_id, ac.position, ac.quantity,
		       ac.snapshot_name, ac.snapshot_manufacturer, ac.snapshot_part_number,
		       c.id, c.name, c.manufacturer, c.part_number, c.description, c.category,
		       c.original_currency, c.original_cost, c.cost_nis, c.cost_usd, c.cost_eur,
		       c.created_at, c.updated_at
		FROM assembly_components ac
		LEFT JOIN components c ON c.id = ac.component_id
		WHERE ac.assembly_id = $1
		ORDER BY ac.position, ac.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query assembly components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref ComponentRef
		var (
			compID       *int
			compName     *string
			compMfr      *string
			compPN       *string
			compDesc     *string
			compCategory *string
			compCurrency *string
			compCost     *decimal.Decimal
			costNIS      *decimal.Decimal
			costUSD      *decimal.Decimal
			costEUR      *decimal.Decimal
			created      *time.Time
			updated      *time.Time
		)
		if err := rows.Scan(
			&ref.ID, &ref.AssemblyID, &ref.ComponentID, &ref.Position, &ref.Quantity,
			&ref.Snapshot.Name, &ref.Snapshot.Manufacturer, &ref.Snapshot.PartNumber,
			&compID, &compName, &compMfr, &compPN, &compDesc, &compCategory,
			&compCurrency, &compCost, &costNIS, &costUSD, &costEUR,
			&created, &updated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assembly component: %w", err)
		}
		if compID != nil {
			ref.Component = &Component{
				ID:               *compID,
				Name:             deref(compName),
				Manufacturer:     deref(compMfr),
				PartNumber:       deref(compPN),
				Description:      deref(compDesc),
				Category:         deref(compCategory),
				OriginalCurrency: Currency(deref(compCurrency)),
				OriginalCost:     derefDec(compCost),
				CostNIS:          derefDec(costNIS),
				CostUSD:          derefDec(costUSD),
				CostEUR:          derefDec(costEUR),
			}
			if created != nil {
				ref.Component.CreatedAt = *created
			}
			if updated != nil {
				ref.Component.UpdatedAt = *updated
			}
		}
		a.Components = append(a.Components, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *assemblyService) ListAssemblies(ctx context.Context) ([]Assembly, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, is_complete, created_at, updated_at
		FROM assemblies
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assemblies: %w", err)
	}
	defer rows.Close()

	var assemblies []Assembly
	for rows.Next() {
		var a Assembly
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.IsComplete,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assembly: %w", err)
		}
		assemblies = append(assemblies, a)
	}
	return assemblies, rows.Err()
}

func (s *assemblyService) DeleteAssembly(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM assemblies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete assembly: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assembly %d not found", id)
	}
	return nil
}

func (s *assemblyService) AddComponent(ctx context.Context, assemblyID, componentID int, quantity decimal.Decimal) (*Assembly, error) {
	if !quantity.IsPositive() {
		return nil, validationErr("assembly.components", "quantity must be > 0, got %s", quantity)
	}

	// Snapshot capture: the ref keeps these fields even if the component goes away.
	var snap ComponentSnapshot
	err := s.pool.QueryRow(ctx,
		"SELECT name, manufacturer, part_number FROM components WHERE id = $1", componentID,
	).Scan(&snap.Name, &snap.Manufacturer, &snap.PartNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("component %d not found", componentID)
		}
		return nil, fmt.Errorf("failed to snapshot component: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO assembly_components
			(assembly_id, component_id, position, quantity, snapshot_name, snapshot_manufacturer, snapshot_part_number)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM assembly_components WHERE assembly_id = $1),
			$3, $4, $5, $6)`,
		assemblyID, componentID, quantity, snap.Name, snap.Manufacturer, snap.PartNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to add component to assembly: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		"UPDATE assemblies SET updated_at = now() WHERE id = $1", assemblyID); err != nil {
		return nil, fmt.Errorf("failed to touch assembly: %w", err)
	}
	return s.GetAssembly(ctx, assemblyID)
}

func (s *assemblyService) RemoveComponent(ctx context.Context, assemblyID, refID int) (*Assembly, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM assembly_components WHERE id = $1 AND assembly_id = $2", refID, assemblyID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove assembly component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("assembly %d has no component ref %d", assemblyID, refID)
	}
	return s.GetAssembly(ctx, assemblyID)
}

func (s *assemblyService) ReorderComponents(ctx context.Context, assemblyID int, refIDs []int) (*Assembly, error) {
	current, err := s.GetAssembly(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	if len(refIDs) != len(current.Components) {
		return nil, validationErr("assembly.components",
			"reorder list has %d refs, assembly has %d", len(refIDs), len(current.Components))
	}
	known := map[int]bool{}
	for _, ref := range current.Components {
		known[ref.ID] = true
	}
	for _, id := range refIDs {
		if !known[id] {
			return nil, validationErr("assembly.components", "unknown component ref %d", id)
		}
		delete(known, id) // each ref exactly once
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	for pos, id := range refIDs {
		if _, err := tx.Exec(ctx,
			"UPDATE assembly_components SET position = $1 WHERE id = $2 AND assembly_id = $3",
			pos+1, id, assemblyID); err != nil {
			return nil, fmt.Errorf("failed to reposition ref %d: %w", id, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reorder: %w", err)
	}
	return s.GetAssembly(ctx, assemblyID)
}

func (s *assemblyService) PriceAssembly(ctx context.Context, id int, rates ExchangeRateSet) (*AssemblyPricing, error) {
	a, err := s.GetAssembly(ctx, id)
	if err != nil {
		return nil, err
	}
	pricing, err := CalculateAssemblyPricing(a, rates)
	if err != nil {
		return nil, err
	}
	// is_complete is derived; persist the recomputed value.
	if a.IsComplete != pricing.IsComplete {
		if _, err := s.pool.Exec(ctx,
			"UPDATE assemblies SET is_complete = $2, updated_at = now() WHERE id = $1",
			id, pricing.IsComplete); err != nil {
			return nil, fmt.Errorf("failed to persist completeness flag: %w", err)
		}
	}
	return pricing, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefDec(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Decimal{}
	}
	return *d
}
