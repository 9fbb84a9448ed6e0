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

const quotationItemColumns = `id, quotation_id, source_component_id, source_assembly_id,
		name, description, item_type, labor_subtype, quantity,
		original_currency, original_cost, pricing_mode, markup_percent,
		msrp_price, msrp_currency, partner_discount_percent`

// QuotationService manages quotation documents: header, per-quotation
// parameters, line items, lifecycle status, and recalculation.
//
// Items snapshot their original currency/cost from the source component or
// assembly at the moment they are added. Recalculate rewrites derived columns
// only; original columns change only through the explicit item price edit.
type QuotationService interface {
	CreateQuotation(ctx context.Context, customerName, projectName string, params QuotationParameters) (*Quotation, error)
	GetQuotation(ctx context.Context, id int) (*Quotation, error)
	// ListQuotations returns quotations, optionally filtered by status.
	ListQuotations(ctx context.Context, status *QuotationStatus) ([]Quotation, error)
	DeleteQuotation(ctx context.Context, id int) error

	// UpdateParameters replaces the quotation's parameter row. Rates must be
	// valid; a recalculation normally follows.
	UpdateParameters(ctx context.Context, id int, params QuotationParameters) (*Quotation, error)

	// AddComponentItem adds a line sourced from a catalog component,
	// snapshotting its original currency and cost. Markup of nil uses the
	// quotation's default markup parameter.
	AddComponentItem(ctx context.Context, quotationID, componentID int, quantity decimal.Decimal, markup *decimal.Decimal) (*QuotationItem, error)
	// AddAssemblyItem adds a line sourced from an assembly: the assembly is
	// rolled up at the quotation's current rates and the NIS total becomes the
	// item's original cost snapshot.
	AddAssemblyItem(ctx context.Context, quotationID, assemblyID int, quantity decimal.Decimal, markup *decimal.Decimal) (*QuotationItem, error)
	// AddLaborItem adds a labor line priced in days; dayCost of nil uses the
	// quotation's day_work_cost parameter.
	AddLaborItem(ctx context.Context, quotationID int, subtype LaborSubtype, name string, days decimal.Decimal, dayCost *decimal.Decimal, markup *decimal.Decimal) (*QuotationItem, error)
	// AddItem adds a fully caller-specified line (custom hardware/software,
	// MSRP-priced items, and so on).
	AddItem(ctx context.Context, item QuotationItem) (*QuotationItem, error)

	// UpdateItemPrice is the explicit price edit for a line: the only write
	// path for an item's original_currency/original_cost after it was added.
	UpdateItemPrice(ctx context.Context, quotationID, itemID int, currency Currency, cost decimal.Decimal) (*QuotationItem, error)
	RemoveItem(ctx context.Context, quotationID, itemID int) error

	// TransitionStatus moves the quotation along draft → sent → {won | lost}.
	// Illegal transitions are rejected. Status never affects calculations.
	TransitionStatus(ctx context.Context, id int, next QuotationStatus) (*Quotation, error)

	// Recalculate runs the calculation cascade over the quotation's items at
	// its current parameters and persists the derived figures (item ILS
	// prices, header totals). The result is always reconstructible, so this
	// is safe to call any number of times.
	Recalculate(ctx context.Context, id int) (*QuotationCalculations, error)
}

type quotationService struct {
	pool       *pgxpool.Pool
	assemblies AssemblyService
}

func NewQuotationService(pool *pgxpool.Pool, assemblies AssemblyService) QuotationService {
	return &quotationService{pool: pool, assemblies: assemblies}
}

// nextQuoteNumber assigns a gapless per-year quote number (Q-2026-0001) by
// locking the year's counter row inside the caller's transaction.
func (s *quotationService) nextQuoteNumber(ctx context.Context, tx pgxQuerier, now time.Time) (string, error) {
	year := now.Year()
	var last int
	err := tx.QueryRow(ctx, `
		INSERT INTO quote_sequences (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = quote_sequences.last_number + 1
		RETURNING last_number`, year,
	).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to advance quote sequence: %w", err)
	}
	return fmt.Sprintf("Q-%d-%04d", year, last), nil
}

func (s *quotationService) CreateQuotation(ctx context.Context, customerName, projectName string, params QuotationParameters) (*Quotation, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, validationErr("quotation.customer_name", "customer name must not be empty")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin create quotation: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := s.nextQuoteNumber(ctx, tx, time.Now())
	if err != nil {
		return nil, err
	}

	var q Quotation
	var status string
	err = tx.QueryRow(ctx, `
		INSERT INTO quotations (quote_number, customer_name, project_name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, quote_number, customer_name, project_name, status, created_at, updated_at`,
		number, customerName, projectName, string(QuotationStatusDraft),
	).Scan(&q.ID, &q.QuoteNumber, &q.CustomerName, &q.ProjectName, &status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}
	q.Status = QuotationStatus(status)

	_, err = tx.Exec(ctx, `
		INSERT INTO quotation_parameters
			(quotation_id, usd_to_ils_rate, eur_to_ils_rate, markup_percent, risk_percent, vat_rate, include_vat, day_work_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		q.ID, params.USDToILSRate, params.EURToILSRate, params.MarkupPercent,
		params.RiskPercent, params.VATRate, params.IncludeVAT, params.DayWorkCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create quotation parameters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit create quotation: %w", err)
	}

	params.QuotationID = q.ID
	q.Parameters = params
	return &q, nil
}

func scanQuotationItem(row pgx.Row) (*QuotationItem, error) {
	var it QuotationItem
	var itemType, subtype, currency, mode, msrpCurrency string
	if err := row.Scan(
		&it.ID, &it.QuotationID, &it.SourceComponentID, &it.SourceAssemblyID,
		&it.Name, &it.Description, &itemType, &subtype, &it.Quantity,
		&currency, &it.OriginalCost, &mode, &it.MarkupPercent,
		&it.MSRPPrice, &msrpCurrency, &it.PartnerDiscountPercent,
	); err != nil {
		return nil, err
	}
	it.ItemType = ItemType(itemType)
	it.LaborSubtype = LaborSubtype(subtype)
	it.OriginalCurrency = Currency(currency)
	it.PricingMode = PricingMode(mode)
	it.MSRPCurrency = Currency(msrpCurrency)
	return &it, nil
}

func (s *quotationService) GetQuotation(ctx context.Context, id int) (*Quotation, error) {
	var q Quotation
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT id, quote_number, customer_name, project_name, status, created_at, updated_at
		FROM quotations WHERE id = $1`, id,
	).Scan(&q.ID, &q.QuoteNumber, &q.CustomerName, &q.ProjectName, &status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quotation %d not found", id)
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	q.Status = QuotationStatus(status)

	err = s.pool.QueryRow(ctx, `
		SELECT quotation_id, usd_to_ils_rate, eur_to_ils_rate, markup_percent,
		       risk_percent, vat_rate, include_vat, day_work_cost
		FROM quotation_parameters WHERE quotation_id = $1`, id,
	).Scan(&q.Parameters.QuotationID, &q.Parameters.USDToILSRate, &q.Parameters.EURToILSRate,
		&q.Parameters.MarkupPercent, &q.Parameters.RiskPercent, &q.Parameters.VATRate,
		&q.Parameters.IncludeVAT, &q.Parameters.DayWorkCost)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation parameters: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+quotationItemColumns+" FROM quotation_items WHERE quotation_id = $1 ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanQuotationItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation item: %w", err)
		}
		q.Items = append(q.Items, *it)
	}
	return &q, rows.Err()
}

func (s *quotationService) ListQuotations(ctx context.Context, status *QuotationStatus) ([]Quotation, error) {
	q := `SELECT id, quote_number, customer_name, project_name, status, created_at, updated_at
		FROM quotations`
	args := []any{}
	if status != nil {
		q += " WHERE status = $1"
		args = append(args, string(*status))
	}
	q += " ORDER BY id DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotations: %w", err)
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		var item Quotation
		var st string
		if err := rows.Scan(&item.ID, &item.QuoteNumber, &item.CustomerName,
			&item.ProjectName, &st, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		item.Status = QuotationStatus(st)
		quotations = append(quotations, item)
	}
	return quotations, rows.Err()
}

func (s *quotationService) DeleteQuotation(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM quotations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotation %d not found", id)
	}
	return nil
}

func (s *quotationService) UpdateParameters(ctx context.Context, id int, params QuotationParameters) (*Quotation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE quotation_parameters
		SET usd_to_ils_rate = $2, eur_to_ils_rate = $3, markup_percent = $4,
		    risk_percent = $5, vat_rate = $6, include_vat = $7, day_work_cost = $8
		WHERE quotation_id = $1`,
		id, params.USDToILSRate, params.EURToILSRate, params.MarkupPercent,
		params.RiskPercent, params.VATRate, params.IncludeVAT, params.DayWorkCost)
	if err != nil {
		return nil, fmt.Errorf("failed to update quotation parameters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("quotation %d not found", id)
	}
	return s.GetQuotation(ctx, id)
}

// insertItem normalizes, validates, and persists one item row.
func (s *quotationService) insertItem(ctx context.Context, it QuotationItem) (*QuotationItem, error) {
	it.Normalize()
	if err := it.Validate(); err != nil {
		return nil, err
	}

	inserted, err := scanQuotationItem(s.pool.QueryRow(ctx, `
		INSERT INTO quotation_items
			(quotation_id, source_component_id, source_assembly_id, name, description,
			 item_type, labor_subtype, quantity, original_currency, original_cost,
			 pricing_mode, markup_percent, msrp_price, msrp_currency, partner_discount_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+quotationItemColumns,
		it.QuotationID, it.SourceComponentID, it.SourceAssemblyID, it.Name, it.Description,
		string(it.ItemType), string(it.LaborSubtype), it.Quantity,
		string(it.OriginalCurrency), it.OriginalCost,
		string(it.PricingMode), it.MarkupPercent,
		it.MSRPPrice, string(it.MSRPCurrency), it.PartnerDiscountPercent,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert quotation item: %w", err)
	}
	return inserted, nil
}

func (s *quotationService) AddComponentItem(ctx context.Context, quotationID, componentID int, quantity decimal.Decimal, markup *decimal.Decimal) (*QuotationItem, error) {
	q, err := s.GetQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	var name, desc, currency string
	var cost decimal.Decimal
	err = s.pool.QueryRow(ctx,
		"SELECT name, description, original_currency, original_cost FROM components WHERE id = $1",
		componentID,
	).Scan(&name, &desc, &currency, &cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("component %d not found", componentID)
		}
		return nil, fmt.Errorf("failed to load source component: %w", err)
	}

	return s.insertItem(ctx, QuotationItem{
		QuotationID:       quotationID,
		SourceComponentID: &componentID,
		Name:              name,
		Description:       desc,
		ItemType:          ItemTypeHardware,
		Quantity:          quantity,
		OriginalCurrency:  Currency(currency),
		OriginalCost:      cost,
		PricingMode:       PricingCostPlus,
		MarkupPercent:     markupOrDefault(markup, q.Parameters.MarkupPercent),
	})
}

func (s *quotationService) AddAssemblyItem(ctx context.Context, quotationID, assemblyID int, quantity decimal.Decimal, markup *decimal.Decimal) (*QuotationItem, error) {
	q, err := s.GetQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	a, err := s.assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	// Roll the assembly up at the quotation's current rates; the NIS total at
	// this moment becomes the item's original cost snapshot.
	pricing, err := CalculateAssemblyPricing(a, q.Parameters.Rates())
	if err != nil {
		return nil, err
	}

	return s.insertItem(ctx, QuotationItem{
		QuotationID:      quotationID,
		SourceAssemblyID: &assemblyID,
		Name:             a.Name,
		Description:      a.Description,
		ItemType:         ItemTypeHardware,
		Quantity:         quantity,
		OriginalCurrency: NIS,
		OriginalCost:     pricing.TotalCostNIS,
		PricingMode:      PricingCostPlus,
		MarkupPercent:    markupOrDefault(markup, q.Parameters.MarkupPercent),
	})
}

func (s *quotationService) AddLaborItem(ctx context.Context, quotationID int, subtype LaborSubtype, name string, days decimal.Decimal, dayCost *decimal.Decimal, markup *decimal.Decimal) (*QuotationItem, error) {
	q, err := s.GetQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	cost := q.Parameters.DayWorkCost
	if dayCost != nil {
		cost = *dayCost
	}

	return s.insertItem(ctx, QuotationItem{
		QuotationID:      quotationID,
		Name:             name,
		ItemType:         ItemTypeLabor,
		LaborSubtype:     subtype,
		Quantity:         days,
		OriginalCurrency: NIS,
		OriginalCost:     cost,
		PricingMode:      PricingCostPlus,
		MarkupPercent:    markupOrDefault(markup, q.Parameters.MarkupPercent),
	})
}

func (s *quotationService) AddItem(ctx context.Context, item QuotationItem) (*QuotationItem, error) {
	if _, err := s.GetQuotation(ctx, item.QuotationID); err != nil {
		return nil, err
	}
	return s.insertItem(ctx, item)
}

func (s *quotationService) UpdateItemPrice(ctx context.Context, quotationID, itemID int, currency Currency, cost decimal.Decimal) (*QuotationItem, error) {
	parsed, err := ParseCurrency(string(currency))
	if err != nil {
		return nil, err
	}
	if cost.IsNegative() {
		return nil, validationErr("item.original_cost", "cost must not be negative, got %s", cost)
	}

	it, err := scanQuotationItem(s.pool.QueryRow(ctx, `
		UPDATE quotation_items
		SET original_currency = $3, original_cost = $4
		WHERE id = $2 AND quotation_id = $1
		RETURNING `+quotationItemColumns,
		quotationID, itemID, string(parsed), cost,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quotation %d has no item %d", quotationID, itemID)
		}
		return nil, fmt.Errorf("failed to update item price: %w", err)
	}
	return it, nil
}

func (s *quotationService) RemoveItem(ctx context.Context, quotationID, itemID int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM quotation_items WHERE id = $1 AND quotation_id = $2", itemID, quotationID)
	if err != nil {
		return fmt.Errorf("failed to remove quotation item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotation %d has no item %d", quotationID, itemID)
	}
	return nil
}

func (s *quotationService) TransitionStatus(ctx context.Context, id int, next QuotationStatus) (*Quotation, error) {
	q, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransition(next) {
		return nil, validationErr("quotation.status",
			"illegal transition %s → %s", string(q.Status), string(next))
	}
	if _, err := s.pool.Exec(ctx,
		"UPDATE quotations SET status = $2, updated_at = now() WHERE id = $1",
		id, string(next)); err != nil {
		return nil, fmt.Errorf("failed to update quotation status: %w", err)
	}
	q.Status = next
	return q, nil
}

func (s *quotationService) Recalculate(ctx context.Context, id int) (*QuotationCalculations, error) {
	q, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}

	calc, err := CalculateQuotation(q.ID, q.Items, q.Parameters)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin recalculation: %w", err)
	}
	defer tx.Rollback(ctx)

	// Derived columns only. Original currency/cost are never written here.
	for _, item := range calc.Items {
		if _, err := tx.Exec(ctx, `
			UPDATE quotation_items
			SET unit_price_ils = $2, total_price_ils = $3, customer_price_ils = $4
			WHERE id = $1`,
			item.ItemID,
			item.UnitPriceILS.Round(2), item.TotalPriceILS.Round(2), item.CustomerPriceILS.Round(2),
		); err != nil {
			return nil, fmt.Errorf("failed to persist item pricing: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quotations
		SET subtotal_ils = $2, total_customer_price_ils = $3,
		    final_total_ils = $4, profit_margin_percent = $5, updated_at = now()
		WHERE id = $1`,
		id,
		calc.SubtotalILS.Round(2), calc.TotalCustomerPriceILS.Round(2),
		calc.FinalTotalILS.Round(2), calc.ProfitMarginPercent.Round(2),
	); err != nil {
		return nil, fmt.Errorf("failed to persist quotation totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recalculation: %w", err)
	}
	return calc, nil
}

func markupOrDefault(markup *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if markup != nil {
		return *markup
	}
	return fallback
}
