package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

// QuotationRenderer renders a calculated quotation into a document format.
// Implemented by the export adapters; injected so the application layer stays
// free of rendering libraries.
type QuotationRenderer interface {
	ContentType() string
	Extension() string
	Render(q *core.Quotation, calc *core.QuotationCalculations) ([]byte, error)
}

type appService struct {
	components core.ComponentService
	assemblies core.AssemblyService
	quotations core.QuotationService
	pdf        QuotationRenderer
	excel      QuotationRenderer

	// defaultRates back catalog operations when the request carries none.
	// Quotations never use these: each quotation has its own rates.
	defaultRates core.ExchangeRateSet
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	components core.ComponentService,
	assemblies core.AssemblyService,
	quotations core.QuotationService,
	pdf QuotationRenderer,
	excel QuotationRenderer,
	defaultRates core.ExchangeRateSet,
) ApplicationService {
	return &appService{
		components:   components,
		assemblies:   assemblies,
		quotations:   quotations,
		pdf:          pdf,
		excel:        excel,
		defaultRates: defaultRates,
	}
}

func (s *appService) ratesOrDefault(req RatesRequest) core.ExchangeRateSet {
	if req.USDToILS.IsZero() && req.EURToILS.IsZero() {
		return s.defaultRates
	}
	return core.ExchangeRateSet{USDToILS: req.USDToILS, EURToILS: req.EURToILS}
}

// ── Components ──────────────────────────────────────────────────────────────

func (s *appService) CreateComponent(ctx context.Context, req ComponentRequest) (*ComponentResult, error) {
	c, err := s.components.CreateComponent(ctx, core.ComponentInput{
		Name:             req.Name,
		Manufacturer:     req.Manufacturer,
		PartNumber:       req.PartNumber,
		Description:      req.Description,
		Category:         req.Category,
		OriginalCurrency: core.Currency(req.Currency),
		OriginalCost:     req.Cost,
	}, s.ratesOrDefault(req.Rates))
	if err != nil {
		return nil, err
	}
	return &ComponentResult{Component: c}, nil
}

func (s *appService) GetComponent(ctx context.Context, id int) (*ComponentResult, error) {
	c, err := s.components.GetComponent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ComponentResult{Component: c}, nil
}

func (s *appService) ListComponents(ctx context.Context, category string) (*ComponentListResult, error) {
	components, err := s.components.ListComponents(ctx, category)
	if err != nil {
		return nil, err
	}
	return &ComponentListResult{Components: components, Category: category}, nil
}

func (s *appService) UpdateComponent(ctx context.Context, id int, req ComponentRequest) (*ComponentResult, error) {
	c, err := s.components.UpdateComponent(ctx, id, core.ComponentInput{
		Name:         req.Name,
		Manufacturer: req.Manufacturer,
		PartNumber:   req.PartNumber,
		Description:  req.Description,
		Category:     req.Category,
	})
	if err != nil {
		return nil, err
	}
	return &ComponentResult{Component: c}, nil
}

func (s *appService) UpdateComponentPrice(ctx context.Context, id int, req PriceUpdateRequest) (*ComponentResult, error) {
	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	c, err := s.components.UpdateComponentPrice(ctx, id, currency, req.Cost, s.ratesOrDefault(req.Rates))
	if err != nil {
		return nil, err
	}
	return &ComponentResult{Component: c}, nil
}

func (s *appService) DeleteComponent(ctx context.Context, id int) error {
	return s.components.DeleteComponent(ctx, id)
}

func (s *appService) RefreshComponentCosts(ctx context.Context, req RatesRequest) (*RefreshResult, error) {
	rates := s.ratesOrDefault(req)
	updated, err := s.components.RefreshDerivedCosts(ctx, rates)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{Updated: updated, Rates: rates}, nil
}

// ── Assemblies ──────────────────────────────────────────────────────────────

func (s *appService) CreateAssembly(ctx context.Context, req CreateAssemblyRequest) (*AssemblyResult, error) {
	a, err := s.assemblies.CreateAssembly(ctx, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	for _, c := range req.Components {
		if a, err = s.assemblies.AddComponent(ctx, a.ID, c.ComponentID, c.Quantity); err != nil {
			return nil, err
		}
	}
	return &AssemblyResult{Assembly: a}, nil
}

func (s *appService) GetAssembly(ctx context.Context, id int) (*AssemblyResult, error) {
	a, err := s.assemblies.GetAssembly(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AssemblyResult{Assembly: a}, nil
}

func (s *appService) ListAssemblies(ctx context.Context) (*AssemblyListResult, error) {
	assemblies, err := s.assemblies.ListAssemblies(ctx)
	if err != nil {
		return nil, err
	}
	return &AssemblyListResult{Assemblies: assemblies}, nil
}

func (s *appService) DeleteAssembly(ctx context.Context, id int) error {
	return s.assemblies.DeleteAssembly(ctx, id)
}

func (s *appService) AddAssemblyComponent(ctx context.Context, assemblyID int, req AssemblyComponentRequest) (*AssemblyResult, error) {
	a, err := s.assemblies.AddComponent(ctx, assemblyID, req.ComponentID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &AssemblyResult{Assembly: a}, nil
}

func (s *appService) RemoveAssemblyComponent(ctx context.Context, assemblyID, refID int) (*AssemblyResult, error) {
	a, err := s.assemblies.RemoveComponent(ctx, assemblyID, refID)
	if err != nil {
		return nil, err
	}
	return &AssemblyResult{Assembly: a}, nil
}

func (s *appService) ReorderAssemblyComponents(ctx context.Context, assemblyID int, refIDs []int) (*AssemblyResult, error) {
	a, err := s.assemblies.ReorderComponents(ctx, assemblyID, refIDs)
	if err != nil {
		return nil, err
	}
	return &AssemblyResult{Assembly: a}, nil
}

func (s *appService) PriceAssembly(ctx context.Context, assemblyID int, req RatesRequest) (*AssemblyPricingResult, error) {
	rates := s.ratesOrDefault(req)
	a, err := s.assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	pricing, err := s.assemblies.PriceAssembly(ctx, assemblyID, rates)
	if err != nil {
		return nil, err
	}
	a.IsComplete = pricing.IsComplete
	return &AssemblyPricingResult{Assembly: a, Pricing: pricing}, nil
}

// ── Quotations ──────────────────────────────────────────────────────────────

func coreParams(req ParametersRequest) core.QuotationParameters {
	return core.QuotationParameters{
		USDToILSRate:  req.USDToILSRate,
		EURToILSRate:  req.EURToILSRate,
		MarkupPercent: req.MarkupPercent,
		RiskPercent:   req.RiskPercent,
		VATRate:       req.VATRate,
		IncludeVAT:    req.IncludeVAT,
		DayWorkCost:   req.DayWorkCost,
	}
}

func (s *appService) CreateQuotation(ctx context.Context, req CreateQuotationRequest) (*QuotationResult, error) {
	q, err := s.quotations.CreateQuotation(ctx, req.CustomerName, req.ProjectName, coreParams(req.Parameters))
	if err != nil {
		return nil, err
	}
	return &QuotationResult{Quotation: q}, nil
}

func (s *appService) GetQuotation(ctx context.Context, id int) (*QuotationResult, error) {
	q, err := s.quotations.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	return &QuotationResult{Quotation: q}, nil
}

func (s *appService) ListQuotations(ctx context.Context, status string) (*QuotationListResult, error) {
	var filter *core.QuotationStatus
	if status != "" {
		st := core.QuotationStatus(strings.ToLower(status))
		filter = &st
	}
	quotations, err := s.quotations.ListQuotations(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &QuotationListResult{Quotations: quotations}, nil
}

func (s *appService) DeleteQuotation(ctx context.Context, id int) error {
	return s.quotations.DeleteQuotation(ctx, id)
}

// recalculated reruns the cascade after a mutation and returns the refreshed
// document together with the calculation output.
func (s *appService) recalculated(ctx context.Context, id int) (*CalculationResult, error) {
	calc, err := s.quotations.Recalculate(ctx, id)
	if err != nil {
		return nil, err
	}
	q, err := s.quotations.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CalculationResult{Quotation: q, Calculations: calc}, nil
}

func (s *appService) UpdateQuotationParameters(ctx context.Context, id int, req ParametersRequest) (*CalculationResult, error) {
	if _, err := s.quotations.UpdateParameters(ctx, id, coreParams(req)); err != nil {
		return nil, err
	}
	return s.recalculated(ctx, id)
}

func (s *appService) AddQuotationItem(ctx context.Context, quotationID int, req AddItemRequest) (*CalculationResult, error) {
	var err error
	switch {
	case req.ComponentID != nil:
		_, err = s.quotations.AddComponentItem(ctx, quotationID, *req.ComponentID, req.Quantity, req.MarkupPercent)
	case req.AssemblyID != nil:
		_, err = s.quotations.AddAssemblyItem(ctx, quotationID, *req.AssemblyID, req.Quantity, req.MarkupPercent)
	case req.LaborSubtype != "":
		_, err = s.quotations.AddLaborItem(ctx, quotationID, core.LaborSubtype(strings.ToLower(req.LaborSubtype)),
			req.Name, req.Quantity, req.DayCost, req.MarkupPercent)
	default:
		item := core.QuotationItem{
			QuotationID:            quotationID,
			Name:                   req.Name,
			Description:            req.Description,
			ItemType:               core.ItemType(req.ItemType),
			Quantity:               req.Quantity,
			OriginalCurrency:       core.Currency(req.Currency),
			OriginalCost:           req.Cost,
			PricingMode:            core.PricingMode(req.PricingMode),
			MSRPPrice:              req.MSRPPrice,
			MSRPCurrency:           core.Currency(req.MSRPCurrency),
			PartnerDiscountPercent: req.PartnerDiscountPercent,
		}
		if req.MarkupPercent != nil {
			item.MarkupPercent = *req.MarkupPercent
		}
		_, err = s.quotations.AddItem(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	return s.recalculated(ctx, quotationID)
}

func (s *appService) UpdateItemPrice(ctx context.Context, quotationID, itemID int, req PriceUpdateRequest) (*CalculationResult, error) {
	if _, err := s.quotations.UpdateItemPrice(ctx, quotationID, itemID, core.Currency(req.Currency), req.Cost); err != nil {
		return nil, err
	}
	return s.recalculated(ctx, quotationID)
}

func (s *appService) RemoveQuotationItem(ctx context.Context, quotationID, itemID int) (*CalculationResult, error) {
	if err := s.quotations.RemoveItem(ctx, quotationID, itemID); err != nil {
		return nil, err
	}
	return s.recalculated(ctx, quotationID)
}

func (s *appService) TransitionQuotationStatus(ctx context.Context, id int, status string) (*QuotationResult, error) {
	q, err := s.quotations.TransitionStatus(ctx, id, core.QuotationStatus(strings.ToLower(status)))
	if err != nil {
		return nil, err
	}
	return &QuotationResult{Quotation: q}, nil
}

func (s *appService) RecalculateQuotation(ctx context.Context, id int) (*CalculationResult, error) {
	return s.recalculated(ctx, id)
}

// ── Exports ─────────────────────────────────────────────────────────────────

func (s *appService) export(ctx context.Context, id int, r QuotationRenderer) (*ExportResult, error) {
	res, err := s.recalculated(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := r.Render(res.Quotation, res.Calculations)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("%s.%s", res.Quotation.QuoteNumber, r.Extension()),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}

func (s *appService) ExportQuotationPDF(ctx context.Context, id int) (*ExportResult, error) {
	return s.export(ctx, id, s.pdf)
}

func (s *appService) ExportQuotationExcel(ctx context.Context, id int) (*ExportResult, error) {
	return s.export(ctx, id, s.excel)
}

// ── Conversion ──────────────────────────────────────────────────────────────

func (s *appService) ConvertAmount(_ context.Context, amount decimal.Decimal, currency string, req RatesRequest) (*core.CurrencyAmounts, error) {
	parsed, err := core.ParseCurrency(currency)
	if err != nil {
		return nil, err
	}
	amounts, err := core.ConvertToAllCurrencies(amount, parsed, s.ratesOrDefault(req))
	if err != nil {
		return nil, err
	}
	return &amounts, nil
}
