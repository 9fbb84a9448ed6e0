package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the three currencies the quoting tool supports.
// NIS (ILS) is the common reporting currency; every quotation total is
// ultimately expressed in it.
type Currency string

const (
	NIS Currency = "NIS"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// ParseCurrency normalizes user/storage input into a Currency.
// "ILS" is accepted as an alias for NIS.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NIS", "ILS":
		return NIS, nil
	case "USD":
		return USD, nil
	case "EUR":
		return EUR, nil
	default:
		return "", validationErr("currency", "unrecognized currency code %q", s)
	}
}

// ExchangeRateSet holds the two live rates a quotation is priced with.
// Rates are supplied by the caller per quotation — never read from shared state.
type ExchangeRateSet struct {
	USDToILS decimal.Decimal
	EURToILS decimal.Decimal
}

// Validate returns a ConfigurationError when either rate is absent or not
// positive. Zero is treated the same as absent: decimal's zero value is 0.
func (r ExchangeRateSet) Validate() error {
	if !r.USDToILS.IsPositive() {
		return configErr("usd_to_ils_rate", "exchange rate must be > 0, got %s", r.USDToILS)
	}
	if !r.EURToILS.IsPositive() {
		return configErr("eur_to_ils_rate", "exchange rate must be > 0, got %s", r.EURToILS)
	}
	return nil
}

// CurrencyAmounts is one amount expressed in all three supported currencies.
type CurrencyAmounts struct {
	NIS decimal.Decimal `json:"nis"`
	USD decimal.Decimal `json:"usd"`
	EUR decimal.Decimal `json:"eur"`
}

// Get returns the bucket for the given currency.
func (a CurrencyAmounts) Get(c Currency) decimal.Decimal {
	switch c {
	case USD:
		return a.USD
	case EUR:
		return a.EUR
	default:
		return a.NIS
	}
}

// Add returns the element-wise sum of two amount sets.
func (a CurrencyAmounts) Add(b CurrencyAmounts) CurrencyAmounts {
	return CurrencyAmounts{
		NIS: a.NIS.Add(b.NIS),
		USD: a.USD.Add(b.USD),
		EUR: a.EUR.Add(b.EUR),
	}
}

// Round rounds every bucket to the given number of decimal places.
// Intended for display/persistence boundaries only; intermediate
// accumulation keeps full precision.
func (a CurrencyAmounts) Round(places int32) CurrencyAmounts {
	return CurrencyAmounts{
		NIS: a.NIS.Round(places),
		USD: a.USD.Round(places),
		EUR: a.EUR.Round(places),
	}
}

// ConvertToAllCurrencies derives the equivalents of amount in the other two
// currencies while preserving the originally-quoted amount exactly: the bucket
// matching original is amount itself, with no rounding drift on the
// authoritative value. Cross conversions between USD and EUR go through ILS.
//
// This is the only place in the engine where currency math happens. Pure and
// idempotent: same inputs always give the same result, and nothing is mutated.
func ConvertToAllCurrencies(amount decimal.Decimal, original Currency, rates ExchangeRateSet) (CurrencyAmounts, error) {
	if err := rates.Validate(); err != nil {
		return CurrencyAmounts{}, err
	}

	switch original {
	case NIS:
		return CurrencyAmounts{
			NIS: amount,
			USD: amount.Div(rates.USDToILS),
			EUR: amount.Div(rates.EURToILS),
		}, nil
	case USD:
		ils := amount.Mul(rates.USDToILS)
		return CurrencyAmounts{
			NIS: ils,
			USD: amount,
			EUR: ils.Div(rates.EURToILS),
		}, nil
	case EUR:
		ils := amount.Mul(rates.EURToILS)
		return CurrencyAmounts{
			NIS: ils,
			USD: ils.Div(rates.USDToILS),
			EUR: amount,
		}, nil
	default:
		return CurrencyAmounts{}, validationErr("currency", "unrecognized currency code %q", string(original))
	}
}
