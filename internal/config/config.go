// Package config resolves process-level settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

// Built-in fallbacks used when DEFAULT_USD_TO_ILS / DEFAULT_EUR_TO_ILS are unset.
var (
	fallbackUSDToILS = decimal.RequireFromString("3.7")
	fallbackEURToILS = decimal.RequireFromString("4.0")
)

// DefaultRates reads the fallback exchange rates used by catalog operations
// when a request does not carry its own. Every entrypoint must resolve the
// defaults through here; quotations never use them (each quotation carries
// its own rates).
func DefaultRates() (core.ExchangeRateSet, error) {
	rates := core.ExchangeRateSet{
		USDToILS: fallbackUSDToILS,
		EURToILS: fallbackEURToILS,
	}
	if v := os.Getenv("DEFAULT_USD_TO_ILS"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return core.ExchangeRateSet{}, fmt.Errorf("invalid DEFAULT_USD_TO_ILS %q: %w", v, err)
		}
		rates.USDToILS = d
	}
	if v := os.Getenv("DEFAULT_EUR_TO_ILS"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return core.ExchangeRateSet{}, fmt.Errorf("invalid DEFAULT_EUR_TO_ILS %q: %w", v, err)
		}
		rates.EURToILS = d
	}
	if err := rates.Validate(); err != nil {
		return core.ExchangeRateSet{}, err
	}
	return rates, nil
}
