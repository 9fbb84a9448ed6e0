package config_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/config"
	"github.com/eliko2000/CPQ-System-sub009/internal/core"
)

func TestDefaultRates_BuiltInFallbacks(t *testing.T) {
	t.Setenv("DEFAULT_USD_TO_ILS", "")
	t.Setenv("DEFAULT_EUR_TO_ILS", "")

	rates, err := config.DefaultRates()
	if err != nil {
		t.Fatalf("DefaultRates: %v", err)
	}
	if !rates.USDToILS.Equal(decimal.RequireFromString("3.7")) {
		t.Errorf("USDToILS = %s, want 3.7", rates.USDToILS)
	}
	if !rates.EURToILS.Equal(decimal.RequireFromString("4.0")) {
		t.Errorf("EURToILS = %s, want 4.0", rates.EURToILS)
	}
}

// Every entrypoint resolves defaults through DefaultRates, so an override
// must take effect regardless of which binary reads it.
func TestDefaultRates_EnvOverride(t *testing.T) {
	t.Setenv("DEFAULT_USD_TO_ILS", "4.1")
	t.Setenv("DEFAULT_EUR_TO_ILS", "4.35")

	rates, err := config.DefaultRates()
	if err != nil {
		t.Fatalf("DefaultRates: %v", err)
	}
	if !rates.USDToILS.Equal(decimal.RequireFromString("4.1")) {
		t.Errorf("USDToILS = %s, want 4.1", rates.USDToILS)
	}
	if !rates.EURToILS.Equal(decimal.RequireFromString("4.35")) {
		t.Errorf("EURToILS = %s, want 4.35", rates.EURToILS)
	}
}

func TestDefaultRates_Invalid(t *testing.T) {
	tests := []struct {
		name string
		usd  string
		eur  string
	}{
		{"garbage usd", "not-a-number", ""},
		{"garbage eur", "", "4,2"},
		{"zero rate", "0", ""},
		{"negative rate", "", "-4.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEFAULT_USD_TO_ILS", tt.usd)
			t.Setenv("DEFAULT_EUR_TO_ILS", tt.eur)

			if _, err := config.DefaultRates(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// Non-positive values parse fine but must still be rejected as configuration
// errors, the same way the engine rejects them.
func TestDefaultRates_NonPositiveIsConfigurationError(t *testing.T) {
	t.Setenv("DEFAULT_USD_TO_ILS", "0")
	t.Setenv("DEFAULT_EUR_TO_ILS", "")

	_, err := config.DefaultRates()
	var cfgErr *core.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
