package core

import "fmt"

// ValidationError reports input that fails a business rule before any
// calculation is attempted. Nothing is partially computed when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports a missing or unusable calculation parameter,
// most commonly an exchange rate that is absent or not positive. It is never
// recovered by defaulting: a silently substituted rate would corrupt every
// downstream total without a visible signal.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Setting, e.Reason)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func configErr(setting, format string, args ...any) error {
	return &ConfigurationError{Setting: setting, Reason: fmt.Sprintf(format, args...)}
}
