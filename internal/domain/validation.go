package domain

import (
	"fmt"
	"strings"
)

// ValidateActivityKind validates an activity kind
func ValidateActivityKind(kind string) error {
	switch ActivityKind(kind) {
	case ActivityKindProcess, ActivityKindBiosphere:
		return nil
	default:
		return fmt.Errorf("invalid activity kind: must be one of: process, biosphere")
	}
}

// ValidateExchangeType validates an exchange type
func ValidateExchangeType(typ string) error {
	switch ExchangeType(typ) {
	case ExchangeTypeTechnosphere, ExchangeTypeBiosphere, ExchangeTypeProduction:
		return nil
	default:
		return fmt.Errorf("invalid exchange type: must be one of: technosphere, biosphere, production")
	}
}

// ValidateCode validates an activity code. Codes are opaque identifiers
// but must be non-empty and cannot contain the key separator.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("invalid code: must not be empty")
	}
	if strings.ContainsAny(code, ": \t\n") {
		return fmt.Errorf("invalid code %q: must not contain ':' or whitespace", code)
	}
	return nil
}

// NotFoundError is returned when an activity is absent from the database
// it was looked up in.
type NotFoundError struct {
	Database string
	Code     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("activity %q does not exist in database %q", e.Code, e.Database)
}

// CycleError is returned when recursive exchange resolution revisits an
// activity that is already being resolved.
type CycleError struct {
	Key Key
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("exchange graph cycle detected at %s", e.Key)
}

// ConfigError is returned when a project or database named at
// construction time does not exist.
type ConfigError struct {
	Kind string // "project" or "database"
	Name string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Kind, e.Name)
}
