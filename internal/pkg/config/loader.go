// Package config provides fail-open environment configuration loading.
//
// Every loader follows the same contract: read the environment variable,
// parse and validate it, and fall back to the supplied default when
// anything goes wrong. Loaders never return errors; failures surface as
// warnings and metrics so a bad deployment degrades to known-good defaults
// instead of refusing to start.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result is the outcome of loading one configuration value. Value is
// always usable: either the parsed environment value or the default.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

func fallback[T any](envKey, raw string, cause error, def T) Result[T] {
	return Result[T]{
		Value:           def,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, cause, def)},
		FallbackApplied: true,
	}
}

// LoadEnvString loads a string from the environment. An unset or empty
// variable yields the default without warning; a set value failing the
// validator falls back with a warning. A nil validator accepts anything.
func LoadEnvString(envKey, defaultValue string, validator func(string) error) Result[string] {
	value := os.Getenv(envKey)
	if value == "" {
		return Result[string]{Value: defaultValue}
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, err, defaultValue)
		}
	}
	return Result[string]{Value: value}
}

// LoadEnvDuration loads a Go duration string ("30s", "1h30m") from the
// environment with the same fail-open contract as LoadEnvString.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) Result[time.Duration] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[time.Duration]{Value: defaultValue}
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return Result[time.Duration]{Value: parsed}
}

// LoadEnvInt loads an integer from the environment with the same
// fail-open contract as LoadEnvString.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) Result[int] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[int]{Value: defaultValue}
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(envKey, raw, fmt.Errorf("invalid integer format"), defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return Result[int]{Value: parsed}
}

// LoadEnvFloat loads a float64 from the environment with the same
// fail-open contract as LoadEnvString.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) Result[float64] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[float64]{Value: defaultValue}
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback(envKey, raw, fmt.Errorf("invalid float format"), defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return Result[float64]{Value: parsed}
}

// LoadEnvBool loads a boolean from the environment. Accepted spellings
// follow strconv.ParseBool ("1", "t", "true", "0", "f", "false").
func LoadEnvBool(envKey string, defaultValue bool) Result[bool] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[bool]{Value: defaultValue}
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback(envKey, raw, fmt.Errorf("invalid boolean format, expected 'true' or 'false'"), defaultValue)
	}
	return Result[bool]{Value: parsed}
}
