// Package config loads the channel roster: the YAML file describing which
// channels exist and which sources feed each of them.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"content-harvester/internal/domain/entity"
)

// Duration wraps time.Duration so roster files can spell durations the
// usual Go way ("60s", "48h"); yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Channel is one ingestion target with its source descriptors.
type Channel struct {
	ID      string                    `yaml:"id"`
	Sources []entity.SourceDescriptor `yaml:"sources"`
}

// ChannelsConfig is the channel roster plus the shared resilience and
// cache settings that apply across channels.
type ChannelsConfig struct {
	// Namespace prefixes every cache and dedup key so several deployments
	// can share one store.
	Namespace string `yaml:"namespace"`

	RateLimits struct {
		// DefaultRPM applies to providers without an override.
		DefaultRPM float64 `yaml:"default_rpm"`
		// Providers maps provider name to requests per minute.
		Providers map[string]float64 `yaml:"providers,omitempty"`
	} `yaml:"rate_limits"`

	CircuitBreaker struct {
		// FailureThreshold is the consecutive failure count that opens a
		// provider's breaker. Zero uses the breaker package default.
		FailureThreshold uint32 `yaml:"failure_threshold"`
		// ResetTimeout is how long an open breaker waits before probing.
		ResetTimeout Duration `yaml:"reset_timeout"`
	} `yaml:"circuit_breaker"`

	// DedupWindow is how long delivered content stays in the dedup index.
	// Zero uses the cache package default (48h).
	DedupWindow Duration `yaml:"dedup_window"`

	Channels []Channel `yaml:"channels"`
}

// LoadChannelsConfig reads and validates the channel roster. The path is
// expected to come from a trusted source (CLI flag or environment).
func LoadChannelsConfig(path string) (*ChannelsConfig, error) {
	// #nosec G304 -- path is provided by trusted source (env var or default), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels config: %w", err)
	}

	var config ChannelsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse channels config: %w", err)
	}

	if err := validateChannelsConfig(&config); err != nil {
		return nil, fmt.Errorf("channels config validation failed: %w", err)
	}

	return &config, nil
}

// validateChannelsConfig validates the loaded roster.
func validateChannelsConfig(config *ChannelsConfig) error {
	if config.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	if config.RateLimits.DefaultRPM < 0 {
		return fmt.Errorf("default_rpm cannot be negative")
	}
	for provider, rpm := range config.RateLimits.Providers {
		if rpm <= 0 {
			return fmt.Errorf("rate limit for provider %q must be positive, got %v", provider, rpm)
		}
	}

	if config.CircuitBreaker.ResetTimeout.Std() < 0 {
		return fmt.Errorf("circuit breaker reset_timeout cannot be negative")
	}
	if config.DedupWindow.Std() < 0 {
		return fmt.Errorf("dedup_window cannot be negative")
	}

	if len(config.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}

	seen := make(map[string]bool, len(config.Channels))
	for i, ch := range config.Channels {
		if ch.ID == "" {
			return fmt.Errorf("channel %d: id is required", i)
		}
		if seen[ch.ID] {
			return fmt.Errorf("duplicate channel id %q", ch.ID)
		}
		seen[ch.ID] = true

		if len(ch.Sources) == 0 {
			return fmt.Errorf("channel %q: at least one source is required", ch.ID)
		}
		for j, src := range ch.Sources {
			if err := src.Validate(); err != nil {
				return fmt.Errorf("channel %q source %d: %w", ch.ID, j, err)
			}
		}
	}

	return nil
}
