// Package config provides construction-time configuration for the
// interaction controllers: retry limits, backoff shape, and the session
// polling cadence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default values.
const (
	// DefaultMaxSendAttempts bounds retries for one message send.
	DefaultMaxSendAttempts = 3

	// DefaultMaxInitAttempts bounds retries for session initialization.
	DefaultMaxInitAttempts = 3

	// DefaultPollInterval is how often an active session is reconciled
	// against the server.
	DefaultPollInterval = 5 * time.Second

	// DefaultRetryBaseDelay is the first backoff delay.
	DefaultRetryBaseDelay = 500 * time.Millisecond

	// DefaultRetryMaxDelay caps the backoff schedule.
	DefaultRetryMaxDelay = 10 * time.Second
)

// Environment variable names recognized by FromEnv.
const (
	envPollInterval    = "MUSECORE_POLL_INTERVAL"
	envMaxSendAttempts = "MUSECORE_MAX_SEND_ATTEMPTS"
)

// Config holds tunables shared by the session controller and the memory
// cache. The zero value is not usable; start from Default.
type Config struct {
	MaxSendAttempts int
	MaxInitAttempts int
	PollInterval    time.Duration
	RetryBaseDelay  time.Duration
	RetryMaxDelay   time.Duration
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		MaxSendAttempts: DefaultMaxSendAttempts,
		MaxInitAttempts: DefaultMaxInitAttempts,
		PollInterval:    DefaultPollInterval,
		RetryBaseDelay:  DefaultRetryBaseDelay,
		RetryMaxDelay:   DefaultRetryMaxDelay,
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.MaxSendAttempts < 1 {
		return fmt.Errorf("max send attempts must be at least 1, got %d", c.MaxSendAttempts)
	}
	if c.MaxInitAttempts < 1 {
		return fmt.Errorf("max init attempts must be at least 1, got %d", c.MaxInitAttempts)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry base delay must be positive, got %v", c.RetryBaseDelay)
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		return fmt.Errorf("retry max delay %v is below base delay %v", c.RetryMaxDelay, c.RetryBaseDelay)
	}
	return nil
}

// FromEnv returns the default configuration with any recognized
// environment overrides applied. Unparseable values are ignored.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv(envPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv(envMaxSendAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.MaxSendAttempts = n
		}
	}

	return cfg
}
