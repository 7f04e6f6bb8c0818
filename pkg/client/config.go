package client

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeout bounds each remote call.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is how many delivery attempts a queued mutation
	// gets before it is dropped.
	DefaultMaxRetries = 3
)

// Config holds client construction parameters.
// Use DefaultConfig() or rely on New applying defaults.
type Config struct {
	// BaseURL is the guard registry base address. Required.
	BaseURL string

	// AuthToken is an optional bearer credential.
	AuthToken string

	// Timeout bounds each individual remote call.
	Timeout time.Duration

	// MaxRetries is the retry ceiling for queued mutations.
	MaxRetries int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// SetDefaults fills unset fields with default values.
func (c *Config) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base-url is required")
	}
	return nil
}
