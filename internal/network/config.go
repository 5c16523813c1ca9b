package network

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

// Discovery defaults. A lookup waits at most
// DefaultMaxAttempts * DefaultRetryInterval (5s) for a handler to appear.
const (
	DefaultMaxAttempts   = 10
	DefaultRetryInterval = 500 * time.Millisecond
)

// Config configures a NetworkClient.
type Config struct {
	// MaxAttempts is the number of registry checks a lookup performs
	// before giving up. Default: 10
	MaxAttempts int

	// RetryInterval is the wait between two checks. Default: 500ms
	RetryInterval time.Duration

	// Clock drives the retry wait. Default: the wall clock.
	Clock clock.Clock

	// Logger receives discovery and lifecycle events.
	Logger *slog.Logger

	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   DefaultMaxAttempts,
		RetryInterval: DefaultRetryInterval,
		Clock:         clock.New(),
		Logger:        slog.Default(),
	}
}

// Option configures a NetworkClient.
type Option func(*Config)

// WithMaxAttempts sets the number of discovery attempts.
// Non-positive values keep the default.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// WithRetryInterval sets the wait between discovery attempts.
// Non-positive values keep the default.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.RetryInterval = d
		}
	}
}

// WithClock replaces the clock used for the retry wait.
func WithClock(clk clock.Clock) Option {
	return func(c *Config) {
		if clk != nil {
			c.Clock = clk
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithMetrics enables instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithConfig copies every non-zero field of cfg.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		WithMaxAttempts(cfg.MaxAttempts)(c)
		WithRetryInterval(cfg.RetryInterval)(c)
		WithClock(cfg.Clock)(c)
		WithLogger(cfg.Logger)(c)
		if cfg.Metrics != nil {
			c.Metrics = cfg.Metrics
		}
	}
}
