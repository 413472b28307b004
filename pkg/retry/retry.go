package retry

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0, fraction of the delay randomized each way
}

// DefaultConfig returns sensible defaults for database and outbound HTTP
// operations: 3 retries starting at 100ms, capped at 5s, doubling each time.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

func (c *Config) next(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * c.Multiplier)
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

func (c *Config) jittered(delay time.Duration) time.Duration {
	if c.JitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * c.JitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// Do executes fn with exponential backoff, returning nil on success or the
// last error after all retries are exhausted. Context cancellation is
// respected during wait periods.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxRetries {
			break
		}
		select {
		case <-time.After(cfg.jittered(delay)):
			delay = cfg.next(delay)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// DoWithResult executes fn with the same backoff policy as Do, for functions
// that return a value (like pgxpool.New).
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if attempt == cfg.MaxRetries {
			break
		}
		select {
		case <-time.After(cfg.jittered(delay)):
			delay = cfg.next(delay)
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	return result, lastErr
}

// RetryableError is implemented by errors that explicitly declare their
// retryability (oracle errors do).
type RetryableError interface {
	error
	IsRetryable() bool
}

// retryablePatterns matches transient failures worth retrying when an error
// does not implement RetryableError.
var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"timeout",
	"timed out",
	"temporary failure",
	"too many connections",
	"i/o timeout",
	"network is unreachable",
	"429",
	"500",
	"502",
	"503",
	"504",
	"rate limit",
	"service unavailable",
	"too many requests",
}

// IsRetryable determines if an error is transient and worth retrying, so
// retries are not wasted on permanent failures (auth errors, bad input).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if r, ok := err.(RetryableError); ok {
		return r.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// DoWithResultIfRetryable retries only transient errors, for functions that
// return a value. Permanent failures return immediately.
func DoWithResultIfRetryable[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !IsRetryable(lastErr) || attempt == cfg.MaxRetries {
			return result, lastErr
		}
		select {
		case <-time.After(cfg.jittered(delay)):
			delay = cfg.next(delay)
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	return result, lastErr
}

// DoIfRetryable retries only transient errors; permanent failures return
// immediately.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == cfg.MaxRetries {
			return lastErr
		}
		select {
		case <-time.After(cfg.jittered(delay)):
			delay = cfg.next(delay)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
