package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts includes the first attempt (default: 3).
	MaxAttempts int
	// InitialBackoff is the first delay (default: 100ms).
	InitialBackoff time.Duration
	// MaxBackoff caps the delay (default: 10s).
	MaxBackoff time.Duration
	// Jitter is the +/- fraction applied to each delay, 0 to 1.
	Jitter float64
	// OnRetry is called before sleeping.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
}

// RetryFunc calls fn until it succeeds, attempts run out, or ctx ends.
// Context errors returned by fn are not retried. The delay doubles per attempt.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	cfg.applyDefaults()

	backoff := cfg.InitialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt >= cfg.MaxAttempts {
			return err
		}

		wait := jittered(backoff, cfg.Jitter)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
}

func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	delta := (rand.Float64()*2 - 1) * jitter * float64(d)
	if out := time.Duration(float64(d) + delta); out > 0 {
		return out
	}
	return d
}
