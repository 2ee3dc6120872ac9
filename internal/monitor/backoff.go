package monitor

import (
	"fmt"
	"time"

	"github.com/slok/taskmon/internal/model"
)

// Backoff returns the delay before the next poll after a number of consecutive failures.
type Backoff interface {
	Next(failures int) time.Duration
}

// FixedBackoff always waits the same delay.
type FixedBackoff struct {
	Delay time.Duration
}

func (b FixedBackoff) Next(_ int) time.Duration { return b.Delay }

// ExponentialBackoff multiplies the base delay on every consecutive failure up to Max.
type ExponentialBackoff struct {
	Base       time.Duration
	Multiplier float64
	Max        time.Duration
}

func (b ExponentialBackoff) Next(failures int) time.Duration {
	if failures <= 0 {
		return b.Base
	}

	delay := float64(b.Base)
	for i := 0; i < failures; i++ {
		delay *= b.Multiplier
		if b.Max > 0 && delay > float64(b.Max) {
			return b.Max
		}
	}

	return time.Duration(delay)
}

// NewBackoff returns the backoff described by cfg using interval as the base delay.
func NewBackoff(interval time.Duration, cfg model.BackoffConfig) (Backoff, error) {
	switch cfg.Type {
	case "", model.BackoffTypeFixed:
		return FixedBackoff{Delay: interval}, nil
	case model.BackoffTypeExponential:
		multiplier := cfg.Multiplier
		if multiplier < 1.0 {
			multiplier = 2.0
		}
		if cfg.Max > 0 && cfg.Max < interval {
			return nil, fmt.Errorf("backoff max %s is lower than the interval %s: %w", cfg.Max, interval, model.ErrNotValid)
		}
		return ExponentialBackoff{Base: interval, Multiplier: multiplier, Max: cfg.Max}, nil
	default:
		return nil, fmt.Errorf("unknown backoff type %q: %w", cfg.Type, model.ErrNotValid)
	}
}
