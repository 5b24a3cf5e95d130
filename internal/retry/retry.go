// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package retry provides exponential backoff with jitter and a retry
// executor that classifies failures by models.ErrorKind.
//
// Callers enumerate the kinds worth retrying; anything outside that set
// propagates immediately. The delay schedule is deterministic for a given
// attempt index when jitter is disabled, which keeps retry timing testable.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

// Config describes a retry policy. The zero value is not usable; start
// from a preset or set MaxAttempts explicitly.
type Config struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential schedule.
	MaxDelay time.Duration

	// ExponentialBase is the growth factor per attempt. Values <= 1
	// degrade to a constant BaseDelay schedule.
	ExponentialBase float64

	// Jitter adds +-25% uniform noise to each delay.
	Jitter bool

	// Retryable lists the error kinds worth retrying. An empty set
	// means no failure is retried.
	Retryable []models.ErrorKind

	// Rand overrides the jitter source. Nil uses the global source.
	Rand *rand.Rand
}

// NetworkConfig is the policy for transient network failures: patient,
// with a long maximum backoff.
func NetworkConfig() Config {
	return Config{
		MaxAttempts:     5,
		BaseDelay:       time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
		Retryable:       []models.ErrorKind{models.KindNetwork, models.KindTimeout},
	}
}

// YouTubeConfig is the policy for yt-dlp metadata calls: fewer attempts
// with a higher starting delay, since repeated rapid probes trip rate
// limiting.
func YouTubeConfig() Config {
	return Config{
		MaxAttempts:     3,
		BaseDelay:       2 * time.Second,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
		Retryable: []models.ErrorKind{
			models.KindNetwork,
			models.KindTimeout,
			models.KindToolFailure,
		},
	}
}

// retryable reports whether the error's kind is in the config's set.
func (c Config) retryable(err error) bool {
	kind := models.KindOf(err)
	for _, k := range c.Retryable {
		if k == kind {
			return true
		}
	}
	return false
}

// Delay returns the backoff delay for a 0-indexed attempt.
// Formula: BaseDelay * ExponentialBase^attempt, capped at MaxDelay,
// then +-25% jitter when enabled. Never negative.
func Delay(attempt int, cfg Config) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	base := cfg.ExponentialBase
	if base <= 1 {
		base = 1
	}

	// Cap the exponent to prevent overflow; at base 2 even attempt 62
	// exceeds any practical MaxDelay.
	d := cfg.MaxDelay
	if attempt <= 62 {
		scaled := float64(cfg.BaseDelay) * math.Pow(base, float64(attempt))
		if scaled < float64(cfg.MaxDelay) {
			d = time.Duration(scaled)
		}
	}
	if d < 0 || d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}

	if cfg.Jitter && d > 0 {
		var f float64
		if cfg.Rand != nil {
			f = cfg.Rand.Float64()
		} else {
			f = rand.Float64()
		}
		// Uniform in [0.75, 1.25).
		d = time.Duration(float64(d) * (0.75 + 0.5*f))
	}

	if d < 0 {
		d = 0
	}
	return d
}

// ExhaustedError reports that an operation failed on every attempt.
type ExhaustedError struct {
	// Attempts is the number of tries made.
	Attempts int

	// Last is the error from the final attempt.
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Observer is invoked before each backoff wait with the 0-indexed attempt
// that just failed, its error, and the upcoming delay. May be nil.
type Observer func(attempt int, err error, delay time.Duration)

// Do runs op up to cfg.MaxAttempts times. Errors whose kind is outside
// cfg.Retryable propagate immediately. Between attempts Do notifies the
// observer then sleeps, waking early on context cancellation. When all
// attempts fail it returns an *ExhaustedError wrapping the last cause.
func Do(ctx context.Context, cfg Config, op func() error, obs Observer) error {
	_, err := DoValue(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, op()
	}, obs)
	return err
}

// DoValue is Do for operations that produce a result.
func DoValue[T any](ctx context.Context, cfg Config, op func() (T, error), obs Observer) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !cfg.retryable(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		delay := Delay(attempt, cfg)
		if obs != nil {
			obs(attempt, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// sleep blocks for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
