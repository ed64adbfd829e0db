// Copyright 2025 Legal Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resilience

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the total number of attempts (initial + retries).
	DefaultMaxAttempts = 3
	// DefaultBackoffStep is multiplied by the attempt number between retries.
	DefaultBackoffStep = 2 * time.Second
	// DefaultAttemptTimeout bounds a single attempt.
	DefaultAttemptTimeout = 10 * time.Second
	// DefaultOverallDeadline bounds the whole operation including backoff.
	DefaultOverallDeadline = 15 * time.Second
)

// RetryConfig holds configuration for linear-backoff retry logic.
type RetryConfig struct {
	MaxAttempts     int
	BackoffStep     time.Duration
	AttemptTimeout  time.Duration
	OverallDeadline time.Duration

	// Sleep waits for d or until ctx is done. Overridable in tests; defaults
	// to a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry is invoked before each retry with the attempt number just
	// failed, letting callers surface a transient "retrying" status.
	OnRetry func(attempt int)
}

// DefaultRetryConfig returns the chat-send retry configuration: 3 attempts,
// linear backoff of attempt*2s, 10s per attempt, 15s overall.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     DefaultMaxAttempts,
		BackoffStep:     DefaultBackoffStep,
		AttemptTimeout:  DefaultAttemptTimeout,
		OverallDeadline: DefaultOverallDeadline,
	}
}

// RetryFunc is an operation executed under retry. The context passed in
// carries the per-attempt timeout.
type RetryFunc func(ctx context.Context) error

// WithLinearRetry executes fn with bounded retries and linear backoff. Each
// attempt runs under its own timeout and the whole operation under an overall
// deadline; whichever expires first ends the operation. The error from the
// last attempt is returned wrapped once retries are exhausted.
func WithLinearRetry(ctx context.Context, logger *zap.Logger, config RetryConfig, fn RetryFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.Sleep == nil {
		config.Sleep = sleepWithContext
	}

	if config.OverallDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.OverallDeadline)
		defer cancel()
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if config.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, config.AttemptTimeout)
		}

		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			if attempt > 1 {
				logger.Info("Operation succeeded after retry",
					zap.Int("attempt", attempt),
					zap.Int("max_attempts", config.MaxAttempts))
			}
			return nil
		}
		lastErr = err

		// The overall deadline expiring ends the operation regardless of
		// remaining attempts.
		if ctx.Err() != nil {
			logger.Warn("Overall deadline expired during retry",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return NewTimeoutError("operation deadline exceeded", err)
		}

		if attempt == config.MaxAttempts {
			break
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt)
		}

		delay := time.Duration(attempt) * config.BackoffStep
		logger.Debug("Retrying after delay",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := config.Sleep(ctx, delay); err != nil {
			return NewTimeoutError("operation deadline exceeded", lastErr)
		}
	}

	logger.Error("All retry attempts exhausted",
		zap.Int("max_attempts", config.MaxAttempts),
		zap.Error(lastErr))

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
