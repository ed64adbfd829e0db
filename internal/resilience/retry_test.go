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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// instantRetryConfig returns a config whose sleeps return immediately while
// recording the requested delays.
func instantRetryConfig(delays *[]time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		BackoffStep:     2 * time.Second,
		AttemptTimeout:  time.Second,
		OverallDeadline: time.Minute,
		Sleep: func(_ context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
}

func TestWithLinearRetrySucceedsFirstAttempt(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := WithLinearRetry(context.Background(), zaptest.NewLogger(t), instantRetryConfig(&delays),
		func(_ context.Context) error {
			calls++
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestWithLinearRetrySucceedsAfterFailure(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := WithLinearRetry(context.Background(), zaptest.NewLogger(t), instantRetryConfig(&delays),
		func(_ context.Context) error {
			calls++
			if calls < 2 {
				return errors.New("transient failure")
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{2 * time.Second}, delays)
}

func TestWithLinearRetryExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	var retries []int
	sentinel := errors.New("persistent failure")
	calls := 0

	config := instantRetryConfig(&delays)
	config.OnRetry = func(attempt int) {
		retries = append(retries, attempt)
	}

	err := WithLinearRetry(context.Background(), zaptest.NewLogger(t), config,
		func(_ context.Context) error {
			calls++
			return sentinel
		})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "operation failed after 3 attempts")

	// Linear backoff: the delay grows with the attempt number.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestWithLinearRetryOverallDeadline(t *testing.T) {
	config := RetryConfig{
		MaxAttempts:     3,
		BackoffStep:     time.Millisecond,
		OverallDeadline: 20 * time.Millisecond,
	}

	err := WithLinearRetry(context.Background(), zaptest.NewLogger(t), config,
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

	require.Error(t, err)

	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, ErrorCodeTimeout, serviceErr.Code)
	assert.Equal(t, FailureTimeout, Classify(err))
}

func TestWithLinearRetryAttemptTimeout(t *testing.T) {
	var delays []time.Duration
	config := instantRetryConfig(&delays)
	config.AttemptTimeout = 10 * time.Millisecond
	calls := 0

	err := WithLinearRetry(context.Background(), zaptest.NewLogger(t), config,
		func(ctx context.Context) error {
			calls++
			// Each attempt observes its own timeout, not the overall one.
			<-ctx.Done()
			return ctx.Err()
		})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithLinearRetryCanceledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := RetryConfig{
		MaxAttempts:     3,
		BackoffStep:     time.Second,
		OverallDeadline: time.Minute,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	err := WithLinearRetry(ctx, zaptest.NewLogger(t), config,
		func(_ context.Context) error {
			return errors.New("transient failure")
		})

	require.Error(t, err)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, ErrorCodeTimeout, serviceErr.Code)
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, 2*time.Second, config.BackoffStep)
	assert.Equal(t, 10*time.Second, config.AttemptTimeout)
	assert.Equal(t, 15*time.Second, config.OverallDeadline)
}
