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
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceErrorConstructors(t *testing.T) {
	internal := errors.New("boom")

	tests := []struct {
		name       string
		err        *ServiceError
		code       ErrorCode
		statusCode int
	}{
		{"bad request", NewBadRequestError("msg", internal), ErrorCodeBadRequest, http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("msg", internal), ErrorCodeUnauthorized, http.StatusUnauthorized},
		{"too many requests", NewTooManyRequestsError("msg", internal), ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{"timeout", NewTimeoutError("msg", internal), ErrorCodeTimeout, http.StatusRequestTimeout},
		{"dependency failure", NewDependencyFailureError("msg", internal), ErrorCodeDependencyFailure, http.StatusBadGateway},
		{"internal", NewInternalError("msg", internal), ErrorCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
			assert.Equal(t, "msg", tt.err.Error())
			assert.Equal(t, internal, tt.err.Unwrap())
		})
	}
}

func TestServiceErrorUnwrapsThroughWrapping(t *testing.T) {
	inner := NewTimeoutError("deadline", nil)
	wrapped := fmt.Errorf("operation failed: %w", inner)

	var serviceErr *ServiceError
	require.True(t, errors.As(wrapped, &serviceErr))
	assert.Equal(t, ErrorCodeTimeout, serviceErr.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FailureKind
	}{
		{"nil error", nil, FailureUnknown},
		{"timeout service error", NewTimeoutError("msg", nil), FailureTimeout},
		{"unauthorized service error", NewUnauthorizedError("msg", nil), FailureAuth},
		{"rate limit service error", NewTooManyRequestsError("msg", nil), FailureRateLimit},
		{"dependency service error", NewDependencyFailureError("msg", nil), FailureNetwork},
		{"context deadline", context.DeadlineExceeded, FailureTimeout},
		{"wrapped context deadline", fmt.Errorf("call failed: %w", context.DeadlineExceeded), FailureTimeout},
		{"timeout string", errors.New("request timeout"), FailureTimeout},
		{"api key string", errors.New("incorrect api key provided"), FailureAuth},
		{"unauthorized string", errors.New("401 unauthorized"), FailureAuth},
		{"rate limit string", errors.New("rate limit exceeded"), FailureRateLimit},
		{"connection refused", errors.New("dial tcp: connection refused"), FailureNetwork},
		{"no such host", errors.New("lookup api.example.com: no such host"), FailureNetwork},
		{"plain error", errors.New("boom"), FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestClassifyServiceErrorCodeTakesPrecedence(t *testing.T) {
	// The wrapped text mentions a timeout, but the code wins.
	err := NewUnauthorizedError("timeout while validating credentials", nil)

	assert.Equal(t, FailureAuth, Classify(err))
}

func TestDegradedMessage(t *testing.T) {
	kinds := []FailureKind{FailureTimeout, FailureAuth, FailureRateLimit, FailureNetwork, FailureUnknown}

	seen := make(map[string]bool)
	for _, kind := range kinds {
		msg := DegradedMessage(kind)
		assert.NotEmpty(t, msg)
		seen[msg] = true
	}
	assert.Len(t, seen, len(kinds), "each failure kind has a distinct message")

	assert.Equal(t, DegradedMessage(FailureUnknown), DegradedMessage(FailureKind("bogus")))
}
