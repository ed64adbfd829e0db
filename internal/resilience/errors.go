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

// Package resilience provides retry, timeout and error classification
// utilities shared by the chat and document analysis paths.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrorCode identifies a standard error category carried on ServiceError.
type ErrorCode string

const (
	// ErrorCodeBadRequest marks validation failures.
	ErrorCodeBadRequest ErrorCode = "BAD_REQUEST"
	// ErrorCodeUnauthorized marks authentication failures.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeTooManyRequests marks rate limiting by an upstream service.
	ErrorCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	// ErrorCodeTimeout marks an attempt or deadline timeout.
	ErrorCodeTimeout ErrorCode = "TIMEOUT"
	// ErrorCodeDependencyFailure marks upstream network or server failures.
	ErrorCodeDependencyFailure ErrorCode = "DEPENDENCY_FAILURE"
	// ErrorCodeInternalError marks everything else.
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ServiceError carries an error category and the HTTP status to surface it
// with.
type ServiceError struct {
	Message    string
	Code       ErrorCode
	StatusCode int
	Internal   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Internal
}

// NewServiceError creates a ServiceError with the given parameters.
func NewServiceError(message string, code ErrorCode, statusCode int, internal error) *ServiceError {
	return &ServiceError{Message: message, Code: code, StatusCode: statusCode, Internal: internal}
}

// NewBadRequestError creates a validation error.
func NewBadRequestError(message string, internal error) *ServiceError {
	return NewServiceError(message, ErrorCodeBadRequest, http.StatusBadRequest, internal)
}

// NewUnauthorizedError creates an authentication error.
func NewUnauthorizedError(message string, internal error) *ServiceError {
	return NewServiceError(message, ErrorCodeUnauthorized, http.StatusUnauthorized, internal)
}

// NewTooManyRequestsError creates a rate limit error.
func NewTooManyRequestsError(message string, internal error) *ServiceError {
	return NewServiceError(message, ErrorCodeTooManyRequests, http.StatusTooManyRequests, internal)
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(message string, internal error) *ServiceError {
	return NewServiceError(message, ErrorCodeTimeout, http.StatusRequestTimeout, internal)
}

// NewDependencyFailureError creates an upstream failure error.
func NewDependencyFailureError(message string, internal error) *ServiceError {
	return NewServiceError(message, ErrorCodeDependencyFailure, http.StatusBadGateway, internal)
}

// NewInternalError creates an internal server error.
func NewInternalError(message string, internal error) *ServiceError {
	return NewServiceError(message, ErrorCodeInternalError, http.StatusInternalServerError, internal)
}

// FailureKind is the user-facing classification of an exhausted operation.
type FailureKind string

const (
	// FailureTimeout indicates the operation did not finish in time.
	FailureTimeout FailureKind = "timeout"
	// FailureAuth indicates the upstream rejected the credentials.
	FailureAuth FailureKind = "auth"
	// FailureRateLimit indicates the upstream is rate limiting requests.
	FailureRateLimit FailureKind = "rate_limit"
	// FailureNetwork indicates a connectivity problem with the upstream.
	FailureNetwork FailureKind = "network"
	// FailureUnknown covers everything else.
	FailureUnknown FailureKind = "unknown"
)

// Classify maps an error to its user-facing failure kind. ServiceError codes
// take precedence; otherwise the error text is matched the same way the
// upstream clients report failures.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Code {
		case ErrorCodeTimeout:
			return FailureTimeout
		case ErrorCodeUnauthorized:
			return FailureAuth
		case ErrorCodeTooManyRequests:
			return FailureRateLimit
		case ErrorCodeDependencyFailure:
			return FailureNetwork
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return FailureTimeout
	case strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "authentication") || strings.Contains(errStr, "api key"):
		return FailureAuth
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests"):
		return FailureRateLimit
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") || strings.Contains(errStr, "no such host"):
		return FailureNetwork
	default:
		return FailureUnknown
	}
}

// degradedMessages maps failure kinds to the message shown to the end user
// after retries are exhausted.
var degradedMessages = map[FailureKind]string{
	FailureTimeout:   "O assistente demorou mais do que o esperado para responder. Tente novamente em instantes.",
	FailureAuth:      "Sua sessão expirou ou as credenciais do serviço são inválidas. Verifique a configuração e tente novamente.",
	FailureRateLimit: "Muitas solicitações em sequência. Aguarde alguns segundos antes de tentar novamente.",
	FailureNetwork:   "Não foi possível conectar ao serviço do assistente. Verifique sua conexão e tente novamente.",
	FailureUnknown:   "Ocorreu um erro inesperado ao gerar a resposta. Tente novamente em instantes.",
}

// DegradedMessage returns the user-facing message for a failure kind.
func DegradedMessage(kind FailureKind) string {
	if msg, ok := degradedMessages[kind]; ok {
		return msg
	}
	return degradedMessages[FailureUnknown]
}
