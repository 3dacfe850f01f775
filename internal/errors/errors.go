// Package errors provides structured error types for protodocs.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrContractViolation = errors.New("authoring contract violation")
	ErrTimeout           = errors.New("operation timed out")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrUnavailable       = errors.New("service unavailable")
	ErrInvalidInput      = errors.New("invalid input")
)

// ContractError reports malformed protocol or index data that rendering
// cannot recover from. It always matches ErrContractViolation.
type ContractError struct {
	Subject string
	Detail  string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrContractViolation, e.Subject, e.Detail)
}

func (e *ContractError) Unwrap() error { return ErrContractViolation }

// Contract creates a ContractError. The detail is formatted with args.
func Contract(subject, detail string, args ...any) *ContractError {
	return &ContractError{Subject: subject, Detail: fmt.Sprintf(detail, args...)}
}

// NotFound wraps ErrNotFound with the name of what was missing.
func NotFound(what, name string) error {
	return fmt.Errorf("%s %q: %w", what, name, ErrNotFound)
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsContractViolation reports whether err signals malformed source data.
func IsContractViolation(err error) bool { return errors.Is(err, ErrContractViolation) }

// APIError represents an error from an external API call.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s API error (status %d): %s: %v", e.Service, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError creates a new API error.
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{Service: service, StatusCode: statusCode, Message: message}
}

// IsRetryable returns true if the error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimit) || errors.Is(err, ErrUnavailable)
}
