package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies oracle failures.
type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeEndpoint  ErrorType = "endpoint"
	ErrorTypeModel     ErrorType = "model"
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents a structured oracle error with classification.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured oracle error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error into a structured *Error so callers and
// the retry package get consistent retryability decisions.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var oracleErr *Error
	if errors.As(err, &oracleErr) {
		return oracleErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication"):
		return NewError(ErrorTypeAuth, "authentication failed", false, err)

	case strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests"):
		return NewError(ErrorTypeRateLimit, "rate limited", true, err)

	case strings.Contains(lower, "model") &&
		(strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist")):
		return NewError(ErrorTypeModel, "model not found", false, err)

	case strings.Contains(errStr, "404"):
		return NewError(ErrorTypeEndpoint, "endpoint not found", false, err)

	case strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") ||
		strings.Contains(lower, "service unavailable"):
		return NewError(ErrorTypeServer, "upstream server error", true, err)

	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") || strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "timed out") || strings.Contains(lower, "broken pipe"):
		return NewError(ErrorTypeNetwork, "network failure", true, err)
	}

	return NewError(ErrorTypeUnknown, "oracle call failed", false, err)
}
