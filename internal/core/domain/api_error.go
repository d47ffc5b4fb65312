package domain

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a failed request.
type ErrorKind uint8

const (
	// KindNetwork indicates the API could not be reached.
	KindNetwork ErrorKind = iota + 1
	// KindTimeout indicates the request did not complete within the client timeout.
	KindTimeout
	// KindDecode indicates the response body was malformed or did not match the expected shape.
	KindDecode
	// KindValidation indicates the request was rejected locally and never dispatched.
	KindValidation
	// KindAPI indicates the server answered with a non-2xx status.
	KindAPI
)

// String returns the lowercase name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// APIError is the tagged failure result produced by the data layer.
// StatusCode is only set for KindAPI; Field is only set for KindValidation.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Field      string
	Cause      error
}

// NewAPIError returns a server-reported error.
func NewAPIError(status int, message string) *APIError {
	return &APIError{Kind: KindAPI, StatusCode: status, Message: message}
}

// NewValidationError returns a local pre-flight failure for the given field.
func NewValidationError(field, message string) *APIError {
	return &APIError{Kind: KindValidation, Field: field, Message: message}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(cause error) *APIError {
	return &APIError{Kind: KindNetwork, Message: "request failed", Cause: cause}
}

// NewTimeoutError wraps a transport failure caused by the client timeout.
func NewTimeoutError(cause error) *APIError {
	return &APIError{Kind: KindTimeout, Message: "request timed out", Cause: cause}
}

// NewDecodeError wraps a response decoding failure.
func NewDecodeError(cause error) *APIError {
	return &APIError{Kind: KindDecode, Message: "malformed response", Cause: cause}
}

// Error implements error.
func (e *APIError) Error() string {
	msg := e.summary()
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// summary renders the error without its cause.
func (e *APIError) summary() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is matches the kind sentinels. A timeout is also a network error.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork || e.Kind == KindTimeout
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrAPI:
		return e.Kind == KindAPI
	default:
		return false
	}
}
