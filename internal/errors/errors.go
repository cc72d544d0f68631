// Package errors defines the service error taxonomy shared by flows and the
// HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	CodeAuthRequired ErrorCode = "auth_required"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeInvalidToken ErrorCode = "invalid_token"
	CodeValidation   ErrorCode = "validation_error"
	CodeConflict     ErrorCode = "conflict"
	CodeNotFound     ErrorCode = "not_found"
	CodeGateway      ErrorCode = "gateway_error"
	CodeInternal     ErrorCode = "internal_error"
)

// ServiceError carries a machine-readable code alongside the message.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a detail entry and returns the error for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code ErrorCode, status int, message string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, cause: cause}
}

// AuthRequired marks an operation refused because no session exists. It is
// recoverable by signing in and is never logged as an error.
func AuthRequired(message string) *ServiceError {
	if message == "" {
		message = "sign in required"
	}
	return newError(CodeAuthRequired, http.StatusUnauthorized, message, nil)
}

// Unauthorized marks a rejected credential.
func Unauthorized(message string) *ServiceError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message, nil)
}

// InvalidToken marks a token that failed validation.
func InvalidToken(cause error) *ServiceError {
	return newError(CodeInvalidToken, http.StatusUnauthorized, "invalid or expired token", cause)
}

// Validation marks a required-field failure caught before any gateway call.
func Validation(message string) *ServiceError {
	return newError(CodeValidation, http.StatusBadRequest, message, nil)
}

// Conflict marks a uniqueness violation reported by the gateway.
func Conflict(message string) *ServiceError {
	return newError(CodeConflict, http.StatusConflict, message, nil)
}

// NotFound marks a missing resource.
func NotFound(message string) *ServiceError {
	return newError(CodeNotFound, http.StatusNotFound, message, nil)
}

// Gateway marks a persistence failure. Not retried automatically.
func Gateway(message string, cause error) *ServiceError {
	if message == "" {
		message = "the request could not be completed, please try again"
	}
	return newError(CodeGateway, http.StatusBadGateway, message, cause)
}

// Internal marks an unexpected failure.
func Internal(message string, cause error) *ServiceError {
	return newError(CodeInternal, http.StatusInternalServerError, message, cause)
}

// GetServiceError extracts a *ServiceError from err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}
