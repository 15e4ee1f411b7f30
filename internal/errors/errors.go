package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Validation errors: surfaced to the caller as bad requests
	ErrUsernameExists    = NewDomainError("USERNAME_EXISTS", "user already exists by this username")
	ErrUserNotFound      = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrIncorrectPassword = NewDomainError("INCORRECT_PASSWORD", "old password is incorrect")
	ErrResetCodeInvalid  = NewDomainError("RESET_CODE_INVALID", "reset code invalid or expired")

	// Login deliberately reports one message for unknown username and wrong
	// password, so the response never confirms that a username exists.
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "username or password incorrect")

	// Authentication errors
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrInvalidToken = NewDomainError("INVALID_TOKEN", "invalid or expired token")

	// System errors
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes.
// This should only be used in the handler/presentation layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request: every client-caused failure, matching the uniform
	// ok / bad-request / internal result classification
	case "USERNAME_EXISTS", "USER_NOT_FOUND", "INCORRECT_PASSWORD",
		"RESET_CODE_INVALID", "INVALID_CREDENTIALS":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_TOKEN":
		return http.StatusUnauthorized

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts the client-facing error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
