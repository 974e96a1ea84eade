package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewMissingRequiredField rejects a ticket before classification.
func NewMissingRequiredField(field string) error {
	return NewDomainError("MISSING_REQUIRED_FIELD",
		fmt.Sprintf("%s is required", field),
		http.StatusBadRequest,
		map[string]any{"field": field})
}

// NewUnsupportedCategory rejects an unknown issue category.
func NewUnsupportedCategory(category string) error {
	return NewDomainError("UNSUPPORTED_CATEGORY",
		fmt.Sprintf("Unsupported issueCategory: %s.", category),
		http.StatusBadRequest,
		map[string]any{"issueCategory": category})
}

// NewMissingConfiguration reports an unset downstream URL for a resolved target.
func NewMissingConfiguration(target string) error {
	return NewDomainError("MISSING_CONFIGURATION",
		fmt.Sprintf("no URL configured for target %s", target),
		http.StatusInternalServerError,
		map[string]any{"target": target})
}

// NewDownstreamFailure wraps a failed dispatch (HTTP or network level).
func NewDownstreamFailure(target, detail string) error {
	return &DomainError{
		Code:       "DOWNSTREAM_FAILURE",
		Message:    fmt.Sprintf("forwarding to %s failed", target),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"target": target, "detail": detail},
	}
}

// NewStoreReadFailure wraps a ticket store enumeration failure.
func NewStoreReadFailure(err error) error {
	return &DomainError{
		Code:       "STORE_READ_FAILURE",
		Message:    "failed to read tickets",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
