package model

import (
	"errors"
	"fmt"
	"net/http"
)

// AssertionError is the base error for the assertion domain.
type AssertionError struct {
	Code    string
	Message string
	Err     error
}

func (e *AssertionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// NewBadgeNotIssuable covers a missing badge class and a caller who may
// not issue it. The two cases return the same response.
func NewBadgeNotIssuable() *AssertionError {
	return &AssertionError{
		Code:    "BADGE_NOT_ISSUABLE",
		Message: "Issuer not found or current user lacks permission to issue this badge.",
	}
}

func NewAssertionNotFound() *AssertionError {
	return &AssertionError{
		Code:    "ASSERTION_NOT_FOUND",
		Message: "Assertion not found or user has inadequate permissions.",
	}
}

func NewMissingRevocationReason() *AssertionError {
	return &AssertionError{
		Code:    "MISSING_REQUIRED_FIELD",
		Message: "The parameter revocation_reason is required to revoke a badge assertion",
	}
}

func NewAlreadyRevoked() *AssertionError {
	return &AssertionError{
		Code:    "ASSERTION_ALREADY_REVOKED",
		Message: "Assertion is already revoked.",
	}
}

func NewInvalidRecipient(detail string) *AssertionError {
	return &AssertionError{
		Code:    "INVALID_RECIPIENT",
		Message: fmt.Sprintf("Invalid recipient: %s", detail),
	}
}

func NewEmptyBatch() *AssertionError {
	return &AssertionError{
		Code:    "EMPTY_BATCH",
		Message: "At least one assertion is required",
	}
}

func NewImportError(err error) *AssertionError {
	return &AssertionError{
		Code:    "IMPORT_ERROR",
		Message: "Failed to parse the uploaded spreadsheet",
		Err:     err,
	}
}

func NewCreateAssertionError(err error) *AssertionError {
	return &AssertionError{
		Code:    "CREATE_ASSERTION_ERROR",
		Message: "Failed to issue badge",
		Err:     err,
	}
}

func IsAlreadyRevoked(err error) bool {
	var aErr *AssertionError
	return errors.As(err, &aErr) && aErr.Code == "ASSERTION_ALREADY_REVOKED"
}

func IsAssertionNotFound(err error) bool {
	var aErr *AssertionError
	return errors.As(err, &aErr) && aErr.Code == "ASSERTION_NOT_FOUND"
}

// GetErrorResponse maps a domain error to an HTTP status, message and code.
func GetErrorResponse(err error) (statusCode int, message string, errorCode string) {
	var aErr *AssertionError
	if !errors.As(err, &aErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch aErr.Code {
	case "BADGE_NOT_ISSUABLE", "ASSERTION_NOT_FOUND":
		return http.StatusNotFound, aErr.Message, aErr.Code
	case "MISSING_REQUIRED_FIELD", "ASSERTION_ALREADY_REVOKED", "INVALID_RECIPIENT",
		"EMPTY_BATCH", "IMPORT_ERROR":
		return http.StatusBadRequest, aErr.Message, aErr.Code
	default:
		return http.StatusInternalServerError, aErr.Message, aErr.Code
	}
}
