package model

import (
	"errors"
	"fmt"
	"net/http"
)

// IssuerError is the base error for the issuer domain.
type IssuerError struct {
	Code    string
	Message string
	Err     error
}

func (e *IssuerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *IssuerError) Unwrap() error {
	return e.Err
}

// NewIssuerNotFound covers both a missing issuer and inadequate
// permissions. The two are deliberately indistinguishable so callers
// cannot probe for existence.
func NewIssuerNotFound(slug string) *IssuerError {
	return &IssuerError{
		Code:    "ISSUER_NOT_FOUND",
		Message: fmt.Sprintf("Issuer %s not found or inadequate permissions.", slug),
	}
}

func NewIssuerSlugAlreadyExists(slug string) *IssuerError {
	return &IssuerError{
		Code:    "ISSUER_SLUG_ALREADY_EXISTS",
		Message: fmt.Sprintf("Issuer with slug '%s' already exists", slug),
	}
}

func NewInvalidRole(role string) *IssuerError {
	return &IssuerError{
		Code:    "INVALID_ROLE",
		Message: fmt.Sprintf("Invalid role: %s", role),
	}
}

func NewStaffMemberNotFound() *IssuerError {
	return &IssuerError{
		Code:    "STAFF_MEMBER_NOT_FOUND",
		Message: "Staff member not found",
	}
}

func NewLastOwnerRemoval() *IssuerError {
	return &IssuerError{
		Code:    "LAST_OWNER_REMOVAL",
		Message: "Cannot remove the last owner of an issuer",
	}
}

// NewIssuerCreationNotAllowed fires when the deployment restricts
// issuer creation to approved accounts.
func NewIssuerCreationNotAllowed() *IssuerError {
	return &IssuerError{
		Code:    "ISSUER_CREATION_NOT_ALLOWED",
		Message: "Creating issuers requires an approved account.",
	}
}

func NewCreateIssuerError(err error) *IssuerError {
	return &IssuerError{
		Code:    "CREATE_ISSUER_ERROR",
		Message: "Failed to create issuer",
		Err:     err,
	}
}

func IsIssuerNotFound(err error) bool {
	var issErr *IssuerError
	return errors.As(err, &issErr) && issErr.Code == "ISSUER_NOT_FOUND"
}

func IsDomainError(err error) bool {
	var issErr *IssuerError
	return errors.As(err, &issErr)
}

// GetErrorResponse maps a domain error to an HTTP status, message and code.
func GetErrorResponse(err error) (statusCode int, message string, errorCode string) {
	var issErr *IssuerError
	if !errors.As(err, &issErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch issErr.Code {
	case "ISSUER_NOT_FOUND", "STAFF_MEMBER_NOT_FOUND":
		return http.StatusNotFound, issErr.Message, issErr.Code
	case "ISSUER_SLUG_ALREADY_EXISTS":
		return http.StatusConflict, issErr.Message, issErr.Code
	case "INVALID_ROLE", "LAST_OWNER_REMOVAL":
		return http.StatusBadRequest, issErr.Message, issErr.Code
	case "ISSUER_CREATION_NOT_ALLOWED":
		return http.StatusForbidden, issErr.Message, issErr.Code
	default:
		return http.StatusInternalServerError, issErr.Message, issErr.Code
	}
}
