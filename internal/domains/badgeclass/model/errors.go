package model

import (
	"errors"
	"fmt"
	"net/http"
)

// BadgeClassError is the base error for the badgeclass domain.
type BadgeClassError struct {
	Code    string
	Message string
	Err     error
}

func (e *BadgeClassError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *BadgeClassError) Unwrap() error {
	return e.Err
}

func NewBadgeClassNotFound(slug string) *BadgeClassError {
	return &BadgeClassError{
		Code:    "BADGE_CLASS_NOT_FOUND",
		Message: fmt.Sprintf("BadgeClass %s not found or inadequate permissions.", slug),
	}
}

// Delete preconditions. Checked in a fixed order; the first failing
// check decides the message.

func NewBadgeAlreadyIssued() *BadgeClassError {
	return &BadgeClassError{
		Code:    "BADGE_ALREADY_ISSUED",
		Message: "Badge could not be deleted. It has already been issued at least once.",
	}
}

func NewBadgeUsedAsRequirement() *BadgeClassError {
	return &BadgeClassError{
		Code:    "BADGE_USED_AS_REQUIREMENT",
		Message: "Badge could not be deleted. It is being used as a pathway completion requirement.",
	}
}

func NewBadgeUsedAsCompletion() *BadgeClassError {
	return &BadgeClassError{
		Code:    "BADGE_USED_AS_COMPLETION",
		Message: "Badge could not be deleted. It is being used as a pathway completion badge.",
	}
}

func NewInvalidImage(err error) *BadgeClassError {
	return &BadgeClassError{
		Code:    "INVALID_IMAGE",
		Message: "Invalid badge image",
		Err:     err,
	}
}

func NewMissingCriteria() *BadgeClassError {
	return &BadgeClassError{
		Code:    "MISSING_CRITERIA",
		Message: "Either criteria_url or criteria_text is required",
	}
}

func NewCreateBadgeClassError(err error) *BadgeClassError {
	return &BadgeClassError{
		Code:    "CREATE_BADGE_CLASS_ERROR",
		Message: "Failed to create badge class",
		Err:     err,
	}
}

func IsBadgeClassNotFound(err error) bool {
	var bcErr *BadgeClassError
	return errors.As(err, &bcErr) && bcErr.Code == "BADGE_CLASS_NOT_FOUND"
}

// GetErrorResponse maps a domain error to an HTTP status, message and code.
func GetErrorResponse(err error) (statusCode int, message string, errorCode string) {
	var bcErr *BadgeClassError
	if !errors.As(err, &bcErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch bcErr.Code {
	case "BADGE_CLASS_NOT_FOUND":
		return http.StatusNotFound, bcErr.Message, bcErr.Code
	case "BADGE_ALREADY_ISSUED", "BADGE_USED_AS_REQUIREMENT", "BADGE_USED_AS_COMPLETION",
		"INVALID_IMAGE", "MISSING_CRITERIA":
		return http.StatusBadRequest, bcErr.Message, bcErr.Code
	default:
		return http.StatusInternalServerError, bcErr.Message, bcErr.Code
	}
}
