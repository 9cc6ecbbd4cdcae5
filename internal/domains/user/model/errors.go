package model

import (
	"errors"
	"fmt"
	"net/http"
)

// UserError is the base error for the user domain.
type UserError struct {
	Code    string
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func NewEmailAlreadyExists() *UserError {
	return &UserError{
		Code:    "EMAIL_ALREADY_EXISTS",
		Message: "An account with this email already exists",
	}
}

func NewInvalidCredentials() *UserError {
	return &UserError{
		Code:    "INVALID_CREDENTIALS",
		Message: "Invalid email or password",
	}
}

func NewUserNotFound() *UserError {
	return &UserError{
		Code:    "USER_NOT_FOUND",
		Message: "User not found",
	}
}

func NewInvalidToken() *UserError {
	return &UserError{
		Code:    "INVALID_TOKEN",
		Message: "Invalid or expired token",
	}
}

func NewCreateUserError(err error) *UserError {
	return &UserError{
		Code:    "CREATE_USER_ERROR",
		Message: "Failed to create account",
		Err:     err,
	}
}

// GetErrorResponse maps a domain error to an HTTP status, message and code.
func GetErrorResponse(err error) (statusCode int, message string, errorCode string) {
	var uErr *UserError
	if !errors.As(err, &uErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch uErr.Code {
	case "EMAIL_ALREADY_EXISTS":
		return http.StatusConflict, uErr.Message, uErr.Code
	case "INVALID_CREDENTIALS", "INVALID_TOKEN":
		return http.StatusUnauthorized, uErr.Message, uErr.Code
	case "USER_NOT_FOUND":
		return http.StatusNotFound, uErr.Message, uErr.Code
	default:
		return http.StatusInternalServerError, uErr.Message, uErr.Code
	}
}
