package models

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	// Type discriminates account-state errors (ACCOUNT_SUSPENDED,
	// ACCOUNT_BANNED, ACCOUNT_DELETED) so clients can branch on them.
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
	Stack  string `json:"stack,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Type    string
	Reason  string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// NewAccountStateError builds the 403 returned when login hits a
// suspended, banned or soft-deleted account. accountType is one of
// ACCOUNT_SUSPENDED, ACCOUNT_BANNED, ACCOUNT_DELETED.
func NewAccountStateError(accountType, reason string) *AppError {
	msg := "Account access restricted"
	switch accountType {
	case "ACCOUNT_SUSPENDED":
		msg = "Account is suspended"
	case "ACCOUNT_BANNED":
		msg = "Account is banned"
	case "ACCOUNT_DELETED":
		msg = "Account has been deleted"
	}
	return &AppError{
		Code:    "ACCOUNT_STATE",
		Message: msg,
		Type:    accountType,
		Reason:  reason,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Type:   appErr.Type,
			Reason: appErr.Reason,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	// Stack traces help debugging but must never ship in production
	// responses.
	if status >= fiber.StatusInternalServerError {
		env := os.Getenv("APP_ENV")
		if env != "production" && env != "prod" {
			response.Stack = string(debug.Stack())
		}
	}

	return c.Status(status).JSON(response)
}
