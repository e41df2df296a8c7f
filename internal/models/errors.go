package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned to API clients. These are stable identifiers;
// messages may change, codes must not.
const (
	CodeNotFound        = "POST_NOT_FOUND"
	CodeEmptyContent    = "POST_EMPTY_CONTENT"
	CodeAuthRequired    = "POST_AUTH_REQUIRED"
	CodeDifferentSchool = "DIFFERENT_SCHOOL"
	CodeAlreadyDeleted  = "POST_ALREADY_DELETED"
	CodeAlreadyReviewed = "POST_ALREADY_REVIEWED"
	CodeAlreadyVoted    = "ALREADY_VOTED"
	CodeForbidden       = "INSUFFICIENT_PERMISSIONS"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeExternalFailure = "EXTERNAL_FAILURE"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFoundGeneric = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Status  int
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
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFoundGeneric,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
		Status:  fiber.StatusNotFound,
	}
}

// NewPostNotFoundError reports a missing post with the post-specific code.
func NewPostNotFoundError(id uint) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("Post %d not found", id),
		Status:  fiber.StatusNotFound,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  fiber.StatusBadRequest,
	}
}

// NewValidationErrorWithCode reports a validation failure with a specific code,
// e.g. POST_EMPTY_CONTENT.
func NewValidationErrorWithCode(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  fiber.StatusBadRequest,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	}
}

// NewAuthRequiredError reports that a logged-in account is required,
// e.g. for non-anonymous posting.
func NewAuthRequiredError(message string) *AppError {
	return &AppError{
		Code:    CodeAuthRequired,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	}
}

// NewForbiddenError reports a role or tenant boundary violation.
func NewForbiddenError(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  fiber.StatusForbidden,
	}
}

// NewInvalidStateError reports an operation incompatible with the current
// post status (already reviewed, already deleted, already voted).
func NewInvalidStateError(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  fiber.StatusBadRequest,
	}
}

// NewConflictError reports a lost write race, e.g. a conditional status
// update that matched zero rows.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  fiber.StatusConflict,
	}
}

// NewExternalFailureError wraps a downstream publish/notify failure. These are
// logged and swallowed at the collaborator boundary, never returned to callers
// of moderation operations.
func NewExternalFailureError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeExternalFailure,
		Message: message,
		Status:  fiber.StatusBadGateway,
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Status:  fiber.StatusInternalServerError,
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
		if appErr.Status != 0 {
			status = appErr.Status
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
