package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. Each maps to exactly one HTTP status.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeSelfTip      = "SELF_TIP"
	CodeChainPending = "CHAIN_PENDING"
	CodeChainFailed  = "CHAIN_VERIFICATION_FAILED"
	CodeStorage      = "STORAGE_UNAVAILABLE"
	CodeInternal     = "INTERNAL_ERROR"
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
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewSelfTipError() *AppError {
	return &AppError{
		Code:    CodeSelfTip,
		Message: "Cannot tip your own post",
	}
}

// NewChainPendingError signals a transaction that exists on chain but is not
// yet finalized. The caller may back off and resubmit the identical claim.
func NewChainPendingError(signature string) *AppError {
	return &AppError{
		Code:    CodeChainPending,
		Message: fmt.Sprintf("Transaction %s is not finalized yet, retry later", signature),
	}
}

// NewChainFailedError signals a terminal verification failure: the
// transaction is absent, failed on chain, or does not match the claim.
func NewChainFailedError(reason string) *AppError {
	return &AppError{
		Code:    CodeChainFailed,
		Message: "Transaction verification failed: " + reason,
	}
}

func NewStorageError(err error) *AppError {
	return &AppError{
		Code:    CodeStorage,
		Message: "Storage temporarily unavailable",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status for an error. Unknown errors are 500.
func HTTPStatus(err error) int {
	appErr, ok := err.(*AppError)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeSelfTip, CodeChainFailed:
		return fiber.StatusUnprocessableEntity
	case CodeChainPending:
		return fiber.StatusConflict
	case CodeStorage:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
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
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
