package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeDuplicateEntry      = "DUPLICATE_ENTRY"
	ErrCodeThirdPartyError     = "THIRD_PARTY_ERROR"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeOutOfStock          = "OUT_OF_STOCK"
	ErrCodeQuantityExceedsMax  = "QUANTITY_EXCEEDS_STOCK"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodePaymentNotSucceeded = "PAYMENT_NOT_SUCCEEDED"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

// actor mismatch on a guarded operation.
func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func DuplicateEntryError(message string) *AppError {
	return NewAppError(ErrCodeDuplicateEntry, message, http.StatusConflict)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusInternalServerError)
}

func InvalidTransitionError(message string) *AppError {
	return NewAppError(ErrCodeInvalidTransition, message, http.StatusConflict)
}

func InvalidStateError(message string) *AppError {
	return NewAppError(ErrCodeInvalidState, message, http.StatusConflict)
}

func InsufficientStockError() *AppError {
	return NewAppError(ErrCodeInsufficientStock, "Requested quantity exceeds available stock", http.StatusConflict)
}

func OutOfStockError() *AppError {
	return NewAppError(ErrCodeOutOfStock, "This part is out of stock", http.StatusConflict)
}

func QuantityExceedsStockError() *AppError {
	return NewAppError(ErrCodeQuantityExceedsMax, "Requested quantity exceeds available stock", http.StatusConflict)
}

func EmptyCartError() *AppError {
	return NewAppError(ErrCodeEmptyCart, "Cannot check out an empty cart", http.StatusBadRequest)
}

func PaymentNotSucceededError() *AppError {
	return NewAppError(ErrCodePaymentNotSucceeded, "Payment has not been completed", http.StatusPaymentRequired)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
