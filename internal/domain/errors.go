package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a business failure. The delivery layer maps codes to
// HTTP statuses; usecases never import net/http for anything else.
type Code string

const (
	CodeEmptyCart               Code = "EMPTY_CART"
	CodeItemUnavailable         Code = "ITEM_UNAVAILABLE"
	CodeOutOfStock              Code = "OUT_OF_STOCK"
	CodeInsufficientBalance     Code = "INSUFFICIENT_BALANCE"
	CodeInvalidAmount           Code = "INVALID_AMOUNT"
	CodeCouponNotApplicable     Code = "COUPON_NOT_APPLICABLE"
	CodePaymentMethodNotAllowed Code = "PAYMENT_METHOD_NOT_ALLOWED"
	CodeInvalidTransition       Code = "INVALID_TRANSITION"
	CodeReturnAlreadyRequested  Code = "RETURN_ALREADY_REQUESTED"
	CodeAlreadyProcessed        Code = "ALREADY_PROCESSED"
	CodeAddressNotFound         Code = "ADDRESS_NOT_FOUND"
	CodeOrderNotFound           Code = "ORDER_NOT_FOUND"
	CodeSignatureMismatch       Code = "SIGNATURE_MISMATCH"
	CodeNotFound                Code = "NOT_FOUND"
	CodeInvalidInput            Code = "INVALID_INPUT"
	CodeUnauthorized            Code = "UNAUTHORIZED"
	CodeInternal                Code = "INTERNAL"
)

var codeStatus = map[Code]int{
	CodeEmptyCart:               http.StatusBadRequest,
	CodeItemUnavailable:         http.StatusConflict,
	CodeOutOfStock:              http.StatusConflict,
	CodeInsufficientBalance:     http.StatusBadRequest,
	CodeInvalidAmount:           http.StatusBadRequest,
	CodeCouponNotApplicable:     http.StatusBadRequest,
	CodePaymentMethodNotAllowed: http.StatusBadRequest,
	CodeInvalidTransition:       http.StatusBadRequest,
	CodeReturnAlreadyRequested:  http.StatusBadRequest,
	CodeAlreadyProcessed:        http.StatusConflict,
	CodeAddressNotFound:         http.StatusNotFound,
	CodeOrderNotFound:           http.StatusNotFound,
	CodeSignatureMismatch:       http.StatusBadRequest,
	CodeNotFound:                http.StatusNotFound,
	CodeInvalidInput:            http.StatusBadRequest,
	CodeUnauthorized:            http.StatusUnauthorized,
	CodeInternal:                http.StatusInternalServerError,
}

// Error is a business error carrying a stable code and a message safe to
// show to the client.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// E builds a coded error.
func E(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Ef builds a coded error with a formatted message.
func Ef(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause without changing the client-facing message.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the business code from an error chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message, or a generic one.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error chain to the status the delivery layer writes.
func HTTPStatus(err error) int {
	if s, ok := codeStatus[CodeOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given business code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// ErrNotFound is the sentinel repositories return when a row is absent.
// Usecases translate it into the entity-specific coded error.
var ErrNotFound = errors.New("not found")
