// Package apperr defines the error taxonomy shared by repositories, services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindAuth:
		return "AuthError"
	case KindForbidden:
		return "ForbiddenError"
	default:
		return "InternalError"
	}
}

// Error is a domain error with a stable code and a human-readable message.
// Subject optionally names the entity the error is about (e.g. a product ID).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Subject string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code, so errors.Is(err, ErrInsufficientStock) holds for any product.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation returns a validation error with a custom code and message.
func Validation(code, message string) *Error { return newError(KindValidation, code, message) }

// NotFound returns a not-found error for the named entity.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Code: "NotFound", Message: entity + " not found", Subject: id}
}

// Conflict returns a conflict error with a custom code and message.
func Conflict(code, message string) *Error { return newError(KindConflict, code, message) }

var (
	ErrNotFound                = newError(KindNotFound, "NotFound", "resource not found")
	ErrInvalidQuantity         = newError(KindValidation, "InvalidQuantity", "quantity must be a positive integer")
	ErrLineNotFound            = newError(KindNotFound, "LineNotFound", "cart line not found")
	ErrAddressLimitReached     = newError(KindConflict, "AddressLimitReached", "address limit reached")
	ErrInsufficientStock       = newError(KindConflict, "InsufficientStock", "insufficient stock")
	ErrEmptyCart               = newError(KindValidation, "EmptyCart", "cart is empty")
	ErrInvalidAddress          = newError(KindValidation, "InvalidAddress", "address is missing or invalid")
	ErrInvalidPaymentMethod    = newError(KindValidation, "InvalidPaymentMethod", "payment method must be COD or ONLINE")
	ErrInvalidStatus           = newError(KindValidation, "InvalidStatus", "unknown payment status")
	ErrInvalidStatusTransition = newError(KindConflict, "InvalidStatusTransition", "payment status transition not allowed")
	ErrStatusConflict          = newError(KindConflict, "StatusConflict", "order status changed concurrently")
	ErrDuplicateOrderID        = newError(KindConflict, "DuplicateOrderID", "order id already in use")
	ErrInvalidCredentials      = newError(KindAuth, "InvalidCredentials", "invalid credentials")
	ErrUnauthorized            = newError(KindAuth, "Unauthorized", "authentication required")
	ErrForbidden               = newError(KindForbidden, "Forbidden", "insufficient role")
)

// InsufficientStock reports which product could not cover the requested quantity.
func InsufficientStock(productID string) *Error {
	return &Error{Kind: KindConflict, Code: ErrInsufficientStock.Code, Message: "insufficient stock", Subject: productID}
}

// InvalidFields returns a validation error carrying per-field messages.
func InvalidFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "ValidationFailed", Message: "validation failed", Fields: fields}
}

// InvalidAddress carries per-field validation messages.
func InvalidAddress(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: ErrInvalidAddress.Code, Message: ErrInvalidAddress.Message, Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As is a shorthand for errors.As into *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
