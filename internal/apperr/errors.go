// Package apperr defines the error taxonomy shared by both subsystems.
//
// Every failure that reaches a handler is either an *Error or wraps one;
// anything else is reported as an upstream failure.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so that sentinels still match after WithMessage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy carrying a more specific message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

var (
	ErrValidation      = &Error{Kind: KindValidation, Code: "validation_failed", Message: "invalid input"}
	ErrNotFound        = &Error{Kind: KindNotFound, Code: "not_found", Message: "not found"}
	ErrForbidden       = &Error{Kind: KindForbidden, Code: "forbidden", Message: "not authorized"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Code: "unauthenticated", Message: "authentication required"}
	ErrUpstream        = &Error{Kind: KindUpstream, Code: "upstream_failed", Message: "backend unavailable"}

	ErrInsufficientStock = &Error{Kind: KindConflict, Code: "insufficient_stock", Message: "not enough inventory"}
	ErrDuplicateSKU      = &Error{Kind: KindConflict, Code: "duplicate_sku", Message: "SKU already exists"}
	ErrDuplicateBarcode  = &Error{Kind: KindConflict, Code: "duplicate_barcode", Message: "barcode already exists"}
	ErrDuplicateName     = &Error{Kind: KindConflict, Code: "duplicate_name", Message: "name already exists"}
	ErrDuplicateTitle    = &Error{Kind: KindConflict, Code: "duplicate_title", Message: "a task with this title already exists in this board"}
	ErrDuplicateUser     = &Error{Kind: KindConflict, Code: "duplicate_user", Message: "username or email already exists"}
	ErrInUse             = &Error{Kind: KindConflict, Code: "in_use", Message: "resource is still referenced"}
	ErrNotEmpty          = &Error{Kind: KindConflict, Code: "not_empty", Message: "resource is not empty"}
	ErrLastImage         = &Error{Kind: KindConflict, Code: "last_image", Message: "cannot delete the last image"}
	ErrAlreadyMember     = &Error{Kind: KindConflict, Code: "already_member", Message: "user is already a member of this board"}
	ErrNotMember         = &Error{Kind: KindNotFound, Code: "not_member", Message: "user is not a member of this board"}
	ErrSelfReference     = &Error{Kind: KindValidation, Code: "self_reference", Message: "cannot target the board owner"}
	ErrBusy              = &Error{Kind: KindUpstream, Code: "busy", Message: "system busy, please try again later"}
)

func Validation(format string, args ...interface{}) *Error {
	return ErrValidation.WithMessage(format, args...)
}

func NotFound(entity string) *Error {
	return ErrNotFound.WithMessage("%s not found", entity)
}

func Forbidden(format string, args ...interface{}) *Error {
	return ErrForbidden.WithMessage(format, args...)
}

// Upstream wraps a store or identity backend failure.
func Upstream(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUpstream, Code: ErrUpstream.Code, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, treating foreign errors as upstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
