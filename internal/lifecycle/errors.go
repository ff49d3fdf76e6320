package lifecycle

import (
	"errors"
	"fmt"
)

// Kind classifies lifecycle failures so callers can pick a presentation.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindPartialFailure Kind = "partial_failure"
	KindTransientStore Kind = "transient_store"
	KindForbidden      Kind = "forbidden"
)

// Error is the typed result every lifecycle operation fails with.
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

// ReconciliationRequired is true when the store holds a half-applied hand-off.
func (e *Error) ReconciliationRequired() bool {
	return e.Kind == KindPartialFailure
}

func NewValidationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func NewNotFoundError(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func NewConflictError(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "forbidden", Message: message}
}

func NewPartialFailureError(message string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Code: "reconciliation_required", Message: message, Err: err}
}

func NewTransientStoreError(message string, err error) *Error {
	return &Error{Kind: KindTransientStore, Code: "store_unavailable", Message: message, Err: err}
}

// KindOf returns the kind of a lifecycle error anywhere in err's chain, or
// the empty kind.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
