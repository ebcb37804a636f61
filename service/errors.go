package service

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable, machine-readable classification of a failure.
// Callers branch on the kind; the message is for humans.
type ErrorKind string

const (
	// KindValidation covers bad input shape: non-positive stake, past
	// deadline, empty participant list. Rejected before any store mutation.
	KindValidation ErrorKind = "validation"

	// KindAuthorization covers a wrong actor for the operation, such as a
	// non-judge resolving a judge bet.
	KindAuthorization ErrorKind = "authorization"

	// KindStateConflict covers violated state preconditions: already joined,
	// bet not pending, already resolved, duplicate invite or friendship.
	// Retrying will not change the outcome.
	KindStateConflict ErrorKind = "state_conflict"

	// KindInsufficientFunds covers a stake exceeding the actor's balance.
	KindInsufficientFunds ErrorKind = "insufficient_funds"

	// KindNotFound covers a missing bet, user, participant, or friendship.
	KindNotFound ErrorKind = "not_found"

	// KindTransientStore covers connection failures, timeouts, and
	// serialization conflicts. Safe to retry: every mutation re-checks its
	// preconditions inside the transaction.
	KindTransientStore ErrorKind = "transient_store"
)

// DomainError is a user-facing failure with a stable kind. The engine
// performs no UI formatting; messages are plain sentences.
type DomainError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewValidationError creates a validation failure
func NewValidationError(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewAuthorizationError creates an authorization failure
func NewAuthorizationError(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NewStateConflictError creates a state precondition failure
func NewStateConflictError(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientFundsError creates an insufficient balance failure
func NewInsufficientFundsError(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a missing entity failure
func NewNotFoundError(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewTransientStoreError wraps a retryable store failure
func NewTransientStoreError(cause error, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindTransientStore, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the kind from an error chain. Errors without a DomainError
// in the chain report false.
func KindOf(err error) (ErrorKind, bool) {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Kind, true
	}
	return "", false
}

// IsKind checks whether the error chain carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsTransient checks whether the error is safe to retry
func IsTransient(err error) bool {
	return IsKind(err, KindTransientStore)
}
