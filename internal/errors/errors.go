// Package errors defines the domain error taxonomy shared by the ledger services
// and the HTTP layer.
package errors

import (
	stderrors "errors"
	"strings"
)

// Kind classifies a failure so callers can react without inspecting messages.
type Kind string

const (
	KindInvalidAmount     Kind = "INVALID_AMOUNT"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindSameAccount       Kind = "SAME_ACCOUNT"
	KindRecipientNotFound Kind = "RECIPIENT_NOT_FOUND"
	KindAccountNotFound   Kind = "ACCOUNT_NOT_FOUND"
	KindValidationFailed  Kind = "VALIDATION_FAILED"
	KindUnexpected        Kind = "UNEXPECTED"
)

// Expected reports whether the kind is a normal business outcome rather than a fault.
func (k Kind) Expected() bool {
	return k != KindUnexpected && k != ""
}

// DomainError is an error with a stable code and a message safe to show to users.
type DomainError struct {
	Code    Kind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches another DomainError by code, so wrapped sentinels compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: cause}
}

// New builds a DomainError of the given kind.
func New(kind Kind, message string) *DomainError {
	return &DomainError{Code: kind, Message: message}
}

// ValidationError carries model-level validation messages, surfaced verbatim.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Add appends a message.
func (e *ValidationError) Add(msg string) {
	e.Messages = append(e.Messages, msg)
}

// OrNil returns nil when no messages were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Messages) == 0 {
		return nil
	}
	return e
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if stderrors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// AsDomain extracts a DomainError from an error chain.
func AsDomain(err error) (*DomainError, bool) {
	var derr *DomainError
	if stderrors.As(err, &derr) {
		return derr, true
	}
	return nil, false
}
