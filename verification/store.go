// Package verification implements the email verification gate: a one-time
// code emailed to the registrant that must be checked before any payment
// action starts.
package verification

import (
	"context"
	"fmt"
	"time"
)

// codeTTL bounds how long an issued code stays valid.
const codeTTL = 15 * time.Minute

// CodeStore persists issued codes for their TTL. Codes are single use:
// a successful check deletes the code.
type CodeStore interface {
	Put(ctx context.Context, email string, code string, ttl time.Duration) error
	// Get returns the stored code, or a CODE_NOT_FOUND error when no code
	// is outstanding for the address.
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type ErrorReason string

const (
	REASON_CODE_NOT_FOUND  ErrorReason = "CODE_NOT_FOUND"
	REASON_INVALID_CODE    ErrorReason = "INVALID_CODE"
	REASON_FAILED_TO_SEND  ErrorReason = "FAILED_TO_SEND"
	REASON_FAILED_TO_STORE ErrorReason = "FAILED_TO_STORE"
	REASON_FAILED_TO_CHECK ErrorReason = "FAILED_TO_CHECK"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newVerificationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewCodeNotFoundError(email string) *Error {
	return newVerificationError(REASON_CODE_NOT_FOUND, fmt.Sprintf("No verification code outstanding for %q", email), nil)
}

func NewInvalidCodeError() *Error {
	return newVerificationError(REASON_INVALID_CODE, "Invalid verification code", nil)
}

func NewFailedToSendError(message string, cause error) *Error {
	return newVerificationError(REASON_FAILED_TO_SEND, message, cause)
}

func NewFailedToStoreError(message string, cause error) *Error {
	return newVerificationError(REASON_FAILED_TO_STORE, message, cause)
}

func NewFailedToCheckError(message string, cause error) *Error {
	return newVerificationError(REASON_FAILED_TO_CHECK, message, cause)
}
