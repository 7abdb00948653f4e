package signup

import "fmt"

type ErrorReason string

const (
	REASON_VALIDATION_FAILED         ErrorReason = "VALIDATION_FAILED"
	REASON_VERIFICATION_REQUIRED     ErrorReason = "VERIFICATION_REQUIRED"
	REASON_FAILED_TO_CREATE_ACCOUNT  ErrorReason = "FAILED_TO_CREATE_ACCOUNT"
	REASON_FAILED_TO_CREATE_CHECKOUT ErrorReason = "FAILED_TO_CREATE_CHECKOUT"
	REASON_FAILED_TO_REQUEST_INVOICE ErrorReason = "FAILED_TO_REQUEST_INVOICE"
	REASON_INVALID_LOGO              ErrorReason = "INVALID_LOGO"
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

func newSignupError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError carries the human-readable message shown next to the
// offending field. Message is user-facing, not a debug string.
func NewValidationError(message string) *Error {
	return newSignupError(REASON_VALIDATION_FAILED, message, nil)
}

func NewVerificationRequiredError(message string) *Error {
	return newSignupError(REASON_VERIFICATION_REQUIRED, message, nil)
}

func NewFailedToCreateAccountError(message string, cause error) *Error {
	return newSignupError(REASON_FAILED_TO_CREATE_ACCOUNT, message, cause)
}

func NewFailedToCreateCheckoutError(message string, cause error) *Error {
	return newSignupError(REASON_FAILED_TO_CREATE_CHECKOUT, message, cause)
}

func NewFailedToRequestInvoiceError(message string, cause error) *Error {
	return newSignupError(REASON_FAILED_TO_REQUEST_INVOICE, message, cause)
}

func NewInvalidLogoError(message string) *Error {
	return newSignupError(REASON_INVALID_LOGO, message, nil)
}
