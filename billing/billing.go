// Package billing abstracts the invoice collaborator: the external system
// that generates an invoice for an on-account registration and emails it to
// the registrant.
package billing

import (
	"context"
	"fmt"

	"github.com/Rhymond/go-money"
)

type Invoice struct {
	Reference    string
	AccountName  string
	BillingEmail string
	Description  string
	Amount       *money.Money
}

type InvoiceResult struct {
	Success   bool
	EmailSent bool
}

type InvoiceRequester interface {
	RequestInvoice(ctx context.Context, invoice Invoice) (InvoiceResult, error)
}

type ErrorReason string

const (
	REASON_FAILED_TO_SEND   ErrorReason = "FAILED_TO_SEND"
	REASON_INVALID_INVOICE  ErrorReason = "INVALID_INVOICE"
	REASON_TEMPLATE_FAILURE ErrorReason = "TEMPLATE_FAILURE"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewFailedToSendError(message string, cause error) *Error {
	return &Error{Reason: REASON_FAILED_TO_SEND, Message: message, Cause: cause}
}

func NewInvalidInvoiceError(message string) *Error {
	return &Error{Reason: REASON_INVALID_INVOICE, Message: message}
}

func NewTemplateFailureError(message string, cause error) *Error {
	return &Error{Reason: REASON_TEMPLATE_FAILURE, Message: message, Cause: cause}
}
