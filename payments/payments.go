// Package payments abstracts the hosted checkout collaborator. The core
// only ever sees CheckoutManager; the Stripe implementation lives in the
// stripe subpackage.
package payments

import (
	"context"
	"fmt"

	"github.com/Rhymond/go-money"
)

type CheckoutParams struct {
	// Reference ties the checkout session back to the account record it
	// pays for.
	Reference     string
	CustomerEmail string
	Description   string
	Price         *money.Money
	SuccessURL    string
	CancelURL     string
}

type CheckoutInfo struct {
	SessionID string
	// RedirectURL is where the browser is sent to complete payment.
	RedirectURL string
}

type CheckoutManager interface {
	CreateCheckout(ctx context.Context, params CheckoutParams) (CheckoutInfo, error)
}

type ErrorReason string

const (
	REASON_FAILED_TO_CREATE_CHECKOUT ErrorReason = "FAILED_TO_CREATE_CHECKOUT"
	REASON_INVALID_CHECKOUT_PARAMS   ErrorReason = "INVALID_CHECKOUT_PARAMS"
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

func NewFailedToCreateCheckoutError(message string, cause error) *Error {
	return &Error{Reason: REASON_FAILED_TO_CREATE_CHECKOUT, Message: message, Cause: cause}
}

func NewInvalidCheckoutParamsError(message string) *Error {
	return &Error{Reason: REASON_INVALID_CHECKOUT_PARAMS, Message: message}
}
