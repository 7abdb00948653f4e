package stripe

import (
	"context"
	"strings"

	"github.com/MGA-Alliance/member-registration/payments"
	stripego "github.com/stripe/stripe-go/v85"
	"github.com/stripe/stripe-go/v85/checkout/session"
)

var _ payments.CheckoutManager = &CheckoutManager{}

// CheckoutManager creates Stripe hosted checkout sessions.
type CheckoutManager struct{}

func NewCheckoutManager(apiKey string) *CheckoutManager {
	stripego.Key = apiKey

	return &CheckoutManager{}
}

func (c *CheckoutManager) CreateCheckout(ctx context.Context, params payments.CheckoutParams) (payments.CheckoutInfo, error) {
	if params.Price == nil {
		return payments.CheckoutInfo{}, payments.NewInvalidCheckoutParamsError("Price must be set")
	}
	if params.SuccessURL == "" {
		return payments.CheckoutInfo{}, payments.NewInvalidCheckoutParamsError("SuccessURL must be set")
	}

	sessionParams := &stripego.CheckoutSessionParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(params.SuccessURL),
		CancelURL:         stripego.String(params.CancelURL),
		CustomerEmail:     stripego.String(params.CustomerEmail),
		ClientReferenceID: stripego.String(params.Reference),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				Quantity: stripego.Int64(1),
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripego.String(strings.ToLower(params.Price.Currency().Code)),
					UnitAmount: stripego.Int64(params.Price.Amount()),
					ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripego.String(params.Description),
					},
				},
			},
		},
	}
	sessionParams.Context = ctx

	sess, err := session.New(sessionParams)
	if err != nil {
		return payments.CheckoutInfo{}, payments.NewFailedToCreateCheckoutError("Failed to create stripe checkout session", err)
	}

	return payments.CheckoutInfo{
		SessionID:   sess.ID,
		RedirectURL: sess.URL,
	}, nil
}
