package signup

import (
	"context"
	"fmt"
	"time"

	"github.com/MGA-Alliance/member-registration/account"
	"github.com/MGA-Alliance/member-registration/billing"
	"github.com/MGA-Alliance/member-registration/fees"
	"github.com/MGA-Alliance/member-registration/payments"
	"github.com/MGA-Alliance/member-registration/slices"
	"github.com/MGA-Alliance/member-registration/verification"
	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PAYMENT_METHOD_STRIPE  PaymentMethod = "STRIPE"
	PAYMENT_METHOD_INVOICE PaymentMethod = "INVOICE"
)

// CheckoutResult reports a successful hosted-checkout initiation. The
// account already exists in PENDING_PAYMENT when the caller redirects.
type CheckoutResult struct {
	AccountID   uuid.UUID
	RedirectURL string
	SessionID   string
}

// InvoiceResult reports a completed invoice-path registration.
type InvoiceResult struct {
	AccountID uuid.UUID
	EmailSent bool
}

// CompleteWithCheckout runs the hosted-checkout path: persist the account
// first with PENDING_PAYMENT status, then create the checkout session.
// A checkout failure after the write is surfaced but the account stays
// recorded; administrators reconcile those through the back office.
func CompleteWithCheckout(ctx context.Context, s *State, gate *verification.Gate, accountRepo account.Repository, checkoutManager payments.CheckoutManager, successURL string, cancelURL string) (CheckoutResult, error) {
	if !gate.Verified() {
		gate.RequireVerification(verification.ACTION_STRIPE)
		return CheckoutResult{}, NewVerificationRequiredError("Please verify your email address before paying")
	}

	// The fee is computed at submission, never cached, so premium edits
	// made right before submitting are always reflected in the charge.
	fee := fees.Discounted(s)

	acct, err := persistAccount(ctx, s, accountRepo, account.STATUS_PENDING_PAYMENT)
	if err != nil {
		return CheckoutResult{}, err
	}

	info, err := checkoutManager.CreateCheckout(ctx, payments.CheckoutParams{
		Reference:     acct.GetID().String(),
		CustomerEmail: s.Email,
		Description:   fmt.Sprintf("Annual membership - %s", s.EffectiveOrganizationName()),
		Price:         fee,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	if err != nil {
		return CheckoutResult{AccountID: acct.GetID()}, NewFailedToCreateCheckoutError(fmt.Sprintf("Failed to create checkout for account %q", acct.GetID()), err)
	}

	return CheckoutResult{
		AccountID:   acct.GetID(),
		RedirectURL: info.RedirectURL,
		SessionID:   info.SessionID,
	}, nil
}

// CompleteWithInvoice runs the invoice path: the invoice request goes out
// first, and the account is written only once it is confirmed. An invoice
// failure therefore never leaves an orphaned account behind.
func CompleteWithInvoice(ctx context.Context, s *State, gate *verification.Gate, accountRepo account.Repository, invoicer billing.InvoiceRequester) (InvoiceResult, error) {
	if !gate.Verified() {
		gate.RequireVerification(verification.ACTION_INVOICE)
		return InvoiceResult{}, NewVerificationRequiredError("Please verify your email address before requesting an invoice")
	}

	fee := fees.Discounted(s)
	reference := uuid.New()

	result, err := invoicer.RequestInvoice(ctx, billing.Invoice{
		Reference:    reference.String(),
		AccountName:  s.EffectiveOrganizationName(),
		BillingEmail: s.Email,
		Description:  fmt.Sprintf("Annual membership - %s", s.EffectiveOrganizationName()),
		Amount:       fee,
	})
	if err != nil {
		return InvoiceResult{}, NewFailedToRequestInvoiceError("Failed to request invoice", err)
	}
	if !result.Success {
		return InvoiceResult{}, NewFailedToRequestInvoiceError("Invoice request was not confirmed", nil)
	}

	acct, err := persistAccount(ctx, s, accountRepo, account.STATUS_PENDING_INVOICE)
	if err != nil {
		return InvoiceResult{}, err
	}

	return InvoiceResult{
		AccountID: acct.GetID(),
		EmailSent: result.EmailSent,
	}, nil
}

// persistAccount writes the account record the shape the membership type
// calls for: corporate gets a company document with member sub-documents
// in one atomic write, individual gets a single flat document.
func persistAccount(ctx context.Context, s *State, accountRepo account.Repository, status account.Status) (account.Account, error) {
	fee := fees.Discounted(s)
	id := uuid.New()
	now := time.Now()

	if s.MembershipType == MEMBERSHIP_CORPORATE {
		company := account.CompanyAccount{
			ID:               id,
			Version:          1,
			CreatedAt:        now,
			Status:           status,
			Name:             s.EffectiveOrganizationName(),
			OrganizationType: string(s.OrganizationType),
			ContactEmail:     s.Email,
			MailingAddress:   toAccountAddress(s.MemberAddress),

			GrossWrittenPremiums: s.GrossWrittenPremiums,
			GWPCurrency:          string(s.GWPCurrency),
			PrincipalLines:       s.PrincipalLines,
			AdditionalLines:      s.AdditionalLines,
			TargetClients:        s.TargetClients,
			CurrentMarkets:       s.CurrentMarkets,
			PlannedMarkets:       s.PlannedMarkets,
			OtherAssociations:    s.OtherAssociations,

			Members: slices.Map(s.Members, func(m Member) account.MemberRecord {
				return account.MemberRecord{
					ID:               m.ID,
					FirstName:        m.FirstName,
					LastName:         m.LastName,
					Name:             m.Name,
					Email:            m.Email,
					Phone:            m.Phone,
					JobTitle:         m.JobTitle,
					IsPrimaryContact: m.IsPrimaryContact,
				}
			}),
			AnnualFee: fee,
		}

		err := accountRepo.CreateCompanyWithMembers(ctx, company)
		if err != nil {
			return nil, NewFailedToCreateAccountError(fmt.Sprintf("Failed to create company account %q", id), err)
		}
		return company, nil
	}

	indiv := account.IndividualAccount{
		ID:             id,
		Version:        1,
		CreatedAt:      now,
		Status:         status,
		FirstName:      s.FirstName,
		Surname:        s.Surname,
		Email:          s.Email,
		MailingAddress: toAccountAddress(s.MemberAddress),
		AnnualFee:      fee,
	}

	err := accountRepo.CreateAccount(ctx, indiv)
	if err != nil {
		return nil, NewFailedToCreateAccountError(fmt.Sprintf("Failed to create account %q", id), err)
	}
	return indiv, nil
}

func toAccountAddress(a Address) account.Address {
	return account.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
