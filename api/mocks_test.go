package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/MGA-Alliance/member-registration/account"
	"github.com/MGA-Alliance/member-registration/billing"
	"github.com/MGA-Alliance/member-registration/payments"
	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
)

var noopLogger = slog.New(slog.DiscardHandler)

var _ DB = &mockDB{}

type mockDB struct {
	CreateAccountFunc            func(ctx context.Context, acct account.IndividualAccount) error
	CreateCompanyWithMembersFunc func(ctx context.Context, company account.CompanyAccount) error
	GetAccountFunc               func(ctx context.Context, id uuid.UUID) (account.Account, error)
	GetAccountsFunc              func(ctx context.Context, limit int32, cursor *string) (account.GetAccountsResponse, error)
	UpdateAccountStatusFunc      func(ctx context.Context, id uuid.UUID, status account.Status) (account.Account, error)
}

func (m *mockDB) CreateAccount(ctx context.Context, acct account.IndividualAccount) error {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, acct)
	}
	return nil
}

func (m *mockDB) CreateCompanyWithMembers(ctx context.Context, company account.CompanyAccount) error {
	if m.CreateCompanyWithMembersFunc != nil {
		return m.CreateCompanyWithMembersFunc(ctx, company)
	}
	return nil
}

func (m *mockDB) GetAccount(ctx context.Context, id uuid.UUID) (account.Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDB) GetAccounts(ctx context.Context, limit int32, cursor *string) (account.GetAccountsResponse, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, limit, cursor)
	}
	return account.GetAccountsResponse{}, nil
}

func (m *mockDB) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status account.Status) (account.Account, error) {
	if m.UpdateAccountStatusFunc != nil {
		return m.UpdateAccountStatusFunc(ctx, id, status)
	}
	return nil, errors.New("not implemented")
}

type mockCheckoutManager struct {
	CreateCheckoutFunc func(ctx context.Context, params payments.CheckoutParams) (payments.CheckoutInfo, error)
}

func (m *mockCheckoutManager) CreateCheckout(ctx context.Context, params payments.CheckoutParams) (payments.CheckoutInfo, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, params)
	}
	return payments.CheckoutInfo{SessionID: "cs_test", RedirectURL: "https://checkout.example/cs_test"}, nil
}

type mockInvoicer struct {
	RequestInvoiceFunc func(ctx context.Context, invoice billing.Invoice) (billing.InvoiceResult, error)
}

func (m *mockInvoicer) RequestInvoice(ctx context.Context, invoice billing.Invoice) (billing.InvoiceResult, error) {
	if m.RequestInvoiceFunc != nil {
		return m.RequestInvoiceFunc(ctx, invoice)
	}
	return billing.InvoiceResult{Success: true, EmailSent: true}, nil
}

type mockEmailSender struct{}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	return nil
}

type mockCodeSender struct {
	SendCodeFunc func(ctx context.Context, toEmail string, code string) error
}

func (m *mockCodeSender) SendCode(ctx context.Context, toEmail string, code string) error {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(ctx, toEmail, code)
	}
	return nil
}

type mockGoogleIDVerifier struct {
	ValidateFunc func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

func (m *mockGoogleIDVerifier) Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token, audience)
	}
	return &idtoken.Payload{Claims: map[string]any{"hd": "mga-alliance.org"}}, nil
}
