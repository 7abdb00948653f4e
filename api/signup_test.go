package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MGA-Alliance/member-registration/account"
	"github.com/MGA-Alliance/member-registration/billing"
	"github.com/MGA-Alliance/member-registration/payments"
	"github.com/MGA-Alliance/member-registration/ptr"
	"github.com/MGA-Alliance/member-registration/verification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(db *mockDB, checkoutManager *mockCheckoutManager, invoicer *mockInvoicer, codeSender *mockCodeSender) *API {
	return NewAPI(
		db,
		checkoutManager,
		invoicer,
		verification.NewMemoryStore(),
		codeSender,
		&mockEmailSender{},
		&mockGoogleIDVerifier{},
		noopLogger,
		Config{
			Env:                LOCAL,
			FromAddress:        "noreply@mga-alliance.org",
			CheckoutSuccessURL: "https://mga-alliance.org/signup/success",
			CheckoutCancelURL:  "https://mga-alliance.org/signup/cancel",
		},
	)
}

func doJSONRequest(t *testing.T, handler http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func corporateStateBody() RegistrationStateBody {
	return RegistrationStateBody{
		Step:             4,
		FirstName:        "Jane",
		Surname:          "Doe",
		Email:            "jane@example.com",
		Password:         "Str0ng!pass",
		ConfirmPassword:  "Str0ng!pass",
		MembershipType:   "CORPORATE",
		OrganizationName: "Acme Underwriting",
		OrganizationType: "MGA",
		Members: []MemberBody{
			{
				Id:               "registrant",
				FirstName:        "Jane",
				LastName:         "Doe",
				Name:             "Jane Doe",
				Email:            "jane@example.com",
				JobTitle:         "CEO",
				IsPrimaryContact: true,
			},
		},
		Address: AddressBody{
			Line1:   "1 King Street",
			City:    "London",
			Country: "United Kingdom",
		},
		GwpInputs:            GWPInputsBody{Millions: "15"},
		GwpCurrency:          "EUR",
		HasOtherAssociations: ptr.Bool(false),
		DataNoticeConsent:    true,
		CodeOfConductConsent: true,
	}
}

// verifyEmail walks the verification round-trip for the address, using the
// code captured by the sender mock.
func verifyEmail(t *testing.T, handler http.Handler, sentCode *string, email string) VerificationCheckResponse {
	t.Helper()

	w := doJSONRequest(t, handler, http.MethodPost, "/signup/verification/send", VerificationSendRequest{Email: email})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, *sentCode)

	w = doJSONRequest(t, handler, http.MethodPost, "/signup/verification/check", VerificationCheckRequest{Email: email, Code: *sentCode})
	require.Equal(t, http.StatusOK, w.Code)
	return decodeResponse[VerificationCheckResponse](t, w)
}

func TestPostSignupValidate(t *testing.T) {
	handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, &mockCodeSender{}).Handler()

	t.Run("valid step", func(t *testing.T) {
		w := doJSONRequest(t, handler, http.MethodPost, "/signup/validate", corporateStateBody())

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[ValidateResponse](t, w)
		assert.True(t, resp.Valid)
		assert.Empty(t, resp.Message)
	})

	t.Run("violation is a 200 with the message", func(t *testing.T) {
		body := corporateStateBody()
		body.Step = 2
		body.ConfirmPassword = "Str0ng!other"

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/validate", body)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[ValidateResponse](t, w)
		assert.False(t, resp.Valid)
		assert.Equal(t, "Passwords do not match", resp.Message)
	})

	t.Run("garbage body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup/validate", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, InvalidBody, resp.Code)
	})
}

func TestPostSignupFee(t *testing.T) {
	handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, &mockCodeSender{}).Handler()

	t.Run("MGA fee from premiums", func(t *testing.T) {
		w := doJSONRequest(t, handler, http.MethodPost, "/signup/fee", corporateStateBody())

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[FeeResponse](t, w)
		assert.Equal(t, int64(110000), resp.BaseFee)
		assert.Equal(t, int64(110000), resp.DiscountedFee)
		assert.Equal(t, "EUR", resp.Currency)
		assert.NotEmpty(t, resp.Display)
	})

	t.Run("association discount applies", func(t *testing.T) {
		body := corporateStateBody()
		body.HasOtherAssociations = ptr.Bool(true)
		body.OtherAssociations = []string{"Lloyd's Market Association"}

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/fee", body)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[FeeResponse](t, w)
		assert.Equal(t, int64(110000), resp.BaseFee)
		assert.Equal(t, int64(88000), resp.DiscountedFee)
	})

	t.Run("client sent premium total is ignored", func(t *testing.T) {
		body := corporateStateBody()
		// A forged huge total in the buckets is what counts, nothing else
		// in the body can change the band.
		body.GwpInputs = GWPInputsBody{Millions: "8"}

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/fee", body)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[FeeResponse](t, w)
		assert.Equal(t, int64(90000), resp.BaseFee)
	})
}

func TestPostVerificationSend(t *testing.T) {
	t.Run("sends a code to a valid address", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, codeSender).Handler()

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/verification/send", VerificationSendRequest{Email: "jane@example.com"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[VerificationSendResponse](t, w)
		assert.True(t, resp.Sent)
		assert.Len(t, sentCode, 6)
	})

	t.Run("rejects an invalid address", func(t *testing.T) {
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, &mockCodeSender{}).Handler()

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/verification/send", VerificationSendRequest{Email: "not-an-email"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, InputValidationError, resp.Code)
	})
}

func TestPostVerificationCheck(t *testing.T) {
	t.Run("wrong code rejected", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, codeSender).Handler()

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/verification/send", VerificationSendRequest{Email: "jane@example.com"})
		require.Equal(t, http.StatusOK, w.Code)

		guess := "000000"
		if sentCode == guess {
			guess = "000001"
		}
		w = doJSONRequest(t, handler, http.MethodPost, "/signup/verification/check", VerificationCheckRequest{Email: "jane@example.com", Code: guess})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, VerificationFailed, resp.Code)
	})

	t.Run("no code outstanding", func(t *testing.T) {
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, &mockCodeSender{}).Handler()

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/verification/check", VerificationCheckRequest{Email: "jane@example.com", Code: "123456"})

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPostSignupSubmit(t *testing.T) {
	t.Run("checkout path after verification", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		var written *account.CompanyAccount
		db := &mockDB{
			CreateCompanyWithMembersFunc: func(ctx context.Context, company account.CompanyAccount) error {
				written = &company
				return nil
			},
		}
		handler := newTestAPI(db, &mockCheckoutManager{}, &mockInvoicer{}, codeSender).Handler()

		verifyEmail(t, handler, &sentCode, "jane@example.com")

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "STRIPE"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[SubmitResponse](t, w)
		require.NotNil(t, written)
		assert.Equal(t, written.ID.String(), resp.AccountId)
		assert.Equal(t, "https://checkout.example/cs_test", resp.RedirectUrl)
		assert.False(t, resp.RegistrationComplete)
		assert.Equal(t, account.STATUS_PENDING_PAYMENT, written.Status)
	})

	t.Run("completed submission drops the verification", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, codeSender).Handler()

		verifyEmail(t, handler, &sentCode, "jane@example.com")

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "STRIPE"})
		require.Equal(t, http.StatusOK, w.Code)

		// A later registration with the same address verifies again.
		w = doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "STRIPE"})
		require.Equal(t, http.StatusConflict, w.Code)
		errResp := decodeResponse[Error](t, w)
		assert.Equal(t, VerificationRequired, errResp.Code)
	})

	t.Run("unverified submit interrupts and check resumes the action", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, codeSender).Handler()

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "STRIPE"})

		require.Equal(t, http.StatusConflict, w.Code)
		errResp := decodeResponse[Error](t, w)
		assert.Equal(t, VerificationRequired, errResp.Code)

		checkResp := verifyEmail(t, handler, &sentCode, "jane@example.com")
		assert.True(t, checkResp.Verified)
		assert.Equal(t, "STRIPE", checkResp.PendingAction)

		// The continuation is consumed exactly once.
		w = doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "STRIPE"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invoice path completes the registration", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		var written *account.CompanyAccount
		db := &mockDB{
			CreateCompanyWithMembersFunc: func(ctx context.Context, company account.CompanyAccount) error {
				written = &company
				return nil
			},
			GetAccountFunc: func(ctx context.Context, id uuid.UUID) (account.Account, error) {
				return *written, nil
			},
		}
		handler := newTestAPI(db, &mockCheckoutManager{}, &mockInvoicer{}, codeSender).Handler()

		verifyEmail(t, handler, &sentCode, "jane@example.com")

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "INVOICE"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[SubmitResponse](t, w)
		assert.True(t, resp.RegistrationComplete)
		assert.True(t, resp.InvoiceEmailSent)
		assert.Empty(t, resp.RedirectUrl)
		require.NotNil(t, written)
		assert.Equal(t, account.STATUS_PENDING_INVOICE, written.Status)
	})

	t.Run("invoice failure writes no account", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		db := &mockDB{
			CreateCompanyWithMembersFunc: func(ctx context.Context, company account.CompanyAccount) error {
				t.Fatal("no account may be written when the invoice fails")
				return nil
			},
		}
		invoicer := &mockInvoicer{
			RequestInvoiceFunc: func(ctx context.Context, invoice billing.Invoice) (billing.InvoiceResult, error) {
				return billing.InvoiceResult{}, billing.NewFailedToSendError("smtp down", nil)
			},
		}
		handler := newTestAPI(db, &mockCheckoutManager{}, invoicer, codeSender).Handler()

		verifyEmail(t, handler, &sentCode, "jane@example.com")

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "INVOICE"})

		require.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, PaymentError, resp.Code)
	})

	t.Run("validation failure rejects the submission", func(t *testing.T) {
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, &mockCodeSender{}).Handler()

		body := corporateStateBody()
		body.DataNoticeConsent = false

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: body, PaymentMethod: "STRIPE"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, InputValidationError, resp.Code)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		handler := newTestAPI(&mockDB{}, &mockCheckoutManager{}, &mockInvoicer{}, &mockCodeSender{}).Handler()

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "BITCOIN"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, InvalidBody, resp.Code)
	})

	t.Run("duplicate account conflicts", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		db := &mockDB{
			CreateCompanyWithMembersFunc: func(ctx context.Context, company account.CompanyAccount) error {
				return account.NewAccountAlreadyExistsError(company.ID.String(), nil)
			},
		}
		handler := newTestAPI(db, &mockCheckoutManager{}, &mockInvoicer{}, codeSender).Handler()

		verifyEmail(t, handler, &sentCode, "jane@example.com")

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "STRIPE"})

		require.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, AlreadyExists, resp.Code)
	})

	t.Run("checkout failure surfaces as a payment error", func(t *testing.T) {
		var sentCode string
		codeSender := &mockCodeSender{
			SendCodeFunc: func(ctx context.Context, toEmail string, code string) error {
				sentCode = code
				return nil
			},
		}
		checkoutManager := &mockCheckoutManager{
			CreateCheckoutFunc: func(ctx context.Context, params payments.CheckoutParams) (payments.CheckoutInfo, error) {
				return payments.CheckoutInfo{}, payments.NewFailedToCreateCheckoutError("stripe down", nil)
			},
		}
		handler := newTestAPI(&mockDB{}, checkoutManager, &mockInvoicer{}, codeSender).Handler()

		verifyEmail(t, handler, &sentCode, "jane@example.com")

		w := doJSONRequest(t, handler, http.MethodPost, "/signup/submit", SubmitRequest{State: corporateStateBody(), PaymentMethod: "STRIPE"})

		require.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeResponse[Error](t, w)
		assert.Equal(t, PaymentError, resp.Code)
	})
}
