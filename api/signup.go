package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MGA-Alliance/member-registration/account"
	"github.com/MGA-Alliance/member-registration/fees"
	"github.com/MGA-Alliance/member-registration/signup"
	"github.com/MGA-Alliance/member-registration/verification"
)

type ValidateResponse struct {
	Valid bool `json:"valid"`
	// Message is the first violated rule, shown inline by the form.
	Message string `json:"message,omitempty"`
}

func (a *API) postSignupValidate(w http.ResponseWriter, r *http.Request) {
	var body RegistrationStateBody
	if !decodeJSONBody(w, r, &body) {
		return
	}

	state := apiStateToState(body)

	err := signup.ValidateStep(state)
	if err != nil {
		var signupErr *signup.Error
		if errors.As(err, &signupErr) {
			writeJSON(w, http.StatusOK, ValidateResponse{Valid: false, Message: signupErr.Message})
			return
		}

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to validate")
		return
	}

	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
}

type FeeResponse struct {
	BaseFee       int64  `json:"baseFee"`
	DiscountedFee int64  `json:"discountedFee"`
	Currency      string `json:"currency"`
	Display       string `json:"display"`
}

func (a *API) postSignupFee(w http.ResponseWriter, r *http.Request) {
	var body RegistrationStateBody
	if !decodeJSONBody(w, r, &body) {
		return
	}

	state := apiStateToState(body)

	base := fees.Calculate(state)
	discounted := fees.Discounted(state)

	writeJSON(w, http.StatusOK, FeeResponse{
		BaseFee:       base.Amount(),
		DiscountedFee: discounted.Amount(),
		Currency:      base.Currency().Code,
		Display:       discounted.Display(),
	})
}

type VerificationSendRequest struct {
	Email string `json:"email"`
}

type VerificationSendResponse struct {
	Sent bool `json:"sent"`
}

func (a *API) postVerificationSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var body VerificationSendRequest
	if !decodeJSONBody(w, r, &body) {
		return
	}

	if !signup.ValidEmail(body.Email) {
		writeJSONError(w, http.StatusBadRequest, InputValidationError, "Please enter a valid email address")
		return
	}

	gate := a.gateFor(body.Email)

	err := gate.SendVerificationCode(ctx, body.Email)
	if err != nil {
		logger.Error("Failed to send verification code", slog.String("error", err.Error()))

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to send verification code, please try again")
		return
	}

	writeJSON(w, http.StatusOK, VerificationSendResponse{Sent: true})
}

type VerificationCheckRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerificationCheckResponse struct {
	Verified bool `json:"verified"`
	// PendingAction names the payment path that was interrupted by the
	// gate, so the client resumes it without re-prompting.
	PendingAction string `json:"pendingAction,omitempty"`
}

func (a *API) postVerificationCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var body VerificationCheckRequest
	if !decodeJSONBody(w, r, &body) {
		return
	}

	gate := a.gateFor(body.Email)

	err := gate.VerifyCode(ctx, body.Email, body.Code)
	if err != nil {
		var verificationErr *verification.Error
		if errors.As(err, &verificationErr) {
			switch verificationErr.Reason {
			case verification.REASON_INVALID_CODE, verification.REASON_CODE_NOT_FOUND:
				writeJSONError(w, http.StatusBadRequest, VerificationFailed, "Invalid verification code")
				return
			}
		}

		logger.Error("Failed to check verification code", slog.String("error", err.Error()))

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to check verification code, please try again")
		return
	}

	writeJSON(w, http.StatusOK, VerificationCheckResponse{
		Verified:      true,
		PendingAction: string(gate.ConsumePendingAction()),
	})
}

type SubmitRequest struct {
	State         RegistrationStateBody `json:"state"`
	PaymentMethod string                `json:"paymentMethod"`
}

type SubmitResponse struct {
	AccountId            string `json:"accountId"`
	RedirectUrl          string `json:"redirectUrl,omitempty"`
	RegistrationComplete bool   `json:"registrationComplete"`
	InvoiceEmailSent     bool   `json:"invoiceEmailSent,omitempty"`
}

func (a *API) postSignupSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var body SubmitRequest
	if !decodeJSONBody(w, r, &body) {
		return
	}

	state := apiStateToState(body.State)

	// Submission re-runs every step's validator; the client can't skip a
	// step by posting directly.
	for step := signup.STEP_DATA_NOTICE; step < signup.STEP_PAYMENT; step++ {
		state.Step = step
		if err := signup.ValidateStep(state); err != nil {
			var signupErr *signup.Error
			if errors.As(err, &signupErr) {
				writeJSONError(w, http.StatusBadRequest, InputValidationError, signupErr.Message)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to validate")
			return
		}
	}
	state.Step = signup.STEP_PAYMENT

	gate := a.gateFor(state.Email)

	switch signup.PaymentMethod(body.PaymentMethod) {
	case signup.PAYMENT_METHOD_STRIPE:
		a.submitWithCheckout(w, r, state, gate)
	case signup.PAYMENT_METHOD_INVOICE:
		a.submitWithInvoice(w, r, state, gate)
	default:
		logger.Warn("Unknown payment method", slog.String("paymentMethod", body.PaymentMethod))

		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Unknown payment method")
	}
}

func (a *API) submitWithCheckout(w http.ResponseWriter, r *http.Request, state *signup.State, gate *verification.Gate) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	result, err := signup.CompleteWithCheckout(ctx, state, gate, a.db, a.checkoutManager, a.checkoutSuccessURL, a.checkoutCancelURL)
	if err != nil {
		a.writeSubmitError(w, logger, err)
		return
	}

	a.releaseGate(state.Email)

	writeJSON(w, http.StatusOK, SubmitResponse{
		AccountId:   result.AccountID.String(),
		RedirectUrl: result.RedirectURL,
	})
}

func (a *API) submitWithInvoice(w http.ResponseWriter, r *http.Request, state *signup.State, gate *verification.Gate) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	result, err := signup.CompleteWithInvoice(ctx, state, gate, a.db, a.invoicer)
	if err != nil {
		a.writeSubmitError(w, logger, err)
		return
	}

	a.releaseGate(state.Email)

	acct, err := a.db.GetAccount(ctx, result.AccountID)
	if err == nil {
		err = signup.SendWelcomeEmail(ctx, a.emailSender, a.fromAddress, acct)
	}
	if err != nil {
		// The registration itself succeeded; the welcome email is best
		// effort.
		logger.Error("Failed to send welcome email", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, SubmitResponse{
		AccountId:            result.AccountID.String(),
		RegistrationComplete: true,
		InvoiceEmailSent:     result.EmailSent,
	})
}

func (a *API) writeSubmitError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("Failed to complete registration", slog.String("error", err.Error()))

	var signupErr *signup.Error
	if errors.As(err, &signupErr) {
		switch signupErr.Reason {
		case signup.REASON_VERIFICATION_REQUIRED:
			writeJSONError(w, http.StatusConflict, VerificationRequired, signupErr.Message)
			return
		case signup.REASON_VALIDATION_FAILED:
			writeJSONError(w, http.StatusBadRequest, InputValidationError, signupErr.Message)
			return
		case signup.REASON_FAILED_TO_CREATE_CHECKOUT, signup.REASON_FAILED_TO_REQUEST_INVOICE:
			writeJSONError(w, http.StatusBadGateway, PaymentError, "Payment could not be started, please try again")
			return
		}
	}

	var accountErr *account.Error
	if errors.As(err, &accountErr) {
		switch accountErr.Reason {
		case account.REASON_ACCOUNT_ALREADY_EXISTS:
			writeJSONError(w, http.StatusConflict, AlreadyExists, "An account already exists for this registration")
			return
		}
	}

	writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to complete registration, please try again")
}
