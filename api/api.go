package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/MGA-Alliance/member-registration/account"
	"github.com/MGA-Alliance/member-registration/billing"
	"github.com/MGA-Alliance/member-registration/payments"
	"github.com/MGA-Alliance/member-registration/verification"
	"google.golang.org/api/idtoken"
)

type Environment int

const (
	LOCAL Environment = iota
	PROD
)

type DB interface {
	account.Repository
}

type GoogleIDVerifier interface {
	Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

type API struct {
	db               DB
	checkoutManager  payments.CheckoutManager
	invoicer         billing.InvoiceRequester
	codeStore        verification.CodeStore
	codeSender       verification.CodeSender
	emailSender      email.Sender
	googleIdVerifier GoogleIDVerifier
	logger           *slog.Logger
	env              Environment

	fromAddress        string
	checkoutSuccessURL string
	checkoutCancelURL  string

	// One gate per registrant email: the wizard session owns its
	// verification state for the duration of one registration.
	gatesMu sync.Mutex
	gates   map[string]*verification.Gate
}

type Config struct {
	Env                Environment
	FromAddress        string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
}

func NewAPI(
	db DB,
	checkoutManager payments.CheckoutManager,
	invoicer billing.InvoiceRequester,
	codeStore verification.CodeStore,
	codeSender verification.CodeSender,
	emailSender email.Sender,
	googleIdVerifier GoogleIDVerifier,
	logger *slog.Logger,
	cfg Config,
) *API {
	return &API{
		db:                 db,
		checkoutManager:    checkoutManager,
		invoicer:           invoicer,
		codeStore:          codeStore,
		codeSender:         codeSender,
		emailSender:        emailSender,
		googleIdVerifier:   googleIdVerifier,
		logger:             logger,
		env:                cfg.Env,
		fromAddress:        cfg.FromAddress,
		checkoutSuccessURL: cfg.CheckoutSuccessURL,
		checkoutCancelURL:  cfg.CheckoutCancelURL,
		gates:              map[string]*verification.Gate{},
	}
}

// Handler builds the full HTTP handler: routes wrapped in the middleware
// chain.
func (a *API) Handler() http.Handler {
	r := http.NewServeMux()

	r.HandleFunc("POST /signup/validate", a.postSignupValidate)
	r.HandleFunc("POST /signup/fee", a.postSignupFee)
	r.HandleFunc("POST /signup/verification/send", a.postVerificationSend)
	r.HandleFunc("POST /signup/verification/check", a.postVerificationCheck)
	r.HandleFunc("POST /signup/submit", a.postSignupSubmit)

	r.HandleFunc("GET /accounts", a.requireAdmin(a.getAccounts))
	r.HandleFunc("POST /accounts/{id}/status", a.requireAdmin(a.postAccountStatus))

	return useMiddlewares(r,
		a.corsMiddleware(),
		a.loggingMiddleware(),
		a.requestIdMiddleware(),
	)
}

func (a *API) gateFor(email string) *verification.Gate {
	a.gatesMu.Lock()
	defer a.gatesMu.Unlock()

	gate, ok := a.gates[email]
	if !ok {
		gate = verification.NewGate(a.codeStore, a.codeSender)
		a.gates[email] = gate
	}
	return gate
}

// releaseGate drops the gate once a registration completes, so a later
// registration with the same address has to verify again.
func (a *API) releaseGate(email string) {
	a.gatesMu.Lock()
	defer a.gatesMu.Unlock()

	delete(a.gates, email)
}

func (a *API) getLoggerOrBaseLogger(ctx context.Context) *slog.Logger {
	if logger, ok := loggerFromCtx(ctx); ok {
		return logger
	}
	return a.logger
}
