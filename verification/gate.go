package verification

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
)

// PendingAction is the continuation remembered across the verification
// round-trip: which payment path the user asked for before the gate
// interrupted them. It is consumed exactly once on gate success.
type PendingAction string

const (
	ACTION_NONE    PendingAction = ""
	ACTION_STRIPE  PendingAction = "STRIPE"
	ACTION_INVOICE PendingAction = "INVOICE"
)

// Gate runs the email verification state machine:
//
//	idle -> code_sent -> verifying -> verified
//	                            \--> rejected (stays in code_sent)
//
// The zero value is an idle gate; wire Store and Sender before use via
// NewGate. A gate is shared between the requests of one registration, so
// every method takes the mutex.
type Gate struct {
	store  CodeStore
	sender CodeSender

	mu                     sync.Mutex
	showEmailVerification  bool
	isCheckingVerification bool
	isSendingVerification  bool
	pendingAction          PendingAction
	verified               bool
}

// CodeSender delivers the code to the registrant. Implemented by
// EmailCodeSender; tests swap in a capture.
type CodeSender interface {
	SendCode(ctx context.Context, toEmail string, code string) error
}

func NewGate(store CodeStore, sender CodeSender) *Gate {
	return &Gate{
		store:  store,
		sender: sender,
	}
}

// RequireVerification records which payment action to resume once the gate
// is passed, and opens the verification prompt.
func (g *Gate) RequireVerification(action PendingAction) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pendingAction = action
	g.showEmailVerification = true
}

// ConsumePendingAction hands back the remembered payment action and clears
// it, so the continuation fires at most once.
func (g *Gate) ConsumePendingAction() PendingAction {
	g.mu.Lock()
	defer g.mu.Unlock()

	action := g.pendingAction
	g.pendingAction = ACTION_NONE
	return action
}

func (g *Gate) Verified() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.verified
}

// ShowEmailVerification reports whether the verification prompt is open.
func (g *Gate) ShowEmailVerification() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.showEmailVerification
}

func (g *Gate) IsSendingVerification() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isSendingVerification
}

func (g *Gate) IsCheckingVerification() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isCheckingVerification
}

// SendVerificationCode issues a fresh code for the address. On any failure
// the gate state is left unchanged and the error propagates for display.
// Calls for the same gate are serialized, so a re-send can't interleave
// with a submit consuming the continuation.
func (g *Gate) SendVerificationCode(ctx context.Context, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.isSendingVerification = true
	defer func() { g.isSendingVerification = false }()

	code, err := generateCode()
	if err != nil {
		return NewFailedToSendError("Failed to generate verification code", err)
	}

	err = g.store.Put(ctx, email, code, codeTTL)
	if err != nil {
		return err
	}

	err = g.sender.SendCode(ctx, email, code)
	if err != nil {
		return NewFailedToSendError("Failed to email verification code", err)
	}

	g.showEmailVerification = true
	return nil
}

// VerifyCode checks the submitted code. Success closes the gate and burns
// the stored code; failure keeps the gate open for retry.
func (g *Gate) VerifyCode(ctx context.Context, email string, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.isCheckingVerification = true
	defer func() { g.isCheckingVerification = false }()

	stored, err := g.store.Get(ctx, email)
	if err != nil {
		return err
	}

	if stored != code {
		return NewInvalidCodeError()
	}

	// Single use: a verified code can't be replayed.
	_ = g.store.Delete(ctx, email)

	g.verified = true
	g.showEmailVerification = false
	return nil
}

// Reset returns the gate to idle, dropping any pending continuation.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.isCheckingVerification = false
	g.isSendingVerification = false
	g.showEmailVerification = false
	g.pendingAction = ACTION_NONE
	g.verified = false
}

// generateCode returns a 6 digit zero-padded decimal code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	code := n.String()
	for len(code) < 6 {
		code = "0" + code
	}
	return code, nil
}
