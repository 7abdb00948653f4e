package billing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/International-Combat-Archery-Alliance/email"
)

//go:embed templates
var templates embed.FS

var _ InvoiceRequester = &EmailInvoicer{}

// EmailInvoicer fulfils invoice requests by emailing the billing desk,
// which raises the actual invoice against the new account. The registrant
// is CC'd so EmailSent reflects their copy too.
type EmailInvoicer struct {
	sender      email.Sender
	fromAddress string
	billingDesk string
}

func NewEmailInvoicer(sender email.Sender, fromAddress string, billingDesk string) *EmailInvoicer {
	return &EmailInvoicer{
		sender:      sender,
		fromAddress: fromAddress,
		billingDesk: billingDesk,
	}
}

func (e *EmailInvoicer) RequestInvoice(ctx context.Context, invoice Invoice) (InvoiceResult, error) {
	if invoice.BillingEmail == "" {
		return InvoiceResult{}, NewInvalidInvoiceError("Billing email must be set")
	}
	if invoice.Amount == nil {
		return InvoiceResult{}, NewInvalidInvoiceError("Amount must be set")
	}

	htmlBody, err := renderInvoiceBody("templates/invoice-request.tmpl", invoice)
	if err != nil {
		return InvoiceResult{}, err
	}

	textBody, err := renderInvoiceBody("templates/invoice-request-textonly.tmpl", invoice)
	if err != nil {
		return InvoiceResult{}, err
	}

	err = e.sender.SendEmail(ctx, email.Email{
		FromAddress: e.fromAddress,
		ToAddresses: []string{e.billingDesk, invoice.BillingEmail},
		Subject:     fmt.Sprintf("Invoice request - %s", invoice.AccountName),
		HTMLBody:    htmlBody,
		TextBody:    textBody,
	})
	if err != nil {
		return InvoiceResult{}, NewFailedToSendError(fmt.Sprintf("Failed to send invoice request for %q", invoice.Reference), err)
	}

	return InvoiceResult{Success: true, EmailSent: true}, nil
}

func renderInvoiceBody(name string, invoice Invoice) (string, error) {
	tmpl, err := template.ParseFS(templates, name)
	if err != nil {
		return "", NewTemplateFailureError(fmt.Sprintf("failed to parse invoice template %q", name), err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Invoice": invoice,
		"Display": invoice.Amount.Display(),
	})
	if err != nil {
		return "", NewTemplateFailureError(fmt.Sprintf("failed to execute invoice template %q", name), err)
	}

	return buf.String(), nil
}
