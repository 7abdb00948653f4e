package signup

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/MGA-Alliance/member-registration/account"
)

//go:embed templates
var templates embed.FS

// SendWelcomeEmail confirms a completed registration to the account's
// contact address.
func SendWelcomeEmail(ctx context.Context, emailSender email.Sender, fromAddress string, acct account.Account) error {
	htmlBody, err := renderWelcomeBody("templates/welcome.tmpl", acct)
	if err != nil {
		return err
	}

	textBody, err := renderWelcomeBody("templates/welcome-textonly.tmpl", acct)
	if err != nil {
		return err
	}

	return emailSender.SendEmail(ctx, email.Email{
		FromAddress: fromAddress,
		ToAddresses: []string{acct.GetEmail()},
		Subject:     fmt.Sprintf("Welcome to the alliance, %s", acct.GetName()),
		HTMLBody:    htmlBody,
		TextBody:    textBody,
	})
}

func renderWelcomeBody(name string, acct account.Account) (string, error) {
	tmpl, err := template.ParseFS(templates, name)
	if err != nil {
		return "", fmt.Errorf("failed to parse welcome template %q: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Name":   acct.GetName(),
		"Status": string(acct.GetStatus()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute welcome template %q: %w", name, err)
	}

	return buf.String(), nil
}
