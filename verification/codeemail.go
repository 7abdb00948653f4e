package verification

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

var _ CodeSender = &EmailCodeSender{}

type EmailCodeSender struct {
	sender      email.Sender
	fromAddress string
}

func NewEmailCodeSender(sender email.Sender, fromAddress string) *EmailCodeSender {
	return &EmailCodeSender{
		sender:      sender,
		fromAddress: fromAddress,
	}
}

func (s *EmailCodeSender) SendCode(ctx context.Context, toEmail string, code string) error {
	htmlBody, err := renderCodeBody("templates/verification-code.tmpl", code)
	if err != nil {
		return err
	}

	textBody, err := renderCodeBody("templates/verification-code-textonly.tmpl", code)
	if err != nil {
		return err
	}

	return s.sender.SendEmail(ctx, email.Email{
		FromAddress: s.fromAddress,
		ToAddresses: []string{toEmail},
		Subject:     "Your verification code",
		HTMLBody:    htmlBody,
		TextBody:    textBody,
	})
}

func renderCodeBody(name string, code string) (string, error) {
	tmpl, err := template.ParseFS(templates, name)
	if err != nil {
		return "", fmt.Errorf("failed to parse verification template %q: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Code":          code,
		"ValidDuration": codeTTL.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute verification template %q: %w", name, err)
	}

	return buf.String(), nil
}
