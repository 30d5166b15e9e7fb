package service

import (
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/bienesraices/boutique/internal/config"
)

// EmailService sends transactional mail through Resend. In development
// (or when no API key is configured) it logs the message instead of
// sending, so the confirmation flow can be exercised locally.
type EmailService struct {
	client  *resend.Client
	from    string
	appName string
	appURL  string
	enabled bool
}

func NewEmailService(cfg *config.Config) *EmailService {
	enabled := cfg.ResendAPIKey != "" && !cfg.IsDevelopment()
	var client *resend.Client
	if enabled {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &EmailService{
		client:  client,
		from:    cfg.EmailFrom,
		appName: cfg.AppName,
		appURL:  cfg.AppURL,
		enabled: enabled,
	}
}

// SendConfirmationEmail mails the single-use confirmation link for a
// fresh registration.
func (s *EmailService) SendConfirmationEmail(to, name, token string) error {
	confirmURL := fmt.Sprintf("%s/confirm/%s", s.appURL, token)

	subject := fmt.Sprintf("Confirma tu cuenta en %s", s.appName)
	html := fmt.Sprintf(`
		<p>Hola %s,</p>
		<p>Gracias por registrarte en %s. Confirma tu cuenta haciendo clic en el siguiente enlace:</p>
		<p><a href="%s">Confirmar mi cuenta</a></p>
		<p>El enlace expira en 24 horas. Si no creaste esta cuenta, ignora este mensaje.</p>
	`, name, s.appName, confirmURL)

	if !s.enabled {
		slog.Info("email sending disabled, logging instead",
			"to", to,
			"subject", subject,
			"confirm_url", confirmURL,
		)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	slog.Info("confirmation email sent", "to", to, "email_id", sent.Id)
	return nil
}
