package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// Mailer delivers transactional email
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, html string) error
}

var mailerInstance Mailer = LogMailer{}

// InitMailer uses Brevo when an API key and sender are configured and logs
// messages otherwise.
func InitMailer(cfg *config.Config) Mailer {
	if cfg.BrevoAPIKey != "" && cfg.MailFromEmail != "" {
		mailerInstance = NewBrevoMailer(cfg.BrevoAPIKey, cfg.MailFromEmail, cfg.MailFromName)
	} else {
		mailerInstance = LogMailer{}
	}
	return mailerInstance
}

// GetMailer returns the configured mailer
func GetMailer() Mailer {
	return mailerInstance
}

// SetMailer sets the mailer instance (primarily for testing)
func SetMailer(m Mailer) {
	mailerInstance = m
}

// LogMailer writes outgoing mail to the application log instead of sending it
type LogMailer struct{}

// Send logs the message
func (LogMailer) Send(ctx context.Context, toEmail, subject, html string) error {
	logger.L().Infow("email not sent, no mail provider configured",
		"to", toEmail,
		"subject", subject,
	)
	return nil
}

// BrevoMailer sends email through the Brevo transactional API
type BrevoMailer struct {
	apiKey     string
	fromEmail  string
	fromName   string
	endpoint   string
	httpClient *http.Client
}

// NewBrevoMailer creates a Brevo client with a 10 second timeout
func NewBrevoMailer(apiKey, fromEmail, fromName string) *BrevoMailer {
	return &BrevoMailer{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		endpoint:   brevoAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmailRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Send posts one email to Brevo
func (b *BrevoMailer) Send(ctx context.Context, toEmail, subject, html string) error {
	if toEmail == "" || subject == "" || html == "" {
		return fmt.Errorf("recipient, subject and content are required")
	}

	body, err := json.Marshal(brevoEmailRequest{
		Sender:      brevoAddress{Email: b.fromEmail, Name: b.fromName},
		To:          []brevoAddress{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// SendPasswordResetCode emails a one-time reset code
func SendPasswordResetCode(ctx context.Context, m Mailer, toEmail, name, otp string, validFor time.Duration) error {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your SparesX password reset code is <strong>%s</strong>. It is valid for %s.</p>"+
			"<p>If you did not ask for a reset you can ignore this email.</p>",
		name, otp, humanDuration(validFor),
	)
	return m.Send(ctx, toEmail, "Your SparesX password reset code", html)
}

// SendPasswordChanged tells the user their password was replaced
func SendPasswordChanged(ctx context.Context, m Mailer, toEmail, name string) error {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>The password for your SparesX account was just changed.</p>"+
			"<p>If this was not you, contact support immediately.</p>",
		name,
	)
	return m.Send(ctx, toEmail, "Your SparesX password was changed", html)
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
