package domain

import (
	"context"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is a fire-and-forget side channel for operator-facing messages.
type Notifier interface {
	Display(ctx context.Context, message string, severity Severity)
}

// Mailer sends emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// AlertEmailData is the payload of the operator alert email.
type AlertEmailData struct {
	Message  string
	Severity Severity
	SentAt   string
}

// TokenVerifier verifies a bearer token and returns the authenticated subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// TokenIssuer signs bearer tokens for an authenticated subject.
type TokenIssuer interface {
	Issue(subject string, expiry time.Duration) (string, error)
}

// PasswordHasher hashes and checks operator passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthService exchanges operator credentials for a bearer token.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, err error)
}
