package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"timetableadmin/internal/domain"
)

const alertTemplate = "alert"

type alertNotifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	to       string
	minLevel domain.Severity
	logger   *slog.Logger
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewAlertNotifier returns a Notifier that emails messages at or above minLevel to the
// operator address using the "alert" template. An empty address disables it.
func NewAlertNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, to string, minLevel domain.Severity, logger *slog.Logger) domain.Notifier {
	return &alertNotifier{
		mailer:   mailer,
		renderer: renderer,
		to:       to,
		minLevel: minLevel,
		logger:   logger,
		now:      time.Now,
	}
}

// Display renders and sends the alert in the background and returns immediately.
// Failures are logged; a notifier never fails or delays its caller.
func (n *alertNotifier) Display(ctx context.Context, message string, severity domain.Severity) {
	if n.to == "" || severityRank(severity) < severityRank(n.minLevel) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	sentAt := n.now()
	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		if err := n.send(message, severity, sentAt); err != nil {
			n.logger.WarnContext(ctx, "alert email not sent", "to", n.to, "err", err)
			return
		}
		n.logger.DebugContext(ctx, "alert email sent", "to", n.to, "severity", severity)
	}()
}

// Wait blocks until every alert handed to Display has been sent or dropped.
func (n *alertNotifier) Wait() {
	n.pending.Wait()
}

func (n *alertNotifier) send(message string, severity domain.Severity, sentAt time.Time) error {
	data := domain.AlertEmailData{
		Message:  message,
		Severity: severity,
		SentAt:   sentAt.Format("2006-01-02 15:04"),
	}
	subject, htmlBody, textBody, err := n.renderer.Render(alertTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render alert template: %w", err)
	}
	if err := n.mailer.Send(n.to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityError:
		return 3
	case domain.SeverityWarning:
		return 2
	case domain.SeverityInfo:
		return 1
	default:
		return 0
	}
}
