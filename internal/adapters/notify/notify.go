// Package notify provides the operator-facing notification channels.
package notify

import (
	"context"
	"log/slog"

	"timetableadmin/internal/domain"
)

// Log writes every notification to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "notifier")}
}

func (l *Log) Display(ctx context.Context, message string, severity domain.Severity) {
	level := slog.LevelInfo
	switch severity {
	case domain.SeverityWarning:
		level = slog.LevelWarn
	case domain.SeverityError:
		level = slog.LevelError
	}
	l.logger.Log(ctx, level, message, "severity", string(severity))
}

// Multi fans a notification out to every channel in order.
type Multi []domain.Notifier

func (m Multi) Display(ctx context.Context, message string, severity domain.Severity) {
	for _, n := range m {
		if n != nil {
			n.Display(ctx, message, severity)
		}
	}
}

// Wait blocks until channels that deliver in the background have drained.
func (m Multi) Wait() {
	for _, n := range m {
		if w, ok := n.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
}
