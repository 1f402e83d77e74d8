// Package notifier sends best-effort plain notices (scrape-cycle summaries).
// Implementations are deliberately defensive: a failed notice is logged and
// swallowed so it can never stop the scrape loop.
package notifier

import (
	"log/slog"

	"github.com/constadinisio/huntly/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notices to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each notice via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notice. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(subject, body string) error {
	n.logger.Info("notice", "subject", subject, "body", body)
	return nil
}
