package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/telegram"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends plain notices to the operator chat. Unlike the
// interactive prompts, these carry no keyboard and are never retried.
type TelegramNotifier struct {
	client *telegram.Client
	logger *slog.Logger
}

// NewTelegramNotifier returns a notifier posting through the bot client.
func NewTelegramNotifier(client *telegram.Client, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{client: client, logger: logger}
}

// Notify sends one plain HTML message.
func (n *TelegramNotifier) Notify(subject, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	text := fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(subject), html.EscapeString(body))
	if _, err := n.client.SendMessage(ctx, text, nil); err != nil {
		n.logger.Error("telegram notice failed", "subject", subject, "error", err)
		return fmt.Errorf("send telegram notice: %w", err)
	}
	return nil
}
