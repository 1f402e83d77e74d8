package notifier

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/constadinisio/huntly/internal/model"
)

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

// EmailNotifier sends notices over SMTP with STARTTLS when credentials are
// configured.
type EmailNotifier struct {
	host   string
	port   int
	user   string
	pass   string
	to     string
	logger *slog.Logger
}

// NewEmailNotifier returns a notifier that emails each notice.
func NewEmailNotifier(host string, port int, user, pass, to string, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		host:   host,
		port:   port,
		user:   user,
		pass:   pass,
		to:     to,
		logger: logger,
	}
}

// Notify sends one plain-text email. Failures are logged, never returned as
// fatal to the scrape path.
func (n *EmailNotifier) Notify(subject, body string) error {
	msg := strings.Join([]string{
		"From: " + n.user,
		"To: " + n.to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	var auth smtp.Auth
	if n.user != "" {
		auth = smtp.PlainAuth("", n.user, n.pass, n.host)
	}

	if err := smtp.SendMail(addr, auth, n.user, []string{n.to}, []byte(msg)); err != nil {
		n.logger.Error("email notice failed", "subject", subject, "error", err)
		return fmt.Errorf("send email notice: %w", err)
	}
	n.logger.Debug("email notice sent", "subject", subject, "to", n.to)
	return nil
}
