package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avdeev/events-manager/internal/config"
	gomail "github.com/wneessen/go-mail"
)

// Mailer delivers security notifications. Implementations must be safe for
// concurrent use; login handling dispatches sends from their own goroutines.
type Mailer interface {
	SendNewDeviceAlert(ctx context.Context, email, name, ipAddress, userAgent string, loginAt time.Time) error
}

// SMTPMailer sends via a configured SMTP relay.
type SMTPMailer struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) SendNewDeviceAlert(ctx context.Context, email, name, ipAddress, userAgent string, loginAt time.Time) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.EmailFrom); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject("Security Alert: New Device Login")
	msg.SetBodyString(gomail.TypeTextHTML, newDeviceAlertBody(name, ipAddress, userAgent, loginAt))

	client, err := gomail.NewClient(m.cfg.SMTPHost,
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.SMTPUsername),
		gomail.WithPassword(m.cfg.SMTPPassword),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("new device alert sent", slog.String("email", email))
	return nil
}

func newDeviceAlertBody(name, ipAddress, userAgent string, loginAt time.Time) string {
	return fmt.Sprintf(`<h2>New Login Detected</h2>
<p>Hello %s,</p>
<p>We detected a login to your account from a new device or IP address.</p>
<ul>
  <li><strong>Time:</strong> %s</li>
  <li><strong>IP Address:</strong> %s</li>
  <li><strong>Device:</strong> %s</li>
</ul>
<p>If this was you, you can ignore this email. If not, please contact support immediately.</p>`,
		name, loginAt.Format(time.RFC1123), ipAddress, userAgent)
}

// NoopMailer drops alerts. Used when no SMTP host is configured and in tests.
type NoopMailer struct{}

func (NoopMailer) SendNewDeviceAlert(context.Context, string, string, string, string, time.Time) error {
	return nil
}
