package notify

import (
	"context"
	"fmt"

	"soultrack/followup/internal/config"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/models/dtos"

	"gopkg.in/gomail.v2"
)

// Notifier delivers a composed message to the destination owner.
// Delivery is best effort; callers log and continue on error.
type Notifier interface {
	Notify(ctx context.Context, dest Destination, subject string, msg dtos.Message) error
}

// NoopNotifier is used when no delivery channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Destination, string, dtos.Message) error { return nil }

// EmailNotifier sends the message text by SMTP.
type EmailNotifier struct {
	from string
	send func(m *gomail.Message) error
}

func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &EmailNotifier{
		from: cfg.From,
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

// NewNotifier returns an EmailNotifier when SMTP is configured and a no-op
// otherwise.
func NewNotifier(cfg config.SMTPConfig) Notifier {
	if !cfg.Enabled() {
		logging.Info("SMTP not configured, email notifications disabled")
		return NoopNotifier{}
	}
	return NewEmailNotifier(cfg)
}

func (n *EmailNotifier) Notify(ctx context.Context, dest Destination, subject string, msg dtos.Message) error {
	if dest.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", dest.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", msg.Text)
	if msg.WhatsAppURI != "" {
		m.AddAlternative("text/html", "<p>"+htmlLines(msg.Text)+`</p><p><a href="`+msg.WhatsAppURI+`">WhatsApp</a></p>`)
	}

	// gomail has no deadline once connected; give up waiting when ctx ends.
	errCh := make(chan error, 1)
	go func() { errCh <- n.send(m) }()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", dest.Email, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email to %s: %w", dest.Email, ctx.Err())
	}
}
