package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"

	gomail "github.com/wneessen/go-mail"
)

// Delivery sends a rendered email.
type Delivery interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// LogDelivery logs emails instead of sending them. Used when EMAIL_ENABLED is false.
type LogDelivery struct {
	log *logger.Logger
}

func NewLogDelivery(log *logger.Logger) *LogDelivery {
	return &LogDelivery{log: log}
}

func (d *LogDelivery) Send(ctx context.Context, toEmail, subject, body string) error {
	preview := body
	if runes := []rune(body); len(runes) > 200 {
		preview = string(runes[:200]) + "..."
	}
	d.log.WithContext(ctx).Info("email not sent (delivery disabled)",
		"to", toEmail,
		"subject", subject,
		"preview", preview,
	)
	return nil
}

// SMTPDelivery sends plain-text emails over SMTP via go-mail.
type SMTPDelivery struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPDelivery(cfg config.EmailConfig) *SMTPDelivery {
	return &SMTPDelivery{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPDelivery) Send(ctx context.Context, toEmail, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// NewDelivery picks SMTP when email is enabled and logging otherwise.
func NewDelivery(cfg config.EmailConfig, log *logger.Logger) Delivery {
	if cfg.GetEmailEnabled() {
		return NewSMTPDelivery(cfg)
	}
	return NewLogDelivery(log)
}

var (
	_ Delivery = (*LogDelivery)(nil)
	_ Delivery = (*SMTPDelivery)(nil)
)
