package smtp

import (
	"context"
	"fmt"

	"github.com/go-notifications-nosql/internal/config"
	"github.com/wneessen/go-mail"
)

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends rendered emails over SMTP.
type Mailer struct {
	client dialer
	from   string
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.SMTPPort)}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	if cfg.SMTPTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.SMTPFrom}, nil
}

// SendEmail delivers one message. An empty from falls back to the configured sender.
func (m *Mailer) SendEmail(ctx context.Context, from, to, subject, body string) error {
	msg, err := m.compose(from, to, subject, body)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (m *Mailer) compose(from, to, subject, body string) (*mail.Msg, error) {
	if from == "" {
		from = m.from
	}
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set From address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set To address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}
