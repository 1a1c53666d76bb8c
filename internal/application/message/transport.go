package message

import (
	"context"
	"fmt"

	"github.com/go-notifications-nosql/internal/domain"
)

// EmailTransport delivers a rendered email. A nil error means the message was accepted.
type EmailTransport interface {
	SendEmail(ctx context.Context, from, to, subject, body string) error
}

// SMSTransport delivers a rendered text message.
type SMSTransport interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Dispatcher hands a built message to the transport of its channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *domain.NotificationMessage) error
}

type DispatcherFunc func(ctx context.Context, msg *domain.NotificationMessage) error

func (f DispatcherFunc) Dispatch(ctx context.Context, msg *domain.NotificationMessage) error {
	return f(ctx, msg)
}

// EmailDispatcher adapts an EmailTransport.
func EmailDispatcher(t EmailTransport) Dispatcher {
	return DispatcherFunc(func(ctx context.Context, msg *domain.NotificationMessage) error {
		if err := t.SendEmail(ctx, msg.From, msg.To, msg.Subject, msg.Body); err != nil {
			return fmt.Errorf("%w: email to %s: %w", domain.ErrTransport, msg.To, err)
		}
		return nil
	})
}

// SMSDispatcher adapts an SMSTransport. SMS messages carry no subject.
func SMSDispatcher(t SMSTransport) Dispatcher {
	return DispatcherFunc(func(ctx context.Context, msg *domain.NotificationMessage) error {
		if err := t.SendSMS(ctx, msg.To, msg.Body); err != nil {
			return fmt.Errorf("%w: sms to %s: %w", domain.ErrTransport, msg.To, err)
		}
		return nil
	})
}
