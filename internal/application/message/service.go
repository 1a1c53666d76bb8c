// Package message composes rendered notifications into channel messages,
// dispatches them and records every attempt in the delivery log.
package message

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-notifications-nosql/internal/application/render"
	"github.com/go-notifications-nosql/internal/domain"
	"github.com/go-notifications-nosql/internal/pkg/id"
	"github.com/go-notifications-nosql/internal/registry"
)

// Log is the append-only delivery log.
type Log interface {
	Append(ctx context.Context, msg *domain.NotificationMessage) error
	ListByNotification(ctx context.Context, notificationID string) ([]domain.NotificationMessage, error)
}

type notificationGetter interface {
	Get(ctx context.Context, notificationID string) (domain.Notification, error)
}

type Service interface {
	// Send renders and dispatches n. A transport failure is not an error: the
	// returned message carries Status failed and the reason.
	Send(ctx context.Context, n domain.Notification) (*domain.NotificationMessage, error)
	SendByID(ctx context.Context, notificationID string) (*domain.NotificationMessage, error)
	// History lists delivery-log entries for a notification, newest first.
	History(ctx context.Context, notificationID string) ([]domain.NotificationMessage, error)
	SaveTemplate(ctx context.Context, rec *domain.TemplateRecord) error
}

type ServiceDeps struct {
	Notifications   notificationGetter
	Templates       TemplateRepository
	TemplateTypes   *registry.Registry[domain.NotificationTemplate]
	Log             Log
	Renderer        render.Renderer
	Email           EmailTransport
	SMS             SMSTransport
	DefaultLanguage string
	Clock           func() time.Time
}

type service struct {
	notifications   notificationGetter
	templates       TemplateRepository
	templateTypes   *registry.Registry[domain.NotificationTemplate]
	log             Log
	renderer        render.Renderer
	dispatchers     map[domain.Channel]Dispatcher
	defaultLanguage string
	now             func() time.Time
}

// NewService wires the pipeline. A channel whose transport is nil has no
// dispatcher and sends for it fail with domain.ErrUnsupportedChannel.
func NewService(deps ServiceDeps) Service {
	s := &service{
		notifications:   deps.Notifications,
		templates:       deps.Templates,
		templateTypes:   deps.TemplateTypes,
		log:             deps.Log,
		renderer:        deps.Renderer,
		dispatchers:     make(map[domain.Channel]Dispatcher),
		defaultLanguage: deps.DefaultLanguage,
		now:             deps.Clock,
	}
	if s.renderer == nil {
		s.renderer = render.NewRenderer()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Email != nil {
		s.dispatchers[domain.ChannelEmail] = EmailDispatcher(deps.Email)
	}
	if deps.SMS != nil {
		s.dispatchers[domain.ChannelSMS] = SMSDispatcher(deps.SMS)
	}
	return s
}

func (s *service) Send(ctx context.Context, n domain.Notification) (*domain.NotificationMessage, error) {
	b := n.Base()
	dispatcher, ok := s.dispatchers[n.Channel()]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", b.Type, n.Channel(), domain.ErrUnsupportedChannel)
	}

	now := s.now()
	msg := &domain.NotificationMessage{
		MessageID:        id.NewAt(now),
		NotificationID:   b.ID,
		NotificationType: b.Type,
		Channel:          n.Channel(),
		LanguageCode:     b.LanguageCode,
		To:               n.Address(),
		Status:           domain.MessagePending,
		CreatedAt:        now,
	}
	if es, ok := n.(interface{ Sender() string }); ok {
		msg.From = es.Sender()
	}

	tpl, err := s.resolveTemplate(ctx, n)
	if err != nil {
		return nil, err
	}

	msg.Status = domain.MessageRendering
	content, err := s.renderer.Render(n, tpl)
	if err != nil {
		return nil, err
	}
	msg.Subject = content.Subject
	msg.Body = content.Body
	msg.LanguageCode = tpl.Meta().LanguageCode

	msg.Status = domain.MessageDispatching
	if msg.To == "" {
		s.fail(msg, fmt.Errorf("recipient has no %s address", msg.Channel))
	} else if err := dispatcher.Dispatch(ctx, msg); err != nil {
		s.fail(msg, err)
	} else {
		sent := s.now()
		msg.Status = domain.MessageDelivered
		msg.SentAt = &sent
		slog.Info("notification delivered", "notification_id", msg.NotificationID, "message_id", msg.MessageID, "channel", msg.Channel)
	}

	if err := s.log.Append(ctx, msg); err != nil {
		return msg, fmt.Errorf("record message %s: %w: %w", msg.MessageID, domain.ErrRepository, err)
	}
	return msg, nil
}

func (s *service) SendByID(ctx context.Context, notificationID string) (*domain.NotificationMessage, error) {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if !n.Base().IsActive {
		return nil, fmt.Errorf("notification %s is inactive: %w", notificationID, domain.ErrBadRequest)
	}
	return s.Send(ctx, n)
}

func (s *service) History(ctx context.Context, notificationID string) ([]domain.NotificationMessage, error) {
	msgs, err := s.log.ListByNotification(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w: %w", domain.ErrRepository, err)
	}
	return msgs, nil
}

func (s *service) fail(msg *domain.NotificationMessage, err error) {
	msg.Status = domain.MessageFailed
	msg.Error = err.Error()
	slog.Warn("notification delivery failed",
		"notification_id", msg.NotificationID,
		"message_id", msg.MessageID,
		"channel", msg.Channel,
		"err", err,
	)
}
