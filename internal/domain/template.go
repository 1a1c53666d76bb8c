package domain

import "time"

// TemplateBase carries the attributes shared by every template variant.
type TemplateBase struct {
	ID               string    `json:"id"`
	NotificationType string    `json:"notification_type"`
	Kind             string    `json:"kind"`
	LanguageCode     string    `json:"language_code,omitempty"`
	CreatedAt        time.Time `json:"created"`
	UpdatedAt        time.Time `json:"updated"`
}

func (b *TemplateBase) Meta() *TemplateBase { return b }

// NotificationTemplate is a channel-specific pattern rendered against a notification.
type NotificationTemplate interface {
	Meta() *TemplateBase
	Channel() Channel
	// Patterns returns the subject and body patterns; subject is empty for channels without one.
	Patterns() (subject, body string)
}

type EmailNotificationTemplate struct {
	TemplateBase
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (t *EmailNotificationTemplate) Channel() Channel { return ChannelEmail }

func (t *EmailNotificationTemplate) Patterns() (string, string) { return t.Subject, t.Body }

type SMSNotificationTemplate struct {
	TemplateBase
	Message string `json:"message"`
}

func (t *SMSNotificationTemplate) Channel() Channel { return ChannelSMS }

func (t *SMSNotificationTemplate) Patterns() (string, string) { return "", t.Message }

// RenderedContent is the output of rendering a template.
type RenderedContent struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}
