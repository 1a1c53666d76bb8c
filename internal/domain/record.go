package domain

import "time"

// Persisted record shapes that registry entries map to.
const (
	ShapeNotification = "notification"
	ShapeTemplate     = "notification_template"
)

// NotificationRecord is the persisted, untyped form of a Notification.
// Kind is the registry tag used to reconstitute the typed instance.
type NotificationRecord struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	Type           string            `json:"type" dynamodbav:"type"`
	Kind           string            `json:"kind" dynamodbav:"kind"`
	LanguageCode   string            `json:"language_code,omitempty" dynamodbav:"language_code"`
	IsActive       bool              `json:"is_active" dynamodbav:"is_active"`
	Sender         string            `json:"sender,omitempty" dynamodbav:"sender"`
	Parameters     map[string]string `json:"parameters,omitempty" dynamodbav:"parameters"`
	Recipient      Recipient         `json:"recipient" dynamodbav:"recipient"`
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time         `json:"updated" dynamodbav:"updated_at"`
}

type fromAddresser interface {
	fromAddress() *string
}

// ToModel copies the record into n, a blank instance produced by the registry.
func (r *NotificationRecord) ToModel(n Notification) Notification {
	b := n.Base()
	b.ID = r.NotificationID
	b.Type = r.Type
	b.Kind = r.Kind
	b.LanguageCode = r.LanguageCode
	b.IsActive = r.IsActive
	b.Recipient = r.Recipient
	b.CreatedAt = r.CreatedAt
	b.UpdatedAt = r.UpdatedAt
	b.Parameters = make(map[string]string, len(r.Parameters))
	for k, v := range r.Parameters {
		b.Parameters[k] = v
	}
	if fa, ok := n.(fromAddresser); ok {
		*fa.fromAddress() = r.Sender
	}
	return n
}

// NewNotificationRecord flattens n into its persisted form.
func NewNotificationRecord(n Notification) *NotificationRecord {
	b := n.Base()
	r := &NotificationRecord{
		NotificationID: b.ID,
		Type:           b.Type,
		Kind:           b.Kind,
		LanguageCode:   b.LanguageCode,
		IsActive:       b.IsActive,
		Parameters:     b.Parameters,
		Recipient:      b.Recipient,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if fa, ok := n.(fromAddresser); ok {
		r.Sender = *fa.fromAddress()
	}
	return r
}

// TemplateRecord is the persisted form of a NotificationTemplate.
// Subject is unused by SMS templates; Body holds the SMS message.
type TemplateRecord struct {
	TemplateID       string    `json:"id" dynamodbav:"template_id"`
	NotificationType string    `json:"notification_type" dynamodbav:"notification_type"`
	Kind             string    `json:"kind" dynamodbav:"kind"`
	LanguageCode     string    `json:"language_code,omitempty" dynamodbav:"language_code"`
	Subject          string    `json:"subject,omitempty" dynamodbav:"subject"`
	Body             string    `json:"body" dynamodbav:"body"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

// ToModel copies the record into t, a blank instance produced by the registry.
func (r *TemplateRecord) ToModel(t NotificationTemplate) NotificationTemplate {
	m := t.Meta()
	m.ID = r.TemplateID
	m.NotificationType = r.NotificationType
	m.Kind = r.Kind
	m.LanguageCode = r.LanguageCode
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
	switch v := t.(type) {
	case *EmailNotificationTemplate:
		v.Subject = r.Subject
		v.Body = r.Body
	case *SMSNotificationTemplate:
		v.Message = r.Body
	}
	return t
}

// NewTemplateRecord flattens t into its persisted form.
func NewTemplateRecord(t NotificationTemplate) *TemplateRecord {
	m := t.Meta()
	subject, body := t.Patterns()
	return &TemplateRecord{
		TemplateID:       m.ID,
		NotificationType: m.NotificationType,
		Kind:             m.Kind,
		LanguageCode:     m.LanguageCode,
		Subject:          subject,
		Body:             body,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
