package domain

import "time"

// Channel is the delivery medium of a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Variant tags of the two base notification families.
const (
	KindEmail = "Email"
	KindSMS   = "SMS"
)

type Recipient struct {
	ID    string `json:"id,omitempty" dynamodbav:"id"`
	Name  string `json:"name,omitempty" dynamodbav:"name"`
	Email string `json:"email,omitempty" dynamodbav:"email"`
	Phone string `json:"phone,omitempty" dynamodbav:"phone"`
}

// NotificationBase carries the attributes shared by every notification variant.
type NotificationBase struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Kind         string            `json:"kind"`
	LanguageCode string            `json:"language_code,omitempty"`
	IsActive     bool              `json:"is_active"`
	Parameters   map[string]string `json:"parameters,omitempty"`
	Recipient    Recipient         `json:"recipient"`
	CreatedAt    time.Time         `json:"created"`
	UpdatedAt    time.Time         `json:"updated"`
}

func (b *NotificationBase) Base() *NotificationBase { return b }

// Param returns a caller-supplied parameter and whether it was set.
func (b *NotificationBase) Param(key string) (string, bool) {
	v, ok := b.Parameters[key]
	return v, ok
}

// Notification is the capability set shared by all variants.
type Notification interface {
	Base() *NotificationBase
	Channel() Channel
	// Address is the channel-specific recipient address (email or phone number).
	Address() string
}

// FieldProvider is implemented by variants that expose computed fields to templates.
type FieldProvider interface {
	Fields() map[string]string
}

type EmailNotification struct {
	NotificationBase
	From string `json:"from,omitempty"`
}

func (n *EmailNotification) Channel() Channel { return ChannelEmail }
func (n *EmailNotification) Address() string  { return n.Recipient.Email }

// Sender is the configured From address; empty means the transport default.
func (n *EmailNotification) Sender() string { return n.From }

func (n *EmailNotification) fromAddress() *string { return &n.From }

type SMSNotification struct {
	NotificationBase
}

func (n *SMSNotification) Channel() Channel { return ChannelSMS }
func (n *SMSNotification) Address() string  { return n.Recipient.Phone }
