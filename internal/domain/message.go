package domain

import "time"

// MessageStatus tracks a single send attempt.
// Pending -> Rendering -> Dispatching -> Delivered | Failed.
type MessageStatus string

const (
	MessagePending     MessageStatus = "pending"
	MessageRendering   MessageStatus = "rendering"
	MessageDispatching MessageStatus = "dispatching"
	MessageDelivered   MessageStatus = "delivered"
	MessageFailed      MessageStatus = "failed"
)

// NotificationMessage is the rendered, channel-ready artifact of one send attempt.
// It is appended to the delivery log and never updated afterwards.
type NotificationMessage struct {
	MessageID        string        `json:"id" dynamodbav:"message_id"`
	NotificationID   string        `json:"notification_id" dynamodbav:"notification_id"`
	NotificationType string        `json:"notification_type" dynamodbav:"notification_type"`
	Channel          Channel       `json:"channel" dynamodbav:"channel"`
	LanguageCode     string        `json:"language_code,omitempty" dynamodbav:"language_code"`
	To               string        `json:"to" dynamodbav:"to"`
	From             string        `json:"from,omitempty" dynamodbav:"from"`
	Subject          string        `json:"subject,omitempty" dynamodbav:"subject"`
	Body             string        `json:"body" dynamodbav:"body"`
	Status           MessageStatus `json:"status" dynamodbav:"status"`
	Error            string        `json:"error,omitempty" dynamodbav:"error"`
	CreatedAt        time.Time     `json:"created" dynamodbav:"created_at"`
	SentAt           *time.Time    `json:"sent_at,omitempty" dynamodbav:"sent_at"`
}

// Delivered reports whether the transport accepted the message.
func (m *NotificationMessage) Delivered() bool { return m.Status == MessageDelivered }
