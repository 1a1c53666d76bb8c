package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-notifications-nosql/internal/domain"
)

const notificationCreatedIndex = "notification_id-created_at-index"

// MessageRepo is the append-only delivery log in the notification_messages table.
type MessageRepo struct {
	client    API
	tableName string
}

func NewMessageRepo(client API, tableName string) *MessageRepo {
	return &MessageRepo{client: client, tableName: tableName}
}

// Append writes msg. An existing message with the same ID is never overwritten.
func (r *MessageRepo) Append(ctx context.Context, msg *domain.NotificationMessage) error {
	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	item["created_at"] = sortKeyTime(msg.CreatedAt)
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(message_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("message %s: %w", msg.MessageID, domain.ErrConflict)
	}
	return err
}

// ListByNotification returns the messages recorded for a notification, newest first.
func (r *MessageRepo) ListByNotification(ctx context.Context, notificationID string) ([]domain.NotificationMessage, error) {
	in := eqQuery(r.tableName, notificationCreatedIndex, "notification_id", notificationID)
	in.ScanIndexForward = aws.Bool(false)
	p := dynamodb.NewQueryPaginator(r.client, in)

	msgs := []domain.NotificationMessage{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query messages: %w", err)
		}
		var page []domain.NotificationMessage
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal messages: %w", err)
		}
		msgs = append(msgs, page...)
	}
	return msgs, nil
}
