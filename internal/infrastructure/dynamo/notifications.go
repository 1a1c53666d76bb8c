package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-notifications-nosql/internal/application/notification"
	"github.com/go-notifications-nosql/internal/domain"
)

const typeIndex = "type-index"

var errClosed = errors.New("repository already closed")

// NotificationStore hands out per-operation repositories over the notifications table.
type NotificationStore struct {
	client    API
	tableName string
}

func NewNotificationStore(client API, tableName string) *NotificationStore {
	return &NotificationStore{client: client, tableName: tableName}
}

func (s *NotificationStore) Open(_ context.Context) (notification.Repository, error) {
	return &NotificationRepo{client: s.client, tableName: s.tableName}, nil
}

// NotificationRepo provides typed DynamoDB operations for the notifications table.
// It accumulates consumed capacity until Close.
type NotificationRepo struct {
	client    API
	tableName string
	capacity  float64
	calls     int
	closed    bool
}

func (r *NotificationRepo) Scan(ctx context.Context, f notification.Filter) ([]domain.NotificationRecord, error) {
	filter, names, values := containsFilter("type", f.TypeContains)
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          filter,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnConsumedCapacity:    types.ReturnConsumedCapacityTotal,
	})

	var records []domain.NotificationRecord
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan notifications: %w", err)
		}
		r.track(out.ConsumedCapacity)
		var page []domain.NotificationRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal notifications: %w", err)
		}
		records = append(records, page...)
	}
	return records, nil
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.NotificationRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:              aws.String(r.tableName),
		Key:                    strKey("notification_id", notificationID),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, err
	}
	r.track(out.ConsumedCapacity)
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	var rec domain.NotificationRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *NotificationRepo) GetByType(ctx context.Context, notificationType string) (*domain.NotificationRecord, error) {
	in := eqQuery(r.tableName, typeIndex, "type", notificationType)
	in.Limit = aws.Int32(1)
	in.ReturnConsumedCapacity = types.ReturnConsumedCapacityTotal
	out, err := r.client.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	r.track(out.ConsumedCapacity)
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("notification type %s: %w", notificationType, domain.ErrNotFound)
	}
	var rec domain.NotificationRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *NotificationRepo) Put(ctx context.Context, rec *domain.NotificationRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	out, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:              aws.String(r.tableName),
		Item:                   item,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return err
	}
	r.track(out.ConsumedCapacity)
	return nil
}

func (r *NotificationRepo) Delete(ctx context.Context, notificationID string) error {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:              aws.String(r.tableName),
		Key:                    strKey("notification_id", notificationID),
		ConditionExpression:    aws.String("attribute_exists(notification_id)"),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	r.track(out.ConsumedCapacity)
	return nil
}

func (r *NotificationRepo) Close() error {
	if r.closed {
		return errClosed
	}
	r.closed = true
	slog.Debug("notification repository closed",
		"table", r.tableName,
		"calls", r.calls,
		"consumed_capacity", r.capacity,
	)
	return nil
}

func (r *NotificationRepo) track(cc *types.ConsumedCapacity) {
	r.calls++
	r.capacity += capacityUnits(cc)
}
