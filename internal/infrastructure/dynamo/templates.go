package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-notifications-nosql/internal/domain"
)

const notificationTypeIndex = "notification_type-index"

// TemplateRepo provides typed DynamoDB operations for the notification_templates table.
type TemplateRepo struct {
	client    API
	tableName string
}

func NewTemplateRepo(client API, tableName string) *TemplateRepo {
	return &TemplateRepo{client: client, tableName: tableName}
}

// ListByNotificationType returns every template configured for a notification type,
// across all channels and languages.
func (r *TemplateRepo) ListByNotificationType(ctx context.Context, notificationType string) ([]domain.TemplateRecord, error) {
	p := dynamodb.NewQueryPaginator(r.client, eqQuery(r.tableName, notificationTypeIndex, "notification_type", notificationType))
	var records []domain.TemplateRecord
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query templates: %w", err)
		}
		var page []domain.TemplateRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal templates: %w", err)
		}
		records = append(records, page...)
	}
	return records, nil
}

func (r *TemplateRepo) Put(ctx context.Context, rec *domain.TemplateRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
