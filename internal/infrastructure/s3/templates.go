package s3infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-notifications-nosql/internal/domain"
)

// API is the subset of the S3 client the template store uses.
type API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TemplateStore reads notification templates kept as JSON objects under
// <prefix><notification_type>/<template_id>.json.
type TemplateStore struct {
	client API
	bucket string
	prefix string
}

func NewTemplateStore(client API, bucket, prefix string) *TemplateStore {
	return &TemplateStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *TemplateStore) ListByNotificationType(ctx context.Context, notificationType string) ([]domain.TemplateRecord, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.dir(notificationType)),
	})

	var records []domain.TemplateRecord
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list templates: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			rec, err := s.read(ctx, key)
			if err != nil {
				return nil, err
			}
			records = append(records, *rec)
		}
	}
	return records, nil
}

// Put uploads rec as JSON under its notification type.
func (s *TemplateStore) Put(ctx context.Context, rec *domain.TemplateRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(rec)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

func (s *TemplateStore) read(ctx context.Context, key string) (*domain.TemplateRecord, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object %s: %w", key, err)
	}
	defer out.Body.Close()

	var rec domain.TemplateRecord
	if err := json.NewDecoder(out.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", key, err)
	}
	return &rec, nil
}

func (s *TemplateStore) dir(notificationType string) string {
	return s.prefix + notificationType + "/"
}

func (s *TemplateStore) key(rec *domain.TemplateRecord) string {
	return path.Join(s.dir(rec.NotificationType), rec.TemplateID+".json")
}
