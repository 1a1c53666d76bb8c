package notification

import (
	"context"

	"github.com/go-notifications-nosql/internal/domain"
)

// Filter narrows a scan of persisted notifications. Stores may push it down
// and may over-approximate; the service re-checks every returned record.
type Filter struct {
	// TypeContains is a case-sensitive substring of the record Type.
	TypeContains string
}

// Repository is a single-operation handle on persisted notification records.
type Repository interface {
	Scan(ctx context.Context, f Filter) ([]domain.NotificationRecord, error)
	Get(ctx context.Context, notificationID string) (*domain.NotificationRecord, error)
	GetByType(ctx context.Context, notificationType string) (*domain.NotificationRecord, error)
	Put(ctx context.Context, r *domain.NotificationRecord) error
	Delete(ctx context.Context, notificationID string) error
	// Close releases the handle. It is called exactly once per Open.
	Close() error
}

// RepositoryFactory hands out an independent Repository per operation.
type RepositoryFactory interface {
	Open(ctx context.Context) (Repository, error)
}
