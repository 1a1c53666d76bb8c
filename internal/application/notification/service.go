package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-notifications-nosql/internal/domain"
	"github.com/go-notifications-nosql/internal/pkg/id"
)

type Service interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResult, error)
	Get(ctx context.Context, notificationID string) (domain.Notification, error)
	// GetByType returns the persisted notification of the given type, or a
	// fresh instance of the registered kind when none is stored yet.
	GetByType(ctx context.Context, notificationType string) (domain.Notification, error)
	Save(ctx context.Context, n domain.Notification) error
	Delete(ctx context.Context, notificationID string) error
}

type service struct {
	repos     RepositoryFactory
	registrar *Registrar
}

func NewService(repos RepositoryFactory, registrar *Registrar) Service {
	return &service{repos: repos, registrar: registrar}
}

func (s *service) Get(ctx context.Context, notificationID string) (domain.Notification, error) {
	repo, err := s.repos.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open notification repository: %w: %w", domain.ErrRepository, err)
	}
	defer s.release(repo)

	rec, err := repo.Get(ctx, notificationID)
	if err != nil {
		return nil, repoError("get notification", err)
	}
	return s.materialize(rec)
}

func (s *service) GetByType(ctx context.Context, notificationType string) (domain.Notification, error) {
	repo, err := s.repos.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open notification repository: %w: %w", domain.ErrRepository, err)
	}
	defer s.release(repo)

	rec, err := repo.GetByType(ctx, notificationType)
	if err == nil {
		return s.materialize(rec)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, repoError("get notification by type", err)
	}
	return s.registrar.Create(notificationType)
}

func (s *service) Save(ctx context.Context, n domain.Notification) error {
	b := n.Base()
	if b.Kind == "" {
		kind, err := s.registrar.KindOf(n)
		if err != nil {
			return err
		}
		b.Kind = kind
	}
	if _, err := s.registrar.Notifications().Resolve(b.Kind); err != nil {
		return err
	}
	if b.Type == "" {
		b.Type = b.Kind
	}
	repo, err := s.repos.Open(ctx)
	if err != nil {
		return fmt.Errorf("open notification repository: %w: %w", domain.ErrRepository, err)
	}
	defer s.release(repo)

	// The creation time of a stored notification is never taken from the caller.
	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = id.New()
		b.CreatedAt = now
	} else {
		existing, err := repo.Get(ctx, b.ID)
		switch {
		case err == nil:
			b.CreatedAt = existing.CreatedAt
		case errors.Is(err, domain.ErrNotFound):
			if b.CreatedAt.IsZero() {
				b.CreatedAt = now
			}
		default:
			return repoError("load notification", err)
		}
	}
	b.UpdatedAt = now

	if err := repo.Put(ctx, domain.NewNotificationRecord(n)); err != nil {
		return repoError("save notification", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, notificationID string) error {
	repo, err := s.repos.Open(ctx)
	if err != nil {
		return fmt.Errorf("open notification repository: %w: %w", domain.ErrRepository, err)
	}
	defer s.release(repo)

	if err := repo.Delete(ctx, notificationID); err != nil {
		return repoError("delete notification", err)
	}
	return nil
}

// materialize reconstitutes the typed notification for rec via its Kind.
// A stored Kind the registry cannot resolve is a data-integrity failure, not
// a missing resource.
func (s *service) materialize(rec *domain.NotificationRecord) (domain.Notification, error) {
	n, err := s.registrar.Notifications().Resolve(rec.Kind)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w: %w", rec.NotificationID, domain.ErrDataIntegrity, err)
	}
	return rec.ToModel(n), nil
}

func (s *service) release(repo Repository) {
	if err := repo.Close(); err != nil {
		slog.Warn("failed to close notification repository", "err", err)
	}
}

// repoError keeps not-found distinguishable and marks everything else as a
// repository failure.
func repoError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRepository, err)
}
