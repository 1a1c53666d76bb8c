package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-notifications-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

// memoryRepo is an in-memory Repository that tracks Open/Close pairing.
type memoryRepo struct {
	records []domain.NotificationRecord
	opened  int
	closed  int
}

func (m *memoryRepo) Open(context.Context) (Repository, error) {
	m.opened++
	return &memoryHandle{store: m}, nil
}

type memoryHandle struct{ store *memoryRepo }

func (h *memoryHandle) Scan(_ context.Context, f Filter) ([]domain.NotificationRecord, error) {
	var out []domain.NotificationRecord
	for _, r := range h.store.records {
		if strings.Contains(r.Type, f.TypeContains) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (h *memoryHandle) Get(_ context.Context, notificationID string) (*domain.NotificationRecord, error) {
	for i := range h.store.records {
		if h.store.records[i].NotificationID == notificationID {
			rec := h.store.records[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (h *memoryHandle) GetByType(_ context.Context, notificationType string) (*domain.NotificationRecord, error) {
	for i := range h.store.records {
		if h.store.records[i].Type == notificationType {
			rec := h.store.records[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (h *memoryHandle) Put(_ context.Context, r *domain.NotificationRecord) error {
	for i := range h.store.records {
		if h.store.records[i].NotificationID == r.NotificationID {
			h.store.records[i] = *r
			return nil
		}
	}
	h.store.records = append(h.store.records, *r)
	return nil
}

func (h *memoryHandle) Delete(_ context.Context, notificationID string) error {
	for i := range h.store.records {
		if h.store.records[i].NotificationID == notificationID {
			h.store.records = append(h.store.records[:i], h.store.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (h *memoryHandle) Close() error {
	h.store.closed++
	return nil
}

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Scan(ctx context.Context, f Filter) ([]domain.NotificationRecord, error) {
	args := m.Called(ctx, f)
	recs, _ := args.Get(0).([]domain.NotificationRecord)
	return recs, args.Error(1)
}
func (m *mockRepo) Get(ctx context.Context, notificationID string) (*domain.NotificationRecord, error) {
	args := m.Called(ctx, notificationID)
	if r, _ := args.Get(0).(*domain.NotificationRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRepo) GetByType(ctx context.Context, notificationType string) (*domain.NotificationRecord, error) {
	args := m.Called(ctx, notificationType)
	if r, _ := args.Get(0).(*domain.NotificationRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRepo) Put(ctx context.Context, r *domain.NotificationRecord) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) Delete(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}
func (m *mockRepo) Close() error { return m.Called().Error(0) }

type staticFactory struct {
	repo Repository
	err  error
}

func (f staticFactory) Open(context.Context) (Repository, error) { return f.repo, f.err }

// --- helpers ---

func newRegistrar(t *testing.T) *Registrar {
	t.Helper()
	r := NewRegistrar()
	require.NoError(t, RegisterPlatformNotifications(r))
	r.Freeze()
	return r
}

func record(id, typ, kind string) domain.NotificationRecord {
	return domain.NotificationRecord{
		NotificationID: id,
		Type:           typ,
		Kind:           kind,
		IsActive:       true,
		Parameters:     map[string]string{"id": id},
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func types(res *domain.SearchResult) []string {
	out := make([]string, 0, len(res.Results))
	for _, n := range res.Results {
		out = append(out, n.Base().Type)
	}
	return out
}

func seeded() *memoryRepo {
	return &memoryRepo{records: []domain.NotificationRecord{
		record("3", "Registration", domain.KindEmail),
		record("1", "OrderPaid", domain.KindEmail),
		record("2", "OrderCreated", domain.KindEmail),
	}}
}

// --- tests ---

func TestSearch_KeywordDefaultSortAndPaging(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, newRegistrar(t))

	res, err := svc.Search(context.Background(), domain.SearchCriteria{Keyword: "Order", Skip: 0, Take: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, []string{"OrderCreated", "OrderPaid"}, types(res))
	assert.Equal(t, 1, repo.opened)
	assert.Equal(t, 1, repo.closed)
}

func TestSearch_EmptySortInfos_OrdersByTypeAscending(t *testing.T) {
	svc := NewService(seeded(), newRegistrar(t))

	res, err := svc.Search(context.Background(), domain.SearchCriteria{Take: 10})

	require.NoError(t, err)
	assert.Equal(t, []string{"OrderCreated", "OrderPaid", "Registration"}, types(res))
}

func TestSearch_KeywordIsCaseSensitiveSubstring(t *testing.T) {
	svc := NewService(seeded(), newRegistrar(t))

	res, err := svc.Search(context.Background(), domain.SearchCriteria{Keyword: "Paid", Take: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"OrderPaid"}, types(res))

	res, err = svc.Search(context.Background(), domain.SearchCriteria{Keyword: "order", Take: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalCount)
	assert.Empty(t, res.Results)
}

func TestSearch_TotalCountInvariantUnderPaging(t *testing.T) {
	svc := NewService(seeded(), newRegistrar(t))
	full, err := svc.Search(context.Background(), domain.SearchCriteria{Take: 100})
	require.NoError(t, err)

	for skip := 0; skip <= 4; skip++ {
		for take := 0; take <= 4; take++ {
			res, err := svc.Search(context.Background(), domain.SearchCriteria{Skip: skip, Take: take})
			require.NoError(t, err)
			assert.Equal(t, 3, res.TotalCount)

			lo, hi := min(skip, 3), min(skip+take, 3)
			want := types(&domain.SearchResult{Results: full.Results[lo:hi]})
			assert.Equal(t, want, types(res), "skip=%d take=%d", skip, take)
		}
	}
}

func TestSearch_SkipBeyondSet_ReturnsEmpty(t *testing.T) {
	svc := NewService(seeded(), newRegistrar(t))

	res, err := svc.Search(context.Background(), domain.SearchCriteria{Skip: 10, Take: 5})

	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestSearch_MultiKeySort(t *testing.T) {
	repo := &memoryRepo{records: []domain.NotificationRecord{
		record("a", "Invoice", domain.KindEmail),
		record("b", "Invoice", domain.KindSMS),
		record("c", "Alert", domain.KindSMS),
		record("d", "Alert", domain.KindEmail),
	}}
	svc := NewService(repo, newRegistrar(t))

	res, err := svc.Search(context.Background(), domain.SearchCriteria{
		Take: 10,
		SortInfos: []domain.SortInfo{
			{SortColumn: "kind", SortDirection: domain.SortDescending},
			{SortColumn: "Type", SortDirection: domain.SortAscending},
		},
	})

	require.NoError(t, err)
	var ids []string
	for _, n := range res.Results {
		ids = append(ids, n.Base().ID)
	}
	assert.Equal(t, []string{"c", "b", "d", "a"}, ids)
}

func TestSearch_UnknownSortColumn(t *testing.T) {
	svc := NewService(seeded(), newRegistrar(t))

	_, err := svc.Search(context.Background(), domain.SearchCriteria{
		Take:      10,
		SortInfos: []domain.SortInfo{{SortColumn: "Recipient"}},
	})

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSearch_NegativeSkip_Rejected(t *testing.T) {
	svc := NewService(seeded(), newRegistrar(t))

	_, err := svc.Search(context.Background(), domain.SearchCriteria{Skip: -1, Take: 10})

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSearch_RoundTrip_EmailKind(t *testing.T) {
	rec := record("42", "OrderCreated", domain.KindEmail)
	rec.Parameters = map[string]string{"order": "CO-1"}
	rec.Sender = "shop@example.com"
	svc := NewService(&memoryRepo{records: []domain.NotificationRecord{rec}}, newRegistrar(t))

	res, err := svc.Search(context.Background(), domain.SearchCriteria{Take: 1})

	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	email, ok := res.Results[0].(*domain.EmailNotification)
	require.True(t, ok)
	assert.Equal(t, "OrderCreated", email.Type)
	assert.Equal(t, map[string]string{"order": "CO-1"}, email.Parameters)
	assert.Equal(t, "shop@example.com", email.From)
}

func TestSearch_ConcreteKindResolvesToConcreteType(t *testing.T) {
	rec := record("7", "TwoFactorSMSNotification", "TwoFactorSMSNotification")
	svc := NewService(&memoryRepo{records: []domain.NotificationRecord{rec}}, newRegistrar(t))

	res, err := svc.Search(context.Background(), domain.SearchCriteria{Take: 1})

	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.IsType(t, &domain.TwoFactorSMSNotification{}, res.Results[0])
	assert.Equal(t, domain.ChannelSMS, res.Results[0].Channel())
}

func TestSearch_UnknownKind_FailsWholeSearch(t *testing.T) {
	repo := seeded()
	repo.records = append(repo.records, record("9", "Fax", "Fax"))
	svc := NewService(repo, newRegistrar(t))

	_, err := svc.Search(context.Background(), domain.SearchCriteria{Take: 10})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownVariant))
	assert.True(t, errors.Is(err, domain.ErrDataIntegrity))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 1, repo.closed)
}

func TestSearch_RepositoryFailure_ClosesHandle(t *testing.T) {
	repo := &mockRepo{}
	boom := errors.New("connection reset")
	repo.On("Scan", mock.Anything, Filter{}).Return(nil, boom)
	repo.On("Close").Return(nil)
	svc := NewService(staticFactory{repo: repo}, newRegistrar(t))

	_, err := svc.Search(context.Background(), domain.SearchCriteria{Take: 10})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRepository))
	assert.True(t, errors.Is(err, boom))
	repo.AssertCalled(t, "Close")
}

func TestSearch_OpenFailure(t *testing.T) {
	svc := NewService(staticFactory{err: errors.New("no credentials")}, newRegistrar(t))

	_, err := svc.Search(context.Background(), domain.SearchCriteria{Take: 10})

	assert.True(t, errors.Is(err, domain.ErrRepository))
}

func TestPage(t *testing.T) {
	items := []int{0, 1, 2, 3}
	assert.Equal(t, []int{1, 2}, page(items, 1, 2))
	assert.Equal(t, []int{3}, page(items, 3, 5))
	assert.Empty(t, page(items, 4, 1))
	assert.Empty(t, page(items, 0, 0))
}
