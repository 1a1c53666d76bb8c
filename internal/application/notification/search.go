package notification

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-notifications-nosql/internal/domain"
	"github.com/go-notifications-nosql/internal/pkg/validate"
)

type recordCompare func(a, b *domain.NotificationRecord) int

// sortFields maps lower-cased sort column names to record comparators.
var sortFields = map[string]recordCompare{
	"id": func(a, b *domain.NotificationRecord) int {
		return strings.Compare(a.NotificationID, b.NotificationID)
	},
	"type": func(a, b *domain.NotificationRecord) int {
		return strings.Compare(a.Type, b.Type)
	},
	"kind": func(a, b *domain.NotificationRecord) int {
		return strings.Compare(a.Kind, b.Kind)
	},
	"languagecode": func(a, b *domain.NotificationRecord) int {
		return strings.Compare(a.LanguageCode, b.LanguageCode)
	},
	"isactive": func(a, b *domain.NotificationRecord) int {
		return cmp.Compare(boolRank(a.IsActive), boolRank(b.IsActive))
	},
	"createdat": func(a, b *domain.NotificationRecord) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	"updatedat": func(a, b *domain.NotificationRecord) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	},
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Search returns one page of notifications matching criteria.
//
// The keyword is a case-sensitive substring match on Type only. TotalCount is
// taken over the filtered set before paging. Without SortInfos the results are
// ordered by Type ascending. A record whose Kind is not registered fails the
// whole search.
func (s *service) Search(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResult, error) {
	if err := validate.Struct(criteria); err != nil {
		return nil, err
	}
	sortInfos := criteria.SortInfos
	if len(sortInfos) == 0 {
		sortInfos = domain.DefaultSortInfos()
	}
	order, err := buildOrder(sortInfos)
	if err != nil {
		return nil, err
	}

	repo, err := s.repos.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open notification repository: %w: %w", domain.ErrRepository, err)
	}
	defer s.release(repo)

	records, err := repo.Scan(ctx, Filter{TypeContains: criteria.Keyword})
	if err != nil {
		return nil, fmt.Errorf("search notifications: %w: %w", domain.ErrRepository, err)
	}
	if criteria.Keyword != "" {
		records = slices.DeleteFunc(records, func(r domain.NotificationRecord) bool {
			return !strings.Contains(r.Type, criteria.Keyword)
		})
	}
	total := len(records)

	slices.SortStableFunc(records, func(a, b domain.NotificationRecord) int {
		return order(&a, &b)
	})

	paged := page(records, criteria.Skip, criteria.Take)
	results := make([]domain.Notification, 0, len(paged))
	for i := range paged {
		n, err := s.materialize(&paged[i])
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return &domain.SearchResult{Results: results, TotalCount: total}, nil
}

// buildOrder composes the sort entries into one lexicographic comparator.
func buildOrder(sortInfos []domain.SortInfo) (recordCompare, error) {
	keys := make([]recordCompare, 0, len(sortInfos))
	for _, si := range sortInfos {
		compare, ok := sortFields[strings.ToLower(si.SortColumn)]
		if !ok {
			return nil, fmt.Errorf("unknown sort column %q: %w", si.SortColumn, domain.ErrBadRequest)
		}
		if si.SortDirection.IsDescending() {
			asc := compare
			compare = func(a, b *domain.NotificationRecord) int { return asc(b, a) }
		}
		keys = append(keys, compare)
	}
	return func(a, b *domain.NotificationRecord) int {
		for _, k := range keys {
			if c := k(a, b); c != 0 {
				return c
			}
		}
		return 0
	}, nil
}

// page returns items[skip:skip+take], clamped to the slice bounds.
func page[T any](items []T, skip, take int) []T {
	if skip >= len(items) || take <= 0 {
		return nil
	}
	end := skip + take
	if end > len(items) || end < skip {
		end = len(items)
	}
	return items[skip:end]
}
