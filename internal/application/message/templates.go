package message

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-notifications-nosql/internal/domain"
	"github.com/go-notifications-nosql/internal/pkg/id"
)

// TemplateRepository holds administratively configured templates.
type TemplateRepository interface {
	ListByNotificationType(ctx context.Context, notificationType string) ([]domain.TemplateRecord, error)
	Put(ctx context.Context, rec *domain.TemplateRecord) error
}

// SaveTemplate upserts rec. Its kind must name a registered template variant.
func (s *service) SaveTemplate(ctx context.Context, rec *domain.TemplateRecord) error {
	if rec.NotificationType == "" {
		return fmt.Errorf("template notification type is required: %w", domain.ErrBadRequest)
	}
	if _, err := s.templateTypes.Resolve(rec.Kind); err != nil {
		return fmt.Errorf("template kind %q is not registered: %w", rec.Kind, domain.ErrBadRequest)
	}
	now := s.now()
	if rec.TemplateID == "" {
		rec.TemplateID = id.NewAt(now)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := s.templates.Put(ctx, rec); err != nil {
		return fmt.Errorf("save template %s: %w: %w", rec.TemplateID, domain.ErrRepository, err)
	}
	return nil
}

// resolveTemplate picks the template for n's type and channel. Languages are
// tried in order: the notification's own, the default, then language-neutral.
func (s *service) resolveTemplate(ctx context.Context, n domain.Notification) (domain.NotificationTemplate, error) {
	b := n.Base()
	records, err := s.templates.ListByNotificationType(ctx, b.Type)
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w: %w", b.Type, domain.ErrRepository, err)
	}

	candidates := make([]domain.NotificationTemplate, 0, len(records))
	for i := range records {
		tpl, err := s.templateTypes.Resolve(records[i].Kind)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w: %w", records[i].TemplateID, domain.ErrDataIntegrity, err)
		}
		tpl = records[i].ToModel(tpl)
		if tpl.Channel() == n.Channel() {
			candidates = append(candidates, tpl)
		}
	}

	for _, lang := range languageChain(b.LanguageCode, s.defaultLanguage) {
		for _, tpl := range candidates {
			if strings.EqualFold(tpl.Meta().LanguageCode, lang) {
				return tpl, nil
			}
		}
	}
	return nil, fmt.Errorf("%s via %s (language %q): %w", b.Type, n.Channel(), b.LanguageCode, domain.ErrTemplateNotFound)
}

func languageChain(lang, def string) []string {
	chain := make([]string, 0, 3)
	for _, l := range []string{lang, def} {
		if l != "" && !slices.ContainsFunc(chain, func(c string) bool { return strings.EqualFold(c, l) }) {
			chain = append(chain, l)
		}
	}
	return append(chain, "")
}
