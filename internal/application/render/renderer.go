// Package render substitutes notification values into template patterns.
package render

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-notifications-nosql/internal/domain"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{"
	endTag   = "}"
)

// Renderer turns a notification and a template into rendered content.
type Renderer interface {
	Render(n domain.Notification, tpl domain.NotificationTemplate) (domain.RenderedContent, error)
}

// PlaceholderRenderer resolves {key} placeholders against the notification's
// parameters first, then its derived fields. A placeholder with no value is a
// *domain.RenderingError; nothing is ever rendered half-way.
type PlaceholderRenderer struct{}

func NewRenderer() *PlaceholderRenderer { return &PlaceholderRenderer{} }

func (PlaceholderRenderer) Render(n domain.Notification, tpl domain.NotificationTemplate) (domain.RenderedContent, error) {
	values := Values(n)
	subjectPattern, bodyPattern := tpl.Patterns()

	subject, err := Execute(subjectPattern, values)
	if err != nil {
		return domain.RenderedContent{}, err
	}
	body, err := Execute(bodyPattern, values)
	if err != nil {
		return domain.RenderedContent{}, err
	}
	return domain.RenderedContent{Subject: subject, Body: body}, nil
}

// placeholderKey matches the keys a template may reference.
var placeholderKey = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Execute renders a single pattern. Whitespace inside the braces is ignored.
// Only identifier-shaped spans such as {name} or {order.total} are
// placeholders; any other braced text, e.g. a CSS rule, is copied verbatim.
func Execute(pattern string, values map[string]string) (string, error) {
	if !strings.Contains(pattern, startTag) {
		return pattern, nil
	}
	out, err := fasttemplate.ExecuteFuncStringWithErr(pattern, startTag, endTag, func(w io.Writer, tag string) (int, error) {
		// fasttemplate pairs the first '{' with the next '}'; inside a CSS
		// block only the innermost span can be a placeholder.
		var literal string
		if i := strings.LastIndex(tag, startTag); i >= 0 {
			literal, tag = startTag+tag[:i], tag[i+1:]
		}
		key := strings.TrimSpace(tag)
		if !placeholderKey.MatchString(key) {
			return io.WriteString(w, literal+startTag+tag+endTag)
		}
		v, ok := values[key]
		if !ok {
			return 0, &domain.RenderingError{Key: key}
		}
		return io.WriteString(w, literal+v)
	})
	if err != nil {
		var re *domain.RenderingError
		if errors.As(err, &re) {
			return "", re
		}
		return "", fmt.Errorf("%w: %w", domain.ErrRendering, err)
	}
	return out, nil
}

// Values collects everything a template may reference. Caller-supplied
// parameters win over derived fields of the same name.
func Values(n domain.Notification) map[string]string {
	b := n.Base()
	values := map[string]string{
		"id":              b.ID,
		"type":            b.Type,
		"language":        b.LanguageCode,
		"recipient_name":  b.Recipient.Name,
		"recipient_email": b.Recipient.Email,
		"recipient_phone": b.Recipient.Phone,
	}
	if fp, ok := n.(domain.FieldProvider); ok {
		for k, v := range fp.Fields() {
			values[k] = v
		}
	}
	for k, v := range b.Parameters {
		values[k] = v
	}
	return values
}
