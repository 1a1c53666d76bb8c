package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-notifications-nosql/internal/application/message"
	"github.com/go-notifications-nosql/internal/application/notification"
	"github.com/go-notifications-nosql/internal/domain"
	"github.com/go-notifications-nosql/internal/registry"
)

// Catalog exposes the registered notification kinds.
type Catalog interface {
	Catalog() []notification.CatalogEntry
	Notifications() *registry.Registry[domain.Notification]
}

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	notifications notification.Service
	messages      message.Service
	catalog       Catalog
}

func NewNotificationHandler(notifications notification.Service, messages message.Service, catalog Catalog) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, messages: messages, catalog: catalog}
}

// Search pages through notifications. A body without take gets
// domain.DefaultPageSize rows.
func (h *NotificationHandler) Search(w http.ResponseWriter, r *http.Request) {
	criteria := domain.NewSearchCriteria()
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.notifications.Search(r.Context(), criteria)
	if err != nil {
		httpError(w, err)
		return
	}
	env := SearchEnvelope{TotalCount: res.TotalCount, Data: make([]NotificationView, 0, len(res.Results))}
	for _, n := range res.Results {
		env.Data = append(env.Data, newNotificationView(n))
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *NotificationHandler) Types(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Catalog())
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newNotificationView(n))
}

func (h *NotificationHandler) GetByType(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.GetByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newNotificationView(n))
}

// Save creates or replaces a notification. The body's kind selects the
// variant; when absent the type name is used.
func (h *NotificationHandler) Save(w http.ResponseWriter, r *http.Request) {
	var rec domain.NotificationRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tag := rec.Kind
	if tag == "" {
		tag = rec.Type
	}
	blank, err := h.catalog.Notifications().Resolve(tag)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := rec.ToModel(blank)
	if err := h.notifications.Save(r.Context(), n); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newNotificationView(n))
}

// SaveTemplate creates or replaces a notification template.
func (h *NotificationHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var rec domain.TemplateRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.messages.SaveTemplate(r.Context(), &rec); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "deleted"})
}

// Send dispatches a stored notification. A delivery failure is reported in
// the returned message, not as an error status.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	msg, err := h.messages.SendByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *NotificationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessagesEnvelope{Data: msgs})
}
