package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-notifications-nosql/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// NotificationView is the wire form of a notification.
type NotificationView struct {
	*domain.NotificationRecord
	Channel domain.Channel `json:"channel"`
}

// SearchEnvelope wraps search responses.
type SearchEnvelope struct {
	TotalCount int                `json:"total_count"`
	Data       []NotificationView `json:"data"`
}

// MessagesEnvelope wraps delivery-history responses.
type MessagesEnvelope struct {
	Data []domain.NotificationMessage `json:"data"`
}

func newNotificationView(n domain.Notification) NotificationView {
	return NotificationView{NotificationRecord: domain.NewNotificationRecord(n), Channel: n.Channel()}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}

// httpError maps a service error onto a status code.
func httpError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "err", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrTemplateNotFound), errors.Is(err, domain.ErrRendering):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrRegistryFrozen):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
