package http

import (
	"github.com/go-notifications-nosql/internal/application/message"
	"github.com/go-notifications-nosql/internal/application/notification"
	"github.com/go-notifications-nosql/internal/transport/http/middleware"
)

// Deps holds the services the router exposes.
type Deps struct {
	Notifications notification.Service
	Messages      message.Service
	Registrar     *notification.Registrar
	// Verifier is optional; without it every route is public.
	Verifier middleware.TokenVerifier
}
