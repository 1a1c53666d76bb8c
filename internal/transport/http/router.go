package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notifications-nosql/internal/config"
	"github.com/go-notifications-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-notifications-nosql/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds background
// work such as rate-limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	passthrough := func(next http.Handler) http.Handler { return next }
	authMw, readers, admins := passthrough, passthrough, passthrough
	if deps.Verifier != nil {
		authMw = appmiddleware.Auth(deps.Verifier)
		readers = appmiddleware.RequireRole(appmiddleware.RoleAdmin, appmiddleware.RoleOperator)
		admins = appmiddleware.RequireRole(appmiddleware.RoleAdmin)
	}

	sendRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.SendRateLimit), cfg.SendRateBurst)

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(deps.Notifications, deps.Messages, deps.Registrar)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Group(func(r chi.Router) {
				r.Use(readers)

				r.Post("/notifications/search", notifH.Search)
				r.Get("/notifications/types", notifH.Types)
				r.Get("/notifications/types/{type}", notifH.GetByType)
				r.Get("/notifications/{id}", notifH.Get)
				r.Get("/notifications/{id}/messages", notifH.Messages)
				r.With(sendRL.Limit).Post("/notifications/{id}/send", notifH.Send)
			})

			r.Group(func(r chi.Router) {
				r.Use(admins)

				r.Put("/notifications", notifH.Save)
				r.Put("/notifications/templates", notifH.SaveTemplate)
				r.Delete("/notifications/{id}", notifH.Delete)
			})
		})
	})

	return r
}
