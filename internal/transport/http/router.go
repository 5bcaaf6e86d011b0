package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-listing-notify/internal/config"
	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/transport/http/handler"
	appmiddleware "github.com/go-listing-notify/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. The returned limiter
// must be stopped on shutdown.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, *appmiddleware.RateLimiter) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on endpoints that trigger pushes.
	pushRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler(deps.Health)
	notifH := handler.NewNotificationHandler(deps.Notifications, deps.Devices, cfg.DefaultPageSize)
	deviceH := handler.NewDeviceHandler(deps.Devices)
	listingH := handler.NewListingHandler(deps.Submissions)
	adminH := handler.NewAdminHandler(deps.Submissions, deps.Notifications, cfg.AdminPageSize)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/list", notifH.List)
				r.Get("/unread-count", notifH.UnreadCount)
				r.Patch("/read-all", notifH.MarkAllRead)
				r.Patch("/{id}/read", notifH.MarkRead)
				r.Delete("/delete-all", notifH.DeleteAll)
				r.Delete("/{id}", notifH.Delete)
				r.Post("/register-token", notifH.RegisterToken)

				r.With(appmiddleware.RequireRole(domain.RoleAdmin), pushRL.Limit).Post("/send", adminH.Send)
			})

			r.Get("/devices", deviceH.List)
			r.Delete("/devices/{id}", deviceH.Delete)

			r.With(appmiddleware.RequireRole(domain.RoleService, domain.RoleAdmin), pushRL.Limit).
				Post("/listings/events", listingH.Submit)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))
				r.Get("/admin/recipients/{id}/notifications", adminH.ListForRecipient)
			})
		})
	})

	return r, pushRL
}
