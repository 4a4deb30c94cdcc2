package apiapp

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/config"
	authsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/auth"
	ratesvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/rate"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	TrackerService *tracker.Service
	Sessions       *session.Manager
	RateLimiter    *ratesvc.Limiter
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	location, err := time.LoadLocation(deps.Config.Metering.DefaultTimezone)
	if err != nil {
		location = time.UTC
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Sessions)
	healthHandler := handlers.NewHealthHandler()
	attemptHandler := handlers.NewAttemptHandler(deps.TrackerService, deps.Sessions, deps.RateLimiter)
	quotaHandler := handlers.NewQuotaHandler(deps.TrackerService, deps.Sessions, location)
	pointsHandler := handlers.NewPointsHandler(deps.TrackerService, deps.Sessions)
	reconcileHandler := handlers.NewReconcileHandler(deps.TrackerService, deps.Sessions)
	purchaseHandler := handlers.NewPurchaseHandler(deps.TrackerService, deps.Sessions)
	adminHandler := handlers.NewAdminHandler(deps.TrackerService, deps.Sessions)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminRoleMW := RequireRole("admin", "moderator")

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/telegram", authHandler.Telegram)
		r.With(authMW).Post("/logout", authHandler.Logout)
	})

	r.Route("/v1/metering", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/attempt", attemptHandler.Handle)
		r.Get("/quota", quotaHandler.Handle)
		r.Get("/points", pointsHandler.Handle)
		r.Post("/reconcile", reconcileHandler.Handle)
	})

	r.Route("/v1/purchases", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/tariff", purchaseHandler.Tariff)
		r.Post("/points", purchaseHandler.Points)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.With(authMW, adminRoleMW).Post("/users/{id}/usage/reset", adminHandler.ResetUsage)
	})
}
