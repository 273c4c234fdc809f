package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/survey-share/internal/api/http/handlers"
	"github.com/spec-kit/survey-share/internal/auth"
	"github.com/spec-kit/survey-share/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Share          *handlers.ShareHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	share := app.Group("/api/share")

	// Static paths first so they are not captured by :surveyId.
	share.Post("/mark-used", cfg.Share.MarkUsed)
	share.Get("/survey", cfg.Share.SurveyByToken)
	share.Get("/resource", cfg.Share.SurveyByToken)

	share.Post("/:surveyId/validate", cfg.Share.Validate)
	share.Post("/:surveyId", cfg.AuthMiddleware.Handle, auth.RequireIssuer(), cfg.Share.Share)
}
