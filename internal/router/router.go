package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/widya-labs/widya-go-api/internal/config"
	"github.com/widya-labs/widya-go-api/internal/handler"
	"github.com/widya-labs/widya-go-api/internal/middleware"
	"github.com/widya-labs/widya-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	CommentHandler    *handler.CommentHandler
	RankingHandler    *handler.RankingHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// The health route stays unthrottled; everything registered below shares
	// the per-user limiter. A zero max disables throttling.
	if cfg.RateLimitMax > 0 {
		api.Use(middleware.RateLimit("api", cfg.RateLimitMax, cfg.RateLimitWindow))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware, middleware.RequireOperation(middleware.OpAssignmentRead))
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware, middleware.RequireOperation(middleware.OpSubmissionRead))
		deps.SubmissionHandler.Register(submissions)

		if deps.CommentHandler != nil {
			deps.CommentHandler.Register(submissions)
		}
	}

	if deps.RankingHandler != nil {
		rankings := api.Group("/rankings", jwtMiddleware, middleware.RequireOperation(middleware.OpRankingRead))
		deps.RankingHandler.Register(rankings)
	}

	if deps.AnalyticsHandler != nil {
		analytics := api.Group("/analytics", jwtMiddleware, middleware.RequireOperation(middleware.OpAnalyticsStudent))
		deps.AnalyticsHandler.Register(analytics)
	}
}
