package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Engine         *handlers.EngineHandler
	AuthMiddleware *auth.AuthMiddleware
	FetchLimiter   *FetchRateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	// the snapshot feed is the rate-limited surface; a limited poller
	// answers with 429 and Retry-After
	tickets.Get("/", cfg.FetchLimiter.Handle, cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id/status", auth.RequireStaff(), cfg.Tickets.ChangeStatus)
	tickets.Patch("/:id/assignee", auth.RequireStaff(), cfg.Tickets.Assign)
	tickets.Patch("/:id/queue", auth.RequireStaff(), cfg.Tickets.TransferQueue)
	tickets.Post("/:id/interactions", cfg.Tickets.AddInteraction)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Delete("/", cfg.Notifications.Clear)

	app.Get("/activity", cfg.AuthMiddleware.Handle, cfg.Notifications.Activity)

	engine := app.Group("/engine", cfg.AuthMiddleware.Handle)
	engine.Get("/status", cfg.Engine.Status)
	engine.Get("/transitions", auth.RequireStaff(), cfg.Engine.Transitions)
	engine.Patch("/interval", auth.RequireRole(domain.RoleAdmin), cfg.Engine.SetInterval)
	engine.Patch("/live", auth.RequireRole(domain.RoleAdmin), cfg.Engine.SetLive)
}
