package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/connect-campus/peer-session-service/internal/api/http/handlers"
	"github.com/connect-campus/peer-session-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Requests       *handlers.RequestsHandler
	Users          *handlers.UsersHandler
	Focus          *handlers.FocusHandler
	Rooms          *handlers.RoomsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	api.Get("/requests", cfg.Requests.ListRequests)
	api.Post("/requests", cfg.Requests.CreateRequest)
	api.Get("/requests/:id", cfg.Requests.GetRequest)
	api.Put("/requests/:id/accept", cfg.Requests.AcceptRequest)
	api.Put("/requests/:id/complete", cfg.Requests.CompleteRequest)
	api.Post("/requests/:id/settle", cfg.Requests.SettleRequest)
	api.Delete("/requests", auth.RequireAdmin(), cfg.Requests.ResetRequests)

	api.Get("/users", cfg.Users.ListUsers)
	api.Get("/users/:id", cfg.Users.GetUser)

	api.Get("/sessions", cfg.Focus.ListSessions)
	api.Post("/sessions", cfg.Focus.CreateSession)
	api.Delete("/sessions", auth.RequireAdmin(), cfg.Focus.ResetSessions)

	ws := app.Group("/ws", cfg.AuthMiddleware.Handle)
	ws.Get("/rooms/:roomID", cfg.Rooms.Upgrade, cfg.Rooms.Serve())
}
