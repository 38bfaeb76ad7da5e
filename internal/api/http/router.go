package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/internship-portal/internal/api/http/handlers"
	"github.com/spec-kit/internship-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Applications   *handlers.ApplicationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	authenticated := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/verify", authenticated, cfg.Auth.Verify)

	users := api.Group("/users", authenticated)
	users.Get("/profile", cfg.Users.Profile)
	users.Put("/update-profile", cfg.Users.UpdateProfile)
	users.Put("/:id/role", auth.RequireAdmin(), cfg.Users.SetRole)

	apps := api.Group("/applications", authenticated)
	apps.Post("/", auth.RequireStudent(), cfg.Applications.Create)
	apps.Get("/", auth.RequireAdmin(), cfg.Applications.List)
	apps.Get("/student/mine", auth.RequireStudent(), cfg.Applications.ListMine)
	apps.Get("/resume/:filename", cfg.Applications.Resume)
	apps.Get("/:id", cfg.Applications.Get)
	apps.Put("/:id/status", auth.RequireAdmin(), cfg.Applications.UpdateStatus)
	apps.Delete("/:id", auth.RequireStudent(), cfg.Applications.Delete)
}
