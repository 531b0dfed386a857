package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civiceye/internal/api/http/handlers"
	"github.com/spec-kit/civiceye/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Departments    *handlers.DepartmentsHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware

	// ProtectDepartmentRegistry gates department mutations behind an
	// authority session. The registry is open when unset.
	ProtectDepartmentRegistry bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/signin", cfg.Auth.Signin)
	authGroup.Post("/signout", cfg.Auth.Signout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	api.Post("/authority/signin", cfg.Auth.AuthoritySignin)

	departments := api.Group("/departments")
	departments.Get("/", cfg.Departments.List)
	if cfg.ProtectDepartmentRegistry {
		departments.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAuthority(), cfg.Departments.Create)
		departments.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuthority(), cfg.Departments.Delete)
	} else {
		departments.Post("/", cfg.Departments.Create)
		departments.Delete("/:id", cfg.Departments.Delete)
	}

	complaints := api.Group("/complaints")
	complaints.Post("/", cfg.AuthMiddleware.Handle, auth.RequireUser(), cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/latest", cfg.Complaints.Latest)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Get("/:id/updates", cfg.Complaints.Updates)
	complaints.Put("/:id/status", cfg.AuthMiddleware.Handle, auth.RequireAuthority(), cfg.Complaints.UpdateStatus)

	api.Get("/stats", cfg.Stats.Stats)
}
