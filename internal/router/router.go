package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/lwittmann/schulungen/internal/handler"    // import the handlers that implement business logic
	"github.com/lwittmann/schulungen/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access issues a new
	// access token without rotating.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: a refresh token in the
	// body terminates one session, a bearer token alone terminates all.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("STAFF", "CUSTOMER"))
	auth.GET("/me", a.Me)

	// Alias so clients can call either /v1/auth/logout or /v1/logout.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints: the course
// catalog, scheduled executions with their appointments, and the
// aggregate stats.  The optional cache middleware is applied to all of
// them; pass nil to disable caching.
func RegisterPublic(e *echo.Echo, t *handler.TemplateHandler, x *handler.ExecutionHandler, s *handler.StatsHandler, cache echo.MiddlewareFunc) {
	g := e.Group("")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/v1/courses", t.List)
	g.GET("/v1/courses/:id", t.Get)
	g.GET("/v1/executions", x.List)
	g.GET("/v1/executions/:id", x.Get)
	g.GET("/v1/executions/:id/appointments", x.ListAppointments)
	g.GET("/v1/stats", s.Get)
}
