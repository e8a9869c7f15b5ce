package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/lwittmann/schulungen/internal/handler"    // staff handlers
	"github.com/lwittmann/schulungen/internal/middleware" // JWT + role middlewares
)

// RegisterStaff registers STAFF-scoped endpoints under /v1.
// All routes require a valid JWT and STAFF role.
func RegisterStaff(e *echo.Echo, t *handler.TemplateHandler, x *handler.ExecutionHandler, b *handler.BookingHandler, s *handler.StatsHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STAFF"),
	)

	// ---- Courses ----
	// NOTE: Listing and reading courses is handled by the public browse
	// API; staff routes cover mutations only.
	g.POST("/courses", t.Create)
	g.PUT("/courses/:id", t.Update)
	g.PATCH("/courses/:id", t.Update) // allow partial/semantic updates via PATCH as well
	g.PATCH("/courses/:id/active", t.SetActive)
	g.DELETE("/courses/:id", t.Delete)

	// ---- Executions ----
	g.POST("/executions", x.Schedule)
	g.POST("/executions/:id/activate", x.Activate)
	g.POST("/executions/:id/complete", x.Complete)
	g.POST("/executions/:id/cancel", x.CancelRun)
	g.GET("/executions/:id/appointments/preview", x.Preview)

	// ---- Bookings ----
	// Staff see the full roster of an execution (waitlist in FIFO
	// order) and can promote waitlist entries by hand.
	g.GET("/executions/:id/bookings", b.ListForExecution)
	g.POST("/bookings/:id/promote", b.Promote)

	// ---- Audit log ----
	g.GET("/events", s.ListEvents)
}
