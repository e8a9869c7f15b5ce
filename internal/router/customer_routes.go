package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lwittmann/schulungen/internal/handler"
	"github.com/lwittmann/schulungen/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.
// Customers book seats on executions, cancel their bookings and list
// what they have booked.  The optional limiter middleware (token
// bucket over Redis) is applied to the booking endpoint; pass nil to
// disable rate limiting.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	if limiter != nil {
		g.POST("/executions/:id/bookings", b.Book, limiter)
	} else {
		g.POST("/executions/:id/bookings", b.Book)
	}
	g.GET("/my-bookings", b.ListMine)

	// Cancellation is shared: customers cancel their own bookings, staff
	// may cancel any.  Ownership is checked in the handler.
	shared := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STAFF", "CUSTOMER"),
	)
	shared.DELETE("/bookings/:id", b.Cancel)
}
