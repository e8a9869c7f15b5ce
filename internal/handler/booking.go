package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
	"github.com/lwittmann/schulungen/internal/service"
)

// BookingHandler drives the booking ledger over HTTP.  Booking and
// cancellation are customer operations; promoting a waitlist entry and
// listing an execution's roster are staff operations.  All methods
// assume JWT authentication has run and that user_id/role are present
// in the context.
type BookingHandler struct {
	Ledger   *service.Ledger
	Bookings *repository.BookingRepo
}

func NewBookingHandler(l *service.Ledger, b *repository.BookingRepo) *BookingHandler {
	if l == nil || b == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: l, Bookings: b}
}

type bookReq struct {
	Notes string `json:"notes"`
}

type bookingResp struct {
	ID          uint64  `json:"id"`
	CustomerID  uint64  `json:"customer_id"`
	ExecutionID uint64  `json:"execution_id"`
	Status      string  `json:"status"`
	PriceCents  uint32  `json:"price_cents"`
	Notes       string  `json:"notes,omitempty"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func bookingToResp(b model.Booking) bookingResp {
	resp := bookingResp{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		ExecutionID: b.ExecutionID,
		Status:      string(b.Status),
		PriceCents:  b.PriceCents,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		s := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

// Book handles POST /v1/executions/:id/bookings.  A free seat yields a
// GEBUCHT booking; a full execution yields WARTELISTE.  The response
// reports which of the two happened.
func (h *BookingHandler) Book(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	executionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid execution id"})
	}
	var req bookReq
	_ = c.Bind(&req) // notes are optional; an empty body is fine

	out, err := h.Ledger.Book(c.Request().Context(), customerID, executionID, req.Notes)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking":    bookingToResp(out.Booking),
		"waitlisted": out.Waitlisted,
	})
}

// Cancel handles DELETE /v1/bookings/:id.  Customers may only cancel
// their own bookings; staff may cancel any.  Cancellation always
// succeeds on a live booking; within_deadline in the response reports
// whether it was still fee-free.  When a seat is freed the oldest
// waitlist entry is promoted in the same transaction and returned as
// promoted.
func (h *BookingHandler) Cancel(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	if getRole(c) != "STAFF" {
		b, err := h.Bookings.GetByID(c.Request().Context(), bookingID)
		if err != nil {
			return bookingError(c, err)
		}
		if b.CustomerID != customerID {
			return bookingError(c, repository.ErrForbidden)
		}
	}

	out, err := h.Ledger.Cancel(c.Request().Context(), bookingID)
	if err != nil {
		return bookingError(c, err)
	}
	resp := echo.Map{
		"booking":         bookingToResp(out.Booking),
		"within_deadline": out.WithinDeadline,
	}
	if out.Promoted != nil {
		resp["promoted"] = bookingToResp(*out.Promoted)
	}
	return c.JSON(http.StatusOK, resp)
}

// Promote handles POST /v1/bookings/:id/promote (staff).  It moves a
// WARTELISTE booking to GEBUCHT provided a seat is free.
func (h *BookingHandler) Promote(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	out, err := h.Ledger.Promote(c.Request().Context(), bookingID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": bookingToResp(out.Booking)})
}

// ListMine handles GET /v1/my-bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Bookings.ListByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// ListForExecution handles GET /v1/executions/:id/bookings (staff).
// Waitlist order is visible through created_at: entries are returned
// oldest first.
func (h *BookingHandler) ListForExecution(c echo.Context) error {
	executionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid execution id"})
	}
	list, err := h.Bookings.ListByExecution(c.Request().Context(), executionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}
