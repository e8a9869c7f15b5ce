package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
	"github.com/lwittmann/schulungen/internal/service"
)

// ExecutionHandler exposes scheduling and lifecycle management of
// executions.  Scheduling and status transitions are STAFF-only;
// listing and detail views are open so customers can browse upcoming
// runs before booking.
type ExecutionHandler struct {
	Scheduler    *service.Scheduler
	Executions   *repository.ExecutionRepo
	Appointments *repository.AppointmentRepo
	Templates    *repository.TemplateRepo
	Bookings     *repository.BookingRepo
}

func NewExecutionHandler(sched *service.Scheduler, e *repository.ExecutionRepo, a *repository.AppointmentRepo, t *repository.TemplateRepo, b *repository.BookingRepo) *ExecutionHandler {
	if sched == nil || e == nil || a == nil || t == nil || b == nil {
		panic("nil dependency passed to NewExecutionHandler")
	}
	return &ExecutionHandler{Scheduler: sched, Executions: e, Appointments: a, Templates: t, Bookings: b}
}

// ----- DTOs -----

type scheduleReq struct {
	TemplateID              uint64   `json:"template_id"`
	StartDate               string   `json:"start_date"` // YYYY-MM-DD
	Weekdays                []string `json:"weekdays"`   // e.g. ["TUE","THU"]
	StartTime               string   `json:"start_time"` // HH:MM
	DurationOverrideMinutes *int     `json:"duration_override_minutes"`
	MeetingLink             string   `json:"meeting_link"`
}

type appointmentResp struct {
	ID       uint64 `json:"id,omitempty"`
	TopicID  uint64 `json:"topic_id"`
	Sequence int    `json:"sequence"`
	Date     string `json:"date"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
}

type executionResp struct {
	ID                      uint64   `json:"id"`
	TemplateID              uint64   `json:"template_id"`
	StartDate               string   `json:"start_date"`
	Weekdays                []string `json:"weekdays"`
	StartTime               string   `json:"start_time"`
	DurationOverrideMinutes *int     `json:"duration_override_minutes,omitempty"`
	MeetingLink             string   `json:"meeting_link,omitempty"`
	Status                  string   `json:"status"`
	FreeSeats               *int     `json:"free_seats,omitempty"`
}

func weekdayNames(days []time.Weekday) []string {
	formatted := model.FormatWeekdays(days)
	if formatted == "" {
		return []string{}
	}
	return strings.Split(formatted, ",")
}

func executionToResp(e *model.Execution) executionResp {
	return executionResp{
		ID:                      e.ID,
		TemplateID:              e.TemplateID,
		StartDate:               e.StartDate.Format(dateLayout),
		Weekdays:                weekdayNames(e.Weekdays),
		StartTime:               e.StartTime,
		DurationOverrideMinutes: e.DurationOverrideMinutes,
		MeetingLink:             e.MeetingLink,
		Status:                  string(e.Status),
	}
}

func appointmentToResp(a model.Appointment) appointmentResp {
	return appointmentResp{
		ID:       a.ID,
		TopicID:  a.TopicID,
		Sequence: a.Sequence,
		Date:     a.Date.Format(dateLayout),
		StartsAt: a.StartsAt.Format(time.RFC3339),
		EndsAt:   a.EndsAt.Format(time.RFC3339),
	}
}

func appointmentsToResp(appts []model.Appointment) []appointmentResp {
	out := make([]appointmentResp, 0, len(appts))
	for _, a := range appts {
		out = append(out, appointmentToResp(a))
	}
	return out
}

// Schedule handles POST /v1/executions.  It creates a GEPLANT
// execution for an active template and generates its appointments in
// the same transaction.
func (h *ExecutionHandler) Schedule(c echo.Context) error {
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TemplateID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "template_id is required"})
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	weekdays, err := model.ParseWeekdays(strings.Join(req.Weekdays, ","))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekdays"})
	}

	exec, appts, err := h.Scheduler.Schedule(c.Request().Context(), service.ScheduleInput{
		TemplateID:              req.TemplateID,
		StartDate:               startDate,
		Weekdays:                weekdays,
		StartTime:               strings.TrimSpace(req.StartTime),
		DurationOverrideMinutes: req.DurationOverrideMinutes,
		MeetingLink:             strings.TrimSpace(req.MeetingLink),
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"execution":    executionToResp(exec),
		"appointments": appointmentsToResp(appts),
	})
}

// List handles GET /v1/executions.  Optional filters: ?template_id=N
// and ?status=GEPLANT.
func (h *ExecutionHandler) List(c echo.Context) error {
	var templateID uint64
	if s := c.QueryParam("template_id"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template_id"})
		}
		templateID = n
	}
	var status model.ExecutionStatus
	if s := c.QueryParam("status"); s != "" {
		status = model.ExecutionStatus(strings.ToUpper(s))
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
	}
	list, err := h.Executions.List(c.Request().Context(), templateID, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]executionResp, 0, len(list))
	for i := range list {
		out = append(out, executionToResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"executions": out})
}

// Get handles GET /v1/executions/:id.  The response includes the
// generated appointments and the remaining free seats.
func (h *ExecutionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid execution id"})
	}
	ctx := c.Request().Context()
	exec, err := h.Executions.GetByID(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	appts, err := h.Appointments.ListByExecution(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resp := executionToResp(exec)
	resp.FreeSeats = h.freeSeats(ctx, exec)
	return c.JSON(http.StatusOK, echo.Map{
		"execution":    resp,
		"appointments": appointmentsToResp(appts),
	})
}

// freeSeats computes the remaining capacity for the detail view.  The
// field is informational, so a failing lookup only omits it from the
// response, but the underlying error is logged rather than swallowed.
func (h *ExecutionHandler) freeSeats(ctx context.Context, exec *model.Execution) *int {
	tmpl, err := h.Templates.GetByID(ctx, exec.TemplateID)
	if err != nil {
		log.Printf("execution %d: free seats unavailable: %v", exec.ID, err)
		return nil
	}
	booked, err := h.Bookings.CountBookedForExecution(ctx, exec.ID)
	if err != nil {
		log.Printf("execution %d: free seats unavailable: %v", exec.ID, err)
		return nil
	}
	free := model.FreeSeats(tmpl.MaxSeats, booked)
	return &free
}

// ListAppointments handles GET /v1/executions/:id/appointments.
func (h *ExecutionHandler) ListAppointments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid execution id"})
	}
	if _, err := h.Executions.GetByID(c.Request().Context(), id); err != nil {
		return bookingError(c, err)
	}
	appts, err := h.Appointments.ListByExecution(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": appointmentsToResp(appts)})
}

// Preview handles GET /v1/executions/:id/appointments/preview.  It
// recomputes the appointment plan from the current template topics
// without persisting anything, so staff can inspect what a
// re-schedule would produce.
func (h *ExecutionHandler) Preview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid execution id"})
	}
	appts, err := h.Scheduler.PreviewAppointments(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": appointmentsToResp(appts)})
}

// Activate handles POST /v1/executions/:id/activate (GEPLANT → AKTIV).
func (h *ExecutionHandler) Activate(c echo.Context) error {
	return h.transition(c, model.ExecutionAktiv)
}

// Complete handles POST /v1/executions/:id/complete (AKTIV → ABGESCHLOSSEN).
func (h *ExecutionHandler) Complete(c echo.Context) error {
	return h.transition(c, model.ExecutionAbgeschlossen)
}

// CancelRun handles POST /v1/executions/:id/cancel (GEPLANT/AKTIV → ABGESAGT).
func (h *ExecutionHandler) CancelRun(c echo.Context) error {
	return h.transition(c, model.ExecutionAbgesagt)
}

func (h *ExecutionHandler) transition(c echo.Context, to model.ExecutionStatus) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid execution id"})
	}
	exec, err := h.Scheduler.Transition(c.Request().Context(), id, to)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, executionToResp(exec))
}
