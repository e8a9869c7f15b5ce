package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lwittmann/schulungen/internal/repository"
	"github.com/lwittmann/schulungen/internal/service"
)

// StatsHandler serves the aggregate dashboard numbers and the audit
// log.  Stats are public (and a good fit for the response cache);
// the event log is staff-only.
type StatsHandler struct {
	Stats  *service.StatsService
	Events *repository.EventLogRepo
}

func NewStatsHandler(s *service.StatsService, e *repository.EventLogRepo) *StatsHandler {
	if s == nil || e == nil {
		panic("nil dependency passed to NewStatsHandler")
	}
	return &StatsHandler{Stats: s, Events: e}
}

// Get handles GET /v1/stats.
func (h *StatsHandler) Get(c echo.Context) error {
	st, err := h.Stats.Collect(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, st)
}

type eventResp struct {
	ID        uint64 `json:"id"`
	Category  string `json:"category"`
	Action    string `json:"action"`
	Message   string `json:"message"`
	EntityRef string `json:"entity_ref"`
	CreatedAt string `json:"created_at"`
}

// ListEvents handles GET /v1/events (staff).  ?limit caps the number
// of entries, newest first.
func (h *StatsHandler) ListEvents(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	entries, err := h.Events.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]eventResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, eventResp{
			ID:        e.ID,
			Category:  e.Category,
			Action:    e.Action,
			Message:   e.Message,
			EntityRef: e.EntityRef,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}
