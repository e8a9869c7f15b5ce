package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
)

// TemplateHandler exposes staff CRUD for course templates and the
// public course catalog.  Write operations require the STAFF role
// (enforced by middleware); reads are open.
type TemplateHandler struct {
	Templates *repository.TemplateRepo
}

func NewTemplateHandler(t *repository.TemplateRepo) *TemplateHandler {
	if t == nil {
		panic("nil repository passed to NewTemplateHandler")
	}
	return &TemplateHandler{Templates: t}
}

const dateLayout = "2006-01-02"

// ----- DTOs -----

type topicReq struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
}

type templateReq struct {
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	PriceCents             uint32     `json:"price_cents"`
	PromoPriceCents        *uint32    `json:"promo_price_cents"`
	PromoFrom              *string    `json:"promo_from"`  // YYYY-MM-DD
	PromoUntil             *string    `json:"promo_until"` // YYYY-MM-DD
	MaxSeats               int        `json:"max_seats"`
	CancellationWindowDays int        `json:"cancellation_window_days"`
	IsActive               *bool      `json:"is_active"`
	Topics                 []topicReq `json:"topics"`
}

type topicResp struct {
	ID              uint64 `json:"id"`
	Position        int    `json:"position"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
}

type templateResp struct {
	ID                     uint64      `json:"id"`
	Title                  string      `json:"title"`
	Description            string      `json:"description,omitempty"`
	PriceCents             uint32      `json:"price_cents"`
	PromoPriceCents        *uint32     `json:"promo_price_cents,omitempty"`
	PromoFrom              *string     `json:"promo_from,omitempty"`
	PromoUntil             *string     `json:"promo_until,omitempty"`
	MaxSeats               int         `json:"max_seats"`
	CancellationWindowDays int         `json:"cancellation_window_days"`
	IsActive               bool        `json:"is_active"`
	TotalDurationMinutes   int         `json:"total_duration_minutes"`
	Topics                 []topicResp `json:"topics"`
}

func templateToResp(t *model.CourseTemplate) templateResp {
	resp := templateResp{
		ID:                     t.ID,
		Title:                  t.Title,
		Description:            t.Description,
		PriceCents:             t.PriceCents,
		PromoPriceCents:        t.PromoPriceCents,
		MaxSeats:               t.MaxSeats,
		CancellationWindowDays: t.CancellationWindowDays,
		IsActive:               t.IsActive,
		TotalDurationMinutes:   t.TotalDurationMinutes(),
		Topics:                 make([]topicResp, 0, len(t.Topics)),
	}
	if t.PromoFrom != nil {
		s := t.PromoFrom.Format(dateLayout)
		resp.PromoFrom = &s
	}
	if t.PromoUntil != nil {
		s := t.PromoUntil.Format(dateLayout)
		resp.PromoUntil = &s
	}
	for _, tp := range t.Topics {
		resp.Topics = append(resp.Topics, topicResp{
			ID:              tp.ID,
			Position:        tp.Position,
			Title:           tp.Title,
			DurationMinutes: tp.DurationMinutes,
		})
	}
	return resp
}

// templateFromReq validates the request body and builds a model.  The
// topic positions follow the array order of the request.
func templateFromReq(req templateReq) (*model.CourseTemplate, string) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, "title is required"
	}
	if req.MaxSeats < 1 {
		return nil, "max_seats must be at least 1"
	}
	if req.CancellationWindowDays < 0 {
		return nil, "cancellation_window_days must not be negative"
	}
	t := &model.CourseTemplate{
		Title:                  title,
		Description:            strings.TrimSpace(req.Description),
		PriceCents:             req.PriceCents,
		PromoPriceCents:        req.PromoPriceCents,
		MaxSeats:               req.MaxSeats,
		CancellationWindowDays: req.CancellationWindowDays,
		IsActive:               true,
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if req.PromoFrom != nil {
		d, err := time.Parse(dateLayout, *req.PromoFrom)
		if err != nil {
			return nil, "promo_from must be YYYY-MM-DD"
		}
		t.PromoFrom = &d
	}
	if req.PromoUntil != nil {
		d, err := time.Parse(dateLayout, *req.PromoUntil)
		if err != nil {
			return nil, "promo_until must be YYYY-MM-DD"
		}
		t.PromoUntil = &d
	}
	for i, tp := range req.Topics {
		topicTitle := strings.TrimSpace(tp.Title)
		if topicTitle == "" {
			return nil, "topic title is required"
		}
		if tp.DurationMinutes < 1 {
			return nil, "topic duration_minutes must be at least 1"
		}
		t.Topics = append(t.Topics, model.Topic{
			Position:        i,
			Title:           topicTitle,
			DurationMinutes: tp.DurationMinutes,
		})
	}
	return t, ""
}

// Create handles POST /v1/courses.
func (h *TemplateHandler) Create(c echo.Context) error {
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, msg := templateFromReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Templates.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create course failed"})
	}
	return c.JSON(http.StatusCreated, templateToResp(t))
}

// List handles GET /v1/courses.  Pass ?active=true to hide retired
// templates; the full catalog is returned by default.
func (h *TemplateHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	list, err := h.Templates.List(c.Request().Context(), activeOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]templateResp, 0, len(list))
	for i := range list {
		out = append(out, templateToResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"courses": out})
}

// Get handles GET /v1/courses/:id.
func (h *TemplateHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}
	t, err := h.Templates.GetByID(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, templateToResp(t))
}

// Update handles PUT/PATCH /v1/courses/:id.  The topic list supplied in
// the body replaces the stored one wholesale.
func (h *TemplateHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, msg := templateFromReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t.ID = id
	if err := h.Templates.Update(c.Request().Context(), t); err != nil {
		return bookingError(c, err)
	}
	fresh, err := h.Templates.GetByID(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, templateToResp(fresh))
}

// SetActive handles PATCH /v1/courses/:id/active with {"is_active": bool}.
// Deactivating a template stops new executions from being scheduled but
// leaves existing executions and bookings untouched.
func (h *TemplateHandler) SetActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil || body.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_active is required"})
	}
	if err := h.Templates.SetActive(c.Request().Context(), id, *body.IsActive); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": *body.IsActive})
}

// Delete handles DELETE /v1/courses/:id.  Topics cascade in the schema.
func (h *TemplateHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}
	if err := h.Templates.Delete(c.Request().Context(), id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
