package handler

import (
	"bytes"
	"context"
	"database/sql"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
)

func TestTemplateFromReqAssignsTopicPositions(t *testing.T) {
	req := templateReq{
		Title:      "Go Basics",
		PriceCents: 49900,
		MaxSeats:   12,
		Topics: []topicReq{
			{Title: "Syntax", DurationMinutes: 90},
			{Title: "Concurrency", DurationMinutes: 120},
		},
	}
	tmpl, msg := templateFromReq(req)
	if msg != "" {
		t.Fatalf("unexpected validation error: %s", msg)
	}
	if !tmpl.IsActive {
		t.Error("new template should default to active")
	}
	for i, tp := range tmpl.Topics {
		if tp.Position != i {
			t.Errorf("topic %q: position = %d, want %d", tp.Title, tp.Position, i)
		}
	}
}

func TestTemplateFromReqValidation(t *testing.T) {
	cases := []struct {
		name string
		req  templateReq
	}{
		{"missing title", templateReq{MaxSeats: 5}},
		{"zero seats", templateReq{Title: "x", MaxSeats: 0}},
		{"negative window", templateReq{Title: "x", MaxSeats: 5, CancellationWindowDays: -1}},
		{"bad promo date", templateReq{Title: "x", MaxSeats: 5, PromoFrom: strPtr("01.02.2024")}},
		{"empty topic title", templateReq{Title: "x", MaxSeats: 5, Topics: []topicReq{{Title: " ", DurationMinutes: 60}}}},
		{"zero topic duration", templateReq{Title: "x", MaxSeats: 5, Topics: []topicReq{{Title: "y"}}}},
	}
	for _, tc := range cases {
		if _, msg := templateFromReq(tc.req); msg == "" {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}
}

func TestTemplateFromReqParsesPromoWindow(t *testing.T) {
	req := templateReq{
		Title:      "Go Basics",
		MaxSeats:   8,
		PromoFrom:  strPtr("2024-02-01"),
		PromoUntil: strPtr("2024-02-29"),
	}
	tmpl, msg := templateFromReq(req)
	if msg != "" {
		t.Fatalf("unexpected validation error: %s", msg)
	}
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if tmpl.PromoFrom == nil || !tmpl.PromoFrom.Equal(want) {
		t.Errorf("promo_from = %v, want %v", tmpl.PromoFrom, want)
	}
	if tmpl.PromoUntil == nil || tmpl.PromoUntil.Day() != 29 {
		t.Errorf("promo_until = %v, want Feb 29", tmpl.PromoUntil)
	}
}

func TestWeekdayNames(t *testing.T) {
	got := weekdayNames([]time.Weekday{time.Tuesday, time.Thursday})
	if len(got) != 2 || got[0] != "TUE" || got[1] != "THU" {
		t.Errorf("weekdayNames = %v, want [TUE THU]", got)
	}
	if got := weekdayNames(nil); len(got) != 0 {
		t.Errorf("weekdayNames(nil) = %v, want empty", got)
	}
}

func TestBookingErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{repository.ErrExecutionNotFound, http.StatusNotFound},
		{repository.ErrBookingNotFound, http.StatusNotFound},
		{repository.ErrDuplicateBooking, http.StatusConflict},
		{repository.ErrAlreadyCancelled, http.StatusConflict},
		{repository.ErrNotWaitlisted, http.StatusConflict},
		{repository.ErrNoSeatsAvailable, http.StatusConflict},
		{repository.ErrInvalidState, http.StatusUnprocessableEntity},
		{repository.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{repository.ErrForbidden, http.StatusForbidden},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := bookingError(c, tc.err); err != nil {
			t.Fatalf("bookingError returned error: %v", err)
		}
		if rec.Code != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestFreeSeatsOmittedAndLoggedOnLookupFailure(t *testing.T) {
	// A closed pool makes every query fail without touching the
	// network, standing in for a database outage.
	db, err := sql.Open("mysql", "app@tcp(127.0.0.1:3306)/schulungen")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Close()

	h := &ExecutionHandler{
		Templates: repository.NewTemplateRepo(db),
		Bookings:  repository.NewBookingRepo(db),
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	exec := &model.Execution{ID: 7, TemplateID: 3}
	if got := h.freeSeats(context.Background(), exec); got != nil {
		t.Errorf("free seats = %d, want omitted on lookup failure", *got)
	}
	if !strings.Contains(buf.String(), "free seats unavailable") {
		t.Errorf("lookup failure was not logged, got %q", buf.String())
	}
}

func strPtr(s string) *string { return &s }
