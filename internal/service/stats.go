package service

import (
	"context"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
)

// Stats is the read-only aggregate view over the catalog and ledger.
type Stats struct {
	ActiveTemplates   int `json:"active_templates"`
	PlannedExecutions int `json:"planned_executions"`
	ConfirmedBookings int `json:"confirmed_bookings"`
	Waitlisted        int `json:"waitlisted"`
}

// StatsService collects the aggregate counts.  The counts are four
// independent reads, not a consistent snapshot; for a dashboard view
// that is acceptable.
type StatsService struct {
	templates  *repository.TemplateRepo
	executions *repository.ExecutionRepo
	bookings   *repository.BookingRepo
}

func NewStatsService(templates *repository.TemplateRepo, executions *repository.ExecutionRepo, bookings *repository.BookingRepo) *StatsService {
	return &StatsService{templates: templates, executions: executions, bookings: bookings}
}

// Collect gathers the aggregate counts.
func (s *StatsService) Collect(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.ActiveTemplates, err = s.templates.CountActive(ctx); err != nil {
		return st, err
	}
	if st.PlannedExecutions, err = s.executions.CountByStatus(ctx, model.ExecutionGeplant); err != nil {
		return st, err
	}
	if st.ConfirmedBookings, err = s.bookings.CountByStatus(ctx, model.BookingGebucht); err != nil {
		return st, err
	}
	if st.Waitlisted, err = s.bookings.CountByStatus(ctx, model.BookingWarteliste); err != nil {
		return st, err
	}
	return st, nil
}
