package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
	"github.com/lwittmann/schulungen/internal/schedule"
)

// Scheduler creates executions from course templates and drives their
// lifecycle.  Scheduling runs the appointment generator exactly once
// and persists execution and appointments in one transaction.
type Scheduler struct {
	db           *sql.DB
	templates    *repository.TemplateRepo
	executions   *repository.ExecutionRepo
	appointments *repository.AppointmentRepo
	events       EventLogger
}

func NewScheduler(db *sql.DB, templates *repository.TemplateRepo, executions *repository.ExecutionRepo, appointments *repository.AppointmentRepo, events EventLogger) *Scheduler {
	return &Scheduler{db: db, templates: templates, executions: executions, appointments: appointments, events: events}
}

// ScheduleInput describes the execution to create.
type ScheduleInput struct {
	TemplateID              uint64
	StartDate               time.Time
	Weekdays                []time.Weekday
	StartTime               string
	DurationOverrideMinutes *int
	MeetingLink             string
}

// Schedule creates a GEPLANT execution for a template and generates
// its appointments.  An inactive template cannot be scheduled.  The
// execution row and its appointments commit together; a template with
// no topics yields a valid execution with zero sessions.
func (s *Scheduler) Schedule(ctx context.Context, in ScheduleInput) (*model.Execution, []model.Appointment, error) {
	tmpl, err := s.templates.GetByID(ctx, in.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	if !tmpl.IsActive {
		return nil, nil, repository.ErrInvalidState
	}

	exec := &model.Execution{
		TemplateID:              in.TemplateID,
		StartDate:               in.StartDate,
		Weekdays:                in.Weekdays,
		StartTime:               in.StartTime,
		DurationOverrideMinutes: in.DurationOverrideMinutes,
		MeetingLink:             in.MeetingLink,
		Status:                  model.ExecutionGeplant,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.executions.CreateTx(ctx, tx, exec); err != nil {
		return nil, nil, err
	}
	appts := schedule.Generate(exec.ID, exec.StartDate, schedule.Pattern{
		Weekdays:                exec.Weekdays,
		StartTime:               exec.StartTime,
		DurationOverrideMinutes: exec.DurationOverrideMinutes,
	}, tmpl.Topics)
	if err := s.appointments.ReplaceForExecutionTx(ctx, tx, exec.ID, appts); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	committed = true

	s.log(ctx, "execution.scheduled",
		fmt.Sprintf("execution %d scheduled for template %d with %d appointments", exec.ID, tmpl.ID, len(appts)),
		fmt.Sprintf("execution:%d", exec.ID))
	return exec, appts, nil
}

// Transition moves an execution to the requested status.  Only the
// legal transitions GEPLANT→AKTIV, AKTIV→ABGESCHLOSSEN and
// GEPLANT/AKTIV→ABGESAGT are accepted; anything else fails with
// ErrInvalidTransition.  The repository re-checks the current status
// in the UPDATE itself, so the validation holds under concurrency.
func (s *Scheduler) Transition(ctx context.Context, executionID uint64, to model.ExecutionStatus) (*model.Execution, error) {
	if !to.Valid() {
		return nil, repository.ErrInvalidTransition
	}
	exec, err := s.executions.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if !exec.Status.CanTransitionTo(to) {
		return nil, repository.ErrInvalidTransition
	}
	if err := s.executions.UpdateStatus(ctx, executionID, exec.Status, to); err != nil {
		return nil, err
	}
	exec.Status = to

	s.log(ctx, "execution."+statusAction(to),
		fmt.Sprintf("execution %d moved to %s", executionID, to),
		fmt.Sprintf("execution:%d", executionID))
	return exec, nil
}

// PreviewAppointments recomputes the appointment sequence for an
// execution from its current pattern and topics without persisting
// anything.  Because the generator is deterministic, the preview for
// an unchanged execution matches the stored appointments exactly.
func (s *Scheduler) PreviewAppointments(ctx context.Context, executionID uint64) ([]model.Appointment, error) {
	exec, err := s.executions.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.templates.GetByID(ctx, exec.TemplateID)
	if err != nil {
		return nil, err
	}
	return schedule.Generate(exec.ID, exec.StartDate, schedule.Pattern{
		Weekdays:                exec.Weekdays,
		StartTime:               exec.StartTime,
		DurationOverrideMinutes: exec.DurationOverrideMinutes,
	}, tmpl.Topics), nil
}

func statusAction(s model.ExecutionStatus) string {
	switch s {
	case model.ExecutionAktiv:
		return "activated"
	case model.ExecutionAbgeschlossen:
		return "completed"
	case model.ExecutionAbgesagt:
		return "cancelled"
	default:
		return "updated"
	}
}

func (s *Scheduler) log(ctx context.Context, action, message, ref string) {
	if s.events == nil {
		return
	}
	if err := s.events.LogEvent(ctx, EventCategory, action, message, ref); err != nil {
		// The schedule change is already committed; a failing audit
		// sink must not fail the operation.
		log.Printf("scheduler: event log append failed for %s (%s): %v", action, ref, err)
	}
}
