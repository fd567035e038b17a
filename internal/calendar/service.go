package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/shared"
)

// DefaultDeadline applies when an admin marks a day available without
// choosing a cutoff.
const DefaultDeadline = "10:00"

// Service wraps calendar business rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// LookupDay collapses the row lookup into the three-state result the
// admission engine consumes: absent row means no ordering, available rows
// carry their parsed cutoff.
func (s *Service) LookupDay(ctx context.Context, date time.Time) (ordering.DayState, error) {
	day, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ordering.DayState{Status: ordering.DayNoRecord}, nil
		}
		return ordering.DayState{}, err
	}
	if !day.IsAvailable {
		return ordering.DayState{Status: ordering.DayUnavailable}, nil
	}
	state := ordering.DayState{Status: ordering.DayAvailable}
	if day.DeadlineTime != nil {
		tod, err := ordering.ParseTimeOfDay(*day.DeadlineTime)
		if err != nil {
			return ordering.DayState{}, fmt.Errorf("calendar: stored deadline: %w", err)
		}
		state.Deadline = &tod
	}
	return state, nil
}

// ListMonth returns the configured days of one month.
func (s *Service) ListMonth(ctx context.Context, year int, month time.Month) ([]Day, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(year, month, ordering.LastDayOfMonth(year, month), 0, 0, 0, 0, time.Local)
	return s.repo.ListRange(ctx, from, to)
}

// UpsertDay creates or updates the configuration for one date, keyed by the
// date. Rows are never deleted; closing a day flips is_available off.
func (s *Service) UpsertDay(ctx context.Context, in UpsertDayInput, actorID int64) (*Day, error) {
	date, err := ordering.ParseISODate(in.TargetDate)
	if err != nil {
		return nil, err
	}

	deadline := in.DeadlineTime
	if in.IsAvailable {
		if deadline == nil || *deadline == "" {
			def := DefaultDeadline
			deadline = &def
		} else if _, err := ordering.ParseTimeOfDay(*deadline); err != nil {
			return nil, err
		}
	}

	day, err := s.repo.Upsert(ctx, Day{
		TargetDate:   date,
		IsAvailable:  in.IsAvailable,
		DeadlineTime: deadline,
		Note:         in.Note,
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "UPSERT",
			Entity:   "order_calendar",
			EntityID: ordering.FormatISODate(day.TargetDate),
			Meta: map[string]any{
				"is_available":  day.IsAvailable,
				"deadline_time": day.DeadlineTime,
			},
		})
	}
	return day, nil
}
