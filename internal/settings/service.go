package settings

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/shared"
)

// ErrClosingDayRange indicates a closing day outside 1-31.
var ErrClosingDayRange = errors.New("settings: closing day must be between 1 and 31")

// ErrNegativeDaysAhead indicates a negative advance-booking bound.
var ErrNegativeDaysAhead = errors.New("settings: max order days ahead must not be negative")

// Service wraps settings reads and admin mutations. Concurrent snapshot reads
// during a burst of admission checks collapse into one query via singleflight.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
	group singleflight.Group
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Snapshot returns the current settings. Missing configuration collapses to
// "no constraints" and is never a fatal error here.
func (s *Service) Snapshot(ctx context.Context) (Settings, error) {
	v, err, _ := s.group.Do("settings", func() (interface{}, error) {
		return s.repo.Load(ctx)
	})
	if err != nil {
		return Settings{}, err
	}
	return v.(Settings), nil
}

// OrderingSnapshot adapts the settings row into the slice the admission and
// closing-period engine reads.
func (s *Service) OrderingSnapshot(ctx context.Context) (ordering.SettingsSnapshot, error) {
	current, err := s.Snapshot(ctx)
	if err != nil {
		return ordering.SettingsSnapshot{}, err
	}
	return ordering.SettingsSnapshot{
		MaxDaysAhead: current.MaxOrderDaysAhead,
		ClosingDay:   current.ClosingDay,
	}, nil
}

// Update validates and persists an admin mutation, then records it.
func (s *Service) Update(ctx context.Context, in UpdateInput, actorID int64) (Settings, error) {
	if in.MaxOrderDaysAhead != nil && *in.MaxOrderDaysAhead < 0 {
		return Settings{}, ErrNegativeDaysAhead
	}
	if in.ClosingDay != nil && (*in.ClosingDay < 1 || *in.ClosingDay > 31) {
		return Settings{}, ErrClosingDayRange
	}

	saved, err := s.repo.Save(ctx, Settings{
		MaxOrderDaysAhead: in.MaxOrderDaysAhead,
		ClosingDay:        in.ClosingDay,
	})
	if err != nil {
		return Settings{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "UPDATE",
			Entity:   "system_settings",
			EntityID: strconv.Itoa(1),
			Meta: map[string]any{
				"max_order_days_ahead": saved.MaxOrderDaysAhead,
				"closing_day":          saved.ClosingDay,
			},
		})
	}
	return saved, nil
}
