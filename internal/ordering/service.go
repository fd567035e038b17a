package ordering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lunchline/lunchline/internal/shared"
)

// ErrForbidden indicates the caller may not act on the target order.
var ErrForbidden = errors.New("operation not permitted for this user")

// DenialError carries an admission refusal out of the service layer. It is a
// business-rule rejection, not a failure; handlers map it to a 422 with the
// machine-readable reason.
type DenialError struct {
	Reason DenialReason
}

func (e *DenialError) Error() string {
	return "order not admitted: " + string(e.Reason)
}

// CalendarLookup resolves one date to the three-state calendar result.
type CalendarLookup interface {
	LookupDay(ctx context.Context, date time.Time) (DayState, error)
}

// SettingsSnapshot is the slice of system settings the engine reads.
type SettingsSnapshot struct {
	MaxDaysAhead *int
	ClosingDay   *int
}

// SettingsSource supplies the current settings snapshot.
type SettingsSource interface {
	OrderingSnapshot(ctx context.Context) (SettingsSnapshot, error)
}

// Actor identifies the caller of an order operation.
type Actor struct {
	ID      int64
	IsAdmin bool
}

func (a Actor) role() Role {
	if a.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Service coordinates order admission and persistence. Each operation
// captures now exactly once and threads it through the whole check sequence.
type Service struct {
	repo     Repository
	calendar CalendarLookup
	settings SettingsSource
	audit    *shared.AuditLogger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, cal CalendarLookup, settings SettingsSource, audit *shared.AuditLogger) *Service {
	return &Service{
		repo:     repo,
		calendar: cal,
		settings: settings,
		audit:    audit,
		now:      time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CheckDate answers whether the operation would currently be admitted for the
// date, without touching any order. Suited for batch validation: denials come
// back in the decision, never as an error.
func (s *Service) CheckDate(ctx context.Context, orderDate string, actor Actor, op Operation) (Decision, error) {
	return s.admit(ctx, Candidate{
		OrderDate: orderDate,
		Role:      actor.role(),
		Op:        op,
		Now:       s.now(),
	})
}

func (s *Service) admit(ctx context.Context, c Candidate) (Decision, error) {
	snap := Snapshot{}

	// An unparseable date denies before any lookup, mirroring the check order.
	date, err := ParseISODate(c.OrderDate)
	if err == nil {
		day, lookupErr := s.calendar.LookupDay(ctx, date)
		if lookupErr != nil {
			return Decision{}, fmt.Errorf("ordering: calendar lookup: %w", lookupErr)
		}
		snap.Day = day
	}

	cfg, err := s.settings.OrderingSnapshot(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("ordering: settings snapshot: %w", err)
	}
	snap.MaxDaysAhead = cfg.MaxDaysAhead

	return CheckAdmission(snap, c), nil
}

// Create places an order after the admission sequence passes. Ordering for
// another user is an admin proxy action; the check sequence itself is
// identical for both roles.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, actor Actor) (*Order, error) {
	if req.TargetUserID != actor.ID && !actor.IsAdmin {
		return nil, ErrForbidden
	}

	decision, err := s.admit(ctx, Candidate{
		OrderDate: req.OrderDate,
		Role:      actor.role(),
		Op:        OpCreate,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &DenialError{Reason: decision.Reason}
	}

	id, err := s.repo.Create(ctx, Order{
		UserID:    req.TargetUserID,
		MenuID:    req.MenuID,
		OrderDate: decision.Date,
		Status:    OrderStatusPlaced,
		Note:      req.Note,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor.ID, "CREATE", id, map[string]any{
		"order_date": FormatISODate(decision.Date),
		"user_id":    req.TargetUserID,
	})
	return s.repo.Get(ctx, id)
}

// Update edits an existing placed order under the same admission sequence as
// creation.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest, actor Actor) (*Order, error) {
	existing, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if existing.Status == OrderStatusCancelled {
		return nil, ErrNotFound
	}

	decision, err := s.admit(ctx, Candidate{
		OrderDate: FormatISODate(existing.OrderDate),
		Role:      actor.role(),
		Op:        OpEdit,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &DenialError{Reason: decision.Reason}
	}

	if err := s.repo.Update(ctx, id, req.MenuID, req.Note); err != nil {
		return nil, err
	}
	s.record(ctx, actor.ID, "UPDATE", id, nil)
	return s.repo.Get(ctx, id)
}

// Cancel withdraws an order. Admins skip only the same-day deadline check
// here; past dates and unavailable days still refuse.
func (s *Service) Cancel(ctx context.Context, id int64, actor Actor) (*Order, error) {
	existing, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if existing.Status == OrderStatusCancelled {
		return existing, nil
	}

	decision, err := s.admit(ctx, Candidate{
		OrderDate: FormatISODate(existing.OrderDate),
		Role:      actor.role(),
		Op:        OpCancel,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &DenialError{Reason: decision.Reason}
	}

	if err := s.repo.UpdateStatus(ctx, id, OrderStatusCancelled, actor.ID); err != nil {
		return nil, err
	}
	s.record(ctx, actor.ID, "CANCEL", id, map[string]any{
		"order_date": FormatISODate(existing.OrderDate),
	})
	return s.repo.Get(ctx, id)
}

// Reassign moves an order to another user. Admin only; shares the cancel
// deadline exemption so staff can fix ownership mistakes after cutoff.
func (s *Service) Reassign(ctx context.Context, id int64, newUserID int64, actor Actor) (*Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	decision, err := s.admit(ctx, Candidate{
		OrderDate: FormatISODate(existing.OrderDate),
		Role:      RoleAdmin,
		Op:        OpReassign,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &DenialError{Reason: decision.Reason}
	}

	if err := s.repo.Reassign(ctx, id, newUserID); err != nil {
		return nil, err
	}
	s.record(ctx, actor.ID, "REASSIGN", id, map[string]any{
		"from_user": existing.UserID,
		"to_user":   newUserID,
	})
	return s.repo.Get(ctx, id)
}

// Get loads one order, restricted to its owner unless the caller is an admin.
func (s *Service) Get(ctx context.Context, id int64, actor Actor) (*Order, error) {
	return s.authorize(ctx, id, actor)
}

// List returns orders matching the filter. Non-admins only see their own.
func (s *Service) List(ctx context.Context, req ListOrdersRequest, actor Actor) ([]OrderWithUser, int, error) {
	if !actor.IsAdmin {
		req.UserID = &actor.ID
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// ClosingPeriods derives the trailing billing windows from the configured
// closing day. Nothing is persisted; every call recomputes from today.
func (s *Service) ClosingPeriods(ctx context.Context, count int) ([]ClosingPeriod, error) {
	cfg, err := s.settings.OrderingSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("ordering: settings snapshot: %w", err)
	}
	return ComputeClosingPeriods(cfg.ClosingDay, count, s.now()), nil
}

// CurrentPeriod locates today's billing window and the one after it.
func (s *Service) CurrentPeriod(ctx context.Context, count int) (PeriodLocation, error) {
	periods, err := s.ClosingPeriods(ctx, count)
	if err != nil {
		return PeriodLocation{}, err
	}
	loc, ok := LocateCurrentAndNext(periods, s.now())
	if !ok {
		return PeriodLocation{}, errors.New("ordering: no closing periods generated")
	}
	return loc, nil
}

// PeriodOrders returns all orders falling inside one billing window, for
// reporting and export.
func (s *Service) PeriodOrders(ctx context.Context, period ClosingPeriod) ([]OrderWithUser, error) {
	return s.repo.ListByDateRange(ctx, period.StartDate, period.EndDate)
}

func (s *Service) authorize(ctx context.Context, id int64, actor Actor) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "orders",
		EntityID: strconv.FormatInt(orderID, 10),
		Meta:     meta,
	})
}
