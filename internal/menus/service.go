package menus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/shared"
	"github.com/lunchline/lunchline/internal/vendors"
)

// Service wraps daily menu management.
type Service struct {
	repo    Repository
	vendors vendors.Repository
	audit   *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, vendorRepo vendors.Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, vendors: vendorRepo, audit: audit}
}

// Get loads one menu item.
func (s *Service) Get(ctx context.Context, id int64) (*Menu, error) {
	return s.repo.Get(ctx, id)
}

// ListByDate returns the day's offering across vendors.
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]MenuWithVendor, error) {
	return s.repo.ListByDate(ctx, date)
}

// ReplaceDay swaps a vendor's offering for one date.
func (s *Service) ReplaceDay(ctx context.Context, in ReplaceDayInput, actorID int64) ([]MenuWithVendor, error) {
	date, err := ordering.ParseISODate(in.MenuDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.vendors.Get(ctx, in.VendorID); err != nil {
		return nil, fmt.Errorf("menus: verify vendor: %w", err)
	}

	items := make([]Menu, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, Menu{Name: item.Name, PriceYen: item.PriceYen})
	}
	if err := s.repo.ReplaceForDay(ctx, in.VendorID, date, items); err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "REPLACE",
			Entity:   "menus",
			EntityID: strconv.FormatInt(in.VendorID, 10) + ":" + in.MenuDate,
			Meta:     map[string]any{"items": len(items)},
		})
	}
	return s.repo.ListByDate(ctx, date)
}
