package vendors

import (
	"context"
	"strconv"

	"github.com/lunchline/lunchline/internal/shared"
)

// Service wraps vendor management rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get loads one vendor.
func (s *Service) Get(ctx context.Context, id int64) (*Vendor, error) {
	return s.repo.Get(ctx, id)
}

// List returns vendors, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Vendor, error) {
	return s.repo.List(ctx, activeOnly)
}

// Create registers a vendor.
func (s *Service) Create(ctx context.Context, in CreateVendorInput, actorID int64) (*Vendor, error) {
	id, err := s.repo.Create(ctx, Vendor{Name: in.Name, Phone: in.Phone, IsActive: true})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "CREATE", id)
	return s.repo.Get(ctx, id)
}

// Update applies a partial vendor change. Vendors are never deleted; retiring
// one flips is_active off so historic menus keep their reference.
func (s *Service) Update(ctx context.Context, id int64, in UpdateVendorInput, actorID int64) (*Vendor, error) {
	if err := s.repo.Update(ctx, id, in.Name, in.Phone, in.IsActive); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "UPDATE", id)
	return s.repo.Get(ctx, id)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, vendorID int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "vendors",
		EntityID: strconv.FormatInt(vendorID, 10),
	})
}
