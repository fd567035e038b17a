package vendors

import "time"

// Vendor is a meal supplier selectable on daily menus.
type Vendor struct {
	ID        int64
	Name      string
	Phone     *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateVendorInput is the admin payload for registering a vendor.
type CreateVendorInput struct {
	Name  string  `json:"name" validate:"required"`
	Phone *string `json:"phone,omitempty"`
}

// UpdateVendorInput carries a partial vendor update.
type UpdateVendorInput struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
