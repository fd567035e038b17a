package menus

import "time"

// Menu is one orderable item offered by a vendor on a specific date.
type Menu struct {
	ID        int64
	VendorID  int64
	MenuDate  time.Time
	Name      string
	PriceYen  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuWithVendor joins the vendor name for listings.
type MenuWithVendor struct {
	Menu
	VendorName string
}

// ItemInput is one menu entry inside a day replacement.
type ItemInput struct {
	Name     string `json:"name" validate:"required"`
	PriceYen int    `json:"price_yen" validate:"min=0"`
}

// ReplaceDayInput swaps out a vendor's offering for one date.
type ReplaceDayInput struct {
	VendorID int64       `json:"vendor_id" validate:"required"`
	MenuDate string      `json:"menu_date" validate:"required"`
	Items    []ItemInput `json:"items" validate:"dive"`
}
