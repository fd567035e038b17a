package settings

import "time"

// Settings is the singleton system configuration row (id fixed to 1). Nil
// MaxOrderDaysAhead means unlimited advance booking; nil ClosingDay means
// billing periods follow calendar months.
type Settings struct {
	MaxOrderDaysAhead *int
	ClosingDay        *int
	UpdatedAt         time.Time
}

// UpdateInput carries an admin settings mutation.
type UpdateInput struct {
	MaxOrderDaysAhead *int `json:"max_order_days_ahead" validate:"omitempty,min=0"`
	ClosingDay        *int `json:"closing_day" validate:"omitempty,min=1,max=31"`
}
