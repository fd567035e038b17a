package calendar

import "time"

// Day is one admin-configured ordering day. Absence of a row for a date is
// equivalent to IsAvailable false.
type Day struct {
	ID           int64
	TargetDate   time.Time
	IsAvailable  bool
	DeadlineTime *string
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpsertDayInput is the admin payload for configuring a date. DeadlineTime
// empty with IsAvailable true falls back to the 10:00 default.
type UpsertDayInput struct {
	TargetDate   string  `json:"target_date" validate:"required"`
	IsAvailable  bool    `json:"is_available"`
	DeadlineTime *string `json:"deadline_time,omitempty"`
	Note         *string `json:"note,omitempty"`
}
