package ordering

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const isoDateLayout = "2006-01-02"

var (
	// ErrInvalidDateFormat indicates input not matching YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrInvalidTimeFormat indicates input not matching HH:MM.
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// Today returns the local calendar date of now with the time-of-day zeroed.
// Every decision captures now once and derives today from it, so a midnight
// rollover mid-request cannot split one check sequence across two days.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// ParseISODate parses a strict YYYY-MM-DD string into a local midnight date.
// Zero-padding is mandatory; "2025-2-1" is rejected. Calendar-invalid dates
// such as 2025-02-31 are rejected as well, never surfaced as a panic.
func ParseISODate(s string) (time.Time, error) {
	if !isoDatePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	t, err := time.ParseInLocation(isoDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// FormatISODate renders the canonical YYYY-MM-DD form. Round-trips with
// ParseISODate for any date this engine produces.
func FormatISODate(t time.Time) string {
	return t.Format(isoDateLayout)
}

// TimeOfDay is a wall-clock hour/minute pair used for same-day cutoffs.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a strict 24-hour HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	// the pattern guarantees two-digit numeric submatches
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String renders the zero-padded HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On anchors the time-of-day onto the given calendar date.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// LastDayOfMonth returns the number of days in the given month (28-31).
func LastDayOfMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween computes the whole-day distance from a to b. Both ends are
// normalized to local midnight first so daylight-saving shifts cannot drift
// the millisecond difference across a day boundary.
func DaysBetween(a, b time.Time) int {
	from := Today(a)
	to := Today(b)
	ms := to.Sub(from).Milliseconds()
	const dayMs = 24 * 60 * 60 * 1000
	if ms < 0 {
		return int((ms - dayMs + 1) / dayMs)
	}
	return int(ms / dayMs)
}
