package ordering

import (
	"fmt"
	"time"
)

// ClosingPeriod is one billing window, inclusive on both ends. Derived fresh
// on every query; never stored.
type ClosingPeriod struct {
	StartDate time.Time
	EndDate   time.Time
	Label     string
}

// Contains reports whether the date falls inside the window.
func (p ClosingPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// ComputeClosingPeriods partitions the trailing timeline into count billing
// windows anchored on closingDay, most recent first (index 0 contains or is
// nearest to today). A nil closingDay yields plain calendar months.
//
// With a closing day the window for month M ends on the closingDay-th of M and
// starts on the (closingDay+1)-th of M-1, both clamped to the month's length.
// Clamping against short months (closing day 31 in February) is the accepted
// approximation; the windows stay contiguous whenever no clamp fires.
func ComputeClosingPeriods(closingDay *int, count int, today time.Time) []ClosingPeriod {
	if count <= 0 {
		return nil
	}
	periods := make([]ClosingPeriod, 0, count)
	for i := 0; i < count; i++ {
		year, month := shiftMonth(today.Year(), today.Month(), -i)
		periods = append(periods, buildPeriod(closingDay, year, month, today.Location()))
	}
	return periods
}

func buildPeriod(closingDay *int, year int, month time.Month, loc *time.Location) ClosingPeriod {
	var start, end time.Time
	if closingDay == nil {
		start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
		end = time.Date(year, month, LastDayOfMonth(year, month), 0, 0, 0, 0, loc)
	} else {
		endDay := clampDay(*closingDay, year, month)
		end = time.Date(year, month, endDay, 0, 0, 0, 0, loc)

		prevYear, prevMonth := shiftMonth(year, month, -1)
		startDay := clampDay(*closingDay+1, prevYear, prevMonth)
		start = time.Date(prevYear, prevMonth, startDay, 0, 0, 0, 0, loc)
	}
	return ClosingPeriod{
		StartDate: start,
		EndDate:   end,
		Label:     periodLabel(start, end),
	}
}

// clampDay pins the day-of-month to the month's last valid day before date
// construction. Relying on time.Date rollover here would silently shift the
// boundary into the next month.
func clampDay(day, year int, month time.Month) int {
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

func shiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	m := int(month) - 1 + delta
	y := year + m/12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	return y, time.Month(m + 1)
}

func periodLabel(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}

// PeriodLocation pairs the window containing today with the chronologically
// following one.
type PeriodLocation struct {
	Current    ClosingPeriod
	Next       *ClosingPeriod
	CurrentIdx int
	HasNext    bool
}

// LocateCurrentAndNext scans the most-recent-first windows for the one holding
// today. When no window contains today (short generation counts only) it falls
// back to the most recent window, with the second-most-recent as next.
func LocateCurrentAndNext(periods []ClosingPeriod, today time.Time) (PeriodLocation, bool) {
	if len(periods) == 0 {
		return PeriodLocation{}, false
	}
	day := Today(today)
	for i, p := range periods {
		if p.Contains(day) {
			loc := PeriodLocation{Current: p, CurrentIdx: i}
			if i > 0 {
				next := periods[i-1]
				loc.Next = &next
				loc.HasNext = true
			}
			return loc, true
		}
	}
	loc := PeriodLocation{Current: periods[0], CurrentIdx: 0}
	if len(periods) > 1 {
		next := periods[1]
		loc.Next = &next
		loc.HasNext = true
	}
	return loc, true
}
