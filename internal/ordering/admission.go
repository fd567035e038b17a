package ordering

import "time"

// Operation identifies which order action is being admitted.
type Operation string

const (
	OpCreate   Operation = "create"
	OpEdit     Operation = "edit"
	OpCancel   Operation = "cancel"
	OpReassign Operation = "reassign"
)

// Role is the caller's role for an admission check.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// DenialReason distinguishes why an order action was refused. Each value maps
// to a specific user-facing message; none of them are retryable with the same
// date.
type DenialReason string

const (
	ReasonInvalidDate     DenialReason = "INVALID_DATE"
	ReasonPastDate        DenialReason = "PAST_DATE"
	ReasonTooFarAhead     DenialReason = "TOO_FAR_AHEAD"
	ReasonDateUnavailable DenialReason = "DATE_UNAVAILABLE"
	ReasonDeadlinePassed  DenialReason = "DEADLINE_PASSED"
)

// DayStatus is the three-state result of a calendar lookup. An absent row and
// an explicitly unavailable row both refuse orders; keeping them distinct here
// makes the "no record means closed" policy a single documented mapping.
type DayStatus int

const (
	DayNoRecord DayStatus = iota
	DayUnavailable
	DayAvailable
)

// DayState carries the calendar lookup result for one date. Deadline is only
// meaningful when Status is DayAvailable; nil means the day has no same-day
// cutoff.
type DayState struct {
	Status   DayStatus
	Deadline *TimeOfDay
}

// Snapshot holds everything the admission check reads, fetched once by the
// caller before the decision. MaxDaysAhead nil means no advance-booking bound.
type Snapshot struct {
	Day          DayState
	MaxDaysAhead *int
}

// Candidate describes the order action under evaluation. Now is captured once
// per logical operation; the whole check sequence derives today and the
// wall-clock comparison from this single value.
type Candidate struct {
	OrderDate string
	Role      Role
	Op        Operation
	Now       time.Time
}

// Decision is the admission outcome. Denials are values, not errors, so batch
// validation over many dates proceeds without interruption.
type Decision struct {
	Allowed bool
	Reason  DenialReason
	Date    time.Time
}

func allow(date time.Time) Decision {
	return Decision{Allowed: true, Date: date}
}

func deny(reason DenialReason) Decision {
	return Decision{Reason: reason}
}

// CheckAdmission runs the ordered short-circuit sequence; the first failing
// check wins and names the denial cause. Later checks assume earlier ones
// passed (deadline arithmetic requires a valid, non-past date).
//
// Admins pass through the identical sequence: proxy ordering for another user
// relaxes nothing. The single role-sensitive rule is the deadline exemption
// for cancel and owner reassignment, the escape hatch that lets staff correct
// mistakes after cutoff.
func CheckAdmission(snap Snapshot, c Candidate) Decision {
	date, err := ParseISODate(c.OrderDate)
	if err != nil {
		return deny(ReasonInvalidDate)
	}

	today := Today(c.Now)
	if date.Before(today) {
		return deny(ReasonPastDate)
	}

	if snap.MaxDaysAhead != nil && DaysBetween(today, date) > *snap.MaxDaysAhead {
		return deny(ReasonTooFarAhead)
	}

	if snap.Day.Status != DayAvailable {
		return deny(ReasonDateUnavailable)
	}

	// Only today has a same-day cutoff; future dates never hit the deadline
	// check even when one is configured.
	if date.Equal(today) && snap.Day.Deadline != nil && !deadlineExempt(c) {
		if !c.Now.Before(snap.Day.Deadline.On(today)) {
			return deny(ReasonDeadlinePassed)
		}
	}

	return allow(date)
}

func deadlineExempt(c Candidate) bool {
	if c.Role != RoleAdmin {
		return false
	}
	return c.Op == OpCancel || c.Op == OpReassign
}
