package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func availableDay(deadline string) DayState {
	if deadline == "" {
		return DayState{Status: DayAvailable}
	}
	tod, err := ParseTimeOfDay(deadline)
	if err != nil {
		panic(err)
	}
	return DayState{Status: DayAvailable, Deadline: &tod}
}

func intPtr(v int) *int { return &v }

func at(date string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCheckAdmissionSequence(t *testing.T) {
	now := at("2025-06-15", "08:00:00")

	tests := []struct {
		name    string
		snap    Snapshot
		cand    Candidate
		allowed bool
		reason  DenialReason
	}{
		{
			name:    "malformed date",
			snap:    Snapshot{Day: availableDay("10:00")},
			cand:    Candidate{OrderDate: "not-a-date", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: false,
			reason:  ReasonInvalidDate,
		},
		{
			name:    "past date",
			snap:    Snapshot{Day: availableDay("10:00")},
			cand:    Candidate{OrderDate: "2025-06-14", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: false,
			reason:  ReasonPastDate,
		},
		{
			name:    "past date outranks unavailable day",
			snap:    Snapshot{Day: DayState{Status: DayUnavailable}},
			cand:    Candidate{OrderDate: "2025-06-01", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: false,
			reason:  ReasonPastDate,
		},
		{
			name:    "exactly at the days-ahead bound",
			snap:    Snapshot{Day: availableDay(""), MaxDaysAhead: intPtr(14)},
			cand:    Candidate{OrderDate: "2025-06-29", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: true,
		},
		{
			name:    "one past the days-ahead bound",
			snap:    Snapshot{Day: availableDay(""), MaxDaysAhead: intPtr(14)},
			cand:    Candidate{OrderDate: "2025-06-30", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: false,
			reason:  ReasonTooFarAhead,
		},
		{
			name:    "no bound configured",
			snap:    Snapshot{Day: availableDay("")},
			cand:    Candidate{OrderDate: "2026-06-15", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: true,
		},
		{
			name:    "no calendar record",
			snap:    Snapshot{Day: DayState{Status: DayNoRecord}},
			cand:    Candidate{OrderDate: "2025-06-16", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: false,
			reason:  ReasonDateUnavailable,
		},
		{
			name:    "explicitly unavailable",
			snap:    Snapshot{Day: DayState{Status: DayUnavailable}},
			cand:    Candidate{OrderDate: "2025-06-16", Role: RoleMember, Op: OpCreate, Now: now},
			allowed: false,
			reason:  ReasonDateUnavailable,
		},
		{
			name:    "today before deadline",
			snap:    Snapshot{Day: availableDay("10:00")},
			cand:    Candidate{OrderDate: "2025-06-15", Role: RoleMember, Op: OpCreate, Now: at("2025-06-15", "09:59:59")},
			allowed: true,
		},
		{
			name:    "today exactly at deadline",
			snap:    Snapshot{Day: availableDay("10:00")},
			cand:    Candidate{OrderDate: "2025-06-15", Role: RoleMember, Op: OpCreate, Now: at("2025-06-15", "10:00:00")},
			allowed: false,
			reason:  ReasonDeadlinePassed,
		},
		{
			name:    "today after deadline",
			snap:    Snapshot{Day: availableDay("10:00")},
			cand:    Candidate{OrderDate: "2025-06-15", Role: RoleMember, Op: OpEdit, Now: at("2025-06-15", "15:30:00")},
			allowed: false,
			reason:  ReasonDeadlinePassed,
		},
		{
			name:    "future date skips deadline check",
			snap:    Snapshot{Day: availableDay("10:00")},
			cand:    Candidate{OrderDate: "2025-06-16", Role: RoleMember, Op: OpCreate, Now: at("2025-06-15", "15:30:00")},
			allowed: true,
		},
		{
			name:    "today without configured deadline",
			snap:    Snapshot{Day: availableDay("")},
			cand:    Candidate{OrderDate: "2025-06-15", Role: RoleMember, Op: OpCreate, Now: at("2025-06-15", "23:00:00")},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckAdmission(tt.snap, tt.cand)
			assert.Equal(t, tt.allowed, got.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.reason, got.Reason)
			} else {
				assert.Equal(t, tt.cand.OrderDate, FormatISODate(got.Date))
			}
		})
	}
}

func TestCheckAdmissionDeadlineExemption(t *testing.T) {
	snap := Snapshot{Day: availableDay("10:00")}
	late := at("2025-06-15", "14:00:00")

	t.Run("admin cancel after deadline allowed", func(t *testing.T) {
		got := CheckAdmission(snap, Candidate{OrderDate: "2025-06-15", Role: RoleAdmin, Op: OpCancel, Now: late})
		assert.True(t, got.Allowed)
	})

	t.Run("admin reassign after deadline allowed", func(t *testing.T) {
		got := CheckAdmission(snap, Candidate{OrderDate: "2025-06-15", Role: RoleAdmin, Op: OpReassign, Now: late})
		assert.True(t, got.Allowed)
	})

	t.Run("admin create after deadline still denied", func(t *testing.T) {
		got := CheckAdmission(snap, Candidate{OrderDate: "2025-06-15", Role: RoleAdmin, Op: OpCreate, Now: late})
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonDeadlinePassed, got.Reason)
	})

	t.Run("member cancel after deadline denied", func(t *testing.T) {
		got := CheckAdmission(snap, Candidate{OrderDate: "2025-06-15", Role: RoleMember, Op: OpCancel, Now: late})
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonDeadlinePassed, got.Reason)
	})

	t.Run("exemption never reaches unavailable days", func(t *testing.T) {
		got := CheckAdmission(Snapshot{Day: DayState{Status: DayUnavailable}},
			Candidate{OrderDate: "2025-06-15", Role: RoleAdmin, Op: OpCancel, Now: late})
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonDateUnavailable, got.Reason)
	})
}
