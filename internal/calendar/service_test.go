package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunchline/lunchline/internal/ordering"
)

type mockRepository struct {
	days map[string]*Day
}

func newMockRepository() *mockRepository {
	return &mockRepository{days: make(map[string]*Day)}
}

func (m *mockRepository) FindByDate(ctx context.Context, date time.Time) (*Day, error) {
	d, ok := m.days[ordering.FormatISODate(date)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockRepository) ListRange(ctx context.Context, from, to time.Time) ([]Day, error) {
	var result []Day
	for _, d := range m.days {
		if !d.TargetDate.Before(from) && !d.TargetDate.After(to) {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockRepository) Upsert(ctx context.Context, day Day) (*Day, error) {
	key := ordering.FormatISODate(day.TargetDate)
	if existing, ok := m.days[key]; ok {
		day.ID = existing.ID
	} else {
		day.ID = int64(len(m.days) + 1)
	}
	m.days[key] = &day
	copied := day
	return &copied, nil
}

func strPtr(s string) *string { return &s }

func TestLookupDay(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	day := func(s string) time.Time {
		d, err := ordering.ParseISODate(s)
		require.NoError(t, err)
		return d
	}

	repo.days["2025-06-16"] = &Day{TargetDate: day("2025-06-16"), IsAvailable: true, DeadlineTime: strPtr("10:00")}
	repo.days["2025-06-17"] = &Day{TargetDate: day("2025-06-17"), IsAvailable: false}
	repo.days["2025-06-18"] = &Day{TargetDate: day("2025-06-18"), IsAvailable: true}

	t.Run("absent row means no record", func(t *testing.T) {
		state, err := svc.LookupDay(context.Background(), day("2025-06-15"))
		require.NoError(t, err)
		assert.Equal(t, ordering.DayNoRecord, state.Status)
	})

	t.Run("available day carries its deadline", func(t *testing.T) {
		state, err := svc.LookupDay(context.Background(), day("2025-06-16"))
		require.NoError(t, err)
		assert.Equal(t, ordering.DayAvailable, state.Status)
		require.NotNil(t, state.Deadline)
		assert.Equal(t, "10:00", state.Deadline.String())
	})

	t.Run("flagged-off day is unavailable", func(t *testing.T) {
		state, err := svc.LookupDay(context.Background(), day("2025-06-17"))
		require.NoError(t, err)
		assert.Equal(t, ordering.DayUnavailable, state.Status)
	})

	t.Run("available day without deadline", func(t *testing.T) {
		state, err := svc.LookupDay(context.Background(), day("2025-06-18"))
		require.NoError(t, err)
		assert.Equal(t, ordering.DayAvailable, state.Status)
		assert.Nil(t, state.Deadline)
	})
}

func TestUpsertDay(t *testing.T) {
	t.Run("available day defaults the deadline", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, nil)

		day, err := svc.UpsertDay(context.Background(), UpsertDayInput{
			TargetDate:  "2025-06-16",
			IsAvailable: true,
		}, 1)
		require.NoError(t, err)
		require.NotNil(t, day.DeadlineTime)
		assert.Equal(t, DefaultDeadline, *day.DeadlineTime)
	})

	t.Run("explicit deadline preserved", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, nil)

		day, err := svc.UpsertDay(context.Background(), UpsertDayInput{
			TargetDate:   "2025-06-16",
			IsAvailable:  true,
			DeadlineTime: strPtr("09:30"),
		}, 1)
		require.NoError(t, err)
		require.NotNil(t, day.DeadlineTime)
		assert.Equal(t, "09:30", *day.DeadlineTime)
	})

	t.Run("unavailable day keeps nil deadline", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, nil)

		day, err := svc.UpsertDay(context.Background(), UpsertDayInput{
			TargetDate:  "2025-06-16",
			IsAvailable: false,
		}, 1)
		require.NoError(t, err)
		assert.Nil(t, day.DeadlineTime)
	})

	t.Run("rejects malformed deadline", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, nil)

		_, err := svc.UpsertDay(context.Background(), UpsertDayInput{
			TargetDate:   "2025-06-16",
			IsAvailable:  true,
			DeadlineTime: strPtr("25:00"),
		}, 1)
		assert.ErrorIs(t, err, ordering.ErrInvalidTimeFormat)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, nil)

		_, err := svc.UpsertDay(context.Background(), UpsertDayInput{
			TargetDate:  "16/06/2025",
			IsAvailable: true,
		}, 1)
		assert.ErrorIs(t, err, ordering.ErrInvalidDateFormat)
	})

	t.Run("second upsert overwrites the first", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewService(repo, nil)

		_, err := svc.UpsertDay(context.Background(), UpsertDayInput{TargetDate: "2025-06-16", IsAvailable: true}, 1)
		require.NoError(t, err)
		day, err := svc.UpsertDay(context.Background(), UpsertDayInput{TargetDate: "2025-06-16", IsAvailable: false}, 1)
		require.NoError(t, err)
		assert.False(t, day.IsAvailable)
		assert.Len(t, repo.days, 1)
	})
}
