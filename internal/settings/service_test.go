package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	stored Settings
	loads  int
}

func (m *mockRepository) Load(ctx context.Context) (Settings, error) {
	m.loads++
	return m.stored, nil
}

func (m *mockRepository) Save(ctx context.Context, s Settings) (Settings, error) {
	m.stored = s
	return m.stored, nil
}

func intPtr(v int) *int { return &v }

func TestSnapshot(t *testing.T) {
	repo := &mockRepository{stored: Settings{MaxOrderDaysAhead: intPtr(14), ClosingDay: intPtr(25)}}
	svc := NewService(repo, nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.MaxOrderDaysAhead)
	assert.Equal(t, 14, *snap.MaxOrderDaysAhead)

	ordSnap, err := svc.OrderingSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ordSnap.ClosingDay)
	assert.Equal(t, 25, *ordSnap.ClosingDay)
	assert.Equal(t, snap.MaxOrderDaysAhead, ordSnap.MaxDaysAhead)
}

func TestSnapshotMissingConfiguration(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)

	snap, err := svc.OrderingSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.MaxDaysAhead)
	assert.Nil(t, snap.ClosingDay)
}

func TestUpdateValidation(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)

	_, err := svc.Update(context.Background(), UpdateInput{MaxOrderDaysAhead: intPtr(-1)}, 1)
	assert.ErrorIs(t, err, ErrNegativeDaysAhead)

	_, err = svc.Update(context.Background(), UpdateInput{ClosingDay: intPtr(0)}, 1)
	assert.ErrorIs(t, err, ErrClosingDayRange)

	_, err = svc.Update(context.Background(), UpdateInput{ClosingDay: intPtr(32)}, 1)
	assert.ErrorIs(t, err, ErrClosingDayRange)
}

func TestUpdatePersists(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)

	saved, err := svc.Update(context.Background(), UpdateInput{
		MaxOrderDaysAhead: intPtr(0),
		ClosingDay:        intPtr(31),
	}, 1)
	require.NoError(t, err)
	require.NotNil(t, saved.MaxOrderDaysAhead)
	assert.Equal(t, 0, *saved.MaxOrderDaysAhead)
	require.NotNil(t, saved.ClosingDay)
	assert.Equal(t, 31, *saved.ClosingDay)

	// zero days ahead is valid and means same-day ordering only
	snap, err := svc.OrderingSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, *snap.MaxDaysAhead)
}

func TestUpdateClearsConstraints(t *testing.T) {
	repo := &mockRepository{stored: Settings{MaxOrderDaysAhead: intPtr(14), ClosingDay: intPtr(25)}}
	svc := NewService(repo, nil)

	saved, err := svc.Update(context.Background(), UpdateInput{}, 1)
	require.NoError(t, err)
	assert.Nil(t, saved.MaxOrderDaysAhead)
	assert.Nil(t, saved.ClosingDay)
}
