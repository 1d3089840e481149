package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db/dbtest"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
)

var testNow = time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC)

func newTestRegistry(t *testing.T) *DBRegistry {
	t.Helper()
	conn := dbtest.OpenSQLite(t)
	return NewDBRegistry(conn.DB, WithClock(func() time.Time { return testNow }))
}

func TestGetByPeriodNotFound(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	_, err := r.GetByPeriod(context.Background(), "2024-03-04", period.KindDaily)
	require.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestRegisterPendingIsIdempotent(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	ctx := context.Background()

	created, err := r.RegisterPending(ctx, "2024-03-04", period.KindDaily)
	require.NoError(t, err)
	assert.True(t, created)

	entry, err := r.GetByPeriod(ctx, "2024-03-04", period.KindDaily)
	require.NoError(t, err)
	assert.Equal(t, status.StatusPending, entry.Status)
	require.NotNil(t, entry.LastAttemptAt)
	assert.True(t, testNow.Equal(*entry.LastAttemptAt))

	entry.MarkSuccess(testNow)
	require.NoError(t, r.Upsert(ctx, entry))

	created, err = r.RegisterPending(ctx, "2024-03-04", period.KindDaily)
	require.NoError(t, err)
	assert.False(t, created)

	entry, err = r.GetByPeriod(ctx, "2024-03-04", period.KindDaily)
	require.NoError(t, err)
	assert.Equal(t, status.StatusSuccess, entry.Status, "existing entry is left untouched")
}

func TestUpsertRoundTrip(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	ctx := context.Background()

	entry := status.NewPending("2024-W10", period.KindWeekly, testNow)
	entry.MarkWaiting(testNow, testNow.Add(30*time.Minute))
	require.NoError(t, r.Upsert(ctx, entry))

	got, err := r.GetByPeriod(ctx, "2024-W10", period.KindWeekly)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, status.StatusWaiting, got.Status)
	require.NotNil(t, got.NextRetryAt)
	assert.True(t, testNow.Add(30*time.Minute).Equal(*got.NextRetryAt))
	assert.Empty(t, got.ErrorMessage)

	got.MarkFailed(testNow, errors.New("unauthorized"))
	require.NoError(t, r.Upsert(ctx, got))

	got, err = r.GetByPeriod(ctx, "2024-W10", period.KindWeekly)
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, got.Status)
	assert.Equal(t, "unauthorized", got.ErrorMessage)
	assert.Nil(t, got.NextRetryAt)
}

func TestUpsertValidation(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	ctx := context.Background()

	daily := status.NewPending("2024-03-04", period.KindDaily, testNow)
	daily.IsFinal = true
	assert.ErrorIs(t, r.Upsert(ctx, daily), ErrFinalNotWeekly)

	assert.Error(t, r.Upsert(ctx, nil))
	assert.Error(t, r.Upsert(ctx, &status.Entry{PeriodID: "x", Kind: "monthly", Status: status.StatusPending}))
	assert.Error(t, r.Upsert(ctx, &status.Entry{PeriodID: "x", Kind: period.KindDaily, Status: "done"}))
	assert.Error(t, r.Upsert(ctx, &status.Entry{Kind: period.KindDaily, Status: status.StatusPending}))
}

func TestFinalFlagNeverClearedByUpsert(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.RegisterPending(ctx, "2024-W10", period.KindWeekly)
	require.NoError(t, err)
	require.NoError(t, r.MarkFinal(ctx, "2024-W10", period.KindWeekly))

	entry, err := r.GetByPeriod(ctx, "2024-W10", period.KindWeekly)
	require.NoError(t, err)
	assert.True(t, entry.IsFinal)

	entry.IsFinal = false
	entry.MarkWaiting(testNow, testNow.Add(time.Hour))
	require.NoError(t, r.Upsert(ctx, entry))

	entry, err = r.GetByPeriod(ctx, "2024-W10", period.KindWeekly)
	require.NoError(t, err)
	assert.True(t, entry.IsFinal)
}

func TestMarkFinal(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.MarkFinal(ctx, "2024-03-04", period.KindDaily), ErrFinalNotWeekly)
	assert.ErrorIs(t, r.MarkFinal(ctx, "2024-W10", period.KindWeekly), ErrPeriodNotFound)
}

func TestReset(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	ctx := context.Background()

	entry := status.NewPending("2024-W10", period.KindWeekly, testNow)
	entry.MarkSuccess(testNow)
	entry.IsFinal = true
	require.NoError(t, r.Upsert(ctx, entry))

	require.NoError(t, r.Reset(ctx, "2024-W10", period.KindWeekly))
	got, err := r.GetByPeriod(ctx, "2024-W10", period.KindWeekly)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, status.StatusPending, got.Status)
	assert.False(t, got.IsFinal)
	assert.Nil(t, got.LastAttemptAt)

	// Reset also creates missing entries.
	require.NoError(t, r.Reset(ctx, "2024-03-04", period.KindDaily))
	_, err = r.GetByPeriod(ctx, "2024-03-04", period.KindDaily)
	require.NoError(t, err)
}

func TestListings(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	ctx := context.Background()

	seed := map[string]status.Status{
		"2024-03-04": status.StatusPending,
		"2024-03-05": status.StatusWaiting,
		"2024-03-06": status.StatusSuccess,
		"2024-03-07": status.StatusFailed,
	}
	for id, st := range seed {
		e := status.NewPending(id, period.KindDaily, testNow)
		e.Status = st
		require.NoError(t, r.Upsert(ctx, e))
	}
	_, err := r.RegisterPending(ctx, "2024-W10", period.KindWeekly)
	require.NoError(t, err)

	open, err := r.ListPendingOrWaiting(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 3)

	nonSuccess, err := r.ListNonSuccess(ctx)
	require.NoError(t, err)
	assert.Len(t, nonSuccess, 4)
	for _, e := range nonSuccess {
		assert.NotEqual(t, status.StatusSuccess, e.Status)
	}

	weekly, err := r.ListByKind(ctx, period.KindWeekly)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, "2024-W10", weekly[0].PeriodID)

	inRange, err := r.ListInRange(ctx, period.KindDaily, "2024-03-05", "2024-03-06")
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	assert.Equal(t, "2024-03-05", inRange[0].PeriodID)
}
