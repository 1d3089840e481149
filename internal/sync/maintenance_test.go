package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db/queries"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	statemocks "github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state/mocks"
)

func (e *testEnv) maintenance(observer Observer) *Maintenance {
	return NewMaintenance(e.registry, e.writer, e.conn.Queries, testCalendar, 0, observer).WithClock(e.clock)
}

func (e *testEnv) insertRecord(t *testing.T, table, date, size string, qty int64, final bool) {
	t.Helper()
	require.NoError(t, e.conn.Queries.InsertRecord(context.Background(), table, queries.RecordRow{
		Date:              date,
		ProductID:         7,
		Article:           "ART-7",
		SizeLabel:         size,
		IsFinal:           final,
		Quantity:          qty,
		Price:             decimal.NewFromInt(10),
		Amount:            decimal.NewFromInt(10 * qty),
		Payout:            decimal.Zero,
		Logistics:         decimal.Zero,
		Penalty:           decimal.Zero,
		AdditionalPayment: decimal.Zero,
		StorageFee:        decimal.Zero,
		Deduction:         decimal.Zero,
		Acceptance:        decimal.Zero,
	}))
}

func TestRecover(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, "2024-03-05", period.KindDaily, status.StatusFailed, ago(time.Hour), nil, false)
	env.seed(t, "2024-03-06", period.KindDaily, status.StatusPending, ago(time.Minute), nil, false)
	env.seed(t, "2024-W09", period.KindWeekly, status.StatusWaiting, ago(time.Hour), in(time.Hour), false)
	env.seed(t, "2024-03-04", period.KindDaily, status.StatusSuccess, ago(time.Hour), nil, false)

	failed := env.entry(t, "2024-03-05", period.KindDaily)
	failed.ErrorMessage = "fetch failed: boom"
	require.NoError(t, env.registry.Upsert(ctx, failed))

	events := &eventRecorder{}
	n, err := env.maintenance(events).Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, events.events, 3)
	for _, e := range events.events {
		assert.Equal(t, EventPeriodRecovered, e.Type)
	}

	for _, p := range []struct {
		id   string
		kind period.Kind
	}{
		{"2024-03-05", period.KindDaily},
		{"2024-03-06", period.KindDaily},
		{"2024-W09", period.KindWeekly},
	} {
		entry := env.entry(t, p.id, p.kind)
		assert.Equal(t, status.StatusWaiting, entry.Status, p.id)
		require.NotNil(t, entry.NextRetryAt, p.id)
		assert.True(t, entry.NextRetryAt.Equal(env.now), p.id)
		assert.Empty(t, entry.ErrorMessage, p.id)
		assert.True(t, entry.RetryDue(env.now), p.id)
	}
	assert.Equal(t, status.StatusSuccess, env.entry(t, "2024-03-04", period.KindDaily).Status)

	// Recovered days are picked up again, oldest attempt first.
	task, err := env.scheduler().NextForeground(ctx, env.now, nil)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "2024-03-05", task.PeriodID)
}

func TestRecoverNothingToDo(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	n, err := env.maintenance(nil).Recover(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecoverRegistryError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	registry := statemocks.NewMockRegistry(ctrl)
	registry.EXPECT().ListNonSuccess(gomock.Any()).Return(nil, errors.New("locked"))

	m := NewMaintenance(registry, nil, nil, testCalendar, 0, nil)
	_, err := m.Recover(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestRepairCorruption(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	// 2024-W09 holds a size-less sale record with an impossible quantity.
	env.insertRecord(t, queries.TableSaleRecords, "2024-02-28", "", 1500, true)
	env.insertRecord(t, queries.TableReturnRecords, "2024-02-28", "M", 1, true)
	env.seed(t, "2024-W09", period.KindWeekly, status.StatusSuccess, ago(time.Hour), nil, true)
	env.seed(t, "2024-02-28", period.KindDaily, status.StatusSuccess, ago(48*time.Hour), nil, false)

	// 2024-W08 is healthy: a large quantity with a size label is not suspicious.
	env.insertRecord(t, queries.TableSaleRecords, "2024-02-20", "L", 1500, true)
	env.seed(t, "2024-W08", period.KindWeekly, status.StatusSuccess, ago(time.Hour), nil, true)

	events := &eventRecorder{}
	repaired, err := env.maintenance(events).RepairCorruption(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-W09"}, repaired)

	require.Len(t, events.events, 1)
	assert.Equal(t, EventWeekRepaired, events.events[0].Type)
	assert.Equal(t, "2024-W09", events.events[0].PeriodID)
	assert.Equal(t, 2, events.events[0].Records)

	week := env.entry(t, "2024-W09", period.KindWeekly)
	assert.Equal(t, status.StatusPending, week.Status)
	assert.False(t, week.IsFinal)
	day := env.entry(t, "2024-02-28", period.KindDaily)
	assert.Equal(t, status.StatusPending, day.Status)

	for _, table := range []string{queries.TableSaleRecords, queries.TableReturnRecords} {
		n, err := env.conn.Queries.CountRecordsInRange(ctx, table, "2024-02-26", "2024-03-03")
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}
	n, err := env.conn.Queries.CountRecordsInRange(ctx, queries.TableSaleRecords, "2024-02-19", "2024-02-25")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, env.entry(t, "2024-W08", period.KindWeekly).IsFinal)

	// Days never registered stay unregistered.
	_, err = env.registry.GetByPeriod(ctx, "2024-02-27", period.KindDaily)
	assert.Error(t, err)

	// The week is scheduled again by the background loop.
	task, err := env.scheduler().NextBackground(ctx, env.now, nil)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "2024-W09", task.PeriodID)
}

func TestRepairCorruptionMultipleWeeksInOrder(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.insertRecord(t, queries.TableSaleRecords, "2024-03-01", "", 2000, true)
	env.insertRecord(t, queries.TableSaleRecords, "2024-02-08", "", 1001, true)
	env.insertRecord(t, queries.TableSaleRecords, "2024-02-09", "", 5000, true)

	repaired, err := env.maintenance(nil).RepairCorruption(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-W06", "2024-W09"}, repaired)
}

func TestRepairCorruptionClean(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	// The threshold itself is not above the threshold.
	env.insertRecord(t, queries.TableSaleRecords, "2024-03-01", "", 1000, true)

	repaired, err := env.maintenance(nil).RepairCorruption(context.Background())
	require.NoError(t, err)
	assert.Empty(t, repaired)
}
