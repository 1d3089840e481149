package sync

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/database"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db/dbtest"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/report"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/writer"
)

var (
	testCalendar = period.MustCalendar(period.DefaultOffset)
	// Wednesday 2024-03-06 12:00 at +03:00, inside 2024-W10.
	testNow     = time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	testMinDate = time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)
)

const testLease = 15 * time.Minute

type testEnv struct {
	conn     *db.Connection
	registry *state.DBRegistry
	writer   writer.SyncWriter
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{conn: dbtest.OpenSQLite(t), now: testNow}
	env.registry = state.NewDBRegistry(env.conn.DB, state.WithClock(env.clock))
	w, err := writer.NewSyncWriter(database.DialectSQLite, env.conn.DB, env.registry)
	require.NoError(t, err)
	env.writer = w
	return env
}

func (e *testEnv) clock() time.Time {
	return e.now
}

func (e *testEnv) scheduler() Scheduler {
	return NewScheduler(e.registry, testCalendar, testMinDate, testLease)
}

// seed writes an entry with the given status. lastAttempt and retryAt are offsets from now.
func (e *testEnv) seed(
	t *testing.T, periodID string, kind period.Kind, st status.Status, lastAttempt, retryAt *time.Duration, final bool,
) {
	t.Helper()
	entry := status.NewPending(periodID, kind, e.now)
	entry.Status = st
	entry.LastAttemptAt = nil
	if lastAttempt != nil {
		at := e.now.Add(*lastAttempt)
		entry.LastAttemptAt = &at
	}
	if retryAt != nil {
		at := e.now.Add(*retryAt)
		entry.NextRetryAt = &at
	}
	entry.IsFinal = final
	require.NoError(t, e.registry.Upsert(context.Background(), entry))
}

func (e *testEnv) entry(t *testing.T, periodID string, kind period.Kind) *status.Entry {
	t.Helper()
	entry, err := e.registry.GetByPeriod(context.Background(), periodID, kind)
	require.NoError(t, err)
	return entry
}

func ago(d time.Duration) *time.Duration {
	v := -d
	return &v
}

func in(d time.Duration) *time.Duration {
	return &d
}

func saleRow(id int64, date string, product int64, size string, qty int64, amount string) report.Row {
	return report.Row{
		RowID:        id,
		Date:         date + "T10:00:00",
		ProductID:    product,
		Article:      "ART-1",
		SizeLabel:    size,
		Operation:    "Продажа",
		Quantity:     qty,
		RetailAmount: decimal.RequireFromString(amount),
		Payout:       decimal.RequireFromString(amount),
	}
}

func returnRow(id int64, date string, product int64, size string, qty int64, amount string) report.Row {
	row := saleRow(id, date, product, size, qty, amount)
	row.Operation = "Возврат"
	return row
}

func mustTask(t *testing.T, periodID string) *Task {
	t.Helper()
	task, err := NewTask(testCalendar, periodID)
	require.NoError(t, err)
	return task
}
