package status

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
)

func TestEntryLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	e := NewPending("2024-03-04", period.KindDaily, now)
	require.NotNil(t, e.LastAttemptAt)
	assert.Equal(t, StatusPending, e.Status)
	assert.True(t, e.RetryDue(now))

	retryAt := now.Add(30 * time.Minute)
	e.MarkWaiting(now, retryAt)
	assert.Equal(t, StatusWaiting, e.Status)
	assert.False(t, e.RetryDue(now.Add(29*time.Minute)))
	assert.True(t, e.RetryDue(retryAt))

	e.MarkFailed(now, errors.New("boom"))
	assert.Equal(t, StatusFailed, e.Status)
	assert.Equal(t, "boom", e.ErrorMessage)
	assert.Nil(t, e.NextRetryAt)

	e.MarkSuccess(now)
	assert.Equal(t, StatusSuccess, e.Status)
	assert.Empty(t, e.ErrorMessage)
}

func TestEntryLeaseExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	old := now.Add(-20 * time.Minute)

	tests := []struct {
		name  string
		entry Entry
		lease time.Duration
		want  bool
	}{
		{name: "fresh pending", entry: Entry{Status: StatusPending, LastAttemptAt: &now}, lease: 15 * time.Minute},
		{name: "stale pending", entry: Entry{Status: StatusPending, LastAttemptAt: &old}, lease: 15 * time.Minute, want: true},
		{name: "pending without attempt", entry: Entry{Status: StatusPending}, lease: 15 * time.Minute, want: true},
		{name: "lease disabled", entry: Entry{Status: StatusPending, LastAttemptAt: &old}},
		{name: "not pending", entry: Entry{Status: StatusFailed, LastAttemptAt: &old}, lease: time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.entry.LeaseExpired(now, tt.lease))
		})
	}
}

func TestStatusValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusPending, StatusWaiting, StatusSuccess, StatusFailed} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("Syncing").Valid())
}
