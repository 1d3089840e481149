package sync

import (
	"time"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
)

// eligibilityChecker decides whether a registry entry may be dispatched again.
type eligibilityChecker struct {
	pendingLease time.Duration
}

// inFlight reports whether a Pending entry is still held by a running (or recently crashed) task.
func (c eligibilityChecker) inFlight(entry *status.Entry, now time.Time) bool {
	return entry.Status == status.StatusPending && !entry.LeaseExpired(now, c.pendingLease)
}

// dueForRetry is the foreground first-pass filter: Pending or Waiting entries whose
// retry time has elapsed. A Pending entry qualifies only once its lease expired.
func (c eligibilityChecker) dueForRetry(entry *status.Entry, now time.Time) bool {
	switch entry.Status {
	case status.StatusWaiting:
		return entry.RetryDue(now)
	case status.StatusPending:
		return entry.LeaseExpired(now, c.pendingLease) && entry.RetryDue(now)
	default:
		return false
	}
}

// dayNeedsSync is the foreground day walk filter. A missing entry always needs sync.
func (c eligibilityChecker) dayNeedsSync(entry *status.Entry, now time.Time) bool {
	if entry == nil {
		return true
	}
	switch entry.Status {
	case status.StatusSuccess:
		return false
	case status.StatusPending:
		return !c.inFlight(entry, now)
	case status.StatusWaiting:
		return entry.RetryDue(now)
	default:
		return true
	}
}

// weekNeedsSync is the background filter. Final and successful weeks are done.
func (c eligibilityChecker) weekNeedsSync(entry *status.Entry, now time.Time) bool {
	if entry == nil {
		return true
	}
	if entry.IsFinal {
		return false
	}
	return c.dayNeedsSync(entry, now)
}

// olderAttempt orders entries by last attempt, never-attempted first, then by period identifier.
func olderAttempt(a, b *status.Entry) bool {
	switch {
	case a.LastAttemptAt == nil && b.LastAttemptAt == nil:
		return a.PeriodID < b.PeriodID
	case a.LastAttemptAt == nil:
		return true
	case b.LastAttemptAt == nil:
		return false
	case a.LastAttemptAt.Equal(*b.LastAttemptAt):
		return a.PeriodID < b.PeriodID
	default:
		return a.LastAttemptAt.Before(*b.LastAttemptAt)
	}
}
