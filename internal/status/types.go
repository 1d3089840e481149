// Package status provides the period registry entry model and its lifecycle.
package status

import (
	"time"

	"github.com/google/uuid"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
)

// Status represents the sync state of one period
type Status string

const (
	// StatusPending means the period has been dispatched and is being handled
	StatusPending Status = "pending"

	// StatusWaiting means the upstream returned nothing; retry after NextRetryAt
	StatusWaiting Status = "waiting"

	// StatusSuccess means the period's data was persisted
	StatusSuccess Status = "success"

	// StatusFailed means the last attempt ended with an error
	StatusFailed Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWaiting, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Entry is the registry record for one (period, kind)
type Entry struct {
	// ID is the primary key of the entry
	ID uuid.UUID `json:"id"`

	// PeriodID is a day (YYYY-MM-DD) or an ISO week (YYYY-Www)
	PeriodID string `json:"periodId"`

	// Kind is the report quality the entry tracks
	Kind period.Kind `json:"kind"`

	// Status is the current lifecycle state
	Status Status `json:"status"`

	// LastAttemptAt is the time the period was last dispatched or finished
	LastAttemptAt *time.Time `json:"lastAttemptAt,omitempty"`

	// NextRetryAt is the earliest time a Waiting entry may be retried
	NextRetryAt *time.Time `json:"nextRetryAt,omitempty"`

	// IsFinal is true once the weekly reconciliation has been stored.
	// Only weekly entries are ever final.
	IsFinal bool `json:"isFinal"`

	// ErrorMessage holds the error of the last failed attempt
	ErrorMessage string `json:"errorMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPending returns a fresh Pending entry dispatched at now.
func NewPending(periodID string, kind period.Kind, now time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		PeriodID:      periodID,
		Kind:          kind,
		Status:        StatusPending,
		LastAttemptAt: &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkSuccess records a successful attempt.
func (e *Entry) MarkSuccess(now time.Time) {
	e.Status = StatusSuccess
	e.LastAttemptAt = &now
	e.NextRetryAt = nil
	e.ErrorMessage = ""
	e.UpdatedAt = now
}

// MarkWaiting records an empty upstream result; the period becomes eligible again at retryAt.
func (e *Entry) MarkWaiting(now, retryAt time.Time) {
	e.Status = StatusWaiting
	e.LastAttemptAt = &now
	e.NextRetryAt = &retryAt
	e.ErrorMessage = ""
	e.UpdatedAt = now
}

// MarkFailed records a failed attempt.
func (e *Entry) MarkFailed(now time.Time, err error) {
	e.Status = StatusFailed
	e.LastAttemptAt = &now
	e.NextRetryAt = nil
	e.ErrorMessage = ""
	if err != nil {
		e.ErrorMessage = err.Error()
	}
	e.UpdatedAt = now
}

// RetryDue reports whether the entry's retry time has elapsed (or is unset).
func (e *Entry) RetryDue(now time.Time) bool {
	return e.NextRetryAt == nil || !e.NextRetryAt.After(now)
}

// LeaseExpired reports whether a Pending entry has been in flight longer than lease.
// A non-positive lease never expires.
func (e *Entry) LeaseExpired(now time.Time, lease time.Duration) bool {
	if e.Status != StatusPending || lease <= 0 {
		return false
	}
	if e.LastAttemptAt == nil {
		return true
	}
	return now.Sub(*e.LastAttemptAt) >= lease
}
