// Package audit defines the append-only trail of payout state transitions.
// Entries are written in the same transaction as the transition they record
// and are never updated or deleted.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry records one action against a payout request or a payout. Exactly one
// of PayoutRequestID / PayoutID is set.
type Entry struct {
	ID              uuid.UUID
	PayoutRequestID *uuid.UUID
	PayoutID        *uuid.UUID
	Action          string
	PreviousStatus  string
	NewStatus       string
	Description     string
	PerformedBy     uuid.UUID
	CreatedAt       time.Time
}

// Actions written by the core. Kept as constants so history queries and
// tests agree on the vocabulary.
const (
	ActionCreated           = "created"
	ActionAutoApproved      = "auto_approved"
	ActionUpdated           = "updated"
	ActionApproved          = "approved"
	ActionRejected          = "rejected"
	ActionCancelled         = "cancelled"
	ActionProcessingStarted = "processing_started"
	ActionCompleted         = "completed"
	ActionFailed            = "failed"
)

// ForRequest builds an entry tied to a payout request.
func ForRequest(requestID uuid.UUID, action string, performedBy uuid.UUID) *Entry {
	return &Entry{
		ID:              uuid.New(),
		PayoutRequestID: &requestID,
		Action:          action,
		PerformedBy:     performedBy,
	}
}

// ForPayout builds an entry tied to a payout.
func ForPayout(payoutID uuid.UUID, action string, performedBy uuid.UUID) *Entry {
	return &Entry{
		ID:          uuid.New(),
		PayoutID:    &payoutID,
		Action:      action,
		PerformedBy: performedBy,
	}
}

// WithTransition records the previous and new status on the entry.
func (e *Entry) WithTransition(previous, next string) *Entry {
	e.PreviousStatus = previous
	e.NewStatus = next
	return e
}

// WithDescription sets the human-readable description.
func (e *Entry) WithDescription(description string) *Entry {
	e.Description = description
	return e
}
