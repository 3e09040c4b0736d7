// Package events defines the domain events the payout core emits after a
// transaction commits. Delivery is fire-and-forget; a failed or missing
// subscriber never affects the originating operation.
package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// Event type constants, used for bus registration.
const (
	EventTypePayoutRequestCreated   = "PayoutRequestCreated"
	EventTypePayoutRequestApproved  = "PayoutRequestApproved"
	EventTypePayoutRequestRejected  = "PayoutRequestRejected"
	EventTypePayoutRequestCancelled = "PayoutRequestCancelled"
	EventTypePayoutProcessing       = "PayoutProcessing"
	EventTypePayoutCompleted        = "PayoutCompleted"
	EventTypePayoutFailed           = "PayoutFailed"
	EventTypeWalletCredited         = "WalletCredited"
	EventTypeWalletDebited          = "WalletDebited"
)

// Factories constructs an empty event per type, used by stream-backed buses
// to decode envelopes back into typed events.
var Factories = map[string]func() Event{
	EventTypePayoutRequestCreated:   func() Event { return &PayoutRequestCreated{} },
	EventTypePayoutRequestApproved:  func() Event { return &PayoutRequestApproved{} },
	EventTypePayoutRequestRejected:  func() Event { return &PayoutRequestRejected{} },
	EventTypePayoutRequestCancelled: func() Event { return &PayoutRequestCancelled{} },
	EventTypePayoutProcessing:       func() Event { return &PayoutProcessing{} },
	EventTypePayoutCompleted:        func() Event { return &PayoutCompleted{} },
	EventTypePayoutFailed:           func() Event { return &PayoutFailed{} },
	EventTypeWalletCredited:         func() Event { return &WalletCredited{} },
	EventTypeWalletDebited:          func() Event { return &WalletDebited{} },
}

// PayoutRequestEvent carries the request identity shared by all request
// lifecycle events.
type PayoutRequestEvent struct {
	RequestID uuid.UUID       `json:"request_id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// PayoutRequestCreated fires after a request is persisted.
type PayoutRequestCreated struct {
	PayoutRequestEvent
	AutoApproved bool `json:"auto_approved"`
}

func (PayoutRequestCreated) Type() string { return EventTypePayoutRequestCreated }

// PayoutRequestApproved fires after an approval commits.
type PayoutRequestApproved struct{ PayoutRequestEvent }

func (PayoutRequestApproved) Type() string { return EventTypePayoutRequestApproved }

// PayoutRequestRejected fires after a rejection commits.
type PayoutRequestRejected struct {
	PayoutRequestEvent
	Reason string `json:"reason"`
}

func (PayoutRequestRejected) Type() string { return EventTypePayoutRequestRejected }

// PayoutRequestCancelled fires after a cancellation commits.
type PayoutRequestCancelled struct {
	PayoutRequestEvent
	Reason string `json:"reason"`
}

func (PayoutRequestCancelled) Type() string { return EventTypePayoutRequestCancelled }

// PayoutEvent carries the payout identity shared by payout lifecycle events.
type PayoutEvent struct {
	PayoutID  uuid.UUID       `json:"payout_id"`
	RequestID uuid.UUID       `json:"request_id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	NetAmount decimal.Decimal `json:"net_amount"`
	Currency  string          `json:"currency"`
}

// PayoutProcessing fires when a payout record is created and funds are
// reserved.
type PayoutProcessing struct{ PayoutEvent }

func (PayoutProcessing) Type() string { return EventTypePayoutProcessing }

// PayoutCompleted fires when the external rail confirms settlement.
type PayoutCompleted struct {
	PayoutEvent
	BankReference string `json:"bank_reference"`
}

func (PayoutCompleted) Type() string { return EventTypePayoutCompleted }

// PayoutFailed fires when the external rail reports failure; any withdrawal
// debit has been reversed by the time subscribers see it.
type PayoutFailed struct {
	PayoutEvent
	Reason string `json:"reason"`
}

func (PayoutFailed) Type() string { return EventTypePayoutFailed }

// WalletCredited fires after a ledger credit commits.
type WalletCredited struct {
	PartnerID       uuid.UUID       `json:"partner_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
	ReferenceID     string          `json:"reference_id,omitempty"`
}

func (WalletCredited) Type() string { return EventTypeWalletCredited }

// WalletDebited fires after a ledger debit commits.
type WalletDebited struct {
	PartnerID       uuid.UUID       `json:"partner_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
	ReferenceID     string          `json:"reference_id,omitempty"`
}

func (WalletDebited) Type() string { return EventTypeWalletDebited }
