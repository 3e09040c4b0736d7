// Package payout defines the payout request workflow and the payout record
// created when an approved request is processed.
//
// Request state machine:
//
//	pending -> approved -> processing -> completed
//	pending -> rejected
//	pending|approved -> cancelled
//	processing -> failed
//
// rejected, cancelled, completed and failed are terminal.
package payout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a payout request, and of a payout (which only ever uses
// processing, completed and failed).
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Type of a payout request.
type Type string

const (
	TypeCommission Type = "commission"
	TypeRefund     Type = "refund"
	TypeBonus      Type = "bonus"
	TypeAdjustment Type = "adjustment"
	TypeWithdrawal Type = "withdrawal"
	TypeSettlement Type = "settlement"
)

// Method by which funds are disbursed.
type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodUPI          Method = "upi"
	MethodWallet       Method = "wallet"
	MethodCheque       Method = "cheque"
	MethodCash         Method = "cash"
)

// Request is a partner- or admin-initiated ask for money movement. It is
// mutated only through the state machine and never physically deleted.
type Request struct {
	ID               uuid.UUID
	RequestReference string
	PartnerID        uuid.UUID
	Type             Type
	Status           Status
	Amount           decimal.Decimal
	Currency         string
	Description      string
	BankAccountID    *uuid.UUID
	PayoutMethod     Method
	RequestedDate    *time.Time
	ApprovedDate     *time.Time
	RejectedDate     *time.Time
	ProcessedDate    *time.Time
	CompletedDate    *time.Time
	ProcessingFee    decimal.Decimal
	NetAmount        decimal.Decimal
	Notes            string
	RejectionReason  string
	AutoApprove      bool
	CreatedBy        uuid.UUID
	UpdatedBy        uuid.UUID
	ApprovedBy       *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CanBeApproved also gates updates: only a pending request may change.
func (r *Request) CanBeApproved() bool { return r.Status == StatusPending }

// CanBeRejected reports whether the request may be rejected.
func (r *Request) CanBeRejected() bool { return r.Status == StatusPending }

// CanBeProcessed reports whether money may start moving for this request.
func (r *Request) CanBeProcessed() bool { return r.Status == StatusApproved }

// CanBeCancelled reports whether the request may be cancelled.
func (r *Request) CanBeCancelled() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// IsTerminal reports whether no further transitions are legal.
func (r *Request) IsTerminal() bool {
	switch r.Status {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Payout is the money-movement record created from an approved request.
// Exactly one payout exists per request; its status is independent of the
// request's and covers only processing -> completed | failed.
type Payout struct {
	ID                    uuid.UUID
	PayoutReference       string
	RequestID             uuid.UUID
	PartnerID             uuid.UUID
	Status                Status
	Amount                decimal.Decimal
	ProcessingFee         decimal.Decimal
	NetAmount             decimal.Decimal
	Currency              string
	BankAccountID         *uuid.UUID
	PayoutMethod          Method
	BankReference         string
	ExternalTransactionID string
	ProcessedDate         *time.Time
	CompletedDate         *time.Time
	FailedDate            *time.Time
	Notes                 string
	FailureReason         string
	ProcessedBy           uuid.UUID
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// CanBeCompleted reports whether the payout may be marked completed.
func (p *Payout) CanBeCompleted() bool { return p.Status == StatusProcessing }

// CanBeFailed reports whether the payout may be marked failed.
func (p *Payout) CanBeFailed() bool { return p.Status == StatusProcessing }
