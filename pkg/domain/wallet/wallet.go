// Package wallet defines the partner wallet and its append-only transaction
// log.
//
// Invariants:
//   - TotalBalance == AvailableBalance + PendingBalance at all times.
//   - AvailableBalance never goes negative; every debit is checked against it.
//   - Every balance mutation appends exactly one Transaction capturing
//     BalanceBefore/BalanceAfter in the same atomic unit as the balance write.
package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a wallet. Wallets are created lazily and never deleted.
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// TransactionType classifies a wallet transaction. The amount is always
// positive; the type implies the direction.
type TransactionType string

const (
	TypeCredit           TransactionType = "credit"
	TypeDebit            TransactionType = "debit"
	TypeCommissionEarned TransactionType = "commission_earned"
	TypePayoutDeducted   TransactionType = "payout_deducted"
	TypeRefundReceived   TransactionType = "refund_received"
	TypeBonusAdded       TransactionType = "bonus_added"
	TypeAdjustment       TransactionType = "adjustment"
	TypeFeeDeducted      TransactionType = "fee_deducted"
)

// IsCredit reports whether the type increases the available balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TypeCredit, TypeCommissionEarned, TypeRefundReceived, TypeBonusAdded:
		return true
	}
	return false
}

// IsDebit reports whether the type decreases the available balance.
// Adjustments are treated as debits, matching the admin adjustment flow.
func (t TransactionType) IsDebit() bool {
	switch t {
	case TypeDebit, TypePayoutDeducted, TypeFeeDeducted, TypeAdjustment:
		return true
	}
	return false
}

// Wallet is a partner's money balance. One wallet per partner.
type Wallet struct {
	ID                  uuid.UUID
	PartnerID           uuid.UUID
	AvailableBalance    decimal.Decimal
	PendingBalance      decimal.Decimal
	TotalBalance        decimal.Decimal
	Currency            string
	Status              Status
	LastTransactionDate *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// New returns a zero-balance active wallet for the partner.
func New(partnerID uuid.UUID, currency string) *Wallet {
	return &Wallet{
		ID:               uuid.New(),
		PartnerID:        partnerID,
		AvailableBalance: decimal.Zero,
		PendingBalance:   decimal.Zero,
		TotalBalance:     decimal.Zero,
		Currency:         currency,
		Status:           StatusActive,
	}
}

// CanDebit reports whether amount can leave the available balance.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Status == StatusActive && w.AvailableBalance.GreaterThanOrEqual(amount)
}

// UpdateTotals recomputes TotalBalance from its parts.
func (w *Wallet) UpdateTotals() {
	w.TotalBalance = w.AvailableBalance.Add(w.PendingBalance)
}

// Transaction is one immutable row of the wallet's ledger.
type Transaction struct {
	ID                   uuid.UUID
	TransactionReference string
	WalletID             uuid.UUID
	PartnerID            uuid.UUID
	Type                 TransactionType
	Amount               decimal.Decimal
	BalanceBefore        decimal.Decimal
	BalanceAfter         decimal.Decimal
	Currency             string
	Description          string
	ReferenceID          string
	Notes                string
	CreatedBy            uuid.UUID
	CreatedAt            time.Time
}

// Signed returns the transaction amount with its direction applied, for
// folding a wallet's history back into a balance.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}
