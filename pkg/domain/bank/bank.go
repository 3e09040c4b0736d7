// Package bank defines a partner's payout destinations and their
// verification lifecycle: pending -> verified | rejected, with verified
// accounts optionally suspended later.
package bank

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status of a bank account.
type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
)

// AccountType mirrors the account categories the registry accepts.
type AccountType string

const (
	TypeSavings AccountType = "savings"
	TypeCurrent AccountType = "current"
	TypeSalary  AccountType = "salary"
	TypeNRE     AccountType = "nre"
	TypeNRO     AccountType = "nro"
)

// Account is a payout destination owned by a partner. At most one account
// per partner carries IsPrimary=true; only verified accounts may be primary
// or attached to a payout request.
type Account struct {
	ID                    uuid.UUID
	PartnerID             uuid.UUID
	AccountHolderName     string
	AccountNumber         string
	IFSCCode              string
	BankName              string
	BranchName            string
	AccountType           AccountType
	Status                Status
	IsPrimary             bool
	VerifiedDate          *time.Time
	VerifiedBy            *uuid.UUID
	VerificationMethod    string
	VerificationReference string
	RejectionReason       string
	Notes                 string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// CanBeUsedForPayout reports whether the account may back a payout request.
func (a *Account) CanBeUsedForPayout() bool {
	return a.Status == StatusVerified
}

// IsPending reports whether the account awaits verification.
func (a *Account) IsPending() bool {
	return a.Status == StatusPending
}

// MaskedAccountNumber hides all but the last four digits.
func (a *Account) MaskedAccountNumber() string {
	return MaskNumber(a.AccountNumber)
}

// MaskNumber masks an account number, keeping the last four characters.
func MaskNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
