package dto

import (
	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/domain/bank"
)

// CreateBankAccount is the input for registering a payout destination.
// PartnerID is set for admin-initiated registration; otherwise the actor is
// the owner.
type CreateBankAccount struct {
	PartnerID         *uuid.UUID
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
	BankName          string
	BranchName        string
	AccountType       bank.AccountType
	IsPrimary         bool
}

// UpdateBankAccount updates mutable fields only. The account number cannot
// change after creation; a new account must be added instead.
type UpdateBankAccount struct {
	AccountHolderName *string
	BankName          *string
	BranchName        *string
	IFSCCode          *string
}

// VerifyBankAccount records how a pending account was verified.
type VerifyBankAccount struct {
	VerificationMethod    string
	VerificationReference string
	Notes                 string
}
