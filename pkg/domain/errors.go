// Package domain holds the error taxonomy and cross-entity types shared by
// the payout core. Entity-specific behavior lives in the subpackages
// (wallet, bank, payout, audit).
package domain

import "errors"

var (
	// ErrWalletNotFound is returned when a partner wallet cannot be found.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrBankAccountNotFound is returned when a bank account cannot be found.
	ErrBankAccountNotFound = errors.New("bank account not found")

	// ErrPayoutRequestNotFound is returned when a payout request cannot be found.
	ErrPayoutRequestNotFound = errors.New("payout request not found")

	// ErrPayoutNotFound is returned when a payout cannot be found.
	ErrPayoutNotFound = errors.New("payout not found")

	// ErrInsufficientBalance is returned when a debit exceeds the wallet's
	// available balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrInvalidStateTransition is returned when an operation is attempted
	// against an entity whose current status does not permit it.
	ErrInvalidStateTransition = errors.New("operation not permitted in current status")

	// ErrWalletExists is returned when creating a wallet for a partner that
	// already has one.
	ErrWalletExists = errors.New("wallet already exists")

	// ErrDuplicateBankAccount is returned when the account number already
	// exists in the registry.
	ErrDuplicateBankAccount = errors.New("bank account already exists")

	// ErrBankAccountInUse is returned when deleting a bank account that is
	// referenced by a pending, approved or processing payout request.
	ErrBankAccountInUse = errors.New("bank account has pending payouts")

	// ErrForbidden is returned when the actor lacks scope over the target
	// partner's resources.
	ErrForbidden = errors.New("access denied")

	// ErrAmountMustBePositive is returned when a monetary amount is zero or negative.
	ErrAmountMustBePositive = errors.New("amount must be positive")

	// ErrNetAmountNotPositive is returned when amount minus processing fee
	// leaves nothing to disburse.
	ErrNetAmountNotPositive = errors.New("net amount after fees must be positive")

	// ErrBankAccountNotUsable is returned when a request references a bank
	// account that is missing, foreign, or not verified.
	ErrBankAccountNotUsable = errors.New("invalid or unverified bank account")

	// ErrPayoutMethodNotAllowed is returned when the requested payout method
	// is not in the allowed set from settings.
	ErrPayoutMethodNotAllowed = errors.New("payout method not allowed")

	// ErrAmountOutOfBounds is returned when the requested amount falls outside
	// the configured minimum/maximum payout amounts.
	ErrAmountOutOfBounds = errors.New("amount outside allowed payout bounds")

	// ErrInvalidTransactionType is returned when a ledger posting's type does
	// not match the requested direction.
	ErrInvalidTransactionType = errors.New("transaction type does not match direction")
)
