// Package repository defines the persistence contracts of the payout core.
// Implementations are bound to a transaction session by the UnitOfWork.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/bank"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/domain/wallet"
)

// Page is a paged query result.
type Page[T any] struct {
	Items []*T
	Total int64
	Page  int
	Limit int
}

// ListParams is the common pagination input. Page is 1-based.
type ListParams struct {
	Page  int
	Limit int
}

// Normalize applies the defaults the store expects.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
}

// WalletRepository persists partner wallets. The wallet row is the only
// contended resource in the core; GetForUpdate takes a row lock so
// concurrent debits serialize.
type WalletRepository interface {
	GetByPartner(ctx context.Context, partnerID uuid.UUID) (*wallet.Wallet, error)
	// GetForUpdate locks the wallet row for the remainder of the enclosing
	// transaction. Returns domain.ErrWalletNotFound when absent.
	GetForUpdate(ctx context.Context, partnerID uuid.UUID) (*wallet.Wallet, error)
	Create(ctx context.Context, w *wallet.Wallet) error
	Update(ctx context.Context, w *wallet.Wallet) error
}

// TransactionFilters narrows a wallet transaction listing.
type TransactionFilters struct {
	Types    []wallet.TransactionType
	DateFrom *time.Time
	DateTo   *time.Time
}

// WalletTransactionRepository appends and lists ledger rows. There is no
// update or delete: the log is append-only by construction.
type WalletTransactionRepository interface {
	Create(ctx context.Context, tx *wallet.Transaction) error
	ListByPartner(
		ctx context.Context,
		partnerID uuid.UUID,
		params ListParams,
		filters TransactionFilters,
	) (*Page[wallet.Transaction], error)
}

// BankAccountRepository persists payout destinations.
type BankAccountRepository interface {
	Create(ctx context.Context, a *bank.Account) error
	Get(ctx context.Context, id uuid.UUID) (*bank.Account, error)
	// GetByAccountNumber looks up the unmasked number globally; returns
	// domain.ErrBankAccountNotFound when absent.
	GetByAccountNumber(ctx context.Context, number string) (*bank.Account, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID, status *bank.Status) ([]*bank.Account, error)
	Update(ctx context.Context, a *bank.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearPrimary drops the primary flag on all of the partner's accounts.
	ClearPrimary(ctx context.Context, partnerID uuid.UUID) error
}

// RequestFilters narrows a payout request listing.
type RequestFilters struct {
	PartnerID *uuid.UUID
	Status    *payout.Status
	Type      *payout.Type
}

// PayoutRequestRepository persists payout requests.
type PayoutRequestRepository interface {
	Create(ctx context.Context, r *payout.Request) error
	Get(ctx context.Context, id uuid.UUID) (*payout.Request, error)
	Update(ctx context.Context, r *payout.Request) error
	List(ctx context.Context, params ListParams, filters RequestFilters) (*Page[payout.Request], error)
	// ListByPartner returns every request of the partner in the window, for
	// summary folds.
	ListByPartner(ctx context.Context, partnerID uuid.UUID, from, to *time.Time) ([]*payout.Request, error)
	// CountActiveByBankAccount counts requests in pending, approved or
	// processing status referencing the account.
	CountActiveByBankAccount(ctx context.Context, bankAccountID uuid.UUID) (int64, error)
}

// PayoutFilters narrows a payout listing.
type PayoutFilters struct {
	PartnerID *uuid.UUID
	Status    *payout.Status
}

// PayoutStats backs the admin dashboard.
type PayoutStats struct {
	Total       int64
	Processing  int64
	Completed   int64
	Failed      int64
	TotalVolume decimal.Decimal
}

// PayoutRepository persists payout records.
type PayoutRepository interface {
	Create(ctx context.Context, p *payout.Payout) error
	Get(ctx context.Context, id uuid.UUID) (*payout.Payout, error)
	// GetByRequest returns the payout created from the request, enforcing the
	// one-payout-per-request invariant at read time.
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*payout.Payout, error)
	Update(ctx context.Context, p *payout.Payout) error
	List(ctx context.Context, params ListParams, filters PayoutFilters) (*Page[payout.Payout], error)
	Stats(ctx context.Context) (*PayoutStats, error)
}

// AuditRepository appends and queries the audit trail. Append-only: no
// update or delete is part of the contract.
type AuditRepository interface {
	Create(ctx context.Context, e *audit.Entry) error
	ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*audit.Entry, error)
	ListForPayout(ctx context.Context, payoutID uuid.UUID) ([]*audit.Entry, error)
}

// SettingsRepository stores the singleton payout settings row.
type SettingsRepository interface {
	// Get returns the settings, creating the default row on first read.
	Get(ctx context.Context) (*payout.Settings, error)
	Update(ctx context.Context, s *payout.Settings) error
}
