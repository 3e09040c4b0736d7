// Package ledger provides the wallet ledger service: balance reads, credits,
// debits and the append-only transaction log behind them.
//
// Every posting runs inside one UnitOfWork scope with the wallet row locked,
// so the sufficiency check of a debit always sees the latest committed
// balance and the balance write plus transaction append commit atomically.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/events"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/eventbus"
	"github.com/venuehq/payouts/pkg/repository"
)

// Entry describes one ledger posting. The transaction type implies the
// direction; Amount is always positive.
type Entry struct {
	PartnerID   uuid.UUID
	Amount      decimal.Decimal
	Type        wallet.TransactionType
	Description string
	ReferenceID string
	Actor       uuid.UUID
	Notes       string
	Currency    string
}

// Service exposes wallet operations to the transport layer and to the
// payout processor.
type Service struct {
	uow             repository.UnitOfWork
	bus             eventbus.Bus
	logger          *slog.Logger
	defaultCurrency string
}

// NewService creates a ledger service from the shared dependency container.
func NewService(deps config.Deps) *Service {
	currency := "INR"
	if deps.Config != nil && deps.Config.DefaultCurrency != "" {
		currency = deps.Config.DefaultCurrency
	}
	return &Service{
		uow:             deps.Uow,
		bus:             deps.EventBus,
		logger:          deps.Logger.With("service", "ledger"),
		defaultCurrency: currency,
	}
}

// Post applies an entry inside the given UnitOfWork. It is the single path
// through which wallet balances change: the wallet row is locked for update,
// the sufficiency check runs against the locked balance, and exactly one
// transaction row is appended with BalanceBefore/BalanceAfter captured in
// the same storage transaction.
//
// Exported at package level so the payout processor can post inside its own
// transaction scope.
func Post(
	ctx context.Context,
	uow repository.UnitOfWork,
	e Entry,
) (*wallet.Transaction, error) {
	if !e.Amount.IsPositive() {
		return nil, domain.ErrAmountMustBePositive
	}
	if !e.Type.IsCredit() && !e.Type.IsDebit() {
		return nil, domain.ErrInvalidTransactionType
	}

	wallets, err := uow.WalletRepository()
	if err != nil {
		return nil, err
	}
	transactions, err := uow.WalletTransactionRepository()
	if err != nil {
		return nil, err
	}

	w, err := lockOrCreateWallet(ctx, wallets, e.PartnerID, e.Currency)
	if err != nil {
		return nil, err
	}

	balanceBefore := w.AvailableBalance
	var balanceAfter decimal.Decimal
	if e.Type.IsDebit() {
		if !w.CanDebit(e.Amount) {
			return nil, domain.ErrInsufficientBalance
		}
		balanceAfter = balanceBefore.Sub(e.Amount)
	} else {
		balanceAfter = balanceBefore.Add(e.Amount)
	}

	now := time.Now().UTC()
	w.AvailableBalance = balanceAfter
	w.LastTransactionDate = &now
	w.UpdateTotals()
	if err := wallets.Update(ctx, w); err != nil {
		return nil, err
	}

	tx := &wallet.Transaction{
		ID:                   uuid.New(),
		TransactionReference: domain.NewReference("WTX"),
		WalletID:             w.ID,
		PartnerID:            e.PartnerID,
		Type:                 e.Type,
		Amount:               e.Amount,
		BalanceBefore:        balanceBefore,
		BalanceAfter:         balanceAfter,
		Currency:             w.Currency,
		Description:          e.Description,
		ReferenceID:          e.ReferenceID,
		Notes:                e.Notes,
		CreatedBy:            e.Actor,
	}
	if err := transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// lockOrCreateWallet locks the partner's wallet row, creating the wallet
// first when the partner has never been referenced.
func lockOrCreateWallet(
	ctx context.Context,
	wallets repository.WalletRepository,
	partnerID uuid.UUID,
	currency string,
) (*wallet.Wallet, error) {
	w, err := wallets.GetForUpdate(ctx, partnerID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}
	if currency == "" {
		currency = "INR"
	}
	// A concurrent first posting may win the insert; losing the race is
	// fine, the row exists either way and the lock below serializes.
	err = wallets.Create(ctx, wallet.New(partnerID, currency))
	if err != nil && !errors.Is(err, domain.ErrWalletExists) {
		return nil, err
	}
	return wallets.GetForUpdate(ctx, partnerID)
}

// GetOrCreateWallet returns the partner's wallet, creating a zero-balance
// one on first reference.
func (s *Service) GetOrCreateWallet(
	ctx context.Context,
	partnerID uuid.UUID,
	actor domain.Actor,
) (w *wallet.Wallet, err error) {
	if !actor.CanAccess(partnerID) {
		return nil, domain.ErrForbidden
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		w, err = wallets.GetByPartner(ctx, partnerID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrWalletNotFound) {
			return err
		}
		w = wallet.New(partnerID, s.defaultCurrency)
		return wallets.Create(ctx, w)
	})
	if err != nil {
		w = nil
	}
	return
}

// Credit increases the partner's available balance.
func (s *Service) Credit(ctx context.Context, e Entry) (*wallet.Transaction, error) {
	if e.Type == "" {
		e.Type = wallet.TypeCredit
	}
	if !e.Type.IsCredit() {
		return nil, domain.ErrInvalidTransactionType
	}
	return s.post(ctx, e)
}

// Debit decreases the partner's available balance, failing with
// ErrInsufficientBalance when the amount exceeds it.
func (s *Service) Debit(ctx context.Context, e Entry) (*wallet.Transaction, error) {
	if e.Type == "" {
		e.Type = wallet.TypeDebit
	}
	if !e.Type.IsDebit() {
		return nil, domain.ErrInvalidTransactionType
	}
	return s.post(ctx, e)
}

// Adjust applies an admin wallet adjustment, dispatching on the transaction
// type's direction.
func (s *Service) Adjust(
	ctx context.Context,
	partnerID uuid.UUID,
	adj dto.AdjustWallet,
	actor domain.Actor,
) (*wallet.Transaction, error) {
	if !actor.CanAccess(partnerID) {
		return nil, domain.ErrForbidden
	}
	return s.post(ctx, Entry{
		PartnerID:   partnerID,
		Amount:      adj.Amount,
		Type:        adj.TransactionType,
		Description: adj.Description,
		ReferenceID: adj.ReferenceID,
		Notes:       adj.Notes,
		Actor:       actor.ID,
	})
}

func (s *Service) post(ctx context.Context, e Entry) (tx *wallet.Transaction, err error) {
	if e.Currency == "" {
		e.Currency = s.defaultCurrency
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		tx, err = Post(ctx, uow, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, tx)
	return tx, nil
}

// emit publishes the posting event after commit. Failures are logged, never
// propagated: notification delivery must not fail the ledger operation.
func (s *Service) emit(ctx context.Context, tx *wallet.Transaction) {
	if s.bus == nil {
		return
	}
	var ev events.Event
	if tx.Type.IsDebit() {
		ev = events.WalletDebited{
			PartnerID:       tx.PartnerID,
			Amount:          tx.Amount,
			TransactionType: string(tx.Type),
			ReferenceID:     tx.ReferenceID,
		}
	} else {
		ev = events.WalletCredited{
			PartnerID:       tx.PartnerID,
			Amount:          tx.Amount,
			TransactionType: string(tx.Type),
			ReferenceID:     tx.ReferenceID,
		}
	}
	if err := s.bus.Emit(ctx, ev); err != nil {
		s.logger.Error("event emit failed", "type", ev.Type(), "error", err)
	}
}

// ListTransactions returns the partner's ledger page, most recent first.
func (s *Service) ListTransactions(
	ctx context.Context,
	partnerID uuid.UUID,
	params repository.ListParams,
	filters repository.TransactionFilters,
	actor domain.Actor,
) (page *repository.Page[wallet.Transaction], err error) {
	if !actor.CanAccess(partnerID) {
		return nil, domain.ErrForbidden
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.WalletTransactionRepository()
		if err != nil {
			return err
		}
		page, err = transactions.ListByPartner(ctx, partnerID, params, filters)
		return err
	})
	if err != nil {
		page = nil
	}
	return
}
