package ledger_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	infraeventbus "github.com/venuehq/payouts/infra/eventbus"
	"github.com/venuehq/payouts/internal/fixtures/mocks"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/events"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/repository"
	"github.com/venuehq/payouts/pkg/service/ledger"
)

func newLedgerService(uow *mocks.MockUnitOfWork, bus *infraeventbus.MemoryBus) *ledger.Service {
	return ledger.NewService(config.Deps{
		Uow:      uow,
		EventBus: bus,
		Logger:   slog.Default(),
	})
}

func activeWallet(partnerID uuid.UUID, balance int64) *wallet.Wallet {
	w := wallet.New(partnerID, "INR")
	w.AvailableBalance = decimal.NewFromInt(balance)
	w.UpdateTotals()
	return w
}

func TestCredit_AppendsTransactionAndPublishes(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	partnerID := uuid.New()
	w := activeWallet(partnerID, 1000)

	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).Return(w, nil).Once()
	uow.Wallets.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.WalletTransactions.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	tx, err := svc.Credit(context.Background(), ledger.Entry{
		PartnerID: partnerID,
		Amount:    decimal.NewFromInt(500),
		Type:      wallet.TypeCommissionEarned,
		Actor:     uuid.New(),
	})
	require.NoError(t, err)

	assert.True(t, tx.BalanceBefore.Equal(decimal.NewFromInt(1000)))
	assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, wallet.TypeCommissionEarned, tx.Type)
	assert.NotEmpty(t, tx.TransactionReference)

	published := bus.Published()
	require.Len(t, published, 1)
	credited, ok := published[0].(events.WalletCredited)
	require.True(t, ok)
	assert.Equal(t, partnerID, credited.PartnerID)
	assert.True(t, credited.Amount.Equal(decimal.NewFromInt(500)))

	uow.Wallets.AssertExpectations(t)
	uow.WalletTransactions.AssertExpectations(t)
}

func TestCredit_CreatesWalletOnFirstReference(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	partnerID := uuid.New()
	created := activeWallet(partnerID, 0)

	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).
		Return(nil, domain.ErrWalletNotFound).Once()
	uow.Wallets.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).Return(created, nil).Once()
	uow.Wallets.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.WalletTransactions.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	tx, err := svc.Credit(context.Background(), ledger.Entry{
		PartnerID: partnerID,
		Amount:    decimal.NewFromInt(100),
		Type:      wallet.TypeCredit,
	})
	require.NoError(t, err)
	assert.True(t, tx.BalanceBefore.IsZero())
	assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(100)))
	uow.Wallets.AssertExpectations(t)
}

func TestCredit_LostCreateRaceLocksExistingWallet(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	partnerID := uuid.New()
	existing := activeWallet(partnerID, 0)

	// A concurrent first posting inserted the wallet between the miss and
	// the create; the duplicate resolves by re-locking the existing row.
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).
		Return(nil, domain.ErrWalletNotFound).Once()
	uow.Wallets.On("Create", mock.Anything, mock.Anything).
		Return(domain.ErrWalletExists).Once()
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).Return(existing, nil).Once()
	uow.Wallets.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.WalletTransactions.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	tx, err := svc.Credit(context.Background(), ledger.Entry{
		PartnerID: partnerID,
		Amount:    decimal.NewFromInt(100),
		Type:      wallet.TypeCredit,
	})
	require.NoError(t, err)
	assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(100)))
	uow.Wallets.AssertExpectations(t)
}

func TestDebit_InsufficientBalance(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	partnerID := uuid.New()
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).
		Return(activeWallet(partnerID, 50), nil).Once()

	_, err := svc.Debit(context.Background(), ledger.Entry{
		PartnerID: partnerID,
		Amount:    decimal.NewFromInt(100),
		Type:      wallet.TypePayoutDeducted,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.Empty(t, bus.Published())
	uow.Wallets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.WalletTransactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDebit_ExactBalanceSucceeds(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	partnerID := uuid.New()
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).
		Return(activeWallet(partnerID, 100), nil).Once()
	uow.Wallets.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.WalletTransactions.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	tx, err := svc.Debit(context.Background(), ledger.Entry{
		PartnerID: partnerID,
		Amount:    decimal.NewFromInt(100),
		Type:      wallet.TypeDebit,
	})
	require.NoError(t, err)
	assert.True(t, tx.BalanceAfter.IsZero())

	published := bus.Published()
	require.Len(t, published, 1)
	_, ok := published[0].(events.WalletDebited)
	assert.True(t, ok)
}

func TestPost_RejectsNonPositiveAmount(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()

	_, err := ledger.Post(context.Background(), uow, ledger.Entry{
		PartnerID: uuid.New(),
		Amount:    decimal.Zero,
		Type:      wallet.TypeCredit,
	})
	assert.ErrorIs(t, err, domain.ErrAmountMustBePositive)
}

func TestDirectionMismatchRejected(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	_, err := svc.Credit(context.Background(), ledger.Entry{
		PartnerID: uuid.New(),
		Amount:    decimal.NewFromInt(10),
		Type:      wallet.TypePayoutDeducted,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)

	_, err = svc.Debit(context.Background(), ledger.Entry{
		PartnerID: uuid.New(),
		Amount:    decimal.NewFromInt(10),
		Type:      wallet.TypeCommissionEarned,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)
}

func TestAdjust_PartnerScopedActorDenied(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	partnerID := uuid.New()
	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}

	_, err := svc.Adjust(context.Background(), partnerID, dto.AdjustWallet{
		TransactionType: wallet.TypeAdjustment,
		Amount:          decimal.NewFromInt(10),
	}, actor)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetOrCreateWallet(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newLedgerService(uow, bus)

	partnerID := uuid.New()
	admin := domain.Actor{ID: uuid.New()}

	uow.Wallets.On("GetByPartner", mock.Anything, partnerID).
		Return(nil, domain.ErrWalletNotFound).Once()
	uow.Wallets.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	w, err := svc.GetOrCreateWallet(context.Background(), partnerID, admin)
	require.NoError(t, err)
	assert.Equal(t, partnerID, w.PartnerID)
	assert.True(t, w.AvailableBalance.IsZero())
	uow.Wallets.AssertExpectations(t)
}

// lockingWalletStore emulates the database's row lock: GetForUpdate takes
// the partner's row lock and the enclosing Do scope releases it on exit, so
// concurrent postings to the same wallet serialize.
type lockingWalletStore struct {
	repository.UnitOfWork

	rowLock sync.Mutex
	wallet  *wallet.Wallet
	txs     []*wallet.Transaction
}

func (s *lockingWalletStore) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	scope := &lockingWalletScope{store: s}
	defer func() {
		if scope.locked {
			s.rowLock.Unlock()
		}
	}()
	return fn(scope)
}

type lockingWalletScope struct {
	repository.UnitOfWork

	store  *lockingWalletStore
	locked bool
}

func (sc *lockingWalletScope) WalletRepository() (repository.WalletRepository, error) {
	return scopeWallets{scope: sc}, nil
}

func (sc *lockingWalletScope) WalletTransactionRepository() (repository.WalletTransactionRepository, error) {
	return scopeTransactions{scope: sc}, nil
}

type scopeWallets struct {
	scope *lockingWalletScope
}

func (r scopeWallets) GetByPartner(context.Context, uuid.UUID) (*wallet.Wallet, error) {
	return nil, domain.ErrWalletNotFound
}

func (r scopeWallets) GetForUpdate(_ context.Context, partnerID uuid.UUID) (*wallet.Wallet, error) {
	if !r.scope.locked {
		r.scope.store.rowLock.Lock()
		r.scope.locked = true
	}
	if r.scope.store.wallet == nil || r.scope.store.wallet.PartnerID != partnerID {
		return nil, domain.ErrWalletNotFound
	}
	cp := *r.scope.store.wallet
	return &cp, nil
}

func (r scopeWallets) Create(_ context.Context, w *wallet.Wallet) error {
	if r.scope.store.wallet != nil {
		return domain.ErrWalletExists
	}
	cp := *w
	r.scope.store.wallet = &cp
	return nil
}

func (r scopeWallets) Update(_ context.Context, w *wallet.Wallet) error {
	cp := *w
	r.scope.store.wallet = &cp
	return nil
}

type scopeTransactions struct {
	scope *lockingWalletScope
}

func (r scopeTransactions) Create(_ context.Context, tx *wallet.Transaction) error {
	r.scope.store.txs = append(r.scope.store.txs, tx)
	return nil
}

func (r scopeTransactions) ListByPartner(
	context.Context,
	uuid.UUID,
	repository.ListParams,
	repository.TransactionFilters,
) (*repository.Page[wallet.Transaction], error) {
	return &repository.Page[wallet.Transaction]{}, nil
}

func TestDebit_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	partnerID := uuid.New()
	store := &lockingWalletStore{wallet: activeWallet(partnerID, 100)}
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := ledger.NewService(config.Deps{
		Uow:      store,
		EventBus: bus,
		Logger:   slog.Default(),
	})

	// Two debits race for a balance that only covers one of them.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(context.Background(), ledger.Entry{
				PartnerID: partnerID,
				Amount:    decimal.NewFromInt(70),
				Type:      wallet.TypePayoutDeducted,
			})
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientBalance):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.True(t, store.wallet.AvailableBalance.Equal(decimal.NewFromInt(30)))
	require.Len(t, store.txs, 1)
	assert.True(t, store.txs[0].BalanceBefore.Equal(decimal.NewFromInt(100)))
	assert.True(t, store.txs[0].BalanceAfter.Equal(decimal.NewFromInt(30)))
	assert.Len(t, bus.Published(), 1)
}
