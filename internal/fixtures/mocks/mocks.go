// Package mocks provides testify doubles for the persistence contracts.
// MockUnitOfWork.Do runs the callback against the mock itself, so service
// tests observe exactly the repository calls a real transaction would see.
package mocks

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/bank"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/repository"
)

// MockUnitOfWork wires the repository mocks behind the UnitOfWork contract.
// Zero-valued repo fields panic on use, which points straight at the test
// that forgot to set one.
type MockUnitOfWork struct {
	mock.Mock
	Wallets            *MockWalletRepository
	WalletTransactions *MockWalletTransactionRepository
	BankAccounts       *MockBankAccountRepository
	PayoutRequests     *MockPayoutRequestRepository
	Payouts            *MockPayoutRepository
	Audits             *MockAuditRepository
	Settings           *MockSettingsRepository
}

// NewMockUnitOfWork returns a unit of work with every repository mocked.
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Wallets:            &MockWalletRepository{},
		WalletTransactions: &MockWalletTransactionRepository{},
		BankAccounts:       &MockBankAccountRepository{},
		PayoutRequests:     &MockPayoutRequestRepository{},
		Payouts:            &MockPayoutRepository{},
		Audits:             &MockAuditRepository{},
		Settings:           &MockSettingsRepository{},
	}
}

// Do runs fn against the mock itself. Nested calls compose the same way the
// real unit of work reuses its open transaction.
func (m *MockUnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(m)
}

func (m *MockUnitOfWork) GetRepository(repoType reflect.Type) (any, error) {
	args := m.Called(repoType)
	return args.Get(0), args.Error(1)
}

func (m *MockUnitOfWork) WalletRepository() (repository.WalletRepository, error) {
	return m.Wallets, nil
}

func (m *MockUnitOfWork) WalletTransactionRepository() (repository.WalletTransactionRepository, error) {
	return m.WalletTransactions, nil
}

func (m *MockUnitOfWork) BankAccountRepository() (repository.BankAccountRepository, error) {
	return m.BankAccounts, nil
}

func (m *MockUnitOfWork) PayoutRequestRepository() (repository.PayoutRequestRepository, error) {
	return m.PayoutRequests, nil
}

func (m *MockUnitOfWork) PayoutRepository() (repository.PayoutRepository, error) {
	return m.Payouts, nil
}

func (m *MockUnitOfWork) AuditRepository() (repository.AuditRepository, error) {
	return m.Audits, nil
}

func (m *MockUnitOfWork) SettingsRepository() (repository.SettingsRepository, error) {
	return m.Settings, nil
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByPartner(ctx context.Context, partnerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, partnerID)
	if w, ok := args.Get(0).(*wallet.Wallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) GetForUpdate(ctx context.Context, partnerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, partnerID)
	if w, ok := args.Get(0).(*wallet.Wallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

type MockWalletTransactionRepository struct {
	mock.Mock
}

func (m *MockWalletTransactionRepository) Create(ctx context.Context, tx *wallet.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockWalletTransactionRepository) ListByPartner(
	ctx context.Context,
	partnerID uuid.UUID,
	params repository.ListParams,
	filters repository.TransactionFilters,
) (*repository.Page[wallet.Transaction], error) {
	args := m.Called(ctx, partnerID, params, filters)
	if p, ok := args.Get(0).(*repository.Page[wallet.Transaction]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBankAccountRepository struct {
	mock.Mock
}

func (m *MockBankAccountRepository) Create(ctx context.Context, a *bank.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockBankAccountRepository) Get(ctx context.Context, id uuid.UUID) (*bank.Account, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*bank.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBankAccountRepository) GetByAccountNumber(ctx context.Context, number string) (*bank.Account, error) {
	args := m.Called(ctx, number)
	if a, ok := args.Get(0).(*bank.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBankAccountRepository) ListByPartner(
	ctx context.Context,
	partnerID uuid.UUID,
	status *bank.Status,
) ([]*bank.Account, error) {
	args := m.Called(ctx, partnerID, status)
	if accounts, ok := args.Get(0).([]*bank.Account); ok {
		return accounts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBankAccountRepository) Update(ctx context.Context, a *bank.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockBankAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBankAccountRepository) ClearPrimary(ctx context.Context, partnerID uuid.UUID) error {
	return m.Called(ctx, partnerID).Error(0)
}

type MockPayoutRequestRepository struct {
	mock.Mock
}

func (m *MockPayoutRequestRepository) Create(ctx context.Context, r *payout.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockPayoutRequestRepository) Get(ctx context.Context, id uuid.UUID) (*payout.Request, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*payout.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayoutRequestRepository) Update(ctx context.Context, r *payout.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockPayoutRequestRepository) List(
	ctx context.Context,
	params repository.ListParams,
	filters repository.RequestFilters,
) (*repository.Page[payout.Request], error) {
	args := m.Called(ctx, params, filters)
	if p, ok := args.Get(0).(*repository.Page[payout.Request]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayoutRequestRepository) ListByPartner(
	ctx context.Context,
	partnerID uuid.UUID,
	from, to *time.Time,
) ([]*payout.Request, error) {
	args := m.Called(ctx, partnerID, from, to)
	if requests, ok := args.Get(0).([]*payout.Request); ok {
		return requests, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayoutRequestRepository) CountActiveByBankAccount(
	ctx context.Context,
	bankAccountID uuid.UUID,
) (int64, error) {
	args := m.Called(ctx, bankAccountID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) Create(ctx context.Context, p *payout.Payout) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPayoutRepository) Get(ctx context.Context, id uuid.UUID) (*payout.Payout, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*payout.Payout); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayoutRepository) GetByRequest(ctx context.Context, requestID uuid.UUID) (*payout.Payout, error) {
	args := m.Called(ctx, requestID)
	if p, ok := args.Get(0).(*payout.Payout); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayoutRepository) Update(ctx context.Context, p *payout.Payout) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPayoutRepository) List(
	ctx context.Context,
	params repository.ListParams,
	filters repository.PayoutFilters,
) (*repository.Page[payout.Payout], error) {
	args := m.Called(ctx, params, filters)
	if p, ok := args.Get(0).(*repository.Page[payout.Payout]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayoutRepository) Stats(ctx context.Context) (*repository.PayoutStats, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*repository.PayoutStats); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockAuditRepository) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*audit.Entry, error) {
	args := m.Called(ctx, requestID)
	if entries, ok := args.Get(0).([]*audit.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditRepository) ListForPayout(ctx context.Context, payoutID uuid.UUID) ([]*audit.Entry, error) {
	args := m.Called(ctx, payoutID)
	if entries, ok := args.Get(0).([]*audit.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*payout.Settings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*payout.Settings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, s *payout.Settings) error {
	return m.Called(ctx, s).Error(0)
}
