package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venuehq/payouts/pkg/repository"
)

func TestUoW_DoCommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_DoRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("business rule violated")
	err := uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_NestedDoReusesTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	// One begin and one commit even with a nested Do.
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(outer repository.UnitOfWork) error {
		return outer.Do(context.Background(), func(inner repository.UnitOfWork) error {
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_TypedAccessors(t *testing.T) {
	db, _ := newMockDB(t)
	uow := NewUoW(db)

	wallets, err := uow.WalletRepository()
	require.NoError(t, err)
	assert.NotNil(t, wallets)

	transactions, err := uow.WalletTransactionRepository()
	require.NoError(t, err)
	assert.NotNil(t, transactions)

	accounts, err := uow.BankAccountRepository()
	require.NoError(t, err)
	assert.NotNil(t, accounts)

	requests, err := uow.PayoutRequestRepository()
	require.NoError(t, err)
	assert.NotNil(t, requests)

	payouts, err := uow.PayoutRepository()
	require.NoError(t, err)
	assert.NotNil(t, payouts)

	audits, err := uow.AuditRepository()
	require.NoError(t, err)
	assert.NotNil(t, audits)

	settings, err := uow.SettingsRepository()
	require.NoError(t, err)
	assert.NotNil(t, settings)
}

func TestUoW_UnknownRepositoryType(t *testing.T) {
	db, _ := newMockDB(t)
	uow := NewUoW(db)

	_, err := uow.GetRepository(reflect.TypeOf((*error)(nil)).Elem())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported repository type")
}
