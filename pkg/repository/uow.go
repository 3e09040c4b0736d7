package repository

import (
	"context"
	"reflect"
)

// UnitOfWork is the transaction boundary of every mutating operation. Do
// runs fn inside one storage transaction; every repository obtained through
// the received UnitOfWork is bound to that transaction, so a request update,
// ledger write and audit append commit together or not at all.
type UnitOfWork interface {
	// Do executes fn within a transaction. If fn returns an error the
	// transaction rolls back and the error is returned unchanged.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type,
	// bound to the current transaction session.
	GetRepository(repoType reflect.Type) (any, error)

	// Typed accessors over GetRepository.
	WalletRepository() (WalletRepository, error)
	WalletTransactionRepository() (WalletTransactionRepository, error)
	BankAccountRepository() (BankAccountRepository, error)
	PayoutRequestRepository() (PayoutRequestRepository, error)
	PayoutRepository() (PayoutRepository, error)
	AuditRepository() (AuditRepository, error)
	SettingsRepository() (SettingsRepository, error)
}
