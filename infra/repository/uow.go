package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
)

// UoW binds all repositories to one GORM transaction session so a request
// update, ledger write and audit append commit together or not at all.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a UnitOfWork for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			reflect.TypeOf((*repository.WalletRepository)(nil)).Elem():            func(db *gorm.DB) any { return NewWalletRepository(db) },
			reflect.TypeOf((*repository.WalletTransactionRepository)(nil)).Elem(): func(db *gorm.DB) any { return NewWalletTransactionRepository(db) },
			reflect.TypeOf((*repository.BankAccountRepository)(nil)).Elem():       func(db *gorm.DB) any { return NewBankAccountRepository(db) },
			reflect.TypeOf((*repository.PayoutRequestRepository)(nil)).Elem():     func(db *gorm.DB) any { return NewPayoutRequestRepository(db) },
			reflect.TypeOf((*repository.PayoutRepository)(nil)).Elem():            func(db *gorm.DB) any { return NewPayoutRepository(db) },
			reflect.TypeOf((*repository.AuditRepository)(nil)).Elem():             func(db *gorm.DB) any { return NewAuditRepository(db) },
			reflect.TypeOf((*repository.SettingsRepository)(nil)).Elem():          func(db *gorm.DB) any { return NewSettingsRepository(db) },
		},
	}
}

// Do runs fn inside one storage transaction. Nested calls reuse the current
// session instead of opening a second transaction, so service methods can
// compose without double-begin errors.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry})
	})
}

// GetRepository returns a repository of the requested interface type bound
// to the current transaction session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) WalletRepository() (repository.WalletRepository, error) {
	return getRepo[repository.WalletRepository](u)
}

func (u *UoW) WalletTransactionRepository() (repository.WalletTransactionRepository, error) {
	return getRepo[repository.WalletTransactionRepository](u)
}

func (u *UoW) BankAccountRepository() (repository.BankAccountRepository, error) {
	return getRepo[repository.BankAccountRepository](u)
}

func (u *UoW) PayoutRequestRepository() (repository.PayoutRequestRepository, error) {
	return getRepo[repository.PayoutRequestRepository](u)
}

func (u *UoW) PayoutRepository() (repository.PayoutRepository, error) {
	return getRepo[repository.PayoutRepository](u)
}

func (u *UoW) AuditRepository() (repository.AuditRepository, error) {
	return getRepo[repository.AuditRepository](u)
}

func (u *UoW) SettingsRepository() (repository.SettingsRepository, error) {
	return getRepo[repository.SettingsRepository](u)
}

func getRepo[T any](u *UoW) (T, error) {
	var zero T
	repo, err := u.GetRepository(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	typed, ok := repo.(T)
	if !ok {
		return zero, fmt.Errorf("repository does not implement %T", zero)
	}
	return typed, nil
}
