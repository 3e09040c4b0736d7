package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a wallet repository bound to db.
func NewWalletRepository(db *gorm.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetByPartner(ctx context.Context, partnerID uuid.UUID) (*wallet.Wallet, error) {
	var m Wallet
	err := r.db.WithContext(ctx).
		First(&m, "partner_id = ?", partnerID).Error
	if err != nil {
		return nil, translate(err, domain.ErrWalletNotFound, nil)
	}
	return walletToDomain(&m), nil
}

// GetForUpdate takes a FOR UPDATE row lock. Callers must be inside a
// transaction; outside one the lock is released immediately and provides no
// serialization.
func (r *walletRepository) GetForUpdate(ctx context.Context, partnerID uuid.UUID) (*wallet.Wallet, error) {
	var m Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "partner_id = ?", partnerID).Error
	if err != nil {
		return nil, translate(err, domain.ErrWalletNotFound, nil)
	}
	return walletToDomain(&m), nil
}

func (r *walletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	err := r.db.WithContext(ctx).Create(walletToModel(w)).Error
	return translate(err, nil, domain.ErrWalletExists)
}

func (r *walletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	return r.db.WithContext(ctx).
		Model(&Wallet{}).
		Where("id = ?", w.ID).
		Updates(map[string]any{
			"available_balance":     w.AvailableBalance,
			"pending_balance":       w.PendingBalance,
			"total_balance":         w.TotalBalance,
			"status":                string(w.Status),
			"last_transaction_date": w.LastTransactionDate,
		}).Error
}
