package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
)

type walletTransactionRepository struct {
	db *gorm.DB
}

// NewWalletTransactionRepository creates a ledger row repository bound to db.
func NewWalletTransactionRepository(db *gorm.DB) repository.WalletTransactionRepository {
	return &walletTransactionRepository{db: db}
}

func (r *walletTransactionRepository) Create(ctx context.Context, tx *wallet.Transaction) error {
	return r.db.WithContext(ctx).Create(transactionToModel(tx)).Error
}

func (r *walletTransactionRepository) ListByPartner(
	ctx context.Context,
	partnerID uuid.UUID,
	params repository.ListParams,
	filters repository.TransactionFilters,
) (*repository.Page[wallet.Transaction], error) {
	params.Normalize()

	q := r.db.WithContext(ctx).
		Model(&WalletTransaction{}).
		Where("partner_id = ?", partnerID)
	if len(filters.Types) > 0 {
		types := make([]string, 0, len(filters.Types))
		for _, t := range filters.Types {
			types = append(types, string(t))
		}
		q = q.Where("type IN ?", types)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var models []WalletTransaction
	err := q.Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]*wallet.Transaction, 0, len(models))
	for i := range models {
		items = append(items, transactionToDomain(&models[i]))
	}
	return &repository.Page[wallet.Transaction]{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}
