package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
)

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a payout repository bound to db.
func NewPayoutRepository(db *gorm.DB) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(ctx context.Context, p *payout.Payout) error {
	return r.db.WithContext(ctx).Create(payoutToModel(p)).Error
}

func (r *payoutRepository) Get(ctx context.Context, id uuid.UUID) (*payout.Payout, error) {
	var m Payout
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrPayoutNotFound, nil)
	}
	return payoutToDomain(&m), nil
}

func (r *payoutRepository) GetByRequest(ctx context.Context, requestID uuid.UUID) (*payout.Payout, error) {
	var m Payout
	err := r.db.WithContext(ctx).First(&m, "request_id = ?", requestID).Error
	if err != nil {
		return nil, translate(err, domain.ErrPayoutNotFound, nil)
	}
	return payoutToDomain(&m), nil
}

func (r *payoutRepository) Update(ctx context.Context, p *payout.Payout) error {
	err := r.db.WithContext(ctx).
		Model(&Payout{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"status":                  string(p.Status),
			"bank_reference":          p.BankReference,
			"external_transaction_id": p.ExternalTransactionID,
			"completed_date":          p.CompletedDate,
			"failed_date":             p.FailedDate,
			"notes":                   p.Notes,
			"failure_reason":          p.FailureReason,
		}).Error
	return translate(err, domain.ErrPayoutNotFound, nil)
}

func (r *payoutRepository) List(
	ctx context.Context,
	params repository.ListParams,
	filters repository.PayoutFilters,
) (*repository.Page[payout.Payout], error) {
	params.Normalize()

	q := r.db.WithContext(ctx).Model(&Payout{})
	if filters.PartnerID != nil {
		q = q.Where("partner_id = ?", *filters.PartnerID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", string(*filters.Status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var models []Payout
	err := q.Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]*payout.Payout, 0, len(models))
	for i := range models {
		items = append(items, payoutToDomain(&models[i]))
	}
	return &repository.Page[payout.Payout]{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

func (r *payoutRepository) Stats(ctx context.Context) (*repository.PayoutStats, error) {
	type row struct {
		Status string
		Count  int64
		Volume decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&Payout{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(net_amount), 0) AS volume").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &repository.PayoutStats{TotalVolume: decimal.Zero}
	for _, r := range rows {
		stats.Total += r.Count
		switch payout.Status(r.Status) {
		case payout.StatusProcessing:
			stats.Processing = r.Count
		case payout.StatusCompleted:
			stats.Completed = r.Count
			stats.TotalVolume = stats.TotalVolume.Add(r.Volume)
		case payout.StatusFailed:
			stats.Failed = r.Count
		}
	}
	return stats, nil
}
