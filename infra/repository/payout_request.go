package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
)

var activeRequestStatuses = []string{
	string(payout.StatusPending),
	string(payout.StatusApproved),
	string(payout.StatusProcessing),
}

type payoutRequestRepository struct {
	db *gorm.DB
}

// NewPayoutRequestRepository creates a payout request repository bound to db.
func NewPayoutRequestRepository(db *gorm.DB) repository.PayoutRequestRepository {
	return &payoutRequestRepository{db: db}
}

func (r *payoutRequestRepository) Create(ctx context.Context, req *payout.Request) error {
	return r.db.WithContext(ctx).Create(requestToModel(req)).Error
}

func (r *payoutRequestRepository) Get(ctx context.Context, id uuid.UUID) (*payout.Request, error) {
	var m PayoutRequest
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrPayoutRequestNotFound, nil)
	}
	return requestToDomain(&m), nil
}

func (r *payoutRequestRepository) Update(ctx context.Context, req *payout.Request) error {
	err := r.db.WithContext(ctx).
		Model(&PayoutRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"status":           string(req.Status),
			"amount":           req.Amount,
			"description":      req.Description,
			"bank_account_id":  req.BankAccountID,
			"payout_method":    string(req.PayoutMethod),
			"approved_date":    req.ApprovedDate,
			"rejected_date":    req.RejectedDate,
			"processed_date":   req.ProcessedDate,
			"completed_date":   req.CompletedDate,
			"processing_fee":   req.ProcessingFee,
			"net_amount":       req.NetAmount,
			"notes":            req.Notes,
			"rejection_reason": req.RejectionReason,
			"updated_by":       req.UpdatedBy,
			"approved_by":      req.ApprovedBy,
		}).Error
	return translate(err, domain.ErrPayoutRequestNotFound, nil)
}

func (r *payoutRequestRepository) List(
	ctx context.Context,
	params repository.ListParams,
	filters repository.RequestFilters,
) (*repository.Page[payout.Request], error) {
	params.Normalize()

	q := r.db.WithContext(ctx).Model(&PayoutRequest{})
	if filters.PartnerID != nil {
		q = q.Where("partner_id = ?", *filters.PartnerID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", string(*filters.Status))
	}
	if filters.Type != nil {
		q = q.Where("type = ?", string(*filters.Type))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var models []PayoutRequest
	err := q.Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]*payout.Request, 0, len(models))
	for i := range models {
		items = append(items, requestToDomain(&models[i]))
	}
	return &repository.Page[payout.Request]{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

func (r *payoutRequestRepository) ListByPartner(
	ctx context.Context,
	partnerID uuid.UUID,
	from, to *time.Time,
) ([]*payout.Request, error) {
	q := r.db.WithContext(ctx).Where("partner_id = ?", partnerID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	var models []PayoutRequest
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	requests := make([]*payout.Request, 0, len(models))
	for i := range models {
		requests = append(requests, requestToDomain(&models[i]))
	}
	return requests, nil
}

func (r *payoutRequestRepository) CountActiveByBankAccount(
	ctx context.Context,
	bankAccountID uuid.UUID,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayoutRequest{}).
		Where("bank_account_id = ? AND status IN ?", bankAccountID, activeRequestStatuses).
		Count(&count).Error
	return count, err
}
