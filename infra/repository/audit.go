package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates an audit trail repository bound to db.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, e *audit.Entry) error {
	return r.db.WithContext(ctx).Create(auditToModel(e)).Error
}

func (r *auditRepository) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*audit.Entry, error) {
	return r.list(ctx, "payout_request_id = ?", requestID)
}

func (r *auditRepository) ListForPayout(ctx context.Context, payoutID uuid.UUID) ([]*audit.Entry, error) {
	return r.list(ctx, "payout_id = ?", payoutID)
}

func (r *auditRepository) list(ctx context.Context, cond string, id uuid.UUID) ([]*audit.Entry, error) {
	var models []AuditEntry
	err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entries := make([]*audit.Entry, 0, len(models))
	for i := range models {
		entries = append(entries, auditToDomain(&models[i]))
	}
	return entries, nil
}
