package repository

import (
	"context"
	"errors"

	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a settings repository bound to db.
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the singleton row, seeding the defaults on first read.
func (r *settingsRepository) Get(ctx context.Context) (*payout.Settings, error) {
	var m PayoutSettings
	err := r.db.WithContext(ctx).First(&m).Error
	if err == nil {
		return settingsToDomain(&m), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := payout.DefaultSettings()
	if err := r.db.WithContext(ctx).Create(settingsToModel(defaults)).Error; err != nil {
		return nil, err
	}
	return defaults, nil
}

func (r *settingsRepository) Update(ctx context.Context, s *payout.Settings) error {
	return r.db.WithContext(ctx).
		Model(&PayoutSettings{}).
		Where("id = ?", s.ID).
		Updates(settingsUpdateMap(s)).Error
}

func settingsUpdateMap(s *payout.Settings) map[string]any {
	m := settingsToModel(s)
	return map[string]any{
		"minimum_payout_amount":         m.MinimumPayoutAmount,
		"maximum_payout_amount":         m.MaximumPayoutAmount,
		"auto_approval_threshold":       m.AutoApprovalThreshold,
		"processing_fee":                m.ProcessingFee,
		"processing_fee_type":           m.ProcessingFeeType,
		"payout_schedule":               m.PayoutSchedule,
		"allowed_payout_methods":        m.AllowedPayoutMethods,
		"require_bank_verification":     m.RequireBankVerification,
		"auto_process_approved_payouts": m.AutoProcessApprovedPayouts,
		"updated_by":                    m.UpdatedBy,
	}
}
