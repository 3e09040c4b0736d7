package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/bank"
	"github.com/venuehq/payouts/pkg/repository"
	"gorm.io/gorm"
)

type bankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository creates a bank account repository bound to db.
func NewBankAccountRepository(db *gorm.DB) repository.BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) Create(ctx context.Context, a *bank.Account) error {
	err := r.db.WithContext(ctx).Create(bankAccountToModel(a)).Error
	return translate(err, domain.ErrBankAccountNotFound, domain.ErrDuplicateBankAccount)
}

func (r *bankAccountRepository) Get(ctx context.Context, id uuid.UUID) (*bank.Account, error) {
	var m BankAccount
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrBankAccountNotFound, nil)
	}
	return bankAccountToDomain(&m), nil
}

func (r *bankAccountRepository) GetByAccountNumber(ctx context.Context, number string) (*bank.Account, error) {
	var m BankAccount
	err := r.db.WithContext(ctx).First(&m, "account_number = ?", number).Error
	if err != nil {
		return nil, translate(err, domain.ErrBankAccountNotFound, nil)
	}
	return bankAccountToDomain(&m), nil
}

func (r *bankAccountRepository) ListByPartner(
	ctx context.Context,
	partnerID uuid.UUID,
	status *bank.Status,
) ([]*bank.Account, error) {
	q := r.db.WithContext(ctx).Where("partner_id = ?", partnerID)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	var models []BankAccount
	if err := q.Order("is_primary DESC, created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	accounts := make([]*bank.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, bankAccountToDomain(&models[i]))
	}
	return accounts, nil
}

func (r *bankAccountRepository) Update(ctx context.Context, a *bank.Account) error {
	err := r.db.WithContext(ctx).
		Model(&BankAccount{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"account_holder_name":    a.AccountHolderName,
			"ifsc_code":              a.IFSCCode,
			"bank_name":              a.BankName,
			"branch_name":            a.BranchName,
			"status":                 string(a.Status),
			"is_primary":             a.IsPrimary,
			"verified_date":          a.VerifiedDate,
			"verified_by":            a.VerifiedBy,
			"verification_method":    a.VerificationMethod,
			"verification_reference": a.VerificationReference,
			"rejection_reason":       a.RejectionReason,
			"notes":                  a.Notes,
		}).Error
	return translate(err, domain.ErrBankAccountNotFound, nil)
}

func (r *bankAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&BankAccount{}, "id = ?", id).Error
}

func (r *bankAccountRepository) ClearPrimary(ctx context.Context, partnerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&BankAccount{}).
		Where("partner_id = ? AND is_primary = ?", partnerID, true).
		Update("is_primary", false).Error
}
