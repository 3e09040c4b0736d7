// Package bankaccount manages the registry of payout destinations: adding
// accounts, the verification lifecycle and the single-primary invariant.
package bankaccount

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/bank"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/repository"
)

// Service exposes bank account registry operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a bank account service from the shared dependency
// container.
func NewService(deps config.Deps) *Service {
	return &Service{
		uow:    deps.Uow,
		logger: deps.Logger.With("service", "bankaccount"),
	}
}

// Add registers a new account in pending status. The account number is
// unique across all partners; a clash fails with ErrDuplicateBankAccount.
// When IsPrimary is set, any existing primary of the partner is demoted in
// the same transaction.
func (s *Service) Add(
	ctx context.Context,
	create dto.CreateBankAccount,
	actor domain.Actor,
) (account *bank.Account, err error) {
	partnerID := actor.ID
	if create.PartnerID != nil {
		partnerID = *create.PartnerID
	}
	if !actor.CanAccess(partnerID) {
		return nil, domain.ErrForbidden
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}

		_, err = accounts.GetByAccountNumber(ctx, create.AccountNumber)
		if err == nil {
			return domain.ErrDuplicateBankAccount
		}
		if !errors.Is(err, domain.ErrBankAccountNotFound) {
			return err
		}

		if create.IsPrimary {
			if err := accounts.ClearPrimary(ctx, partnerID); err != nil {
				return err
			}
		}

		account = &bank.Account{
			ID:                uuid.New(),
			PartnerID:         partnerID,
			AccountHolderName: create.AccountHolderName,
			AccountNumber:     create.AccountNumber,
			IFSCCode:          create.IFSCCode,
			BankName:          create.BankName,
			BranchName:        create.BranchName,
			AccountType:       create.AccountType,
			Status:            bank.StatusPending,
			IsPrimary:         create.IsPrimary,
		}
		return accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bank account registered",
		"account_id", account.ID,
		"partner_id", partnerID,
		"number", account.MaskedAccountNumber(),
	)
	return account, nil
}

// Get returns an account the actor may see.
func (s *Service) Get(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (account *bank.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}
		account, err = accounts.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(account.PartnerID) {
		return nil, domain.ErrForbidden
	}
	return account, nil
}

// ListForPartner returns the partner's accounts, optionally filtered by
// status.
func (s *Service) ListForPartner(
	ctx context.Context,
	partnerID uuid.UUID,
	status *bank.Status,
	actor domain.Actor,
) (accounts []*bank.Account, err error) {
	if !actor.CanAccess(partnerID) {
		return nil, domain.ErrForbidden
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}
		accounts, err = repo.ListByPartner(ctx, partnerID, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// Update changes the mutable fields of an account. The account number is
// immutable after creation.
func (s *Service) Update(
	ctx context.Context,
	id uuid.UUID,
	update dto.UpdateBankAccount,
	actor domain.Actor,
) (account *bank.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}
		account, err = accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(account.PartnerID) {
			return domain.ErrForbidden
		}

		if update.AccountHolderName != nil {
			account.AccountHolderName = *update.AccountHolderName
		}
		if update.BankName != nil {
			account.BankName = *update.BankName
		}
		if update.BranchName != nil {
			account.BranchName = *update.BranchName
		}
		if update.IFSCCode != nil {
			account.IFSCCode = *update.IFSCCode
		}
		return accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes an account that no active payout request references.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor domain.Actor) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}

		account, err := accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(account.PartnerID) {
			return domain.ErrForbidden
		}

		active, err := requests.CountActiveByBankAccount(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrBankAccountInUse
		}
		return accounts.Delete(ctx, id)
	})
}

// Verify moves a pending account to verified, recording who verified it and
// how.
func (s *Service) Verify(
	ctx context.Context,
	id uuid.UUID,
	verify dto.VerifyBankAccount,
	actor domain.Actor,
) (account *bank.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}
		account, err = accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !account.IsPending() {
			return domain.ErrInvalidStateTransition
		}

		now := time.Now().UTC()
		account.Status = bank.StatusVerified
		account.VerifiedDate = &now
		account.VerifiedBy = &actor.ID
		account.VerificationMethod = verify.VerificationMethod
		account.VerificationReference = verify.VerificationReference
		if verify.Notes != "" {
			account.Notes = verify.Notes
		}
		return accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bank account verified",
		"account_id", account.ID,
		"verified_by", actor.ID,
	)
	return account, nil
}

// Reject moves a pending account to rejected with a reason.
func (s *Service) Reject(
	ctx context.Context,
	id uuid.UUID,
	reason string,
	actor domain.Actor,
) (account *bank.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}
		account, err = accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !account.IsPending() {
			return domain.ErrInvalidStateTransition
		}

		account.Status = bank.StatusRejected
		account.RejectionReason = reason
		return accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SetPrimary marks a verified account as the partner's primary destination,
// demoting any sibling primary in the same transaction.
func (s *Service) SetPrimary(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (account *bank.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.BankAccountRepository()
		if err != nil {
			return err
		}
		account, err = accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(account.PartnerID) {
			return domain.ErrForbidden
		}
		if !account.CanBeUsedForPayout() {
			return domain.ErrBankAccountNotUsable
		}

		if err := accounts.ClearPrimary(ctx, account.PartnerID); err != nil {
			return err
		}
		account.IsPrimary = true
		return accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
