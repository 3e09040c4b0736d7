// Package payout implements the payout request workflow, the processor that
// turns approved requests into payouts, and the bulk coordinator over both.
package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/events"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/eventbus"
	"github.com/venuehq/payouts/pkg/repository"
)

// SettingsProvider supplies the current payout settings. Satisfied by the
// settings service.
type SettingsProvider interface {
	Get(ctx context.Context) (*payout.Settings, error)
}

// Service drives the payout request state machine and the payout records
// derived from it.
type Service struct {
	uow             repository.UnitOfWork
	bus             eventbus.Bus
	settings        SettingsProvider
	logger          *slog.Logger
	defaultCurrency string
}

// NewService creates a payout service from the shared dependency container.
func NewService(deps config.Deps, settings SettingsProvider) *Service {
	currency := "INR"
	if deps.Config != nil && deps.Config.DefaultCurrency != "" {
		currency = deps.Config.DefaultCurrency
	}
	return &Service{
		uow:             deps.Uow,
		bus:             deps.EventBus,
		settings:        settings,
		logger:          deps.Logger.With("service", "payout"),
		defaultCurrency: currency,
	}
}

// CreateRequest validates and persists a new payout request. Withdrawal
// requests get an advisory balance check here; the authoritative check runs
// under the wallet row lock when the payout is processed. Requests at or
// under the auto-approval threshold are approved in the same transaction,
// leaving both a created and an auto_approved audit entry.
func (s *Service) CreateRequest(
	ctx context.Context,
	create dto.CreatePayoutRequest,
	actor domain.Actor,
) (request *payout.Request, err error) {
	partnerID := actor.ID
	if create.PartnerID != nil {
		partnerID = *create.PartnerID
	}
	if !actor.CanAccess(partnerID) {
		return nil, domain.ErrForbidden
	}
	if !create.Amount.IsPositive() {
		return nil, domain.ErrAmountMustBePositive
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if create.Amount.LessThan(cfg.MinimumPayoutAmount) ||
		create.Amount.GreaterThan(cfg.MaximumPayoutAmount) {
		return nil, domain.ErrAmountOutOfBounds
	}
	if !cfg.MethodAllowed(create.PayoutMethod) {
		return nil, domain.ErrPayoutMethodNotAllowed
	}

	fee := cfg.FeeFor(create.Amount)
	net := create.Amount.Sub(fee)
	if !net.IsPositive() {
		return nil, domain.ErrNetAmountNotPositive
	}

	autoApprove := create.AutoApprove &&
		create.Amount.LessThanOrEqual(cfg.AutoApprovalThreshold)

	currency := create.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		if create.Type == payout.TypeWithdrawal {
			if err := s.checkBalance(ctx, uow, partnerID, create.Amount); err != nil {
				return err
			}
		}
		if create.BankAccountID != nil {
			if err := s.checkBankAccount(ctx, uow, *create.BankAccountID, partnerID, cfg); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		request = &payout.Request{
			ID:               uuid.New(),
			RequestReference: domain.NewReference("PR"),
			PartnerID:        partnerID,
			Type:             create.Type,
			Status:           payout.StatusPending,
			Amount:           create.Amount,
			Currency:         currency,
			Description:      create.Description,
			BankAccountID:    create.BankAccountID,
			PayoutMethod:     create.PayoutMethod,
			RequestedDate:    &now,
			ProcessingFee:    fee,
			NetAmount:        net,
			Notes:            create.Notes,
			AutoApprove:      autoApprove,
			CreatedBy:        actor.ID,
			UpdatedBy:        actor.ID,
		}
		if autoApprove {
			request.Status = payout.StatusApproved
			request.ApprovedDate = &now
			request.ApprovedBy = &actor.ID
		}
		if err := requests.Create(ctx, request); err != nil {
			return err
		}

		entry := audit.ForRequest(request.ID, audit.ActionCreated, actor.ID).
			WithTransition("", string(payout.StatusPending)).
			WithDescription(fmt.Sprintf("payout request %s created", request.RequestReference))
		if err := audits.Create(ctx, entry); err != nil {
			return err
		}
		if autoApprove {
			entry := audit.ForRequest(request.ID, audit.ActionAutoApproved, actor.ID).
				WithTransition(string(payout.StatusPending), string(payout.StatusApproved)).
				WithDescription("auto-approved under threshold")
			if err := audits.Create(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout request created",
		"request_id", request.ID,
		"partner_id", partnerID,
		"amount", request.Amount,
		"auto_approved", autoApprove,
	)
	s.emit(ctx, events.PayoutRequestCreated{
		PayoutRequestEvent: requestEvent(request),
		AutoApproved:       autoApprove,
	})
	return request, nil
}

// UpdateRequest changes a request that is still pending. Amount changes
// recompute the fee and net amount against the current settings.
func (s *Service) UpdateRequest(
	ctx context.Context,
	id uuid.UUID,
	update dto.UpdatePayoutRequest,
	actor domain.Actor,
) (request *payout.Request, err error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		request, err = requests.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(request.PartnerID) {
			return domain.ErrForbidden
		}
		if !request.CanBeApproved() {
			return domain.ErrInvalidStateTransition
		}

		if update.Amount != nil {
			if !update.Amount.IsPositive() {
				return domain.ErrAmountMustBePositive
			}
			if update.Amount.LessThan(cfg.MinimumPayoutAmount) ||
				update.Amount.GreaterThan(cfg.MaximumPayoutAmount) {
				return domain.ErrAmountOutOfBounds
			}
			request.Amount = *update.Amount
			request.ProcessingFee = cfg.FeeFor(request.Amount)
			request.NetAmount = request.Amount.Sub(request.ProcessingFee)
			if !request.NetAmount.IsPositive() {
				return domain.ErrNetAmountNotPositive
			}
		}
		if update.PayoutMethod != nil {
			if !cfg.MethodAllowed(*update.PayoutMethod) {
				return domain.ErrPayoutMethodNotAllowed
			}
			request.PayoutMethod = *update.PayoutMethod
		}
		if update.BankAccountID != nil {
			if err := s.checkBankAccount(ctx, uow, *update.BankAccountID, request.PartnerID, cfg); err != nil {
				return err
			}
			request.BankAccountID = update.BankAccountID
		}
		if update.Description != nil {
			request.Description = *update.Description
		}
		if update.Notes != nil {
			request.Notes = *update.Notes
		}
		request.UpdatedBy = actor.ID
		if err := requests.Update(ctx, request); err != nil {
			return err
		}

		entry := audit.ForRequest(request.ID, audit.ActionUpdated, actor.ID).
			WithTransition(string(request.Status), string(request.Status)).
			WithDescription("payout request updated")
		return audits.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Approve moves a pending request to approved.
func (s *Service) Approve(
	ctx context.Context,
	id uuid.UUID,
	notes string,
	actor domain.Actor,
) (request *payout.Request, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		request, err = requests.Get(ctx, id)
		if err != nil {
			return err
		}
		if !request.CanBeApproved() {
			return domain.ErrInvalidStateTransition
		}

		now := time.Now().UTC()
		request.Status = payout.StatusApproved
		request.ApprovedDate = &now
		request.ApprovedBy = &actor.ID
		request.UpdatedBy = actor.ID
		if notes != "" {
			request.Notes = notes
		}
		if err := requests.Update(ctx, request); err != nil {
			return err
		}

		entry := audit.ForRequest(request.ID, audit.ActionApproved, actor.ID).
			WithTransition(string(payout.StatusPending), string(payout.StatusApproved)).
			WithDescription("payout request approved")
		return audits.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.PayoutRequestApproved{PayoutRequestEvent: requestEvent(request)})
	return request, nil
}

// Reject moves a pending request to rejected with a reason.
func (s *Service) Reject(
	ctx context.Context,
	id uuid.UUID,
	reason string,
	actor domain.Actor,
) (request *payout.Request, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		request, err = requests.Get(ctx, id)
		if err != nil {
			return err
		}
		if !request.CanBeRejected() {
			return domain.ErrInvalidStateTransition
		}

		now := time.Now().UTC()
		request.Status = payout.StatusRejected
		request.RejectedDate = &now
		request.RejectionReason = reason
		request.UpdatedBy = actor.ID
		if err := requests.Update(ctx, request); err != nil {
			return err
		}

		entry := audit.ForRequest(request.ID, audit.ActionRejected, actor.ID).
			WithTransition(string(payout.StatusPending), string(payout.StatusRejected)).
			WithDescription(reason)
		return audits.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.PayoutRequestRejected{
		PayoutRequestEvent: requestEvent(request),
		Reason:             reason,
	})
	return request, nil
}

// Cancel moves a pending or approved request to cancelled. The rejection
// date and reason fields double as the cancellation record.
func (s *Service) Cancel(
	ctx context.Context,
	id uuid.UUID,
	reason string,
	actor domain.Actor,
) (request *payout.Request, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		request, err = requests.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(request.PartnerID) {
			return domain.ErrForbidden
		}
		if !request.CanBeCancelled() {
			return domain.ErrInvalidStateTransition
		}

		previous := request.Status
		now := time.Now().UTC()
		request.Status = payout.StatusCancelled
		request.RejectedDate = &now
		request.RejectionReason = reason
		request.UpdatedBy = actor.ID
		if err := requests.Update(ctx, request); err != nil {
			return err
		}

		entry := audit.ForRequest(request.ID, audit.ActionCancelled, actor.ID).
			WithTransition(string(previous), string(payout.StatusCancelled)).
			WithDescription(reason)
		return audits.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.PayoutRequestCancelled{
		PayoutRequestEvent: requestEvent(request),
		Reason:             reason,
	})
	return request, nil
}

// checkBalance is the advisory sufficiency check at request creation. It
// reads without a lock; the processor re-checks under the row lock before
// any money moves.
func (s *Service) checkBalance(
	ctx context.Context,
	uow repository.UnitOfWork,
	partnerID uuid.UUID,
	amount decimal.Decimal,
) error {
	wallets, err := uow.WalletRepository()
	if err != nil {
		return err
	}
	w, err := wallets.GetByPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return domain.ErrInsufficientBalance
		}
		return err
	}
	if w.AvailableBalance.LessThan(amount) {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// checkBankAccount validates a request's destination account: it must exist,
// belong to the partner, and be verified when verification is required.
func (s *Service) checkBankAccount(
	ctx context.Context,
	uow repository.UnitOfWork,
	accountID, partnerID uuid.UUID,
	cfg *payout.Settings,
) error {
	accounts, err := uow.BankAccountRepository()
	if err != nil {
		return err
	}
	account, err := accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if account.PartnerID != partnerID {
		return domain.ErrForbidden
	}
	if cfg.RequireBankVerification && !account.CanBeUsedForPayout() {
		return domain.ErrBankAccountNotUsable
	}
	return nil
}

func (s *Service) emit(ctx context.Context, ev events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, ev); err != nil {
		s.logger.Error("event emit failed", "type", ev.Type(), "error", err)
	}
}

func requestEvent(r *payout.Request) events.PayoutRequestEvent {
	return events.PayoutRequestEvent{
		RequestID: r.ID,
		PartnerID: r.PartnerID,
		Amount:    r.Amount,
		Currency:  r.Currency,
	}
}