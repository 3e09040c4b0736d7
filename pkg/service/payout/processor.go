package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/events"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/repository"
	"github.com/venuehq/payouts/pkg/service/ledger"
)

// Process turns an approved request into a payout record in processing
// status. For withdrawal requests the wallet debit happens here, under the
// wallet row lock and in the same transaction as the payout insert, the
// request update and the audit entries. ErrInsufficientBalance at this point
// rolls everything back and the request stays approved.
func (s *Service) Process(
	ctx context.Context,
	requestID uuid.UUID,
	process dto.ProcessPayout,
	actor domain.Actor,
) (record *payout.Payout, err error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		payouts, err := uow.PayoutRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		request, err := requests.Get(ctx, requestID)
		if err != nil {
			return err
		}
		if !request.CanBeProcessed() {
			return domain.ErrInvalidStateTransition
		}

		fee := request.ProcessingFee
		if process.ProcessingFee != nil {
			fee = *process.ProcessingFee
		} else if fee.IsZero() {
			fee = cfg.FeeFor(request.Amount)
		}
		net := request.Amount.Sub(fee)
		if !net.IsPositive() {
			return domain.ErrNetAmountNotPositive
		}

		now := time.Now().UTC()
		record = &payout.Payout{
			ID:                    uuid.New(),
			PayoutReference:       domain.NewReference("PO"),
			RequestID:             request.ID,
			PartnerID:             request.PartnerID,
			Status:                payout.StatusProcessing,
			Amount:                request.Amount,
			ProcessingFee:         fee,
			NetAmount:             net,
			Currency:              request.Currency,
			BankAccountID:         request.BankAccountID,
			PayoutMethod:          request.PayoutMethod,
			BankReference:         process.BankReference,
			ExternalTransactionID: process.ExternalTransactionID,
			ProcessedDate:         &now,
			Notes:                 process.Notes,
			ProcessedBy:           actor.ID,
		}
		if err := payouts.Create(ctx, record); err != nil {
			return err
		}

		if request.Type == payout.TypeWithdrawal {
			_, err := ledger.Post(ctx, uow, ledger.Entry{
				PartnerID:   request.PartnerID,
				Amount:      request.Amount,
				Type:        wallet.TypePayoutDeducted,
				Description: fmt.Sprintf("payout %s", record.PayoutReference),
				ReferenceID: record.ID.String(),
				Actor:       actor.ID,
				Currency:    request.Currency,
			})
			if err != nil {
				return err
			}
		}

		request.Status = payout.StatusProcessing
		request.ProcessedDate = &now
		request.ProcessingFee = fee
		request.NetAmount = net
		request.UpdatedBy = actor.ID
		if err := requests.Update(ctx, request); err != nil {
			return err
		}

		entry := audit.ForRequest(request.ID, audit.ActionProcessingStarted, actor.ID).
			WithTransition(string(payout.StatusApproved), string(payout.StatusProcessing)).
			WithDescription(fmt.Sprintf("payout %s started", record.PayoutReference))
		if err := audits.Create(ctx, entry); err != nil {
			return err
		}
		created := audit.ForPayout(record.ID, audit.ActionCreated, actor.ID).
			WithTransition("", string(payout.StatusProcessing)).
			WithDescription(fmt.Sprintf("payout %s created from request %s",
				record.PayoutReference, request.RequestReference))
		return audits.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout processing started",
		"payout_id", record.ID,
		"request_id", requestID,
		"net_amount", record.NetAmount,
	)
	s.emit(ctx, events.PayoutProcessing{PayoutEvent: payoutEvent(record)})
	return record, nil
}

// Complete marks a processing payout as settled and cascades the completed
// status to its request.
func (s *Service) Complete(
	ctx context.Context,
	payoutID uuid.UUID,
	bankReference string,
	actor domain.Actor,
) (record *payout.Payout, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		payouts, err := uow.PayoutRepository()
		if err != nil {
			return err
		}
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		record, err = payouts.Get(ctx, payoutID)
		if err != nil {
			return err
		}
		if !record.CanBeCompleted() {
			return domain.ErrInvalidStateTransition
		}

		now := time.Now().UTC()
		record.Status = payout.StatusCompleted
		record.CompletedDate = &now
		if bankReference != "" {
			record.BankReference = bankReference
		}
		if err := payouts.Update(ctx, record); err != nil {
			return err
		}

		request, err := requests.Get(ctx, record.RequestID)
		if err != nil {
			return err
		}
		request.Status = payout.StatusCompleted
		request.CompletedDate = &now
		request.UpdatedBy = actor.ID
		if err := requests.Update(ctx, request); err != nil {
			return err
		}

		entry := audit.ForPayout(record.ID, audit.ActionCompleted, actor.ID).
			WithTransition(string(payout.StatusProcessing), string(payout.StatusCompleted)).
			WithDescription(fmt.Sprintf("settled with bank reference %q", record.BankReference))
		return audits.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout completed", "payout_id", record.ID)
	s.emit(ctx, events.PayoutCompleted{
		PayoutEvent:   payoutEvent(record),
		BankReference: record.BankReference,
	})
	return record, nil
}

// Fail marks a processing payout as failed, cascades the failed status to
// its request and reverses a withdrawal debit with a compensating credit in
// the same transaction.
func (s *Service) Fail(
	ctx context.Context,
	payoutID uuid.UUID,
	reason string,
	actor domain.Actor,
) (record *payout.Payout, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		payouts, err := uow.PayoutRepository()
		if err != nil {
			return err
		}
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}

		record, err = payouts.Get(ctx, payoutID)
		if err != nil {
			return err
		}
		if !record.CanBeFailed() {
			return domain.ErrInvalidStateTransition
		}

		request, err := requests.Get(ctx, record.RequestID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		record.Status = payout.StatusFailed
		record.FailedDate = &now
		record.FailureReason = reason
		if err := payouts.Update(ctx, record); err != nil {
			return err
		}

		if request.Type == payout.TypeWithdrawal {
			_, err := ledger.Post(ctx, uow, ledger.Entry{
				PartnerID:   record.PartnerID,
				Amount:      record.Amount,
				Type:        wallet.TypeRefundReceived,
				Description: fmt.Sprintf("reversal of failed payout %s", record.PayoutReference),
				ReferenceID: record.ID.String(),
				Actor:       actor.ID,
				Currency:    record.Currency,
			})
			if err != nil {
				return err
			}
		}

		request.Status = payout.StatusFailed
		request.UpdatedBy = actor.ID
		if err := requests.Update(ctx, request); err != nil {
			return err
		}

		entry := audit.ForPayout(record.ID, audit.ActionFailed, actor.ID).
			WithTransition(string(payout.StatusProcessing), string(payout.StatusFailed)).
			WithDescription(reason)
		return audits.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("payout failed",
		"payout_id", record.ID,
		"reason", reason,
	)
	s.emit(ctx, events.PayoutFailed{
		PayoutEvent: payoutEvent(record),
		Reason:      reason,
	})
	return record, nil
}

func payoutEvent(p *payout.Payout) events.PayoutEvent {
	return events.PayoutEvent{
		PayoutID:  p.ID,
		RequestID: p.RequestID,
		PartnerID: p.PartnerID,
		NetAmount: p.NetAmount,
		Currency:  p.Currency,
	}
}
