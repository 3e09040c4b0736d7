package payout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/repository"
)

// GetRequest returns one payout request the actor may see.
func (s *Service) GetRequest(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (request *payout.Request, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		request, err = requests.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(request.PartnerID) {
		return nil, domain.ErrForbidden
	}
	return request, nil
}

// ListRequests pages payout requests. Partner-scoped actors are pinned to
// their own partner id regardless of the filter they pass.
func (s *Service) ListRequests(
	ctx context.Context,
	params repository.ListParams,
	filters repository.RequestFilters,
	actor domain.Actor,
) (page *repository.Page[payout.Request], err error) {
	if actor.PartnerScoped {
		filters.PartnerID = &actor.ID
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		requests, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		page, err = requests.List(ctx, params, filters)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetPayout returns one payout the actor may see.
func (s *Service) GetPayout(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (record *payout.Payout, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		payouts, err := uow.PayoutRepository()
		if err != nil {
			return err
		}
		record, err = payouts.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(record.PartnerID) {
		return nil, domain.ErrForbidden
	}
	return record, nil
}

// ListPayouts pages payout records with the same partner pinning as
// ListRequests.
func (s *Service) ListPayouts(
	ctx context.Context,
	params repository.ListParams,
	filters repository.PayoutFilters,
	actor domain.Actor,
) (page *repository.Page[payout.Payout], err error) {
	if actor.PartnerScoped {
		filters.PartnerID = &actor.ID
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		payouts, err := uow.PayoutRepository()
		if err != nil {
			return err
		}
		page, err = payouts.List(ctx, params, filters)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// PartnerSummary folds a partner's requests in the window into per-status
// totals.
func (s *Service) PartnerSummary(
	ctx context.Context,
	partnerID uuid.UUID,
	from, to *time.Time,
	actor domain.Actor,
) (*dto.PartnerSummary, error) {
	if !actor.CanAccess(partnerID) {
		return nil, domain.ErrForbidden
	}

	var requests []*payout.Request
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.PayoutRequestRepository()
		if err != nil {
			return err
		}
		requests, err = repo.ListByPartner(ctx, partnerID, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	summary := &dto.PartnerSummary{
		PartnerID:       partnerID,
		TotalRequests:   len(requests),
		TotalAmount:     decimal.Zero,
		ApprovedAmount:  decimal.Zero,
		PendingAmount:   decimal.Zero,
		RejectedAmount:  decimal.Zero,
		StatusBreakdown: map[payout.Status]int{},
	}
	for _, r := range requests {
		summary.TotalAmount = summary.TotalAmount.Add(r.Amount)
		summary.StatusBreakdown[r.Status]++
		switch r.Status {
		case payout.StatusApproved, payout.StatusProcessing, payout.StatusCompleted:
			summary.ApprovedAmount = summary.ApprovedAmount.Add(r.Amount)
		case payout.StatusPending:
			summary.PendingAmount = summary.PendingAmount.Add(r.Amount)
		case payout.StatusRejected:
			summary.RejectedAmount = summary.RejectedAmount.Add(r.Amount)
		}
	}
	return summary, nil
}

// DashboardStats aggregates payout counts and volume for the admin
// dashboard.
func (s *Service) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	var stats *repository.PayoutStats
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		payouts, err := uow.PayoutRepository()
		if err != nil {
			return err
		}
		stats, err = payouts.Stats(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &dto.DashboardStats{
		TotalPayouts:      stats.Total,
		ProcessingPayouts: stats.Processing,
		CompletedPayouts:  stats.Completed,
		FailedPayouts:     stats.Failed,
		TotalVolume:       stats.TotalVolume,
	}
	finished := stats.Completed + stats.Failed
	if finished > 0 {
		out.SuccessRate = float64(stats.Completed) / float64(finished) * 100
	}
	return out, nil
}

// RequestHistory returns the audit trail of a request, oldest first.
func (s *Service) RequestHistory(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
) ([]*audit.Entry, error) {
	if _, err := s.GetRequest(ctx, requestID, actor); err != nil {
		return nil, err
	}
	var entries []*audit.Entry
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}
		entries, err = audits.ListForRequest(ctx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// PayoutHistory returns the audit trail of a payout, oldest first.
func (s *Service) PayoutHistory(
	ctx context.Context,
	payoutID uuid.UUID,
	actor domain.Actor,
) ([]*audit.Entry, error) {
	if _, err := s.GetPayout(ctx, payoutID, actor); err != nil {
		return nil, err
	}
	var entries []*audit.Entry
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}
		entries, err = audits.ListForPayout(ctx, payoutID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
