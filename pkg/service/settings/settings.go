// Package settings provides the payout settings singleton: thresholds and
// fees the workflow consults on every relevant operation.
package settings

import (
	"context"
	"log/slog"

	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/repository"
)

// Cache is an optional read-through cache in front of the settings row.
// Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context) (*payout.Settings, error)
	Set(ctx context.Context, s *payout.Settings) error
	Invalidate(ctx context.Context) error
}

// Service reads and updates the settings singleton. No process-global
// state: callers receive a fresh read (or cached copy) per operation.
type Service struct {
	uow    repository.UnitOfWork
	cache  Cache
	logger *slog.Logger
}

// NewService creates a settings service. cache may be nil.
func NewService(deps config.Deps, cache Cache) *Service {
	return &Service{
		uow:    deps.Uow,
		cache:  cache,
		logger: deps.Logger.With("service", "settings"),
	}
}

// Get returns the settings, creating the default row on first read. Cache
// failures degrade to a store read, never to an error.
func (s *Service) Get(ctx context.Context) (*payout.Settings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("settings cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	var loaded *payout.Settings
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SettingsRepository()
		if err != nil {
			return err
		}
		loaded, err = repo.Get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, loaded); err != nil {
			s.logger.Warn("settings cache write failed", "error", err)
		}
	}
	return loaded, nil
}

// Update applies a partial update and invalidates the cache.
func (s *Service) Update(
	ctx context.Context,
	update dto.UpdateSettings,
	actor domain.Actor,
) (updated *payout.Settings, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SettingsRepository()
		if err != nil {
			return err
		}
		current, err := repo.Get(ctx)
		if err != nil {
			return err
		}
		apply(current, update)
		current.UpdatedBy = &actor.ID
		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("settings cache invalidation failed", "error", err)
		}
	}
	return updated, nil
}

func apply(s *payout.Settings, u dto.UpdateSettings) {
	if u.MinimumPayoutAmount != nil {
		s.MinimumPayoutAmount = *u.MinimumPayoutAmount
	}
	if u.MaximumPayoutAmount != nil {
		s.MaximumPayoutAmount = *u.MaximumPayoutAmount
	}
	if u.AutoApprovalThreshold != nil {
		s.AutoApprovalThreshold = *u.AutoApprovalThreshold
	}
	if u.ProcessingFee != nil {
		s.ProcessingFee = *u.ProcessingFee
	}
	if u.ProcessingFeeType != nil {
		s.ProcessingFeeType = *u.ProcessingFeeType
	}
	if u.PayoutSchedule != nil {
		s.PayoutSchedule = *u.PayoutSchedule
	}
	if u.AllowedPayoutMethods != nil {
		s.AllowedPayoutMethods = u.AllowedPayoutMethods
	}
	if u.RequireBankVerification != nil {
		s.RequireBankVerification = *u.RequireBankVerification
	}
	if u.AutoProcessApprovedPayouts != nil {
		s.AutoProcessApprovedPayouts = *u.AutoProcessApprovedPayouts
	}
}
