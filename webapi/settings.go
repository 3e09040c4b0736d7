package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/config"
	payoutdomain "github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/middleware"
	"github.com/venuehq/payouts/pkg/service/settings"
	"github.com/venuehq/payouts/webapi/common"
)

// UpdateSettingsBody is a partial update of the payout settings singleton.
type UpdateSettingsBody struct {
	MinimumPayoutAmount        *decimal.Decimal `json:"minimum_payout_amount"`
	MaximumPayoutAmount        *decimal.Decimal `json:"maximum_payout_amount"`
	AutoApprovalThreshold      *decimal.Decimal `json:"auto_approval_threshold"`
	ProcessingFee              *decimal.Decimal `json:"processing_fee"`
	ProcessingFeeType          *string          `json:"processing_fee_type" validate:"omitempty,oneof=fixed percentage"`
	PayoutSchedule             *string          `json:"payout_schedule" validate:"omitempty,oneof=immediate daily weekly monthly on_demand"`
	AllowedPayoutMethods       []string         `json:"allowed_payout_methods" validate:"omitempty,min=1,dive,oneof=bank_transfer upi wallet cheque cash"`
	RequireBankVerification    *bool            `json:"require_bank_verification"`
	AutoProcessApprovedPayouts *bool            `json:"auto_process_approved_payouts"`
}

// SettingsRoutes registers the admin settings endpoints.
func SettingsRoutes(app *fiber.App, svc *settings.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	admin := middleware.AdminOnly()

	app.Get("/settings", protected, admin, GetSettings(svc))
	app.Put("/settings", protected, admin, UpdateSettings(svc))
}

// GetSettings returns the effective payout settings.
func GetSettings(svc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, err := svc.Get(c.UserContext())
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "settings retrieved", current)
	}
}

// UpdateSettings applies a partial settings update.
func UpdateSettings(svc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		body, err := common.BindAndValidate[UpdateSettingsBody](c)
		if err != nil {
			return nil
		}

		update := dto.UpdateSettings{
			MinimumPayoutAmount:        body.MinimumPayoutAmount,
			MaximumPayoutAmount:        body.MaximumPayoutAmount,
			AutoApprovalThreshold:      body.AutoApprovalThreshold,
			ProcessingFee:              body.ProcessingFee,
			RequireBankVerification:    body.RequireBankVerification,
			AutoProcessApprovedPayouts: body.AutoProcessApprovedPayouts,
		}
		if body.ProcessingFeeType != nil {
			feeType := payoutdomain.ProcessingFeeType(*body.ProcessingFeeType)
			update.ProcessingFeeType = &feeType
		}
		if body.PayoutSchedule != nil {
			schedule := payoutdomain.Schedule(*body.PayoutSchedule)
			update.PayoutSchedule = &schedule
		}
		for _, m := range body.AllowedPayoutMethods {
			update.AllowedPayoutMethods = append(update.AllowedPayoutMethods, payoutdomain.Method(m))
		}

		updated, err := svc.Update(c.UserContext(), update, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "settings updated", updated)
	}
}
