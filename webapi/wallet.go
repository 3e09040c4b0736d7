package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/middleware"
	"github.com/venuehq/payouts/pkg/repository"
	"github.com/venuehq/payouts/pkg/service/ledger"
	"github.com/venuehq/payouts/webapi/common"
)

// AdjustWalletRequest is the admin wallet adjustment body.
type AdjustWalletRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	TransactionType string          `json:"transaction_type" validate:"required"`
	Description     string          `json:"description" validate:"required,max=500"`
	ReferenceID     string          `json:"reference_id" validate:"omitempty,max=100"`
	Notes           string          `json:"notes" validate:"omitempty,max=500"`
}

// WalletRoutes registers the wallet endpoints.
//
//   - GET  /partners/:partnerId/wallet                : wallet balances.
//   - GET  /partners/:partnerId/wallet/transactions   : ledger page.
//   - POST /partners/:partnerId/wallet/adjust         : admin adjustment.
func WalletRoutes(app *fiber.App, svc *ledger.Service, cfg *config.App) {
	app.Get("/partners/:partnerId/wallet",
		middleware.JwtProtected(cfg.Jwt), GetWallet(svc))
	app.Get("/partners/:partnerId/wallet/transactions",
		middleware.JwtProtected(cfg.Jwt), ListWalletTransactions(svc))
	app.Post("/partners/:partnerId/wallet/adjust",
		middleware.JwtProtected(cfg.Jwt), middleware.AdminOnly(), AdjustWallet(svc))
}

// GetWallet returns the partner's wallet, creating it on first read.
func GetWallet(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		partnerID, err := uuid.Parse(c.Params("partnerId"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid partner id", err.Error())
		}

		w, err := svc.GetOrCreateWallet(c.UserContext(), partnerID, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "wallet retrieved", w)
	}
}

// ListWalletTransactions pages the partner's ledger, most recent first.
func ListWalletTransactions(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		partnerID, err := uuid.Parse(c.Params("partnerId"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid partner id", err.Error())
		}

		params := repository.ListParams{
			Page:  c.QueryInt("page", 1),
			Limit: c.QueryInt("limit", 20),
		}
		filters := repository.TransactionFilters{}
		if t := c.Query("type"); t != "" {
			filters.Types = []wallet.TransactionType{wallet.TransactionType(t)}
		}
		if from := c.Query("date_from"); from != "" {
			if parsed, err := time.Parse(time.RFC3339, from); err == nil {
				filters.DateFrom = &parsed
			}
		}
		if to := c.Query("date_to"); to != "" {
			if parsed, err := time.Parse(time.RFC3339, to); err == nil {
				filters.DateTo = &parsed
			}
		}

		page, err := svc.ListTransactions(c.UserContext(), partnerID, params, filters, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "transactions retrieved", page)
	}
}

// AdjustWallet applies an admin credit or debit to the partner's wallet.
func AdjustWallet(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		partnerID, err := uuid.Parse(c.Params("partnerId"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid partner id", err.Error())
		}
		body, err := common.BindAndValidate[AdjustWalletRequest](c)
		if err != nil {
			return nil
		}

		tx, err := svc.Adjust(c.UserContext(), partnerID, dto.AdjustWallet{
			Amount:          body.Amount,
			TransactionType: wallet.TransactionType(body.TransactionType),
			Description:     body.Description,
			ReferenceID:     body.ReferenceID,
			Notes:           body.Notes,
		}, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "wallet adjusted", tx)
	}
}
