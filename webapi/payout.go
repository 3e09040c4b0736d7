package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/config"
	payoutdomain "github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/middleware"
	"github.com/venuehq/payouts/pkg/repository"
	"github.com/venuehq/payouts/pkg/service/payout"
	"github.com/venuehq/payouts/webapi/common"
)

// CreatePayoutRequestBody is the request creation body.
type CreatePayoutRequestBody struct {
	PartnerID     *uuid.UUID      `json:"partner_id" validate:"omitempty"`
	Type          string          `json:"type" validate:"required,oneof=commission refund bonus adjustment withdrawal settlement"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Currency      string          `json:"currency" validate:"omitempty,len=3,uppercase"`
	Description   string          `json:"description" validate:"omitempty,max=500"`
	BankAccountID *uuid.UUID      `json:"bank_account_id" validate:"omitempty"`
	PayoutMethod  string          `json:"payout_method" validate:"required,oneof=bank_transfer upi wallet cheque cash"`
	AutoApprove   bool            `json:"auto_approve"`
	Notes         string          `json:"notes" validate:"omitempty,max=500"`
}

// UpdatePayoutRequestBody carries a partial update of a pending request.
type UpdatePayoutRequestBody struct {
	Amount        *decimal.Decimal `json:"amount"`
	BankAccountID *uuid.UUID       `json:"bank_account_id"`
	PayoutMethod  *string          `json:"payout_method" validate:"omitempty,oneof=bank_transfer upi wallet cheque cash"`
	Description   *string          `json:"description" validate:"omitempty,max=500"`
	Notes         *string          `json:"notes" validate:"omitempty,max=500"`
}

// ApproveRequestBody carries optional approval notes.
type ApproveRequestBody struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// ReasonBody carries the reason for a rejection, cancellation or failure.
type ReasonBody struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ProcessPayoutBody is the processing input.
type ProcessPayoutBody struct {
	ProcessingFee         *decimal.Decimal `json:"processing_fee"`
	BankReference         string           `json:"bank_reference" validate:"omitempty,max=100"`
	ExternalTransactionID string           `json:"external_transaction_id" validate:"omitempty,max=100"`
	Notes                 string           `json:"notes" validate:"omitempty,max=500"`
}

// CompletePayoutBody carries the settlement confirmation.
type CompletePayoutBody struct {
	BankReference string `json:"bank_reference" validate:"omitempty,max=100"`
}

// BulkOperationBody applies one operation across request ids.
type BulkOperationBody struct {
	Operation string             `json:"operation" validate:"required,oneof=approve_requests reject_requests process_payouts cancel_requests"`
	IDs       []uuid.UUID        `json:"ids" validate:"required,min=1,max=100"`
	Reason    string             `json:"reason" validate:"omitempty,max=500"`
	Data      *ProcessPayoutBody `json:"data"`
}

// PayoutRoutes registers the payout workflow endpoints.
//
// Requests:
//   - POST /payout-requests                    : create.
//   - GET  /payout-requests                    : list (admins see all).
//   - GET  /payout-requests/:id                : read one.
//   - PUT  /payout-requests/:id                : update while pending.
//   - POST /payout-requests/:id/approve        : admin approval.
//   - POST /payout-requests/:id/reject         : admin rejection.
//   - POST /payout-requests/:id/cancel         : cancellation.
//   - POST /payout-requests/:id/process        : admin processing.
//   - GET  /payout-requests/:id/history        : audit trail.
//
// Payouts:
//   - GET  /payouts, /payouts/:id, /payouts/:id/history
//   - POST /payouts/:id/complete, /payouts/:id/fail
//   - POST /payouts/bulk, GET /payouts/stats
//   - GET  /partners/:partnerId/payout-summary
func PayoutRoutes(app *fiber.App, svc *payout.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	admin := middleware.AdminOnly()

	app.Post("/payout-requests", protected, CreatePayoutRequest(svc))
	app.Get("/payout-requests", protected, ListPayoutRequests(svc))
	app.Get("/payout-requests/:id", protected, GetPayoutRequest(svc))
	app.Put("/payout-requests/:id", protected, UpdatePayoutRequest(svc))
	app.Post("/payout-requests/:id/approve", protected, admin, ApprovePayoutRequest(svc))
	app.Post("/payout-requests/:id/reject", protected, admin, RejectPayoutRequest(svc))
	app.Post("/payout-requests/:id/cancel", protected, CancelPayoutRequest(svc))
	app.Post("/payout-requests/:id/process", protected, admin, ProcessPayoutRequest(svc))
	app.Get("/payout-requests/:id/history", protected, PayoutRequestHistory(svc))

	app.Get("/payouts", protected, ListPayouts(svc))
	app.Get("/payouts/stats", protected, admin, PayoutStats(svc))
	app.Get("/payouts/:id", protected, GetPayout(svc))
	app.Post("/payouts/:id/complete", protected, admin, CompletePayout(svc))
	app.Post("/payouts/:id/fail", protected, admin, FailPayout(svc))
	app.Get("/payouts/:id/history", protected, PayoutHistory(svc))
	app.Post("/payouts/bulk", protected, admin, BulkPayoutOperation(svc))

	app.Get("/partners/:partnerId/payout-summary", protected, PartnerPayoutSummary(svc))
}

// CreatePayoutRequest creates a new payout request.
func CreatePayoutRequest(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		body, err := common.BindAndValidate[CreatePayoutRequestBody](c)
		if err != nil {
			return nil
		}

		request, err := svc.CreateRequest(c.UserContext(), dto.CreatePayoutRequest{
			PartnerID:     body.PartnerID,
			Type:          payoutdomain.Type(body.Type),
			Amount:        body.Amount,
			Currency:      body.Currency,
			Description:   body.Description,
			BankAccountID: body.BankAccountID,
			PayoutMethod:  payoutdomain.Method(body.PayoutMethod),
			AutoApprove:   body.AutoApprove,
			Notes:         body.Notes,
		}, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "payout request created", request)
	}
}

// ListPayoutRequests pages requests; partner tokens only see their own.
func ListPayoutRequests(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		params := repository.ListParams{
			Page:  c.QueryInt("page", 1),
			Limit: c.QueryInt("limit", 20),
		}
		filters := repository.RequestFilters{}
		if s := c.Query("status"); s != "" {
			status := payoutdomain.Status(s)
			filters.Status = &status
		}
		if t := c.Query("type"); t != "" {
			typ := payoutdomain.Type(t)
			filters.Type = &typ
		}
		if p := c.Query("partner_id"); p != "" {
			if id, err := uuid.Parse(p); err == nil {
				filters.PartnerID = &id
			}
		}

		page, err := svc.ListRequests(c.UserContext(), params, filters, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout requests retrieved", page)
	}
}

// GetPayoutRequest reads one request.
func GetPayoutRequest(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request id", err.Error())
		}

		request, err := svc.GetRequest(c.UserContext(), id, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout request retrieved", request)
	}
}

// UpdatePayoutRequest updates a pending request.
func UpdatePayoutRequest(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request id", err.Error())
		}
		body, err := common.BindAndValidate[UpdatePayoutRequestBody](c)
		if err != nil {
			return nil
		}

		update := dto.UpdatePayoutRequest{
			Amount:        body.Amount,
			BankAccountID: body.BankAccountID,
			Description:   body.Description,
			Notes:         body.Notes,
		}
		if body.PayoutMethod != nil {
			method := payoutdomain.Method(*body.PayoutMethod)
			update.PayoutMethod = &method
		}

		request, err := svc.UpdateRequest(c.UserContext(), id, update, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout request updated", request)
	}
}

// ApprovePayoutRequest moves a pending request to approved.
func ApprovePayoutRequest(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request id", err.Error())
		}
		body, err := common.BindAndValidate[ApproveRequestBody](c)
		if err != nil {
			return nil
		}

		request, err := svc.Approve(c.UserContext(), id, body.Notes, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout request approved", request)
	}
}

// RejectPayoutRequest moves a pending request to rejected.
func RejectPayoutRequest(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request id", err.Error())
		}
		body, err := common.BindAndValidate[ReasonBody](c)
		if err != nil {
			return nil
		}

		request, err := svc.Reject(c.UserContext(), id, body.Reason, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout request rejected", request)
	}
}

// CancelPayoutRequest cancels a pending or approved request.
func CancelPayoutRequest(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request id", err.Error())
		}
		body, err := common.BindAndValidate[ReasonBody](c)
		if err != nil {
			return nil
		}

		request, err := svc.Cancel(c.UserContext(), id, body.Reason, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout request cancelled", request)
	}
}

// ProcessPayoutRequest turns an approved request into a processing payout.
func ProcessPayoutRequest(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request id", err.Error())
		}
		body, err := common.BindAndValidate[ProcessPayoutBody](c)
		if err != nil {
			return nil
		}

		record, err := svc.Process(c.UserContext(), id, dto.ProcessPayout{
			ProcessingFee:         body.ProcessingFee,
			BankReference:         body.BankReference,
			ExternalTransactionID: body.ExternalTransactionID,
			Notes:                 body.Notes,
		}, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "payout processing started", record)
	}
}

// PayoutRequestHistory returns the request's audit trail.
func PayoutRequestHistory(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request id", err.Error())
		}

		entries, err := svc.RequestHistory(c.UserContext(), id, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "history retrieved", entries)
	}
}

// ListPayouts pages payout records.
func ListPayouts(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		params := repository.ListParams{
			Page:  c.QueryInt("page", 1),
			Limit: c.QueryInt("limit", 20),
		}
		filters := repository.PayoutFilters{}
		if s := c.Query("status"); s != "" {
			status := payoutdomain.Status(s)
			filters.Status = &status
		}
		if p := c.Query("partner_id"); p != "" {
			if id, err := uuid.Parse(p); err == nil {
				filters.PartnerID = &id
			}
		}

		page, err := svc.ListPayouts(c.UserContext(), params, filters, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payouts retrieved", page)
	}
}

// GetPayout reads one payout.
func GetPayout(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid payout id", err.Error())
		}

		record, err := svc.GetPayout(c.UserContext(), id, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout retrieved", record)
	}
}

// CompletePayout marks a processing payout settled.
func CompletePayout(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid payout id", err.Error())
		}
		body, err := common.BindAndValidate[CompletePayoutBody](c)
		if err != nil {
			return nil
		}

		record, err := svc.Complete(c.UserContext(), id, body.BankReference, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout completed", record)
	}
}

// FailPayout marks a processing payout failed and reverses any debit.
func FailPayout(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid payout id", err.Error())
		}
		body, err := common.BindAndValidate[ReasonBody](c)
		if err != nil {
			return nil
		}

		record, err := svc.Fail(c.UserContext(), id, body.Reason, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "payout failed", record)
	}
}

// PayoutHistory returns the payout's audit trail.
func PayoutHistory(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid payout id", err.Error())
		}

		entries, err := svc.PayoutHistory(c.UserContext(), id, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "history retrieved", entries)
	}
}

// BulkPayoutOperation applies one operation across request ids.
func BulkPayoutOperation(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		body, err := common.BindAndValidate[BulkOperationBody](c)
		if err != nil {
			return nil
		}

		op := dto.BulkOperation{
			Operation: dto.BulkOperationType(body.Operation),
			IDs:       body.IDs,
			Reason:    body.Reason,
		}
		if body.Data != nil {
			op.Data = &dto.ProcessPayout{
				ProcessingFee:         body.Data.ProcessingFee,
				BankReference:         body.Data.BankReference,
				ExternalTransactionID: body.Data.ExternalTransactionID,
				Notes:                 body.Data.Notes,
			}
		}

		result, err := svc.Bulk(c.UserContext(), op, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "bulk operation finished", result)
	}
}

// PayoutStats returns dashboard aggregates.
func PayoutStats(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.DashboardStats(c.UserContext())
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "stats retrieved", stats)
	}
}

// PartnerPayoutSummary folds a partner's requests into per-status totals.
func PartnerPayoutSummary(svc *payout.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		partnerID, err := uuid.Parse(c.Params("partnerId"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid partner id", err.Error())
		}

		var from, to *time.Time
		if v := c.Query("date_from"); v != "" {
			if parsed, err := time.Parse(time.RFC3339, v); err == nil {
				from = &parsed
			}
		}
		if v := c.Query("date_to"); v != "" {
			if parsed, err := time.Parse(time.RFC3339, v); err == nil {
				to = &parsed
			}
		}

		summary, err := svc.PartnerSummary(c.UserContext(), partnerID, from, to, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "summary retrieved", summary)
	}
}
