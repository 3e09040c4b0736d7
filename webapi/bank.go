package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain/bank"
	"github.com/venuehq/payouts/pkg/dto"
	"github.com/venuehq/payouts/pkg/middleware"
	"github.com/venuehq/payouts/pkg/service/bankaccount"
	"github.com/venuehq/payouts/webapi/common"
)

// CreateBankAccountRequest is the account registration body.
type CreateBankAccountRequest struct {
	PartnerID         *uuid.UUID `json:"partner_id" validate:"omitempty"`
	AccountHolderName string     `json:"account_holder_name" validate:"required,max=255"`
	AccountNumber     string     `json:"account_number" validate:"required,min=9,max=18,numeric"`
	IFSCCode          string     `json:"ifsc_code" validate:"required,len=11,alphanum"`
	BankName          string     `json:"bank_name" validate:"required,max=255"`
	BranchName        string     `json:"branch_name" validate:"omitempty,max=255"`
	AccountType       string     `json:"account_type" validate:"required,oneof=savings current salary nre nro"`
	IsPrimary         bool       `json:"is_primary"`
}

// UpdateBankAccountRequest carries the mutable fields only.
type UpdateBankAccountRequest struct {
	AccountHolderName *string `json:"account_holder_name" validate:"omitempty,max=255"`
	BankName          *string `json:"bank_name" validate:"omitempty,max=255"`
	BranchName        *string `json:"branch_name" validate:"omitempty,max=255"`
	IFSCCode          *string `json:"ifsc_code" validate:"omitempty,len=11,alphanum"`
}

// VerifyBankAccountRequest records how the account was verified.
type VerifyBankAccountRequest struct {
	VerificationMethod    string `json:"verification_method" validate:"required,max=50"`
	VerificationReference string `json:"verification_reference" validate:"omitempty,max=100"`
	Notes                 string `json:"notes" validate:"omitempty,max=500"`
}

// RejectBankAccountRequest carries the rejection reason.
type RejectBankAccountRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// BankAccountResponse is the read model. The account number is always
// masked; the unmasked value never leaves the service layer.
type BankAccountResponse struct {
	ID                uuid.UUID  `json:"id"`
	PartnerID         uuid.UUID  `json:"partner_id"`
	AccountHolderName string     `json:"account_holder_name"`
	AccountNumber     string     `json:"account_number"`
	IFSCCode          string     `json:"ifsc_code"`
	BankName          string     `json:"bank_name"`
	BranchName        string     `json:"branch_name,omitempty"`
	AccountType       string     `json:"account_type"`
	Status            string     `json:"status"`
	IsPrimary         bool       `json:"is_primary"`
	VerifiedDate      *time.Time `json:"verified_date,omitempty"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToBankAccountResponse maps an account to its masked read model.
func ToBankAccountResponse(a *bank.Account) *BankAccountResponse {
	return &BankAccountResponse{
		ID:                a.ID,
		PartnerID:         a.PartnerID,
		AccountHolderName: a.AccountHolderName,
		AccountNumber:     a.MaskedAccountNumber(),
		IFSCCode:          a.IFSCCode,
		BankName:          a.BankName,
		BranchName:        a.BranchName,
		AccountType:       string(a.AccountType),
		Status:            string(a.Status),
		IsPrimary:         a.IsPrimary,
		VerifiedDate:      a.VerifiedDate,
		RejectionReason:   a.RejectionReason,
		CreatedAt:         a.CreatedAt,
	}
}

func toBankAccountResponses(accounts []*bank.Account) []*BankAccountResponse {
	out := make([]*BankAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToBankAccountResponse(a))
	}
	return out
}

// BankAccountRoutes registers the bank account registry endpoints.
//
//   - POST   /bank-accounts               : register an account.
//   - GET    /partners/:partnerId/bank-accounts : list a partner's accounts.
//   - GET    /bank-accounts/:id           : read one account.
//   - PUT    /bank-accounts/:id           : update mutable fields.
//   - DELETE /bank-accounts/:id           : delete if unused.
//   - POST   /bank-accounts/:id/verify    : admin verification.
//   - POST   /bank-accounts/:id/reject    : admin rejection.
//   - POST   /bank-accounts/:id/primary   : mark as primary.
func BankAccountRoutes(app *fiber.App, svc *bankaccount.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Post("/bank-accounts", protected, AddBankAccount(svc))
	app.Get("/partners/:partnerId/bank-accounts", protected, ListBankAccounts(svc))
	app.Get("/bank-accounts/:id", protected, GetBankAccount(svc))
	app.Put("/bank-accounts/:id", protected, UpdateBankAccount(svc))
	app.Delete("/bank-accounts/:id", protected, DeleteBankAccount(svc))
	app.Post("/bank-accounts/:id/verify", protected, middleware.AdminOnly(), VerifyBankAccount(svc))
	app.Post("/bank-accounts/:id/reject", protected, middleware.AdminOnly(), RejectBankAccount(svc))
	app.Post("/bank-accounts/:id/primary", protected, SetPrimaryBankAccount(svc))
}

// AddBankAccount registers a new payout destination in pending status.
func AddBankAccount(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		body, err := common.BindAndValidate[CreateBankAccountRequest](c)
		if err != nil {
			return nil
		}

		account, err := svc.Add(c.UserContext(), dto.CreateBankAccount{
			PartnerID:         body.PartnerID,
			AccountHolderName: body.AccountHolderName,
			AccountNumber:     body.AccountNumber,
			IFSCCode:          body.IFSCCode,
			BankName:          body.BankName,
			BranchName:        body.BranchName,
			AccountType:       bank.AccountType(body.AccountType),
			IsPrimary:         body.IsPrimary,
		}, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated,
			"bank account registered", ToBankAccountResponse(account))
	}
}

// ListBankAccounts lists the partner's accounts, optionally by status.
func ListBankAccounts(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		partnerID, err := uuid.Parse(c.Params("partnerId"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid partner id", err.Error())
		}
		var status *bank.Status
		if s := c.Query("status"); s != "" {
			parsed := bank.Status(s)
			status = &parsed
		}

		accounts, err := svc.ListForPartner(c.UserContext(), partnerID, status, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"bank accounts retrieved", toBankAccountResponses(accounts))
	}
}

// GetBankAccount reads one account.
func GetBankAccount(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}

		account, err := svc.Get(c.UserContext(), id, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"bank account retrieved", ToBankAccountResponse(account))
	}
}

// UpdateBankAccount updates the mutable fields of an account.
func UpdateBankAccount(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}
		body, err := common.BindAndValidate[UpdateBankAccountRequest](c)
		if err != nil {
			return nil
		}

		account, err := svc.Update(c.UserContext(), id, dto.UpdateBankAccount{
			AccountHolderName: body.AccountHolderName,
			BankName:          body.BankName,
			BranchName:        body.BranchName,
			IFSCCode:          body.IFSCCode,
		}, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"bank account updated", ToBankAccountResponse(account))
	}
}

// DeleteBankAccount removes an account not referenced by active requests.
func DeleteBankAccount(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}

		if err := svc.Delete(c.UserContext(), id, actor); err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "bank account deleted", nil)
	}
}

// VerifyBankAccount moves a pending account to verified.
func VerifyBankAccount(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}
		body, err := common.BindAndValidate[VerifyBankAccountRequest](c)
		if err != nil {
			return nil
		}

		account, err := svc.Verify(c.UserContext(), id, dto.VerifyBankAccount{
			VerificationMethod:    body.VerificationMethod,
			VerificationReference: body.VerificationReference,
			Notes:                 body.Notes,
		}, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"bank account verified", ToBankAccountResponse(account))
	}
}

// RejectBankAccount moves a pending account to rejected.
func RejectBankAccount(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}
		body, err := common.BindAndValidate[RejectBankAccountRequest](c)
		if err != nil {
			return nil
		}

		account, err := svc.Reject(c.UserContext(), id, body.Reason, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"bank account rejected", ToBankAccountResponse(account))
	}
}

// SetPrimaryBankAccount marks a verified account as primary.
func SetPrimaryBankAccount(svc *bankaccount.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}

		account, err := svc.SetPrimary(c.UserContext(), id, actor)
		if err != nil {
			return common.DomainErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"primary bank account set", ToBankAccountResponse(account))
	}
}
