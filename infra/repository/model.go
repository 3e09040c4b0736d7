// Package repository implements the persistence contracts on PostgreSQL via
// GORM. Each repository maps between the domain types and the GORM models
// here; nothing outside this package touches the models.
package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/bank"
	"github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/domain/wallet"
)

// Wallet is the partner wallet row. One row per partner.
type Wallet struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	PartnerID           uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	AvailableBalance    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	PendingBalance      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	TotalBalance        decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Currency            string          `gorm:"type:varchar(3);not null;default:'INR'"`
	Status              string          `gorm:"type:varchar(20);not null;default:'active'"`
	LastTransactionDate *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// WalletTransaction is one immutable ledger row.
type WalletTransaction struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransactionReference string          `gorm:"uniqueIndex;not null;size:50"`
	WalletID             uuid.UUID       `gorm:"type:uuid;index;not null"`
	PartnerID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type                 string          `gorm:"type:varchar(30);not null"`
	Amount               decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	BalanceBefore        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	BalanceAfter         decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Currency             string          `gorm:"type:varchar(3);not null"`
	Description          string          `gorm:"size:500"`
	ReferenceID          string          `gorm:"size:100;index"`
	Notes                string          `gorm:"size:500"`
	CreatedBy            uuid.UUID       `gorm:"type:uuid"`
	CreatedAt            time.Time       `gorm:"index"`
}

// BankAccount is a payout destination row. The account number is unique
// across all partners.
type BankAccount struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key"`
	PartnerID             uuid.UUID `gorm:"type:uuid;index;not null"`
	AccountHolderName     string    `gorm:"size:255;not null"`
	AccountNumber         string    `gorm:"uniqueIndex;not null;size:30"`
	IFSCCode              string    `gorm:"size:11;not null"`
	BankName              string    `gorm:"size:255;not null"`
	BranchName            string    `gorm:"size:255"`
	AccountType           string    `gorm:"type:varchar(20);not null"`
	Status                string    `gorm:"type:varchar(20);not null;default:'pending'"`
	IsPrimary             bool      `gorm:"not null;default:false"`
	VerifiedDate          *time.Time
	VerifiedBy            *uuid.UUID `gorm:"type:uuid"`
	VerificationMethod    string     `gorm:"size:50"`
	VerificationReference string     `gorm:"size:100"`
	RejectionReason       string     `gorm:"size:500"`
	Notes                 string     `gorm:"size:500"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// PayoutRequest is a payout request row. Requests are never deleted.
type PayoutRequest struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequestReference string          `gorm:"uniqueIndex;not null;size:50"`
	PartnerID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type             string          `gorm:"type:varchar(20);not null"`
	Status           string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	Amount           decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Currency         string          `gorm:"type:varchar(3);not null"`
	Description      string          `gorm:"size:500"`
	BankAccountID    *uuid.UUID      `gorm:"type:uuid;index"`
	PayoutMethod     string          `gorm:"type:varchar(20);not null"`
	RequestedDate    *time.Time
	ApprovedDate     *time.Time
	RejectedDate     *time.Time
	ProcessedDate    *time.Time
	CompletedDate    *time.Time
	ProcessingFee    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	NetAmount        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Notes            string          `gorm:"size:500"`
	RejectionReason  string          `gorm:"size:500"`
	AutoApprove      bool            `gorm:"not null;default:false"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid"`
	UpdatedBy        uuid.UUID       `gorm:"type:uuid"`
	ApprovedBy       *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Payout is the money-movement record row. Exactly one per request.
type Payout struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primary_key"`
	PayoutReference       string          `gorm:"uniqueIndex;not null;size:50"`
	RequestID             uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	PartnerID             uuid.UUID       `gorm:"type:uuid;index;not null"`
	Status                string          `gorm:"type:varchar(20);not null;index"`
	Amount                decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	ProcessingFee         decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	NetAmount             decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Currency              string          `gorm:"type:varchar(3);not null"`
	BankAccountID         *uuid.UUID      `gorm:"type:uuid"`
	PayoutMethod          string          `gorm:"type:varchar(20);not null"`
	BankReference         string          `gorm:"size:100"`
	ExternalTransactionID string          `gorm:"size:100"`
	ProcessedDate         *time.Time
	CompletedDate         *time.Time
	FailedDate            *time.Time
	Notes                 string `gorm:"size:500"`
	FailureReason         string `gorm:"size:500"`
	ProcessedBy           uuid.UUID `gorm:"type:uuid"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// AuditEntry is one append-only trail row.
type AuditEntry struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	PayoutRequestID *uuid.UUID `gorm:"type:uuid;index"`
	PayoutID        *uuid.UUID `gorm:"type:uuid;index"`
	Action          string     `gorm:"type:varchar(30);not null"`
	PreviousStatus  string     `gorm:"type:varchar(20)"`
	NewStatus       string     `gorm:"type:varchar(20)"`
	Description     string     `gorm:"size:500"`
	PerformedBy     uuid.UUID  `gorm:"type:uuid"`
	CreatedAt       time.Time  `gorm:"index"`
}

// PayoutSettings is the singleton settings row. AllowedPayoutMethods is
// stored as a comma-separated list.
type PayoutSettings struct {
	ID                         uuid.UUID       `gorm:"type:uuid;primary_key"`
	MinimumPayoutAmount        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	MaximumPayoutAmount        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	AutoApprovalThreshold      decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	ProcessingFee              decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	ProcessingFeeType          string          `gorm:"type:varchar(20);not null;default:'fixed'"`
	PayoutSchedule             string          `gorm:"type:varchar(20);not null;default:'on_demand'"`
	AllowedPayoutMethods       string          `gorm:"size:255"`
	RequireBankVerification    bool            `gorm:"not null;default:true"`
	AutoProcessApprovedPayouts bool            `gorm:"not null;default:false"`
	UpdatedBy                  *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// Models lists every model for AutoMigrate.
func Models() []any {
	return []any{
		&Wallet{},
		&WalletTransaction{},
		&BankAccount{},
		&PayoutRequest{},
		&Payout{},
		&AuditEntry{},
		&PayoutSettings{},
	}
}

func walletToDomain(m *Wallet) *wallet.Wallet {
	return &wallet.Wallet{
		ID:                  m.ID,
		PartnerID:           m.PartnerID,
		AvailableBalance:    m.AvailableBalance,
		PendingBalance:      m.PendingBalance,
		TotalBalance:        m.TotalBalance,
		Currency:            m.Currency,
		Status:              wallet.Status(m.Status),
		LastTransactionDate: m.LastTransactionDate,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func walletToModel(w *wallet.Wallet) *Wallet {
	return &Wallet{
		ID:                  w.ID,
		PartnerID:           w.PartnerID,
		AvailableBalance:    w.AvailableBalance,
		PendingBalance:      w.PendingBalance,
		TotalBalance:        w.TotalBalance,
		Currency:            w.Currency,
		Status:              string(w.Status),
		LastTransactionDate: w.LastTransactionDate,
		CreatedAt:           w.CreatedAt,
		UpdatedAt:           w.UpdatedAt,
	}
}

func transactionToDomain(m *WalletTransaction) *wallet.Transaction {
	return &wallet.Transaction{
		ID:                   m.ID,
		TransactionReference: m.TransactionReference,
		WalletID:             m.WalletID,
		PartnerID:            m.PartnerID,
		Type:                 wallet.TransactionType(m.Type),
		Amount:               m.Amount,
		BalanceBefore:        m.BalanceBefore,
		BalanceAfter:         m.BalanceAfter,
		Currency:             m.Currency,
		Description:          m.Description,
		ReferenceID:          m.ReferenceID,
		Notes:                m.Notes,
		CreatedBy:            m.CreatedBy,
		CreatedAt:            m.CreatedAt,
	}
}

func transactionToModel(t *wallet.Transaction) *WalletTransaction {
	return &WalletTransaction{
		ID:                   t.ID,
		TransactionReference: t.TransactionReference,
		WalletID:             t.WalletID,
		PartnerID:            t.PartnerID,
		Type:                 string(t.Type),
		Amount:               t.Amount,
		BalanceBefore:        t.BalanceBefore,
		BalanceAfter:         t.BalanceAfter,
		Currency:             t.Currency,
		Description:          t.Description,
		ReferenceID:          t.ReferenceID,
		Notes:                t.Notes,
		CreatedBy:            t.CreatedBy,
		CreatedAt:            t.CreatedAt,
	}
}

func bankAccountToDomain(m *BankAccount) *bank.Account {
	return &bank.Account{
		ID:                    m.ID,
		PartnerID:             m.PartnerID,
		AccountHolderName:     m.AccountHolderName,
		AccountNumber:         m.AccountNumber,
		IFSCCode:              m.IFSCCode,
		BankName:              m.BankName,
		BranchName:            m.BranchName,
		AccountType:           bank.AccountType(m.AccountType),
		Status:                bank.Status(m.Status),
		IsPrimary:             m.IsPrimary,
		VerifiedDate:          m.VerifiedDate,
		VerifiedBy:            m.VerifiedBy,
		VerificationMethod:    m.VerificationMethod,
		VerificationReference: m.VerificationReference,
		RejectionReason:       m.RejectionReason,
		Notes:                 m.Notes,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func bankAccountToModel(a *bank.Account) *BankAccount {
	return &BankAccount{
		ID:                    a.ID,
		PartnerID:             a.PartnerID,
		AccountHolderName:     a.AccountHolderName,
		AccountNumber:         a.AccountNumber,
		IFSCCode:              a.IFSCCode,
		BankName:              a.BankName,
		BranchName:            a.BranchName,
		AccountType:           string(a.AccountType),
		Status:                string(a.Status),
		IsPrimary:             a.IsPrimary,
		VerifiedDate:          a.VerifiedDate,
		VerifiedBy:            a.VerifiedBy,
		VerificationMethod:    a.VerificationMethod,
		VerificationReference: a.VerificationReference,
		RejectionReason:       a.RejectionReason,
		Notes:                 a.Notes,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func requestToDomain(m *PayoutRequest) *payout.Request {
	return &payout.Request{
		ID:               m.ID,
		RequestReference: m.RequestReference,
		PartnerID:        m.PartnerID,
		Type:             payout.Type(m.Type),
		Status:           payout.Status(m.Status),
		Amount:           m.Amount,
		Currency:         m.Currency,
		Description:      m.Description,
		BankAccountID:    m.BankAccountID,
		PayoutMethod:     payout.Method(m.PayoutMethod),
		RequestedDate:    m.RequestedDate,
		ApprovedDate:     m.ApprovedDate,
		RejectedDate:     m.RejectedDate,
		ProcessedDate:    m.ProcessedDate,
		CompletedDate:    m.CompletedDate,
		ProcessingFee:    m.ProcessingFee,
		NetAmount:        m.NetAmount,
		Notes:            m.Notes,
		RejectionReason:  m.RejectionReason,
		AutoApprove:      m.AutoApprove,
		CreatedBy:        m.CreatedBy,
		UpdatedBy:        m.UpdatedBy,
		ApprovedBy:       m.ApprovedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func requestToModel(r *payout.Request) *PayoutRequest {
	return &PayoutRequest{
		ID:               r.ID,
		RequestReference: r.RequestReference,
		PartnerID:        r.PartnerID,
		Type:             string(r.Type),
		Status:           string(r.Status),
		Amount:           r.Amount,
		Currency:         r.Currency,
		Description:      r.Description,
		BankAccountID:    r.BankAccountID,
		PayoutMethod:     string(r.PayoutMethod),
		RequestedDate:    r.RequestedDate,
		ApprovedDate:     r.ApprovedDate,
		RejectedDate:     r.RejectedDate,
		ProcessedDate:    r.ProcessedDate,
		CompletedDate:    r.CompletedDate,
		ProcessingFee:    r.ProcessingFee,
		NetAmount:        r.NetAmount,
		Notes:            r.Notes,
		RejectionReason:  r.RejectionReason,
		AutoApprove:      r.AutoApprove,
		CreatedBy:        r.CreatedBy,
		UpdatedBy:        r.UpdatedBy,
		ApprovedBy:       r.ApprovedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func payoutToDomain(m *Payout) *payout.Payout {
	return &payout.Payout{
		ID:                    m.ID,
		PayoutReference:       m.PayoutReference,
		RequestID:             m.RequestID,
		PartnerID:             m.PartnerID,
		Status:                payout.Status(m.Status),
		Amount:                m.Amount,
		ProcessingFee:         m.ProcessingFee,
		NetAmount:             m.NetAmount,
		Currency:              m.Currency,
		BankAccountID:         m.BankAccountID,
		PayoutMethod:          payout.Method(m.PayoutMethod),
		BankReference:         m.BankReference,
		ExternalTransactionID: m.ExternalTransactionID,
		ProcessedDate:         m.ProcessedDate,
		CompletedDate:         m.CompletedDate,
		FailedDate:            m.FailedDate,
		Notes:                 m.Notes,
		FailureReason:         m.FailureReason,
		ProcessedBy:           m.ProcessedBy,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func payoutToModel(p *payout.Payout) *Payout {
	return &Payout{
		ID:                    p.ID,
		PayoutReference:       p.PayoutReference,
		RequestID:             p.RequestID,
		PartnerID:             p.PartnerID,
		Status:                string(p.Status),
		Amount:                p.Amount,
		ProcessingFee:         p.ProcessingFee,
		NetAmount:             p.NetAmount,
		Currency:              p.Currency,
		BankAccountID:         p.BankAccountID,
		PayoutMethod:          string(p.PayoutMethod),
		BankReference:         p.BankReference,
		ExternalTransactionID: p.ExternalTransactionID,
		ProcessedDate:         p.ProcessedDate,
		CompletedDate:         p.CompletedDate,
		FailedDate:            p.FailedDate,
		Notes:                 p.Notes,
		FailureReason:         p.FailureReason,
		ProcessedBy:           p.ProcessedBy,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func auditToDomain(m *AuditEntry) *audit.Entry {
	return &audit.Entry{
		ID:              m.ID,
		PayoutRequestID: m.PayoutRequestID,
		PayoutID:        m.PayoutID,
		Action:          m.Action,
		PreviousStatus:  m.PreviousStatus,
		NewStatus:       m.NewStatus,
		Description:     m.Description,
		PerformedBy:     m.PerformedBy,
		CreatedAt:       m.CreatedAt,
	}
}

func auditToModel(e *audit.Entry) *AuditEntry {
	return &AuditEntry{
		ID:              e.ID,
		PayoutRequestID: e.PayoutRequestID,
		PayoutID:        e.PayoutID,
		Action:          e.Action,
		PreviousStatus:  e.PreviousStatus,
		NewStatus:       e.NewStatus,
		Description:     e.Description,
		PerformedBy:     e.PerformedBy,
		CreatedAt:       e.CreatedAt,
	}
}

func settingsToDomain(m *PayoutSettings) *payout.Settings {
	var methods []payout.Method
	if m.AllowedPayoutMethods != "" {
		for _, v := range strings.Split(m.AllowedPayoutMethods, ",") {
			methods = append(methods, payout.Method(v))
		}
	}
	return &payout.Settings{
		ID:                         m.ID,
		MinimumPayoutAmount:        m.MinimumPayoutAmount,
		MaximumPayoutAmount:        m.MaximumPayoutAmount,
		AutoApprovalThreshold:      m.AutoApprovalThreshold,
		ProcessingFee:              m.ProcessingFee,
		ProcessingFeeType:          payout.ProcessingFeeType(m.ProcessingFeeType),
		PayoutSchedule:             payout.Schedule(m.PayoutSchedule),
		AllowedPayoutMethods:       methods,
		RequireBankVerification:    m.RequireBankVerification,
		AutoProcessApprovedPayouts: m.AutoProcessApprovedPayouts,
		UpdatedBy:                  m.UpdatedBy,
		CreatedAt:                  m.CreatedAt,
		UpdatedAt:                  m.UpdatedAt,
	}
}

func settingsToModel(s *payout.Settings) *PayoutSettings {
	methods := make([]string, 0, len(s.AllowedPayoutMethods))
	for _, m := range s.AllowedPayoutMethods {
		methods = append(methods, string(m))
	}
	return &PayoutSettings{
		ID:                         s.ID,
		MinimumPayoutAmount:        s.MinimumPayoutAmount,
		MaximumPayoutAmount:        s.MaximumPayoutAmount,
		AutoApprovalThreshold:      s.AutoApprovalThreshold,
		ProcessingFee:              s.ProcessingFee,
		ProcessingFeeType:          string(s.ProcessingFeeType),
		PayoutSchedule:             string(s.PayoutSchedule),
		AllowedPayoutMethods:       strings.Join(methods, ","),
		RequireBankVerification:    s.RequireBankVerification,
		AutoProcessApprovedPayouts: s.AutoProcessApprovedPayouts,
		UpdatedBy:                  s.UpdatedBy,
		CreatedAt:                  s.CreatedAt,
		UpdatedAt:                  s.UpdatedAt,
	}
}
