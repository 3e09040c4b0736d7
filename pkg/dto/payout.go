// Package dto carries the operation inputs and read models exchanged
// between the transport layer and the services.
package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/domain/payout"
)

// CreatePayoutRequest is the input for creating a payout request. PartnerID
// is set for admin-initiated types; partner-initiated requests leave it nil
// and the actor becomes the partner.
type CreatePayoutRequest struct {
	PartnerID     *uuid.UUID
	Type          payout.Type
	Amount        decimal.Decimal
	Currency      string
	Description   string
	BankAccountID *uuid.UUID
	PayoutMethod  payout.Method
	AutoApprove   bool
	Notes         string
}

// UpdatePayoutRequest is a partial update, permitted only while the request
// is still pending.
type UpdatePayoutRequest struct {
	Amount        *decimal.Decimal
	BankAccountID *uuid.UUID
	PayoutMethod  *payout.Method
	Description   *string
	Notes         *string
}

// ProcessPayout is the input for turning an approved request into a payout.
type ProcessPayout struct {
	ProcessingFee         *decimal.Decimal
	BankReference         string
	ExternalTransactionID string
	Notes                 string
}

// BulkOperationType selects the per-item operation of a bulk run.
type BulkOperationType string

const (
	BulkApproveRequests BulkOperationType = "approve_requests"
	BulkRejectRequests  BulkOperationType = "reject_requests"
	BulkProcessPayouts  BulkOperationType = "process_payouts"
	BulkCancelRequests  BulkOperationType = "cancel_requests"
)

// BulkOperation applies one operation across a set of request ids.
type BulkOperation struct {
	Operation BulkOperationType
	IDs       []uuid.UUID
	Reason    string
	Data      *ProcessPayout
}

// BulkResult reports per-item outcomes. Success+Failed always equals the
// number of ids submitted.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// PartnerSummary folds a partner's requests into totals per status.
type PartnerSummary struct {
	PartnerID       uuid.UUID                `json:"partner_id"`
	TotalRequests   int                      `json:"total_requests"`
	TotalAmount     decimal.Decimal          `json:"total_amount"`
	ApprovedAmount  decimal.Decimal          `json:"approved_amount"`
	PendingAmount   decimal.Decimal          `json:"pending_amount"`
	RejectedAmount  decimal.Decimal          `json:"rejected_amount"`
	StatusBreakdown map[payout.Status]int    `json:"status_breakdown"`
}

// DashboardStats backs the admin dashboard.
type DashboardStats struct {
	TotalPayouts     int64           `json:"total_payouts"`
	ProcessingPayouts int64          `json:"processing_payouts"`
	CompletedPayouts int64           `json:"completed_payouts"`
	FailedPayouts    int64           `json:"failed_payouts"`
	TotalVolume      decimal.Decimal `json:"total_volume"`
	SuccessRate      float64         `json:"success_rate"`
}
