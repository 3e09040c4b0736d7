package dto

import (
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/domain/payout"
)

// UpdateSettings is a partial update of the payout settings singleton.
type UpdateSettings struct {
	MinimumPayoutAmount        *decimal.Decimal
	MaximumPayoutAmount        *decimal.Decimal
	AutoApprovalThreshold      *decimal.Decimal
	ProcessingFee              *decimal.Decimal
	ProcessingFeeType          *payout.ProcessingFeeType
	PayoutSchedule             *payout.Schedule
	AllowedPayoutMethods       []payout.Method
	RequireBankVerification    *bool
	AutoProcessApprovedPayouts *bool
}
