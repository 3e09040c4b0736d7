package payout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProcessingFeeType determines how the configured processing fee applies.
type ProcessingFeeType string

const (
	FeeFixed      ProcessingFeeType = "fixed"
	FeePercentage ProcessingFeeType = "percentage"
)

// Schedule is the cadence on which approved payouts are dispatched.
type Schedule string

const (
	ScheduleImmediate Schedule = "immediate"
	ScheduleDaily     Schedule = "daily"
	ScheduleWeekly    Schedule = "weekly"
	ScheduleMonthly   Schedule = "monthly"
	ScheduleOnDemand  Schedule = "on_demand"
)

// Settings is the singleton configuration the workflow consults. It lives in
// the store (one row, lazily created) and is injected per operation, never
// held as process-global state.
type Settings struct {
	ID                         uuid.UUID
	MinimumPayoutAmount        decimal.Decimal
	MaximumPayoutAmount        decimal.Decimal
	AutoApprovalThreshold      decimal.Decimal
	ProcessingFee              decimal.Decimal
	ProcessingFeeType          ProcessingFeeType
	PayoutSchedule             Schedule
	AllowedPayoutMethods       []Method
	RequireBankVerification    bool
	AutoProcessApprovedPayouts bool
	UpdatedBy                  *uuid.UUID
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// DefaultSettings matches the defaults the store seeds on first read.
func DefaultSettings() *Settings {
	return &Settings{
		ID:                    uuid.New(),
		MinimumPayoutAmount:   decimal.NewFromInt(100),
		MaximumPayoutAmount:   decimal.NewFromInt(1_000_000),
		AutoApprovalThreshold: decimal.NewFromInt(5_000),
		ProcessingFee:         decimal.Zero,
		ProcessingFeeType:     FeeFixed,
		PayoutSchedule:        ScheduleOnDemand,
		AllowedPayoutMethods: []Method{
			MethodBankTransfer, MethodUPI, MethodWallet,
		},
		RequireBankVerification: true,
	}
}

// MethodAllowed reports whether m is in the allowed set. An empty set allows
// every method.
func (s *Settings) MethodAllowed(m Method) bool {
	if len(s.AllowedPayoutMethods) == 0 {
		return true
	}
	for _, allowed := range s.AllowedPayoutMethods {
		if allowed == m {
			return true
		}
	}
	return false
}

// FeeFor computes the processing fee for amount using the configured fee
// type. Percentage fees are amount * fee / 100, rounded to two places.
func (s *Settings) FeeFor(amount decimal.Decimal) decimal.Decimal {
	if s.ProcessingFeeType == FeePercentage {
		return amount.Mul(s.ProcessingFee).Div(decimal.NewFromInt(100)).Round(2)
	}
	return s.ProcessingFee
}
