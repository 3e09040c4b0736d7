package payout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRequestStateGates(t *testing.T) {
	cases := []struct {
		status       Status
		canApprove   bool
		canReject    bool
		canProcess   bool
		canCancel    bool
		terminal     bool
	}{
		{StatusPending, true, true, false, true, false},
		{StatusApproved, false, false, true, true, false},
		{StatusProcessing, false, false, false, false, false},
		{StatusCompleted, false, false, false, false, true},
		{StatusRejected, false, false, false, false, true},
		{StatusCancelled, false, false, false, false, true},
		{StatusFailed, false, false, false, false, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			r := &Request{Status: tc.status}
			assert.Equal(t, tc.canApprove, r.CanBeApproved())
			assert.Equal(t, tc.canReject, r.CanBeRejected())
			assert.Equal(t, tc.canProcess, r.CanBeProcessed())
			assert.Equal(t, tc.canCancel, r.CanBeCancelled())
			assert.Equal(t, tc.terminal, r.IsTerminal())
		})
	}
}

func TestPayoutStateGates(t *testing.T) {
	processing := &Payout{Status: StatusProcessing}
	assert.True(t, processing.CanBeCompleted())
	assert.True(t, processing.CanBeFailed())

	done := &Payout{Status: StatusCompleted}
	assert.False(t, done.CanBeCompleted())
	assert.False(t, done.CanBeFailed())

	failed := &Payout{Status: StatusFailed}
	assert.False(t, failed.CanBeCompleted())
	assert.False(t, failed.CanBeFailed())
}

func TestSettingsFeeFor(t *testing.T) {
	fixed := &Settings{
		ProcessingFee:     decimal.NewFromInt(25),
		ProcessingFeeType: FeeFixed,
	}
	assert.True(t, fixed.FeeFor(decimal.NewFromInt(10_000)).Equal(decimal.NewFromInt(25)))

	pct := &Settings{
		ProcessingFee:     decimal.NewFromFloat(2.5),
		ProcessingFeeType: FeePercentage,
	}
	assert.True(t, pct.FeeFor(decimal.NewFromInt(10_000)).Equal(decimal.NewFromInt(250)))

	// Rounded to two places.
	got := pct.FeeFor(decimal.NewFromFloat(333.33))
	assert.True(t, got.Equal(decimal.NewFromFloat(8.33)), "got %s", got)
}

func TestSettingsMethodAllowed(t *testing.T) {
	s := &Settings{AllowedPayoutMethods: []Method{MethodBankTransfer, MethodUPI}}
	assert.True(t, s.MethodAllowed(MethodBankTransfer))
	assert.True(t, s.MethodAllowed(MethodUPI))
	assert.False(t, s.MethodAllowed(MethodCash))

	open := &Settings{}
	assert.True(t, open.MethodAllowed(MethodCash))
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.MinimumPayoutAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.AutoApprovalThreshold.Equal(decimal.NewFromInt(5_000)))
	assert.Equal(t, FeeFixed, s.ProcessingFeeType)
	assert.True(t, s.RequireBankVerification)
	assert.False(t, s.MethodAllowed(MethodCash))
}
