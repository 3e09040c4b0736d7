package wallet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionTypeDirections(t *testing.T) {
	credits := []TransactionType{TypeCredit, TypeCommissionEarned, TypeRefundReceived, TypeBonusAdded}
	for _, typ := range credits {
		assert.True(t, typ.IsCredit(), "%s should be a credit", typ)
		assert.False(t, typ.IsDebit(), "%s should not be a debit", typ)
	}

	debits := []TransactionType{TypeDebit, TypePayoutDeducted, TypeFeeDeducted, TypeAdjustment}
	for _, typ := range debits {
		assert.True(t, typ.IsDebit(), "%s should be a debit", typ)
		assert.False(t, typ.IsCredit(), "%s should not be a credit", typ)
	}

	unknown := TransactionType("bogus")
	assert.False(t, unknown.IsCredit())
	assert.False(t, unknown.IsDebit())
}

func TestWalletCanDebit(t *testing.T) {
	w := New(uuid.New(), "INR")
	assert.False(t, w.CanDebit(decimal.NewFromInt(1)))

	w.AvailableBalance = decimal.NewFromInt(100)
	assert.True(t, w.CanDebit(decimal.NewFromInt(100)))
	assert.False(t, w.CanDebit(decimal.NewFromInt(101)))

	w.Status = StatusBlocked
	assert.False(t, w.CanDebit(decimal.NewFromInt(1)))
}

func TestWalletUpdateTotals(t *testing.T) {
	w := New(uuid.New(), "INR")
	w.AvailableBalance = decimal.NewFromInt(750)
	w.PendingBalance = decimal.NewFromInt(250)
	w.UpdateTotals()
	assert.True(t, w.TotalBalance.Equal(decimal.NewFromInt(1000)))
}

func TestTransactionSigned(t *testing.T) {
	amount := decimal.NewFromInt(500)

	credit := &Transaction{Type: TypeCommissionEarned, Amount: amount}
	assert.True(t, credit.Signed().Equal(amount))

	debit := &Transaction{Type: TypePayoutDeducted, Amount: amount}
	assert.True(t, debit.Signed().Equal(amount.Neg()))
}
