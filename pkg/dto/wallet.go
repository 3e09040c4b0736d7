package dto

import (
	"github.com/shopspring/decimal"
	"github.com/venuehq/payouts/pkg/domain/wallet"
)

// AdjustWallet is the admin input for a manual wallet credit or debit. The
// transaction type determines the direction.
type AdjustWallet struct {
	TransactionType wallet.TransactionType
	Amount          decimal.Decimal
	Description     string
	ReferenceID     string
	Notes           string
}
