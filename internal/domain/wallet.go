package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's spendable balance. Mutated only through the
// settlement coordinator's debit/credit primitives; balance never drops
// below zero.
type Wallet struct {
	UserID    string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}
