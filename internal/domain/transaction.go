package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxBetPlaced   TransactionType = "bet_placed"
	TxBetWon      TransactionType = "bet_won"
	TxPlatformFee TransactionType = "platform_fee"
	TxRefund      TransactionType = "refund"
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TxStatusCompleted TransactionStatus = "completed"
)

// Transaction is an immutable, append-only record of a single fund movement.
// Amount is signed: debits negative, credits positive. The sum of a user's
// entries reconstructs their balance history independently of the mutable
// wallet row.
type Transaction struct {
	ID        string
	UserID    string
	WagerID   string
	Amount    decimal.Decimal
	Type      TransactionType
	Status    TransactionStatus
	CreatedAt time.Time
}
