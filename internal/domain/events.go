package domain

import "github.com/shopspring/decimal"

// Payout is a single winner credit inside a settlement.
type Payout struct {
	UserID string
	Amount decimal.Decimal
}

// PayoutBreakdown describes where a settled pool went.
type PayoutBreakdown struct {
	WagerID  string
	EscrowID string
	Pool     decimal.Decimal
	Fee      decimal.Decimal
	Net      decimal.Decimal
	Payouts  []Payout
}

// Outbound events consumed by the notification/UI layer.

type WagerStatusChanged struct {
	WagerID string
	From    WagerStatus
	To      WagerStatus
}

type DisputeRaised struct {
	DisputeID string
	WagerID   string
	RaisedBy  string
}

type DisputeResolved struct {
	DisputeID  string
	WagerID    string
	Resolution string
}

type SettlementCompleted struct {
	Breakdown PayoutBreakdown
}
