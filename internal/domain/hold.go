package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type HoldStatus string

const (
	HoldStatusLocked   HoldStatus = "locked"
	HoldStatusReleased HoldStatus = "released"
	HoldStatusRefunded HoldStatus = "refunded"
)

// EscrowHold represents funds debited from participant wallets and parked
// for a single wager. Created exactly once per wager; leaves "locked" exactly
// once. Its status is the single source of truth for whether the wager's
// funds have already moved.
type EscrowHold struct {
	ID           string
	WagerID      string
	TotalAmount  decimal.Decimal
	Status       HoldStatus
	LockedAt     time.Time
	ReleasedAt   *time.Time
	ReleasedTo   string
	RefundReason string
}

// Terminal reports whether the hold has reached a final state.
func (h EscrowHold) Terminal() bool {
	return h.Status == HoldStatusReleased || h.Status == HoldStatusRefunded
}
