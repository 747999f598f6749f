package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WagerStatus string

const (
	WagerStatusPending   WagerStatus = "pending"
	WagerStatusActive    WagerStatus = "active"
	WagerStatusDisputed  WagerStatus = "disputed"
	WagerStatusCompleted WagerStatus = "completed"
	WagerStatusCancelled WagerStatus = "cancelled"
)

// Wager is the contract between participants. Each participant stakes the
// same amount; the pool is Stake × len(Participants).
type Wager struct {
	ID             string
	Participants   []string
	Stake          decimal.Decimal
	Status         WagerStatus
	EscrowID       string
	WinnerID       string
	PlatformFee    decimal.Decimal
	IdempotencyKey string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// Pool returns the gross pooled amount across all participants.
func (w Wager) Pool() decimal.Decimal {
	return w.Stake.Mul(decimal.NewFromInt(int64(len(w.Participants))))
}

// HasParticipant reports whether userID was declared on the wager.
func (w Wager) HasParticipant(userID string) bool {
	for _, p := range w.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
