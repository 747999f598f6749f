package domain

import (
	"errors"
	"fmt"
)

var (
	ErrWagerNotFound          = errors.New("wager not found")
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrHoldNotFound           = errors.New("escrow hold not found")
	ErrDisputeNotFound        = errors.New("dispute not found")
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDuplicateOperation     = errors.New("operation already applied")
	ErrDisputeAlreadyOpen     = errors.New("wager already has an open dispute")
	ErrStakeBelowMinimum      = errors.New("stake below minimum net payout")
	ErrInvalidStake           = errors.New("invalid stake")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrTooFewParticipants     = errors.New("wager needs at least two participants")
	ErrDuplicateParticipant   = errors.New("duplicate participant")
	ErrNotParticipant         = errors.New("user is not a wager participant")
	ErrReasonRequired         = errors.New("reason required")
	ErrResolutionRequired     = errors.New("resolution required")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency conflict")
	ErrInvalidID              = errors.New("invalid id")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrInconsistentLedger     = errors.New("inconsistent ledger")
)

// LedgerFault reports a hold whose status and the wallet state no longer
// agree (for example a hold marked released whose winner credit failed).
// It is never auto-corrected; callers must surface it for reconciliation.
type LedgerFault struct {
	WagerID string
	HoldID  string
	Op      string
	Detail  string
}

func (f *LedgerFault) Error() string {
	return fmt.Sprintf("inconsistent ledger: op=%s wager=%s hold=%s: %s", f.Op, f.WagerID, f.HoldID, f.Detail)
}

func (f *LedgerFault) Unwrap() error {
	return ErrInconsistentLedger
}
