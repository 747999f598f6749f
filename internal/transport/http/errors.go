package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

const (
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidStake         = "invalid_stake"
	codeInvalidAmount        = "invalid_amount"
	codeStakeBelowMinimum    = "stake_below_minimum"
	codeTooFewParticipants   = "too_few_participants"
	codeDuplicateParticipant = "duplicate_participant"
	codeReasonRequired       = "reason_required"
	codeResolutionRequired   = "resolution_required"
	codeIdempotencyRequired  = "idempotency_key_required"
	codeIdempotencyConflict  = "idempotency_conflict"
	codeWagerNotFound        = "wager_not_found"
	codeWalletNotFound       = "wallet_not_found"
	codeHoldNotFound         = "hold_not_found"
	codeDisputeNotFound      = "dispute_not_found"
	codeParticipantNotFound  = "participant_not_found"
	codeNotParticipant       = "not_participant"
	codeInsufficientBalance  = "insufficient_balance"
	codeInvalidTransition    = "invalid_state_transition"
	codeDisputeAlreadyOpen   = "dispute_already_open"
	codeStoreUnavailable     = "store_unavailable"
	codeInconsistentLedger   = "inconsistent_ledger"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type dataResponse struct {
	Data any `json:"data"`
}

func writeData(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dataResponse{Data: v})
}

func writeError(w stdhttp.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the engine's error taxonomy onto HTTP. Validation
// errors come back 4xx and are not worth retrying; store_unavailable is the
// one retriable code; inconsistent_ledger marks a reconciliation case.
func writeDomainError(w stdhttp.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWagerNotFound):
		writeError(w, stdhttp.StatusNotFound, codeWagerNotFound, domain.ErrWagerNotFound.Error())
	case errors.Is(err, domain.ErrWalletNotFound):
		writeError(w, stdhttp.StatusNotFound, codeWalletNotFound, domain.ErrWalletNotFound.Error())
	case errors.Is(err, domain.ErrHoldNotFound):
		writeError(w, stdhttp.StatusNotFound, codeHoldNotFound, domain.ErrHoldNotFound.Error())
	case errors.Is(err, domain.ErrDisputeNotFound):
		writeError(w, stdhttp.StatusNotFound, codeDisputeNotFound, domain.ErrDisputeNotFound.Error())
	case errors.Is(err, domain.ErrParticipantNotFound):
		writeError(w, stdhttp.StatusNotFound, codeParticipantNotFound, domain.ErrParticipantNotFound.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, stdhttp.StatusConflict, codeInsufficientBalance, err.Error())
	case errors.Is(err, domain.ErrDisputeAlreadyOpen):
		writeError(w, stdhttp.StatusConflict, codeDisputeAlreadyOpen, domain.ErrDisputeAlreadyOpen.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		writeError(w, stdhttp.StatusConflict, codeInvalidTransition, domain.ErrInvalidStateTransition.Error())
	case errors.Is(err, domain.ErrIdempotencyConflict):
		writeError(w, stdhttp.StatusConflict, codeIdempotencyConflict, domain.ErrIdempotencyConflict.Error())
	case errors.Is(err, domain.ErrIdempotencyKeyRequired):
		writeError(w, stdhttp.StatusBadRequest, codeIdempotencyRequired, domain.ErrIdempotencyKeyRequired.Error())
	case errors.Is(err, domain.ErrNotParticipant):
		writeError(w, stdhttp.StatusForbidden, codeNotParticipant, err.Error())
	case errors.Is(err, domain.ErrStakeBelowMinimum):
		writeError(w, stdhttp.StatusBadRequest, codeStakeBelowMinimum, domain.ErrStakeBelowMinimum.Error())
	case errors.Is(err, domain.ErrInvalidStake):
		writeError(w, stdhttp.StatusBadRequest, codeInvalidStake, domain.ErrInvalidStake.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, stdhttp.StatusBadRequest, codeInvalidAmount, domain.ErrInvalidAmount.Error())
	case errors.Is(err, domain.ErrTooFewParticipants):
		writeError(w, stdhttp.StatusBadRequest, codeTooFewParticipants, domain.ErrTooFewParticipants.Error())
	case errors.Is(err, domain.ErrDuplicateParticipant):
		writeError(w, stdhttp.StatusBadRequest, codeDuplicateParticipant, domain.ErrDuplicateParticipant.Error())
	case errors.Is(err, domain.ErrReasonRequired):
		writeError(w, stdhttp.StatusBadRequest, codeReasonRequired, domain.ErrReasonRequired.Error())
	case errors.Is(err, domain.ErrResolutionRequired):
		writeError(w, stdhttp.StatusBadRequest, codeResolutionRequired, domain.ErrResolutionRequired.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, stdhttp.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, stdhttp.StatusServiceUnavailable, codeStoreUnavailable, domain.ErrStoreUnavailable.Error())
	case errors.Is(err, domain.ErrInconsistentLedger):
		writeError(w, stdhttp.StatusInternalServerError, codeInconsistentLedger, domain.ErrInconsistentLedger.Error())
	default:
		writeError(w, stdhttp.StatusInternalServerError, codeInternalError, "internal error")
	}
}
