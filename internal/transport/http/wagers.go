package http

import (
	"encoding/json"
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/app"
)

type createWagerRequest struct {
	Participants   []string        `json:"participants"`
	Stake          decimal.Decimal `json:"stake"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func (s *Server) handleCreateWager(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req createWagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wager, err := s.wagers.CreateWager(r.Context(), app.CreateWagerInput{
		Participants:   req.Participants,
		Stake:          req.Stake,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusCreated, toWagerView(wager))
}

func (s *Server) handleGetWager(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	wager, err := s.wagers.GetWager(r.Context(), chi.URLParam(r, "wagerID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusOK, toWagerView(wager))
}

type acceptWagerRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleAcceptWager(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req acceptWagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, stdhttp.StatusBadRequest, codeInvalidRequestBody, "user_id is required")
		return
	}

	hold, err := s.wagers.AcceptWager(r.Context(), chi.URLParam(r, "wagerID"), req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusOK, toHoldView(hold))
}

type settleWagerRequest struct {
	WinnerIDs []string `json:"winner_ids"`
}

func (s *Server) handleSettleWager(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req settleWagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.WinnerIDs) == 0 {
		writeError(w, stdhttp.StatusBadRequest, codeInvalidRequestBody, "winner_ids is required")
		return
	}

	breakdown, err := s.wagers.SettleWager(r.Context(), chi.URLParam(r, "wagerID"), req.WinnerIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusOK, toBreakdownView(breakdown))
}

type cancelWagerRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleCancelWager(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req cancelWagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wagerID := chi.URLParam(r, "wagerID")
	if err := s.wagers.CancelWager(r.Context(), wagerID, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	wager, err := s.wagers.GetWager(r.Context(), wagerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusOK, toWagerView(wager))
}

func decodeJSON(w stdhttp.ResponseWriter, r *stdhttp.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, stdhttp.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}
