package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/OkoMacanda/betcha-app-sub001/internal/app"
)

type raiseDisputeRequest struct {
	RaisedBy string `json:"raised_by"`
	Reason   string `json:"reason"`
}

func (s *Server) handleRaiseDispute(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req raiseDisputeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RaisedBy == "" {
		writeError(w, stdhttp.StatusBadRequest, codeInvalidRequestBody, "raised_by is required")
		return
	}

	dispute, err := s.disputes.RaiseDispute(r.Context(), app.RaiseDisputeInput{
		WagerID:  chi.URLParam(r, "wagerID"),
		RaisedBy: req.RaisedBy,
		Reason:   req.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusCreated, toDisputeView(dispute))
}

type resolveDisputeRequest struct {
	Resolution string   `json:"resolution"`
	WinnerIDs  []string `json:"winner_ids"`
	Refund     bool     `json:"refund"`
}

func (s *Server) handleResolveDispute(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req resolveDisputeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Refund && len(req.WinnerIDs) > 0 {
		writeError(w, stdhttp.StatusBadRequest, codeInvalidRequestBody, "refund and winner_ids are mutually exclusive")
		return
	}

	err := s.disputes.ResolveDispute(r.Context(), app.ResolveDisputeInput{
		DisputeID:  chi.URLParam(r, "disputeID"),
		Resolution: req.Resolution,
		WinnerIDs:  req.WinnerIDs,
		Refund:     req.Refund,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusOK, map[string]string{"status": "resolved"})
}
