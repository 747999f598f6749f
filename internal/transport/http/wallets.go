package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (s *Server) handleWalletBalance(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	wallet, err := s.wallets.Balance(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusOK, toWalletView(wallet))
}

func (s *Server) handleWalletTransactions(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	txs, err := s.wallets.History(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusOK, toTransactionViews(txs))
}

type fundsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleDeposit(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req fundsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := s.wallets.Deposit(r.Context(), chi.URLParam(r, "userID"), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusCreated, toTransactionView(tx))
}

func (s *Server) handleWithdraw(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req fundsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := s.wallets.Withdraw(r.Context(), chi.URLParam(r, "userID"), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, stdhttp.StatusCreated, toTransactionView(tx))
}
