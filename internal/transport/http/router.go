package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/app"
	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

// WagerService is the slice of the wager boundary the handlers call.
type WagerService interface {
	CreateWager(ctx context.Context, in app.CreateWagerInput) (domain.Wager, error)
	AcceptWager(ctx context.Context, wagerID, userID string) (domain.EscrowHold, error)
	SettleWager(ctx context.Context, wagerID string, winnerIDs []string) (domain.PayoutBreakdown, error)
	CancelWager(ctx context.Context, wagerID, reason string) error
	GetWager(ctx context.Context, wagerID string) (domain.Wager, error)
}

type DisputeService interface {
	RaiseDispute(ctx context.Context, in app.RaiseDisputeInput) (domain.Dispute, error)
	ResolveDispute(ctx context.Context, in app.ResolveDisputeInput) error
}

type WalletService interface {
	Balance(ctx context.Context, userID string) (domain.Wallet, error)
	History(ctx context.Context, userID string) ([]domain.Transaction, error)
	Deposit(ctx context.Context, userID string, amount decimal.Decimal) (domain.Transaction, error)
	Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (domain.Transaction, error)
}

// Server binds the application services to HTTP routes.
type Server struct {
	wagers   WagerService
	disputes DisputeService
	wallets  WalletService
}

func NewServer(wagers WagerService, disputes DisputeService, wallets WalletService) *Server {
	return &Server{
		wagers:   wagers,
		disputes: disputes,
		wallets:  wallets,
	}
}

func (s *Server) Routes() stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", HealthHandler)

	r.Route("/wagers", func(r chi.Router) {
		r.Post("/", s.handleCreateWager)
		r.Route("/{wagerID}", func(r chi.Router) {
			r.Get("/", s.handleGetWager)
			r.Post("/accept", s.handleAcceptWager)
			r.Post("/settle", s.handleSettleWager)
			r.Post("/cancel", s.handleCancelWager)
			r.Post("/disputes", s.handleRaiseDispute)
		})
	})

	r.Post("/disputes/{disputeID}/resolve", s.handleResolveDispute)

	r.Route("/wallets/{userID}", func(r chi.Router) {
		r.Get("/", s.handleWalletBalance)
		r.Get("/transactions", s.handleWalletTransactions)
		r.Post("/deposit", s.handleDeposit)
		r.Post("/withdraw", s.handleWithdraw)
	})

	return r
}
