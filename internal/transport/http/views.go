package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

type wagerView struct {
	ID           string          `json:"id"`
	Participants []string        `json:"participants"`
	Stake        decimal.Decimal `json:"stake"`
	Status       string          `json:"status"`
	EscrowID     string          `json:"escrow_id,omitempty"`
	WinnerID     string          `json:"winner_id,omitempty"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func toWagerView(w domain.Wager) wagerView {
	return wagerView{
		ID:           w.ID,
		Participants: w.Participants,
		Stake:        w.Stake,
		Status:       string(w.Status),
		EscrowID:     w.EscrowID,
		WinnerID:     w.WinnerID,
		PlatformFee:  w.PlatformFee,
		CreatedAt:    w.CreatedAt,
		CompletedAt:  w.CompletedAt,
	}
}

type holdView struct {
	ID          string          `json:"id"`
	WagerID     string          `json:"wager_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	LockedAt    time.Time       `json:"locked_at"`
}

func toHoldView(h domain.EscrowHold) holdView {
	return holdView{
		ID:          h.ID,
		WagerID:     h.WagerID,
		TotalAmount: h.TotalAmount,
		Status:      string(h.Status),
		LockedAt:    h.LockedAt,
	}
}

type payoutView struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

type breakdownView struct {
	WagerID  string          `json:"wager_id"`
	EscrowID string          `json:"escrow_id"`
	Pool     decimal.Decimal `json:"pool"`
	Fee      decimal.Decimal `json:"fee"`
	Net      decimal.Decimal `json:"net"`
	Payouts  []payoutView    `json:"payouts"`
}

func toBreakdownView(b domain.PayoutBreakdown) breakdownView {
	payouts := make([]payoutView, 0, len(b.Payouts))
	for _, p := range b.Payouts {
		payouts = append(payouts, payoutView{UserID: p.UserID, Amount: p.Amount})
	}
	return breakdownView{
		WagerID:  b.WagerID,
		EscrowID: b.EscrowID,
		Pool:     b.Pool,
		Fee:      b.Fee,
		Net:      b.Net,
		Payouts:  payouts,
	}
}

type disputeView struct {
	ID         string     `json:"id"`
	WagerID    string     `json:"wager_id"`
	RaisedBy   string     `json:"raised_by"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	Resolution string     `json:"resolution,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func toDisputeView(d domain.Dispute) disputeView {
	return disputeView{
		ID:         d.ID,
		WagerID:    d.WagerID,
		RaisedBy:   d.RaisedBy,
		Reason:     d.Reason,
		Status:     string(d.Status),
		Resolution: d.Resolution,
		CreatedAt:  d.CreatedAt,
		ResolvedAt: d.ResolvedAt,
	}
}

type walletView struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toWalletView(w domain.Wallet) walletView {
	return walletView{UserID: w.UserID, Balance: w.Balance, UpdatedAt: w.UpdatedAt}
}

type transactionView struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	WagerID   string          `json:"wager_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func toTransactionView(tx domain.Transaction) transactionView {
	return transactionView{
		ID:        tx.ID,
		UserID:    tx.UserID,
		WagerID:   tx.WagerID,
		Amount:    tx.Amount,
		Type:      string(tx.Type),
		Status:    string(tx.Status),
		CreatedAt: tx.CreatedAt,
	}
}

func toTransactionViews(txs []domain.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, toTransactionView(tx))
	}
	return views
}
