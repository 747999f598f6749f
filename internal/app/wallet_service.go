package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/clock"
	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

type WalletRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetWallet(ctx context.Context, userID string) (domain.Wallet, error)
	CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) error
	DebitWallet(ctx context.Context, userID string, amount decimal.Decimal) error
	RecordTransaction(ctx context.Context, tx domain.Transaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}

// WalletService records gateway deposits and withdrawals as opaque fund
// movements and serves balance/history reads. Settlement-side movements
// never go through here.
type WalletService struct {
	repo  WalletRepository
	clock clock.Clock
}

func NewWalletService(repo WalletRepository, clk clock.Clock) *WalletService {
	return &WalletService{repo: repo, clock: clk}
}

func (s *WalletService) Balance(ctx context.Context, userID string) (domain.Wallet, error) {
	return s.repo.GetWallet(ctx, userID)
}

const defaultHistoryLimit = 100

func (s *WalletService) History(ctx context.Context, userID string) ([]domain.Transaction, error) {
	if _, err := s.repo.GetWallet(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, userID, defaultHistoryLimit)
}

// Deposit credits an externally-settled gateway deposit.
func (s *WalletService) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (domain.Transaction, error) {
	if !amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}
	tx := domain.Transaction{
		ID:        newID(),
		UserID:    userID,
		Amount:    amount,
		Type:      domain.TxDeposit,
		Status:    domain.TxStatusCompleted,
		CreatedAt: s.clock.Now(),
	}
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreditWallet(txCtx, userID, amount); err != nil {
			return err
		}
		return s.repo.RecordTransaction(txCtx, tx)
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Withdraw debits a gateway withdrawal with the same balance guard stakes
// use, so a withdrawal can never overdraw.
func (s *WalletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (domain.Transaction, error) {
	if !amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}
	tx := domain.Transaction{
		ID:        newID(),
		UserID:    userID,
		Amount:    amount.Neg(),
		Type:      domain.TxWithdrawal,
		Status:    domain.TxStatusCompleted,
		CreatedAt: s.clock.Now(),
	}
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.DebitWallet(txCtx, userID, amount); err != nil {
			return err
		}
		return s.repo.RecordTransaction(txCtx, tx)
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}
