package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *WalletRepository) GetWallet(ctx context.Context, userID string) (domain.Wallet, error) {
	return getWallet(ctx, db(ctx, r.pool), userID)
}

func (r *WalletRepository) CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) error {
	return creditWallet(ctx, db(ctx, r.pool), userID, amount)
}

func (r *WalletRepository) DebitWallet(ctx context.Context, userID string, amount decimal.Decimal) error {
	return debitWallet(ctx, db(ctx, r.pool), userID, amount)
}

func (r *WalletRepository) RecordTransaction(ctx context.Context, tx domain.Transaction) error {
	return insertTransaction(ctx, db(ctx, r.pool), tx)
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	const query = `
SELECT id, user_id, wager_id, amount::text, type, status, created_at
FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC, id
LIMIT $2`

	rows, err := db(ctx, r.pool).Query(ctx, query, userID, limit)
	if err != nil {
		return nil, wrapErr("list transactions", err)
	}
	return scanTransactions(rows)
}
