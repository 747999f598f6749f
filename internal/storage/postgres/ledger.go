package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func db(ctx context.Context, pool *pgxpool.Pool) dbtx {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// wrapErr maps driver-level failures onto the domain taxonomy before
// wrapping. Transient connection errors become ErrStoreUnavailable so
// callers can tell retriable from fatal.
func wrapErr(op string, err error) error {
	if isInvalidUUID(err) {
		return domain.ErrInvalidID
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Monetary values cross the wire as text: NUMERIC columns are selected with
// ::text and bound as fixed-point strings, then converted with
// shopspring/decimal.

func getWallet(ctx context.Context, q dbtx, userID string) (domain.Wallet, error) {
	const query = `SELECT user_id, balance::text, updated_at FROM wallets WHERE user_id = $1`

	var w domain.Wallet
	var balance string
	err := q.QueryRow(ctx, query, userID).Scan(&w.UserID, &balance, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Wallet{}, domain.ErrWalletNotFound
		}
		return domain.Wallet{}, wrapErr("get wallet", err)
	}
	w.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("parse balance: %w", err)
	}
	return w, nil
}

func creditWallet(ctx context.Context, q dbtx, userID string, amount decimal.Decimal) error {
	const stmt = `
INSERT INTO wallets (user_id, balance, updated_at)
VALUES ($1, $2::numeric, NOW())
ON CONFLICT (user_id) DO UPDATE
SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()`

	if _, err := q.Exec(ctx, stmt, userID, amount.StringFixed(2)); err != nil {
		return wrapErr("credit wallet", err)
	}
	return nil
}

func debitWallet(ctx context.Context, q dbtx, userID string, amount decimal.Decimal) error {
	const stmt = `
UPDATE wallets
SET balance = balance - $2::numeric, updated_at = NOW()
WHERE user_id = $1 AND balance >= $2::numeric`

	tag, err := q.Exec(ctx, stmt, userID, amount.StringFixed(2))
	if err != nil {
		return wrapErr("debit wallet", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
			return wrapErr("debit wallet", err)
		}
		if !exists {
			return domain.ErrWalletNotFound
		}
		return domain.ErrInsufficientBalance
	}
	return nil
}

func insertTransaction(ctx context.Context, q dbtx, tx domain.Transaction) error {
	const stmt = `
INSERT INTO transactions (id, user_id, wager_id, amount, type, status, created_at)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4::numeric, $5, $6, $7)`

	_, err := q.Exec(ctx, stmt,
		tx.ID,
		tx.UserID,
		tx.WagerID,
		tx.Amount.StringFixed(2),
		tx.Type,
		tx.Status,
		tx.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert transaction", err)
	}
	return nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var wagerID *string
		var amount string
		if err := rows.Scan(&tx.ID, &tx.UserID, &wagerID, &amount, &tx.Type, &tx.Status, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if wagerID != nil {
			tx.WagerID = *wagerID
		}
		var err error
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
