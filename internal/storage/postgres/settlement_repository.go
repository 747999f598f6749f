package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

// SettlementRepository backs the settlement coordinator. Every mutation is a
// single-row statement; the status-guarded updates (claims) are the
// concurrency-control primitives.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

func (r *SettlementRepository) GetWager(ctx context.Context, wagerID string) (domain.Wager, error) {
	return getWager(ctx, db(ctx, r.pool), wagerID)
}

func (r *SettlementRepository) GetHold(ctx context.Context, holdID string) (domain.EscrowHold, error) {
	const query = `
SELECT id, wager_id, total_amount::text, status, locked_at, released_at, released_to, refund_reason
FROM escrow_holds
WHERE id = $1`

	hold, err := scanHold(db(ctx, r.pool).QueryRow(ctx, query, holdID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.EscrowHold{}, domain.ErrHoldNotFound
		}
		return domain.EscrowHold{}, wrapErr("get hold", err)
	}
	return hold, nil
}

func (r *SettlementRepository) GetHoldByWagerID(ctx context.Context, wagerID string) (*domain.EscrowHold, error) {
	const query = `
SELECT id, wager_id, total_amount::text, status, locked_at, released_at, released_to, refund_reason
FROM escrow_holds
WHERE wager_id = $1`

	hold, err := scanHold(db(ctx, r.pool).QueryRow(ctx, query, wagerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapErr("get hold by wager", err)
	}
	return &hold, nil
}

func (r *SettlementRepository) CreateHold(ctx context.Context, hold domain.EscrowHold) error {
	const stmt = `
INSERT INTO escrow_holds (id, wager_id, total_amount, status, locked_at)
VALUES ($1, $2, $3::numeric, $4, $5)`

	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		hold.ID,
		hold.WagerID,
		hold.TotalAmount.StringFixed(2),
		hold.Status,
		hold.LockedAt,
	)
	if err != nil {
		// The unique index on wager_id is the per-wager lock claim.
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOperation
		}
		return wrapErr("create hold", err)
	}
	return nil
}

// DeleteHold removes a hold whose lock operation failed partway; terminal
// holds are never deleted.
func (r *SettlementRepository) DeleteHold(ctx context.Context, holdID string) error {
	const stmt = `DELETE FROM escrow_holds WHERE id = $1 AND status = 'locked'`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, holdID)
	if err != nil {
		return wrapErr("delete hold", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}

func (r *SettlementRepository) ClaimHoldReleased(ctx context.Context, holdID, releasedTo string, at time.Time) error {
	const stmt = `
UPDATE escrow_holds
SET status = 'released', released_at = $2, released_to = $3
WHERE id = $1 AND status = 'locked'`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, holdID, at, releasedTo)
	if err != nil {
		return wrapErr("claim hold released", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateOperation
	}
	return nil
}

func (r *SettlementRepository) ClaimHoldRefunded(ctx context.Context, holdID, reason string, at time.Time) error {
	const stmt = `
UPDATE escrow_holds
SET status = 'refunded', released_at = $2, refund_reason = $3
WHERE id = $1 AND status = 'locked'`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, holdID, at, reason)
	if err != nil {
		return wrapErr("claim hold refunded", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateOperation
	}
	return nil
}

func (r *SettlementRepository) GetWallet(ctx context.Context, userID string) (domain.Wallet, error) {
	return getWallet(ctx, db(ctx, r.pool), userID)
}

func (r *SettlementRepository) DebitWallet(ctx context.Context, userID string, amount decimal.Decimal) error {
	return debitWallet(ctx, db(ctx, r.pool), userID, amount)
}

func (r *SettlementRepository) CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) error {
	return creditWallet(ctx, db(ctx, r.pool), userID, amount)
}

func (r *SettlementRepository) RecordTransaction(ctx context.Context, tx domain.Transaction) error {
	return insertTransaction(ctx, db(ctx, r.pool), tx)
}

func (r *SettlementRepository) CountTransactions(ctx context.Context, wagerID string, txType domain.TransactionType) (int, error) {
	const query = `SELECT COUNT(*) FROM transactions WHERE wager_id = $1 AND type = $2`

	var n int
	if err := db(ctx, r.pool).QueryRow(ctx, query, wagerID, txType).Scan(&n); err != nil {
		return 0, wrapErr("count transactions", err)
	}
	return n, nil
}

func (r *SettlementRepository) ActivateWager(ctx context.Context, wagerID, escrowID string) error {
	const stmt = `
UPDATE wagers
SET status = 'active', escrow_id = $2
WHERE id = $1 AND status = 'pending'`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, wagerID, escrowID)
	if err != nil {
		return wrapErr("activate wager", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

func (r *SettlementRepository) CompleteWager(ctx context.Context, wagerID, winnerID string, platformFee decimal.Decimal, at time.Time) error {
	const stmt = `
UPDATE wagers
SET status = 'completed', winner_id = $2, platform_fee_amount = $3::numeric, completed_at = $4
WHERE id = $1 AND status IN ('active', 'disputed')`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, wagerID, winnerID, platformFee.StringFixed(2), at)
	if err != nil {
		return wrapErr("complete wager", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

func (r *SettlementRepository) CancelWager(ctx context.Context, wagerID string) error {
	const stmt = `
UPDATE wagers
SET status = 'cancelled'
WHERE id = $1 AND status IN ('active', 'disputed')`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, wagerID)
	if err != nil {
		return wrapErr("cancel wager", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

func scanHold(row pgx.Row) (domain.EscrowHold, error) {
	var h domain.EscrowHold
	var total string
	var releasedTo, refundReason *string
	if err := row.Scan(&h.ID, &h.WagerID, &total, &h.Status, &h.LockedAt, &h.ReleasedAt, &releasedTo, &refundReason); err != nil {
		return domain.EscrowHold{}, err
	}
	var err error
	h.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return domain.EscrowHold{}, fmt.Errorf("parse total_amount: %w", err)
	}
	if releasedTo != nil {
		h.ReleasedTo = *releasedTo
	}
	if refundReason != nil {
		h.RefundReason = *refundReason
	}
	return h, nil
}

func getWager(ctx context.Context, q dbtx, wagerID string) (domain.Wager, error) {
	const query = `
SELECT id, participants, stake::text, status, escrow_id, winner_id, platform_fee_amount::text, idempotency_key, created_at, completed_at
FROM wagers
WHERE id = $1`

	wager, err := scanWager(q.QueryRow(ctx, query, wagerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Wager{}, domain.ErrWagerNotFound
		}
		return domain.Wager{}, wrapErr("get wager", err)
	}
	return wager, nil
}

func scanWager(row pgx.Row) (domain.Wager, error) {
	var w domain.Wager
	var stake, platformFee string
	var escrowID, winnerID *string
	if err := row.Scan(&w.ID, &w.Participants, &stake, &w.Status, &escrowID, &winnerID, &platformFee, &w.IdempotencyKey, &w.CreatedAt, &w.CompletedAt); err != nil {
		return domain.Wager{}, err
	}
	var err error
	w.Stake, err = decimal.NewFromString(stake)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("parse stake: %w", err)
	}
	w.PlatformFee, err = decimal.NewFromString(platformFee)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("parse platform_fee_amount: %w", err)
	}
	if escrowID != nil {
		w.EscrowID = *escrowID
	}
	if winnerID != nil {
		w.WinnerID = *winnerID
	}
	return w, nil
}

func updateWagerStatus(ctx context.Context, q dbtx, wagerID string, from, to domain.WagerStatus) error {
	const stmt = `UPDATE wagers SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := q.Exec(ctx, stmt, wagerID, from, to)
	if err != nil {
		return wrapErr("update wager status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}
