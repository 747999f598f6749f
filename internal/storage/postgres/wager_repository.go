package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

type WagerRepository struct {
	pool *pgxpool.Pool
}

func NewWagerRepository(pool *pgxpool.Pool) *WagerRepository {
	return &WagerRepository{pool: pool}
}

func (r *WagerRepository) CreateWager(ctx context.Context, wager domain.Wager) error {
	const stmt = `
INSERT INTO wagers (id, participants, stake, status, platform_fee_amount, idempotency_key, created_at)
VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6, $7)`

	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		wager.ID,
		wager.Participants,
		wager.Stake.StringFixed(2),
		wager.Status,
		wager.PlatformFee.StringFixed(2),
		wager.IdempotencyKey,
		wager.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdempotencyConflict
		}
		return wrapErr("create wager", err)
	}
	return nil
}

func (r *WagerRepository) FindWagerByIdempotencyKey(ctx context.Context, key string) (*domain.Wager, error) {
	const query = `
SELECT id, participants, stake::text, status, escrow_id, winner_id, platform_fee_amount::text, idempotency_key, created_at, completed_at
FROM wagers
WHERE idempotency_key = $1`

	wager, err := scanWager(db(ctx, r.pool).QueryRow(ctx, query, key))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapErr("find wager by idempotency key", err)
	}
	return &wager, nil
}

func (r *WagerRepository) GetWager(ctx context.Context, wagerID string) (domain.Wager, error) {
	return getWager(ctx, db(ctx, r.pool), wagerID)
}

func (r *WagerRepository) UpdateWagerStatus(ctx context.Context, wagerID string, from, to domain.WagerStatus) error {
	return updateWagerStatus(ctx, db(ctx, r.pool), wagerID, from, to)
}

func (r *WagerRepository) WalletExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return false, wrapErr("wallet exists", err)
	}
	return exists, nil
}
