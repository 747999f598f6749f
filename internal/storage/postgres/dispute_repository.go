package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

type DisputeRepository struct {
	pool *pgxpool.Pool
}

func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

func (r *DisputeRepository) GetWager(ctx context.Context, wagerID string) (domain.Wager, error) {
	return getWager(ctx, db(ctx, r.pool), wagerID)
}

func (r *DisputeRepository) UpdateWagerStatus(ctx context.Context, wagerID string, from, to domain.WagerStatus) error {
	return updateWagerStatus(ctx, db(ctx, r.pool), wagerID, from, to)
}

func (r *DisputeRepository) CreateDispute(ctx context.Context, dispute domain.Dispute) error {
	const stmt = `
INSERT INTO disputes (id, wager_id, raised_by, reason, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		dispute.ID,
		dispute.WagerID,
		dispute.RaisedBy,
		dispute.Reason,
		dispute.Status,
		dispute.CreatedAt,
	)
	if err != nil {
		// Partial unique index: one open dispute per wager.
		if isUniqueViolation(err) {
			return domain.ErrDisputeAlreadyOpen
		}
		return wrapErr("create dispute", err)
	}
	return nil
}

func (r *DisputeRepository) GetDispute(ctx context.Context, disputeID string) (domain.Dispute, error) {
	const query = `
SELECT id, wager_id, raised_by, reason, status, resolution, created_at, resolved_at
FROM disputes
WHERE id = $1`

	var d domain.Dispute
	var resolution *string
	err := db(ctx, r.pool).QueryRow(ctx, query, disputeID).
		Scan(&d.ID, &d.WagerID, &d.RaisedBy, &d.Reason, &d.Status, &resolution, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Dispute{}, domain.ErrDisputeNotFound
		}
		return domain.Dispute{}, wrapErr("get dispute", err)
	}
	if resolution != nil {
		d.Resolution = *resolution
	}
	return d, nil
}

func (r *DisputeRepository) MarkDisputeResolved(ctx context.Context, disputeID, resolution string, at time.Time) error {
	const stmt = `
UPDATE disputes
SET status = 'resolved', resolution = $2, resolved_at = $3
WHERE id = $1 AND status = 'open'`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, disputeID, resolution, at)
	if err != nil {
		return wrapErr("mark dispute resolved", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM disputes WHERE id = $1)`, disputeID).Scan(&exists); err != nil {
			return wrapErr("mark dispute resolved", err)
		}
		if !exists {
			return domain.ErrDisputeNotFound
		}
		return domain.ErrDuplicateOperation
	}
	return nil
}
