package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lotto-service/internal/model"
)

// RedemptionRepository handles redemption persistence.
type RedemptionRepository struct {
	db Querier
}

// NewRedemptionRepository creates a new RedemptionRepository instance.
func NewRedemptionRepository(db Querier) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RedemptionRepository) WithTx(tx pgx.Tx) *RedemptionRepository {
	return &RedemptionRepository{db: tx}
}

// Exists reports whether the (purchase, draw) pair was already redeemed.
func (r *RedemptionRepository) Exists(ctx context.Context, purchaseID, drawID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM redemption WHERE purchase_id = $1 AND draw_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, purchaseID, drawID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check redemption: %w", err)
	}
	return exists, nil
}

// SumWinnings totals the winning_ticket amounts of a (purchase, draw)
// pair across all tiers. Zero means no prize.
func (r *RedemptionRepository) SumWinnings(ctx context.Context, purchaseID, drawID int64) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM winning_ticket
		WHERE purchase_id = $1 AND draw_id = $2
	`

	var total int64
	if err := r.db.QueryRow(ctx, query, purchaseID, drawID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum winnings: %w", err)
	}
	return total, nil
}

// Create inserts the redemption row for a (purchase, draw) pair.
// The unique constraint on the pair backs up the caller's existence
// check under concurrency.
func (r *RedemptionRepository) Create(ctx context.Context, purchaseID, drawID, total int64) (*model.Redemption, error) {
	const query = `
		INSERT INTO redemption (purchase_id, draw_id, amount_total)
		VALUES ($1, $2, $3)
		RETURNING id, purchase_id, draw_id, amount_total, created_at
	`

	var red model.Redemption
	err := r.db.QueryRow(ctx, query, purchaseID, drawID, total).Scan(
		&red.ID,
		&red.PurchaseID,
		&red.DrawID,
		&red.Amount,
		&red.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create redemption: %w", err)
	}
	return &red, nil
}
