package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lotto-service/internal/model"
)

// PrizeRepository handles prize tier configuration.
type PrizeRepository struct {
	db Querier
}

// NewPrizeRepository creates a new PrizeRepository instance.
func NewPrizeRepository(db Querier) *PrizeRepository {
	return &PrizeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PrizeRepository) WithTx(tx pgx.Tx) *PrizeRepository {
	return &PrizeRepository{db: tx}
}

// List retrieves all prize tiers ordered by rank.
func (r *PrizeRepository) List(ctx context.Context) ([]*model.PrizeTier, error) {
	const query = `
		SELECT id, tier_rank, name, prize_amount
		FROM prize_tier
		ORDER BY tier_rank
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prize tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*model.PrizeTier
	for rows.Next() {
		var t model.PrizeTier
		if err := rows.Scan(&t.ID, &t.Rank, &t.Name, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan prize tier: %w", err)
		}
		tiers = append(tiers, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prize tiers: %w", err)
	}

	return tiers, nil
}

// ByRank returns prize tiers keyed by their rank.
func (r *PrizeRepository) ByRank(ctx context.Context) (map[int]*model.PrizeTier, error) {
	tiers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	byRank := make(map[int]*model.PrizeTier, len(tiers))
	for _, t := range tiers {
		byRank[t.Rank] = t
	}
	return byRank, nil
}

// Upsert creates or updates the tier with the given rank.
func (r *PrizeRepository) Upsert(ctx context.Context, rank int, name string, amount int64) (*model.PrizeTier, error) {
	const query = `
		INSERT INTO prize_tier (tier_rank, name, prize_amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (tier_rank) DO UPDATE
		SET name = EXCLUDED.name, prize_amount = EXCLUDED.prize_amount
		RETURNING id, tier_rank, name, prize_amount
	`

	var t model.PrizeTier
	if err := r.db.QueryRow(ctx, query, rank, name, amount).Scan(&t.ID, &t.Rank, &t.Name, &t.Amount); err != nil {
		return nil, fmt.Errorf("failed to upsert prize tier: %w", err)
	}
	return &t, nil
}
