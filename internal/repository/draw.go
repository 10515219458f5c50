package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lotto-service/internal/model"
)

// Draw errors.
var (
	ErrDrawNotFound = errors.New("draw not found")
)

// DrawRepository handles draw, prize outcome and winning ticket
// persistence. All mutating methods are meant to run inside the draw
// transaction; bind the repository with WithTx first.
type DrawRepository struct {
	db Querier
}

// NewDrawRepository creates a new DrawRepository instance.
func NewDrawRepository(db Querier) *DrawRepository {
	return &DrawRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *DrawRepository) WithTx(tx pgx.Tx) *DrawRepository {
	return &DrawRepository{db: tx}
}

// ExistsForRound reports whether a draw was already executed for the
// round date.
func (r *DrawRepository) ExistsForRound(ctx context.Context, roundDate time.Time) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM draw WHERE draw_date = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, roundDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing draw: %w", err)
	}
	return exists, nil
}

// Create inserts a draw row.
func (r *DrawRepository) Create(ctx context.Context, roundDate time.Time, method string, createdBy int64) (*model.Draw, error) {
	const query = `
		INSERT INTO draw (draw_date, draw_method, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, draw_date, draw_method, created_by, created_at
	`

	var d model.Draw
	err := r.db.QueryRow(ctx, query, roundDate, method, createdBy).Scan(
		&d.ID,
		&d.RoundDate,
		&d.Method,
		&d.CreatedBy,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}
	return &d, nil
}

// CandidateNumbers collects the distinct candidate pool for a round:
// numbers of sold tickets only, or of every ticket in the round.
func (r *DrawRepository) CandidateNumbers(ctx context.Context, roundDate time.Time, method string) ([]string, error) {
	var query string
	if method == model.DrawSoldOnly {
		query = `
			SELECT DISTINCT t.number_6
			FROM ticket t
			JOIN purchase p ON p.ticket_id = t.id
			WHERE t.round_date = $1
			ORDER BY t.number_6
		`
	} else {
		query = `
			SELECT DISTINCT number_6
			FROM ticket
			WHERE round_date = $1
			ORDER BY number_6
		`
	}

	rows, err := r.db.Query(ctx, query, roundDate)
	if err != nil {
		return nil, fmt.Errorf("failed to collect candidates: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return numbers, nil
}

// InsertExactOutcome persists a full-number outcome (tiers 1-3).
func (r *DrawRepository) InsertExactOutcome(ctx context.Context, drawID, tierID int64, number string) (int64, error) {
	const query = `
		INSERT INTO prize_outcome (draw_id, prize_tier_id, number_full)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, drawID, tierID, number).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert prize outcome: %w", err)
	}
	return id, nil
}

// InsertSuffixOutcome persists a suffix outcome (tiers 4-5) derived
// from another tier's number.
func (r *DrawRepository) InsertSuffixOutcome(ctx context.Context, drawID, tierID int64, suffixLen int, suffixValue string, derivedFromTier int) (int64, error) {
	const query = `
		INSERT INTO prize_outcome (draw_id, prize_tier_id, suffix_len, suffix_value, derived_from_tier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, drawID, tierID, suffixLen, suffixValue, derivedFromTier).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert suffix outcome: %w", err)
	}
	return id, nil
}

// MatchExactWinners inserts one winning_ticket row for every purchase
// in the round whose ticket number equals the outcome number. Returns
// the number of winners.
func (r *DrawRepository) MatchExactWinners(ctx context.Context, drawID, tierID, outcomeID int64, roundDate time.Time, number string, amount int64) (int64, error) {
	const query = `
		INSERT INTO winning_ticket (draw_id, prize_tier_id, prize_outcome_id, purchase_id, amount)
		SELECT $1, $2, $3, p.id, $4
		FROM purchase p
		JOIN ticket t ON t.id = p.ticket_id
		WHERE t.round_date = $5 AND t.number_6 = $6
	`

	tag, err := r.db.Exec(ctx, query, drawID, tierID, outcomeID, amount, roundDate, number)
	if err != nil {
		return 0, fmt.Errorf("failed to match exact winners: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MatchSuffixWinners inserts one winning_ticket row for every purchase
// in the round whose ticket number ends with the suffix value. The
// comparison is a string suffix; leading zeros count.
func (r *DrawRepository) MatchSuffixWinners(ctx context.Context, drawID, tierID, outcomeID int64, roundDate time.Time, suffixLen int, suffixValue string, amount int64) (int64, error) {
	const query = `
		INSERT INTO winning_ticket (draw_id, prize_tier_id, prize_outcome_id, purchase_id, amount)
		SELECT $1, $2, $3, p.id, $4
		FROM purchase p
		JOIN ticket t ON t.id = p.ticket_id
		WHERE t.round_date = $5 AND RIGHT(t.number_6, $6) = $7
	`

	tag, err := r.db.Exec(ctx, query, drawID, tierID, outcomeID, amount, roundDate, suffixLen, suffixValue)
	if err != nil {
		return 0, fmt.Errorf("failed to match suffix winners: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List retrieves all draws, newest round first.
func (r *DrawRepository) List(ctx context.Context) ([]*model.Draw, error) {
	const query = `
		SELECT id, draw_date, draw_method, created_by, created_at
		FROM draw
		ORDER BY draw_date DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %w", err)
	}
	defer rows.Close()

	var draws []*model.Draw
	for rows.Next() {
		var d model.Draw
		if err := rows.Scan(&d.ID, &d.RoundDate, &d.Method, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draws: %w", err)
	}

	return draws, nil
}

// Latest retrieves the most recently executed draw.
// Returns ErrDrawNotFound if no draw exists yet.
func (r *DrawRepository) Latest(ctx context.Context) (*model.Draw, error) {
	const query = `
		SELECT id, draw_date, draw_method, created_by, created_at
		FROM draw
		ORDER BY id DESC
		LIMIT 1
	`

	var d model.Draw
	err := r.db.QueryRow(ctx, query).Scan(&d.ID, &d.RoundDate, &d.Method, &d.CreatedBy, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get latest draw: %w", err)
	}
	return &d, nil
}

// TierResults retrieves the per-tier outcomes of a draw joined with
// the configured prizes, ordered by tier rank.
func (r *DrawRepository) TierResults(ctx context.Context, drawID int64) ([]*model.DrawTierResult, error) {
	const query = `
		SELECT po.prize_tier_id, pt.tier_rank, pt.name, pt.prize_amount,
		       po.number_full, po.suffix_len, po.suffix_value, po.derived_from_tier
		FROM prize_outcome po
		JOIN prize_tier pt ON pt.id = po.prize_tier_id
		WHERE po.draw_id = $1
		ORDER BY pt.tier_rank
	`

	rows, err := r.db.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw results: %w", err)
	}
	defer rows.Close()

	var results []*model.DrawTierResult
	for rows.Next() {
		var res model.DrawTierResult
		err := rows.Scan(
			&res.TierID,
			&res.TierRank,
			&res.PrizeName,
			&res.PrizeAmount,
			&res.NumberFull,
			&res.SuffixLen,
			&res.SuffixValue,
			&res.DerivedFromTier,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw result: %w", err)
		}
		results = append(results, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draw results: %w", err)
	}

	return results, nil
}
