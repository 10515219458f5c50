package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lotto-service/internal/model"
)

// Purchase errors.
var (
	ErrPurchaseNotFound = errors.New("purchase not found")
)

// PurchaseRepository handles purchase persistence.
type PurchaseRepository struct {
	db Querier
}

// NewPurchaseRepository creates a new PurchaseRepository instance.
func NewPurchaseRepository(db Querier) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PurchaseRepository) WithTx(tx pgx.Tx) *PurchaseRepository {
	return &PurchaseRepository{db: tx}
}

// Create inserts a purchase linking a user to a ticket.
func (r *PurchaseRepository) Create(ctx context.Context, userID, ticketID int64, roundDate time.Time, price int64) (*model.Purchase, error) {
	const query = `
		INSERT INTO purchase (user_id, ticket_id, round_date, purchase_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, ticket_id, round_date, purchase_price, purchased_at
	`

	var p model.Purchase
	err := r.db.QueryRow(ctx, query, userID, ticketID, roundDate, price).Scan(
		&p.ID,
		&p.UserID,
		&p.TicketID,
		&p.RoundDate,
		&p.Price,
		&p.PurchasedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	return &p, nil
}

// GetForUpdate loads a purchase and takes a row lock on it. The lock is
// the mutual-exclusion point for redemption: concurrent redeem attempts
// for the same purchase serialize here.
func (r *PurchaseRepository) GetForUpdate(ctx context.Context, id int64) (*model.Purchase, error) {
	const query = `
		SELECT id, user_id, ticket_id, round_date, purchase_price, purchased_at
		FROM purchase
		WHERE id = $1
		FOR UPDATE
	`

	var p model.Purchase
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&p.TicketID,
		&p.RoundDate,
		&p.Price,
		&p.PurchasedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to lock purchase: %w", err)
	}
	return &p, nil
}

// ListByUser retrieves a user's purchases with aggregate winnings and
// redemption state, most recent first. Winnings across tiers of one
// draw are summed per purchase.
func (r *PurchaseRepository) ListByUser(ctx context.Context, userID int64, roundDate *time.Time) ([]*model.PurchaseSummary, error) {
	query := `
		SELECT p.id AS purchase_id,
		       t.id AS ticket_id,
		       t.number_6,
		       t.status AS ticket_status,
		       p.round_date,
		       p.purchase_price,
		       p.purchased_at,
		       COALESCE(w.total, 0) AS win_amount,
		       w.draw_id AS win_draw_id,
		       r.id AS redemption_id
		FROM purchase p
		JOIN ticket t ON t.id = p.ticket_id
		LEFT JOIN (
			SELECT purchase_id, draw_id, SUM(amount) AS total
			FROM winning_ticket
			GROUP BY purchase_id, draw_id
		) w ON w.purchase_id = p.id
		LEFT JOIN redemption r ON r.purchase_id = p.id AND r.draw_id = w.draw_id
		WHERE p.user_id = $1
	`
	args := []any{userID}
	if roundDate != nil {
		query += ` AND p.round_date = $2`
		args = append(args, *roundDate)
	}
	query += ` ORDER BY p.purchased_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var summaries []*model.PurchaseSummary
	for rows.Next() {
		var s model.PurchaseSummary
		err := rows.Scan(
			&s.PurchaseID,
			&s.TicketID,
			&s.Number,
			&s.TicketStatus,
			&s.RoundDate,
			&s.Price,
			&s.PurchasedAt,
			&s.WinAmount,
			&s.WinDrawID,
			&s.RedemptionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return summaries, nil
}

// CountByTicket returns how many purchases reference a ticket.
// The purchase flow guarantees this is always 0 or 1.
func (r *PurchaseRepository) CountByTicket(ctx context.Context, ticketID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM purchase WHERE ticket_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count purchases: %w", err)
	}
	return count, nil
}
