package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lotto-service/internal/model"
)

// Ticket errors.
var (
	ErrTicketNotFound = errors.New("ticket not found")
)

const ticketColumns = `id, number_6, round_date, price, status, created_at, updated_at`

// TicketRepository handles ticket inventory persistence.
type TicketRepository struct {
	db Querier
}

// NewTicketRepository creates a new TicketRepository instance.
func NewTicketRepository(db Querier) *TicketRepository {
	return &TicketRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TicketRepository) WithTx(tx pgx.Tx) *TicketRepository {
	return &TicketRepository{db: tx}
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(
		&t.ID,
		&t.Number,
		&t.RoundDate,
		&t.Price,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetForUpdate loads a ticket and takes a row lock on it. The lock is
// the mutual-exclusion point for purchases: only one transaction at a
// time can see the ticket as available and mark it sold.
func (r *TicketRepository) GetForUpdate(ctx context.Context, id int64) (*model.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM ticket WHERE id = $1 FOR UPDATE`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}
	return ticket, nil
}

// GetByID retrieves a ticket without locking it.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*model.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM ticket WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// MarkSold advances a ticket from available to sold.
func (r *TicketRepository) MarkSold(ctx context.Context, id int64) error {
	const query = `
		UPDATE ticket
		SET status = 'sold', updated_at = NOW()
		WHERE id = $1 AND status = 'available'
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark ticket sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// MarkRoundDrawn advances every ticket of a round to drawn, ending the
// round's sellable lifecycle. Never-purchased tickets are retired too;
// a purchase's win/lose state comes from winning_ticket rows.
func (r *TicketRepository) MarkRoundDrawn(ctx context.Context, roundDate time.Time) (int64, error) {
	const query = `
		UPDATE ticket
		SET status = 'drawn', updated_at = NOW()
		WHERE round_date = $1 AND status <> 'drawn'
	`

	tag, err := r.db.Exec(ctx, query, roundDate)
	if err != nil {
		return 0, fmt.Errorf("failed to mark round drawn: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CreateBatch inserts tickets for a round. Used by round provisioning
// and test fixtures.
func (r *TicketRepository) CreateBatch(ctx context.Context, numbers []string, roundDate time.Time, price int64) ([]int64, error) {
	const query = `
		INSERT INTO ticket (number_6, round_date, price)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	ids := make([]int64, 0, len(numbers))
	for _, n := range numbers {
		var id int64
		if err := r.db.QueryRow(ctx, query, n, roundDate, price).Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to create ticket %s: %w", n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListForSale retrieves available tickets for a round ordered by number.
func (r *TicketRepository) ListForSale(ctx context.Context, roundDate time.Time) ([]*model.Ticket, error) {
	const query = `
		SELECT ` + ticketColumns + `
		FROM ticket
		WHERE status = 'available' AND round_date = $1
		ORDER BY number_6
	`

	rows, err := r.db.Query(ctx, query, roundDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*model.Ticket
	for rows.Next() {
		var t model.Ticket
		err := rows.Scan(
			&t.ID,
			&t.Number,
			&t.RoundDate,
			&t.Price,
			&t.Status,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}
