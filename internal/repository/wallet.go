package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lotto-service/internal/model"
)

const walletColumns = `id, user_id, type, amount, balance_after, purchase_id, redemption_id, draw_id, note, created_at`

// EntryLinks carries the optional foreign keys of a ledger entry.
type EntryLinks struct {
	PurchaseID   *int64
	RedemptionID *int64
	DrawID       *int64
}

// WalletRepository is the append-only wallet ledger. Entries are never
// updated or deleted; the current balance of an account is defined as
// the balance_after of its most recent entry.
type WalletRepository struct {
	db Querier
}

// NewWalletRepository creates a new WalletRepository instance.
func NewWalletRepository(db Querier) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *WalletRepository) WithTx(tx pgx.Tx) *WalletRepository {
	return &WalletRepository{db: tx}
}

// CurrentBalance returns the balance_after of the account's latest
// ledger entry, or 0 if the account has no history.
func (r *WalletRepository) CurrentBalance(ctx context.Context, userID int64) (int64, error) {
	// Ordered by id, not created_at: created_at is the transaction
	// start time, and under the account row lock the chain order is
	// the insert order.
	const query = `
		SELECT balance_after
		FROM wallet_txn
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	var balance int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Append inserts one immutable ledger entry with
// balance_after = current balance + amount. It must run inside the
// caller's transaction so the entry commits atomically with the event
// that caused it. The account row is locked first: two concurrent
// appends for one account serialize instead of both reading the same
// stale balance.
func (r *WalletRepository) Append(ctx context.Context, userID int64, txnType string, amount int64, links EntryLinks, note string) (*model.WalletTxn, error) {
	const lockQuery = `SELECT id FROM app_user WHERE id = $1 FOR UPDATE`

	var locked int64
	if err := r.db.QueryRow(ctx, lockQuery, userID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock account for ledger append: %w", err)
	}

	balance, err := r.CurrentBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	const insertQuery = `
		INSERT INTO wallet_txn (user_id, type, amount, balance_after, purchase_id, redemption_id, draw_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + walletColumns

	var entry model.WalletTxn
	err = r.db.QueryRow(ctx, insertQuery,
		userID, txnType, amount, balance+amount,
		links.PurchaseID, links.RedemptionID, links.DrawID, note,
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Type,
		&entry.Amount,
		&entry.BalanceAfter,
		&entry.PurchaseID,
		&entry.RedemptionID,
		&entry.DrawID,
		&entry.Note,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return &entry, nil
}

// ListByUser retrieves an account's ledger entries, most recent first.
func (r *WalletRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.WalletTxn, error) {
	const query = `
		SELECT ` + walletColumns + `
		FROM wallet_txn
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.WalletTxn
	for rows.Next() {
		var e model.WalletTxn
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Type,
			&e.Amount,
			&e.BalanceAfter,
			&e.PurchaseID,
			&e.RedemptionID,
			&e.DrawID,
			&e.Note,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}
