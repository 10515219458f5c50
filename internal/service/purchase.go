package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"lotto-service/internal/model"
	"lotto-service/internal/repository"
)

// Purchase errors.
var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketUnavailable   = errors.New("ticket is not available")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// PurchaseService atomically reserves a ticket, debits the wallet and
// records the purchase. All five steps run in one database transaction:
// a ticket is never marked sold without a matching purchase row and
// debit, and vice versa.
type PurchaseService struct {
	pool      *pgxpool.Pool
	tickets   *repository.TicketRepository
	purchases *repository.PurchaseRepository
	wallet    *repository.WalletRepository
}

// NewPurchaseService creates a new PurchaseService instance.
func NewPurchaseService(
	pool *pgxpool.Pool,
	tickets *repository.TicketRepository,
	purchases *repository.PurchaseRepository,
	wallet *repository.WalletRepository,
) *PurchaseService {
	return &PurchaseService{
		pool:      pool,
		tickets:   tickets,
		purchases: purchases,
		wallet:    wallet,
	}
}

// Purchase buys a ticket for an account. The ticket row lock taken
// first makes the ticket the mutual-exclusion point: of two concurrent
// buyers, exactly one sees it available.
func (s *PurchaseService) Purchase(ctx context.Context, userID, ticketID int64) (*model.Purchase, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tickets := s.tickets.WithTx(tx)
	purchases := s.purchases.WithTx(tx)
	wallet := s.wallet.WithTx(tx)

	ticket, err := tickets.GetForUpdate(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.Status != model.TicketAvailable {
		return nil, ErrTicketUnavailable
	}

	balance, err := wallet.CurrentBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < ticket.Price {
		return nil, ErrInsufficientBalance
	}

	purchase, err := purchases.Create(ctx, userID, ticket.ID, ticket.RoundDate, ticket.Price)
	if err != nil {
		return nil, err
	}

	if err := tickets.MarkSold(ctx, ticket.ID); err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Buy ticket %s", ticket.Number)
	_, err = wallet.Append(ctx, userID, model.TxnPurchase, -ticket.Price,
		repository.EntryLinks{PurchaseID: &purchase.ID}, note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase transaction: %w", err)
	}

	log.Info().
		Int64("user_id", userID).
		Int64("ticket_id", ticket.ID).
		Int64("purchase_id", purchase.ID).
		Str("number", ticket.Number).
		Msg("Ticket purchased")

	return purchase, nil
}
