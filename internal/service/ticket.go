package service

import (
	"context"
	"errors"
	"time"

	"lotto-service/internal/model"
	"lotto-service/internal/repository"
)

var (
	// ErrInvalidTicketNumber is returned when a provisioned number is
	// not exactly six digits.
	ErrInvalidTicketNumber = errors.New("ticket number must be exactly 6 digits")
	// ErrNoTicketNumbers is returned when provisioning is called with
	// an empty number list.
	ErrNoTicketNumbers = errors.New("no ticket numbers supplied")
)

// TicketService exposes ticket listings and round provisioning.
type TicketService struct {
	tickets      *repository.TicketRepository
	purchases    *repository.PurchaseRepository
	defaultPrice int64
}

// NewTicketService creates a new TicketService instance.
func NewTicketService(tickets *repository.TicketRepository, purchases *repository.PurchaseRepository, defaultPrice int64) *TicketService {
	return &TicketService{tickets: tickets, purchases: purchases, defaultPrice: defaultPrice}
}

// Provision inserts a batch of tickets for a round. A non-positive
// price falls back to the configured default. Numbers must be exactly
// six digits; leading zeros are significant.
func (s *TicketService) Provision(ctx context.Context, numbers []string, roundDate time.Time, price int64) ([]int64, error) {
	if len(numbers) == 0 {
		return nil, ErrNoTicketNumbers
	}
	for _, n := range numbers {
		if !validTicketNumber(n) {
			return nil, ErrInvalidTicketNumber
		}
	}
	if price <= 0 {
		price = s.defaultPrice
	}
	return s.tickets.CreateBatch(ctx, numbers, roundDate, price)
}

func validTicketNumber(n string) bool {
	if len(n) != 6 {
		return false
	}
	for _, c := range n {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ForSale lists the available tickets of a round, ordered by number.
func (s *TicketService) ForSale(ctx context.Context, roundDate time.Time) ([]*model.Ticket, error) {
	return s.tickets.ListForSale(ctx, roundDate)
}

// Mine lists an account's purchases with their result status and
// aggregate winnings, most recent first. roundDate filters to one
// round when non-nil.
func (s *TicketService) Mine(ctx context.Context, userID int64, roundDate *time.Time) ([]*model.PurchaseSummary, error) {
	return s.purchases.ListByUser(ctx, userID, roundDate)
}
