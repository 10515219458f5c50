// Package model defines the data models for the lottery platform.
package model

import "time"

// User roles.
const (
	RoleMember = "MEMBER"
	RoleOwner  = "OWNER"
)

// User represents a registered account.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	FullName     *string   `db:"full_name"`
	Phone        *string   `db:"phone"`
	Address      *string   `db:"address"`
	Role         string    `db:"user_type"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Ticket statuses. A ticket only ever moves forward:
// available -> sold -> drawn.
const (
	TicketAvailable = "available"
	TicketSold      = "sold"
	TicketDrawn     = "drawn"
)

// Ticket is one sellable six-digit number slot for a round.
// Number is a fixed-width six-character string; leading zeros matter.
type Ticket struct {
	ID        int64     `db:"id"`
	Number    string    `db:"number_6"`
	RoundDate time.Time `db:"round_date"`
	Price     int64     `db:"price"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Purchase binds a user to a ticket. At most one purchase per ticket;
// the ticket row lock during purchase is the exclusivity guard.
type Purchase struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	TicketID    int64     `db:"ticket_id"`
	RoundDate   time.Time `db:"round_date"`
	Price       int64     `db:"purchase_price"`
	PurchasedAt time.Time `db:"purchased_at"`
}

// Draw methods.
const (
	DrawSoldOnly   = "sold_only"
	DrawAllTickets = "all_tickets"
)

// Draw is one executed draw event for a round date.
type Draw struct {
	ID        int64     `db:"id"`
	RoundDate time.Time `db:"draw_date"`
	Method    string    `db:"draw_method"`
	CreatedBy int64     `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// PrizeTier is a configured prize rank, 1 (exact match, highest)
// down to 5 (two-digit suffix, lowest).
type PrizeTier struct {
	ID     int64  `db:"id"`
	Rank   int    `db:"tier_rank"`
	Name   string `db:"name"`
	Amount int64  `db:"prize_amount"`
}

// PrizeOutcome is the winning value for one tier in one draw.
// Tiers 1-3 carry the full number; tiers 4-5 carry a suffix derived
// from the tier-1 number.
type PrizeOutcome struct {
	ID              int64   `db:"id"`
	DrawID          int64   `db:"draw_id"`
	TierID          int64   `db:"prize_tier_id"`
	NumberFull      *string `db:"number_full"`
	SuffixLen       *int    `db:"suffix_len"`
	SuffixValue     *string `db:"suffix_value"`
	DerivedFromTier *int    `db:"derived_from_tier"`
}

// WinningTicket records one purchase matching one prize outcome.
// A purchase may collect several of these across tiers in one draw.
type WinningTicket struct {
	ID         int64 `db:"id"`
	DrawID     int64 `db:"draw_id"`
	TierID     int64 `db:"prize_tier_id"`
	OutcomeID  int64 `db:"prize_outcome_id"`
	PurchaseID int64 `db:"purchase_id"`
	Amount     int64 `db:"amount"`
}

// Redemption converts the matched wins of one (purchase, draw) pair
// into a wallet credit. At most one per pair.
type Redemption struct {
	ID         int64     `db:"id"`
	PurchaseID int64     `db:"purchase_id"`
	DrawID     int64     `db:"draw_id"`
	Amount     int64     `db:"amount_total"`
	CreatedAt  time.Time `db:"created_at"`
}

// Wallet entry types.
const (
	TxnInitial  = "initial"
	TxnPurchase = "purchase"
	TxnPrize    = "prize"
)

// WalletTxn is one immutable ledger entry. Entries are append-only;
// the current balance of an account is the BalanceAfter of its most
// recent entry by id.
type WalletTxn struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Type         string    `db:"type"`
	Amount       int64     `db:"amount"`
	BalanceAfter int64     `db:"balance_after"`
	PurchaseID   *int64    `db:"purchase_id"`
	RedemptionID *int64    `db:"redemption_id"`
	DrawID       *int64    `db:"draw_id"`
	Note         *string   `db:"note"`
	CreatedAt    time.Time `db:"created_at"`
}

// Session is an issued login token mapped to an account.
type Session struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Result statuses reported by the my-tickets listing.
const (
	ResultPending = "pending"
	ResultWon     = "won"
	ResultLost    = "lost"
	ResultClaimed = "claimed"
)

// PurchaseSummary is one row of the my-tickets listing: a purchase
// with its aggregate winnings and redemption state.
type PurchaseSummary struct {
	PurchaseID   int64     `db:"purchase_id"`
	TicketID     int64     `db:"ticket_id"`
	Number       string    `db:"number_6"`
	TicketStatus string    `db:"ticket_status"`
	RoundDate    time.Time `db:"round_date"`
	Price        int64     `db:"purchase_price"`
	PurchasedAt  time.Time `db:"purchased_at"`
	WinAmount    int64     `db:"win_amount"`
	WinDrawID    *int64    `db:"win_draw_id"`
	RedemptionID *int64    `db:"redemption_id"`
}

// ResultStatus derives the listing status from ticket state, winnings
// and redemption state.
func (p *PurchaseSummary) ResultStatus() string {
	switch {
	case p.RedemptionID != nil:
		return ResultClaimed
	case p.WinAmount > 0:
		return ResultWon
	case p.TicketStatus == TicketDrawn:
		return ResultLost
	default:
		return ResultPending
	}
}

// DrawTierResult is one tier's outcome of a draw joined with its
// configured prize, as returned by the latest-results listing.
type DrawTierResult struct {
	TierID          int64   `db:"prize_tier_id"`
	TierRank        int     `db:"tier_rank"`
	PrizeName       string  `db:"prize_name"`
	PrizeAmount     int64   `db:"prize_amount"`
	NumberFull      *string `db:"number_full"`
	SuffixLen       *int    `db:"suffix_len"`
	SuffixValue     *string `db:"suffix_value"`
	DerivedFromTier *int    `db:"derived_from_tier"`
}
