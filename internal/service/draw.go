// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"lotto-service/internal/model"
	"lotto-service/internal/pkg/rng"
	"lotto-service/internal/repository"
)

// Draw errors.
var (
	ErrDrawExists             = errors.New("a draw already exists for this round")
	ErrInsufficientCandidates = errors.New("not enough distinct numbers in this round to draw 3 winners")
	ErrInvalidDrawMethod      = errors.New("invalid draw method")
	ErrTiersNotConfigured     = errors.New("prize tiers 1-5 must be configured before a draw")
)

// Suffix lengths derived from the tier-1 number.
const (
	tier4SuffixLen = 3
	tier5SuffixLen = 2
)

// DrawResult is the outcome of an executed draw: the three primary
// winning numbers in selection order and the two suffixes derived from
// the first.
type DrawResult struct {
	DrawID  int64
	Tier1   string
	Tier2   string
	Tier3   string
	Suffix3 string
	Suffix2 string
}

// DrawService executes draws: it selects winning numbers for a round,
// derives the suffix tiers, persists prize outcomes, matches every
// purchase against every tier and transitions the round's tickets.
// The whole draw is one database transaction.
type DrawService struct {
	pool    *pgxpool.Pool
	draws   *repository.DrawRepository
	tickets *repository.TicketRepository
	prizes  *repository.PrizeRepository
	random  rng.Source
}

// NewDrawService creates a new DrawService instance.
func NewDrawService(
	pool *pgxpool.Pool,
	draws *repository.DrawRepository,
	tickets *repository.TicketRepository,
	prizes *repository.PrizeRepository,
	random rng.Source,
) *DrawService {
	return &DrawService{
		pool:    pool,
		draws:   draws,
		tickets: tickets,
		prizes:  prizes,
		random:  random,
	}
}

// DeriveSuffixes returns the tier-4 and tier-5 winning values for a
// tier-1 number: its last three and last two characters. Suffixes are
// string operations so leading zeros survive.
func DeriveSuffixes(tier1 string) (suffix3, suffix2 string) {
	return tier1[len(tier1)-tier4SuffixLen:], tier1[len(tier1)-tier5SuffixLen:]
}

// ExecuteDraw runs the draw for a round. A round can be drawn at most
// once; re-running for the same round date fails with ErrDrawExists.
// Any failure rolls the whole transaction back, leaving no trace.
func (s *DrawService) ExecuteDraw(ctx context.Context, roundDate time.Time, method string, createdBy int64) (*DrawResult, error) {
	if method != model.DrawSoldOnly && method != model.DrawAllTickets {
		return nil, ErrInvalidDrawMethod
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin draw transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	draws := s.draws.WithTx(tx)
	tickets := s.tickets.WithTx(tx)
	prizes := s.prizes.WithTx(tx)

	exists, err := draws.ExistsForRound(ctx, roundDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDrawExists
	}

	draw, err := draws.Create(ctx, roundDate, method, createdBy)
	if err != nil {
		return nil, err
	}

	candidates, err := draws.CandidateNumbers(ctx, roundDate, method)
	if err != nil {
		return nil, err
	}
	if len(candidates) < 3 {
		return nil, ErrInsufficientCandidates
	}

	picked := rng.Sample(s.random, candidates, 3)
	n1, n2, n3 := picked[0], picked[1], picked[2]
	suffix3, suffix2 := DeriveSuffixes(n1)

	tiers, err := prizes.ByRank(ctx)
	if err != nil {
		return nil, err
	}
	for rank := 1; rank <= 5; rank++ {
		if tiers[rank] == nil {
			return nil, ErrTiersNotConfigured
		}
	}

	// Tiers 1-3: exact-number outcomes matched against purchased tickets.
	exactNumbers := []string{n1, n2, n3}
	for i, number := range exactNumbers {
		rank := i + 1
		tier := tiers[rank]
		outcomeID, err := draws.InsertExactOutcome(ctx, draw.ID, tier.ID, number)
		if err != nil {
			return nil, err
		}
		winners, err := draws.MatchExactWinners(ctx, draw.ID, tier.ID, outcomeID, roundDate, number, tier.Amount)
		if err != nil {
			return nil, err
		}
		log.Debug().Int("tier", rank).Str("number", number).Int64("winners", winners).Msg("Exact tier matched")
	}

	// Tiers 4-5: suffixes of the tier-1 number, not independent draws.
	suffixTiers := []struct {
		rank   int
		length int
		value  string
	}{
		{4, tier4SuffixLen, suffix3},
		{5, tier5SuffixLen, suffix2},
	}
	for _, st := range suffixTiers {
		tier := tiers[st.rank]
		outcomeID, err := draws.InsertSuffixOutcome(ctx, draw.ID, tier.ID, st.length, st.value, 1)
		if err != nil {
			return nil, err
		}
		winners, err := draws.MatchSuffixWinners(ctx, draw.ID, tier.ID, outcomeID, roundDate, st.length, st.value, tier.Amount)
		if err != nil {
			return nil, err
		}
		log.Debug().Int("tier", st.rank).Str("suffix", st.value).Int64("winners", winners).Msg("Suffix tier matched")
	}

	retired, err := tickets.MarkRoundDrawn(ctx, roundDate)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit draw transaction: %w", err)
	}

	log.Info().
		Int64("draw_id", draw.ID).
		Str("round_date", roundDate.Format("2006-01-02")).
		Str("method", method).
		Str("tier1", n1).
		Int64("tickets_retired", retired).
		Msg("Draw executed")

	return &DrawResult{
		DrawID:  draw.ID,
		Tier1:   n1,
		Tier2:   n2,
		Tier3:   n3,
		Suffix3: suffix3,
		Suffix2: suffix2,
	}, nil
}

// ListDraws retrieves all executed draws, newest round first.
func (s *DrawService) ListDraws(ctx context.Context) ([]*model.Draw, error) {
	return s.draws.List(ctx)
}

// LatestDraw retrieves the most recently executed draw.
func (s *DrawService) LatestDraw(ctx context.Context) (*model.Draw, error) {
	return s.draws.Latest(ctx)
}

// LatestResults retrieves the most recent draw together with its
// per-tier winning numbers and suffixes.
func (s *DrawService) LatestResults(ctx context.Context) (*model.Draw, []*model.DrawTierResult, error) {
	draw, err := s.draws.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}

	results, err := s.draws.TierResults(ctx, draw.ID)
	if err != nil {
		return nil, nil, err
	}
	return draw, results, nil
}
