package service

import (
	"context"
	"errors"

	"lotto-service/internal/model"
	"lotto-service/internal/repository"
)

// Prize tier errors.
var (
	ErrInvalidTier = errors.New("tier rank must be between 1 and 5")
)

// PrizeService manages prize tier configuration.
type PrizeService struct {
	prizes *repository.PrizeRepository
}

// NewPrizeService creates a new PrizeService instance.
func NewPrizeService(prizes *repository.PrizeRepository) *PrizeService {
	return &PrizeService{prizes: prizes}
}

// List returns all configured prize tiers ordered by rank.
func (s *PrizeService) List(ctx context.Context) ([]*model.PrizeTier, error) {
	return s.prizes.List(ctx)
}

// Upsert creates or updates the tier with the given rank.
func (s *PrizeService) Upsert(ctx context.Context, rank int, name string, amount int64) (*model.PrizeTier, error) {
	if rank < 1 || rank > 5 {
		return nil, ErrInvalidTier
	}
	if name == "" || amount < 0 {
		return nil, ErrInvalidTier
	}
	return s.prizes.Upsert(ctx, rank, name, amount)
}
