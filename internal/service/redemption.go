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

// Redemption errors.
var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrNotOwner         = errors.New("purchase does not belong to this account")
	ErrAlreadyRedeemed  = errors.New("prize already redeemed for this purchase and draw")
	ErrNoPrize          = errors.New("no prize for this purchase and draw")
)

// RedemptionOutcome reports a successful redemption: the row created,
// the credited total and the resulting balance.
type RedemptionOutcome struct {
	RedemptionID int64
	Amount       int64
	BalanceAfter int64
}

// RedemptionService converts the matched wins of a (purchase, draw)
// pair into a wallet credit, exactly once. The purchase row lock plus
// the unique (purchase_id, draw_id) constraint guarantee that of two
// concurrent attempts exactly one succeeds.
type RedemptionService struct {
	pool        *pgxpool.Pool
	purchases   *repository.PurchaseRepository
	redemptions *repository.RedemptionRepository
	wallet      *repository.WalletRepository
}

// NewRedemptionService creates a new RedemptionService instance.
func NewRedemptionService(
	pool *pgxpool.Pool,
	purchases *repository.PurchaseRepository,
	redemptions *repository.RedemptionRepository,
	wallet *repository.WalletRepository,
) *RedemptionService {
	return &RedemptionService{
		pool:        pool,
		purchases:   purchases,
		redemptions: redemptions,
		wallet:      wallet,
	}
}

// Redeem claims the winnings of one purchase in one draw for the
// calling account. The whole claim is a single transaction; any
// failure leaves state unchanged.
func (s *RedemptionService) Redeem(ctx context.Context, userID, purchaseID, drawID int64) (*RedemptionOutcome, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin redemption transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	purchases := s.purchases.WithTx(tx)
	redemptions := s.redemptions.WithTx(tx)
	wallet := s.wallet.WithTx(tx)

	purchase, err := purchases.GetForUpdate(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, ErrNotOwner
	}

	redeemed, err := redemptions.Exists(ctx, purchaseID, drawID)
	if err != nil {
		return nil, err
	}
	if redeemed {
		return nil, ErrAlreadyRedeemed
	}

	total, err := redemptions.SumWinnings(ctx, purchaseID, drawID)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, ErrNoPrize
	}

	redemption, err := redemptions.Create(ctx, purchaseID, drawID, total)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Prize redemption for purchase %d", purchaseID)
	entry, err := wallet.Append(ctx, userID, model.TxnPrize, total,
		repository.EntryLinks{RedemptionID: &redemption.ID, DrawID: &drawID}, note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption transaction: %w", err)
	}

	log.Info().
		Int64("user_id", userID).
		Int64("purchase_id", purchaseID).
		Int64("draw_id", drawID).
		Int64("amount", total).
		Msg("Prize redeemed")

	return &RedemptionOutcome{
		RedemptionID: redemption.ID,
		Amount:       total,
		BalanceAfter: entry.BalanceAfter,
	}, nil
}
