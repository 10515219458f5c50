package service

import (
	"context"

	"lotto-service/internal/model"
	"lotto-service/internal/repository"
)

// WalletService exposes read access to the wallet ledger.
type WalletService struct {
	wallet       *repository.WalletRepository
	historyLimit int
}

// NewWalletService creates a new WalletService instance.
func NewWalletService(wallet *repository.WalletRepository, historyLimit int) *WalletService {
	if historyLimit <= 0 {
		historyLimit = 200
	}
	return &WalletService{wallet: wallet, historyLimit: historyLimit}
}

// Balance returns the account's current balance: the balance_after of
// its latest ledger entry, or zero if it has no history.
func (s *WalletService) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.wallet.CurrentBalance(ctx, userID)
}

// Transactions returns the account's ledger entries, most recent first.
func (s *WalletService) Transactions(ctx context.Context, userID int64) ([]*model.WalletTxn, error) {
	return s.wallet.ListByUser(ctx, userID, s.historyLimit)
}
