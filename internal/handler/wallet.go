package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WalletBalance returns the caller's current balance.
func (h *Handler) WalletBalance(c *gin.Context) {
	user := currentUser(c)

	balance, err := h.wallet.Balance(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// WalletTransactions returns the caller's ledger entries, most
// recent first.
func (h *Handler) WalletTransactions(c *gin.Context) {
	user := currentUser(c)

	entries, err := h.wallet.Transactions(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":            e.ID,
			"type":          e.Type,
			"amount":        e.Amount,
			"balance_after": e.BalanceAfter,
			"purchase_id":   e.PurchaseID,
			"redemption_id": e.RedemptionID,
			"draw_id":       e.DrawID,
			"note":          e.Note,
			"created_at":    e.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

type redeemRequest struct {
	PurchaseID int64 `json:"purchase_id" binding:"required"`
	DrawID     int64 `json:"draw_id" binding:"required"`
}

// Redeem claims the caller's winnings for one purchase in one draw.
func (h *Handler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purchase_id and draw_id required"})
		return
	}

	user := currentUser(c)
	outcome, err := h.redemptions.Redeem(c.Request.Context(), user.ID, req.PurchaseID, req.DrawID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"redemption_id": outcome.RedemptionID,
		"amount":        outcome.Amount,
		"balance_after": outcome.BalanceAfter,
	})
}
