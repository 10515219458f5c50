package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListPrizeTiers returns all configured prize tiers ordered by rank.
func (h *Handler) ListPrizeTiers(c *gin.Context) {
	tiers, err := h.prizes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, gin.H{
			"id":           t.ID,
			"tier_rank":    t.Rank,
			"name":         t.Name,
			"prize_amount": t.Amount,
		})
	}

	c.JSON(http.StatusOK, out)
}

type upsertTierRequest struct {
	TierRank    int    `json:"tier_rank" binding:"required"`
	Name        string `json:"name" binding:"required"`
	PrizeAmount int64  `json:"prize_amount" binding:"required"`
}

// UpsertPrizeTier creates or updates a prize tier. OWNER only.
func (h *Handler) UpsertPrizeTier(c *gin.Context) {
	var req upsertTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tier_rank, name, prize_amount required"})
		return
	}

	tier, err := h.prizes.Upsert(c.Request.Context(), req.TierRank, req.Name, req.PrizeAmount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": tier.ID})
}
