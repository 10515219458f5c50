package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lotto-service/internal/repository"
)

type executeDrawRequest struct {
	DrawDate string `json:"drawDate" binding:"required"`
	Method   string `json:"method" binding:"required"`
}

// ExecuteDraw runs the draw for a round. OWNER only.
func (h *Handler) ExecuteDraw(c *gin.Context) {
	var req executeDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "drawDate and method required"})
		return
	}

	roundDate, err := time.Parse(dateLayout, req.DrawDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "drawDate must be YYYY-MM-DD"})
		return
	}

	user := currentUser(c)
	result, err := h.draws.ExecuteDraw(c.Request.Context(), roundDate, req.Method, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"draw_id": result.DrawID,
		"tier1":   result.Tier1,
		"tier2":   result.Tier2,
		"tier3":   result.Tier3,
		"suffix3": result.Suffix3,
		"suffix2": result.Suffix2,
	})
}

// ListDraws returns all executed draws, newest round first.
func (h *Handler) ListDraws(c *gin.Context) {
	draws, err := h.draws.ListDraws(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(draws))
	for _, d := range draws {
		out = append(out, gin.H{
			"id":          d.ID,
			"draw_date":   d.RoundDate.Format(dateLayout),
			"draw_method": d.Method,
			"created_by":  d.CreatedBy,
			"created_at":  d.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"draws": out})
}

// LatestDraw returns the most recently executed draw, or null.
func (h *Handler) LatestDraw(c *gin.Context) {
	draw, err := h.draws.LatestDraw(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrDrawNotFound) {
			c.JSON(http.StatusOK, gin.H{"draw": nil})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"draw": gin.H{
		"id":          draw.ID,
		"draw_date":   draw.RoundDate.Format(dateLayout),
		"draw_method": draw.Method,
		"created_by":  draw.CreatedBy,
		"created_at":  draw.CreatedAt.Format(time.RFC3339),
	}})
}

// LatestDrawResults returns the most recent draw with its per-tier
// winning numbers and suffixes.
func (h *Handler) LatestDrawResults(c *gin.Context) {
	draw, results, err := h.draws.LatestResults(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrDrawNotFound) {
			c.JSON(http.StatusOK, gin.H{"draw": nil, "results": []any{}})
			return
		}
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		out = append(out, gin.H{
			"prize_tier_id":     r.TierID,
			"tier_rank":         r.TierRank,
			"prize_name":        r.PrizeName,
			"prize_amount":      r.PrizeAmount,
			"number_full":       r.NumberFull,
			"suffix_len":        r.SuffixLen,
			"suffix_value":      r.SuffixValue,
			"derived_from_tier": r.DerivedFromTier,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"draw": gin.H{
			"id":          draw.ID,
			"draw_date":   draw.RoundDate.Format(dateLayout),
			"draw_method": draw.Method,
		},
		"round_date": draw.RoundDate.Format(dateLayout),
		"results":    out,
	})
}
