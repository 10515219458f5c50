package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// TicketsForSale lists the available tickets of a round.
func (h *Handler) TicketsForSale(c *gin.Context) {
	roundDate, err := time.Parse(dateLayout, c.Query("roundDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roundDate required as YYYY-MM-DD"})
		return
	}

	tickets, err := h.tickets.ForSale(c.Request.Context(), roundDate)
	if err != nil {
		respondError(c, err)
		return
	}

	type ticketJSON struct {
		ID        int64  `json:"id"`
		Number    string `json:"number_6"`
		Price     int64  `json:"price"`
		RoundDate string `json:"round_date"`
	}
	out := make([]ticketJSON, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketJSON{
			ID:        t.ID,
			Number:    t.Number,
			Price:     t.Price,
			RoundDate: t.RoundDate.Format(dateLayout),
		})
	}

	c.JSON(http.StatusOK, gin.H{"round_date": c.Query("roundDate"), "tickets": out})
}

// MyTickets lists the caller's purchases with their result status.
func (h *Handler) MyTickets(c *gin.Context) {
	user := currentUser(c)

	var roundDate *time.Time
	if raw := c.Query("roundDate"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roundDate must be YYYY-MM-DD"})
			return
		}
		roundDate = &parsed
	}

	summaries, err := h.tickets.Mine(c.Request.Context(), user.ID, roundDate)
	if err != nil {
		respondError(c, err)
		return
	}

	type purchaseJSON struct {
		PurchaseID    int64  `json:"purchase_id"`
		TicketID      int64  `json:"ticket_id"`
		Number        string `json:"number_6"`
		TicketStatus  string `json:"ticket_status"`
		RoundDate     string `json:"round_date"`
		Price         int64  `json:"purchase_price"`
		PurchasedAt   string `json:"purchased_at"`
		ResultStatus  string `json:"result_status"`
		WinningAmount int64  `json:"winning_amount"`
		WinningDrawID *int64 `json:"winning_draw_id,omitempty"`
		RedemptionID  *int64 `json:"redemption_id,omitempty"`
	}
	out := make([]purchaseJSON, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, purchaseJSON{
			PurchaseID:    s.PurchaseID,
			TicketID:      s.TicketID,
			Number:        s.Number,
			TicketStatus:  s.TicketStatus,
			RoundDate:     s.RoundDate.Format(dateLayout),
			Price:         s.Price,
			PurchasedAt:   s.PurchasedAt.Format(time.RFC3339),
			ResultStatus:  s.ResultStatus(),
			WinningAmount: s.WinAmount,
			WinningDrawID: s.WinDrawID,
			RedemptionID:  s.RedemptionID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       user.ID,
		"total_tickets": len(out),
		"tickets":       out,
	})
}

type provisionRequest struct {
	Numbers   []string `json:"numbers" binding:"required"`
	RoundDate string   `json:"roundDate" binding:"required"`
	Price     int64    `json:"price"`
}

// ProvisionTickets inserts a batch of tickets for a round. Owner only.
func (h *Handler) ProvisionTickets(c *gin.Context) {
	var req provisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numbers and roundDate required"})
		return
	}
	roundDate, err := time.Parse(dateLayout, req.RoundDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roundDate must be YYYY-MM-DD"})
		return
	}

	ids, err := h.tickets.Provision(c.Request.Context(), req.Numbers, roundDate, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"created":    len(ids),
		"ticket_ids": ids,
		"round_date": req.RoundDate,
	})
}

type purchaseRequest struct {
	TicketID int64 `json:"ticketId" binding:"required"`
}

// PurchaseTicket buys one ticket for the caller.
func (h *Handler) PurchaseTicket(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticketId required"})
		return
	}

	user := currentUser(c)
	purchase, err := h.purchases.Purchase(c.Request.Context(), user.ID, req.TicketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"purchase_id": purchase.ID,
		"round_date":  purchase.RoundDate.Format(dateLayout),
	})
}
