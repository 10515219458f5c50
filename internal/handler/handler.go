// Package handler exposes the lottery operations over HTTP.
// It maps JSON requests onto the service layer and service errors
// onto status codes; all business rules live below it.
package handler

import (
	"github.com/gin-gonic/gin"

	"lotto-service/internal/service"
)

// Handler holds the service dependencies for the HTTP handlers.
type Handler struct {
	accounts    *service.AccountService
	tickets     *service.TicketService
	purchases   *service.PurchaseService
	draws       *service.DrawService
	redemptions *service.RedemptionService
	wallet      *service.WalletService
	prizes      *service.PrizeService
}

// New creates a new Handler.
func New(
	accounts *service.AccountService,
	tickets *service.TicketService,
	purchases *service.PurchaseService,
	draws *service.DrawService,
	redemptions *service.RedemptionService,
	wallet *service.WalletService,
	prizes *service.PrizeService,
) *Handler {
	return &Handler{
		accounts:    accounts,
		tickets:     tickets,
		purchases:   purchases,
		draws:       draws,
		redemptions: redemptions,
		wallet:      wallet,
		prizes:      prizes,
	}
}

// RegisterRoutes registers all application routes.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)

	authed := router.Group("", h.RequireSession())
	{
		authed.POST("/logout", h.Logout)

		authed.GET("/tickets/for-sale", h.TicketsForSale)
		authed.GET("/tickets/mine", h.MyTickets)
		authed.POST("/purchases", h.PurchaseTicket)

		authed.GET("/draws", h.ListDraws)
		authed.GET("/draws/latest", h.LatestDraw)
		authed.GET("/draws/latest-results", h.LatestDrawResults)

		authed.GET("/prize-tiers", h.ListPrizeTiers)

		authed.GET("/wallet/balance", h.WalletBalance)
		authed.GET("/wallet/transactions", h.WalletTransactions)

		authed.POST("/redemptions", h.Redeem)
	}

	owner := router.Group("", h.RequireSession(), h.RequireOwner())
	{
		owner.POST("/tickets", h.ProvisionTickets)
		owner.POST("/draws", h.ExecuteDraw)
		owner.POST("/prize-tiers", h.UpsertPrizeTier)
	}
}
