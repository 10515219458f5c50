package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lotto-service/internal/service"
)

type registerRequest struct {
	Username       string  `json:"username" binding:"required"`
	Password       string  `json:"password" binding:"required"`
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	InitialBalance int64   `json:"initial_balance"`
}

// Register creates a MEMBER account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username & password required"})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Username:       req.Username,
		Password:       req.Password,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address:        req.Address,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": user.ID})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies a credential and issues a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username & password required"})
		return
	}

	user, token, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"user_type": user.Role,
		},
	})
}

// Logout revokes the caller's session token.
func (h *Handler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, _ := strings.CutPrefix(header, "Bearer ")
	if err := h.accounts.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
