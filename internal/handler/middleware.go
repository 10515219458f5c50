package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lotto-service/internal/model"
)

// Context keys for the resolved account.
const (
	ctxUserKey = "authUser"
)

// RequireSession resolves the bearer token to an account and aborts
// with 401 when it cannot. Downstream handlers always work with a
// trusted, already-resolved account id.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := h.accounts.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireOwner aborts with 403 unless the session account is an OWNER.
func (h *Handler) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != model.RoleOwner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "owner role required"})
			return
		}
		c.Next()
	}
}

// currentUser returns the account resolved by RequireSession.
func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
