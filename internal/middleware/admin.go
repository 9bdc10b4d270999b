package middleware

import (
	"context"                 // Request context
	"kodbank/internal/domain" // Importing domain models
	"net/http"                // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AccountFinder loads an account by ID
type AccountFinder interface {
	FindByID(ctx context.Context, id uint) (*domain.Account, error)
}

// AdminOnlyMiddleware checks the account's role in the database on each
// request; the role claim in the token is not trusted for privilege.
func AdminOnlyMiddleware(accounts AccountFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := ClaimsFrom(c) // Get claims from context
		// Check if claims exist in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		acct, err := accounts.FindByID(c.Request.Context(), claims.AccountID) // Fetch account from database
		if err != nil {
			// If account not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// Check if account role is admin
		if acct.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
