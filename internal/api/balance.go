package api

import (
	"context"  // Store call context
	"net/http" // HTTP status codes

	"kodbank/internal/middleware" // Claims accessor

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point money
)

// BalanceReader reads the current balance of an account
type BalanceReader interface {
	Balance(ctx context.Context, id uint) (decimal.Decimal, error)
}

// GetBalanceHandler returns the balance of the authenticated account. Only
// the account ID from the verified claims is used for the lookup, and the
// store is read on every request so a deleted account answers 404.
func GetBalanceHandler(balances BalanceReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := middleware.ClaimsFrom(c) // Get claims from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		balance, err := balances.Balance(c.Request.Context(), claims.AccountID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"balance": balance.StringFixed(2)}) // Balance only
	}
}
