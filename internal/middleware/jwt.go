package middleware

import (
	"kodbank/internal/utils" // JWT utility functions
	"net/http"               // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	TokenCookie      = "token"     // Session cookie name
	ContextClaims    = "claims"    // Verified *utils.Claims
	ContextAccountID = "accountID" // Account ID from the verified claims
)

// TokenVerifier checks a session token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// JWTAuthMiddleware validates the session cookie and stores the verified
// claims in the context. Any failure aborts with 401.
func JWTAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(TokenCookie) // Get the session cookie
		// Check if the cookie is present
		if err != nil || tokenStr == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Auth token is missing"})
			return
		}
		claims, err := verifier.Verify(tokenStr) // Parse the JWT token
		if err != nil {
			// Malformed, forged and expired tokens all get the same answer
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ContextClaims, claims)              // Store claims in context
		c.Set(ContextAccountID, claims.AccountID) // Store account ID in context
		c.Next()                                  // Proceed to the next handler
	}
}

// ClaimsFrom returns the claims stored by JWTAuthMiddleware
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
