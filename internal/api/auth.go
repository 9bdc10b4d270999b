package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cookie lifetime

	"kodbank/internal/middleware" // Cookie name
	"kodbank/internal/service"    // Auth service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// RegisterRequest is the registration body
type RegisterRequest struct {
	Username string `json:"username"` // Required
	Email    string `json:"email"`    // Required
	Password string `json:"password"` // Required
	Phone    string `json:"phone"`    // Optional
}

// LoginRequest is the login body
type LoginRequest struct {
	Username string `json:"username"` // Required
	Password string `json:"password"` // Required
}

// CookieOptions controls the session cookie
type CookieOptions struct {
	Secure bool          // Send only over HTTPS
	MaxAge time.Duration // Cookie lifetime, matches the token TTL
}

// RegisterHandler creates an account; it does not log the user in
func RegisterHandler(auth *service.AuthService, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c)
			return
		}
		acct, err := auth.Register(c.Request.Context(), service.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Account listings cached for admins are now stale
		if err := invalidateAccountListings(c.Request.Context(), rdb); err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": acct.ID,
				"error":      err.Error(),
			}).Warn("Failed to invalidate account listings")
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler authenticates a user and sets the session cookie
func LoginHandler(auth *service.AuthService, cookie CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c)
			return
		}
		session, err := auth.Login(c.Request.Context(), service.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		setSessionCookie(c, session.Token, cookie)
		c.JSON(http.StatusOK, gin.H{
			"message":    "Login successful",
			"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}

// LogoutHandler clears the session cookie. It always succeeds and leaves the
// token store untouched.
func LogoutHandler(cookie CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, "", -1, "/", "", cookie.Secure, true) // Expire the cookie
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func setSessionCookie(c *gin.Context, token string, cookie CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)
}

// invalidateAccountListings drops every cached admin account page
func invalidateAccountListings(ctx context.Context, rdb redis.Cmdable) error {
	return deleteByPattern(ctx, rdb, accountListingPrefix+"*")
}
