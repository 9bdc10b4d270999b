package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"kodbank/internal/domain"     // Importing domain models
	"kodbank/internal/repository" // Stores
	"kodbank/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

const (
	accountListingPrefix = "admin:accounts:" // Cache key prefix for account pages
	defaultPageSize      = 20                // Default page size
	maxPageSize          = 100               // Largest accepted page size
)

// AccountAdminResponse represents the account data returned to admin
type AccountAdminResponse struct {
	ID        uint      `json:"id"`         // Account ID
	Username  string    `json:"username"`   // Username
	Email     string    `json:"email"`      // Email
	Role      string    `json:"role"`       // Account role
	Balance   string    `json:"balance"`    // Balance, two decimals
	CreatedAt time.Time `json:"created_at"` // Registration time
}

// SessionAdminResponse represents one issued-token record; the token itself
// is never returned
type SessionAdminResponse struct {
	ID        uint      `json:"id"`         // Record ID
	AccountID uint      `json:"account_id"` // Owning account
	CreatedAt time.Time `json:"created_at"` // Issuance time
	ExpiresAt time.Time `json:"expires_at"` // Expiry time
	Expired   bool      `json:"expired"`    // Whether expiry has passed
}

type accountPage struct {
	Accounts   []AccountAdminResponse `json:"accounts"`    // List of accounts
	Page       int                    `json:"page"`        // Current page
	PageSize   int                    `json:"page_size"`   // Page size
	Total      int64                  `json:"total"`       // Total number of accounts
	TotalPages int                    `json:"total_pages"` // Total pages
	Cached     bool                   `json:"cached"`      // Whether served from cache
}

// ListAccountsHandler returns every account without credentials
func ListAccountsHandler(accounts *repository.AccountRepository, rdb redis.Cmdable, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		// Create a cache key based on pagination parameters
		cacheKey := accountListingPrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached accountPage
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err != nil {
			// Fall through to the database when Redis is unavailable
			logrus.WithFields(logrus.Fields{"key": cacheKey, "error": err.Error()}).Warn("Account listing cache read failed")
		} else if found {
			cached.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		list, total, err := accounts.List(ctx, offset, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		// Map accounts to response format
		resp := make([]AccountAdminResponse, len(list))
		for i, a := range list {
			resp[i] = AccountAdminResponse{
				ID:        a.ID,
				Username:  a.Username,
				Email:     a.Email,
				Role:      a.Role,
				Balance:   a.Balance.StringFixed(2),
				CreatedAt: a.CreatedAt,
			}
		}
		respData := accountPage{
			Accounts:   resp,
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		}
		// Cache the response for future requests
		if err := utils.SetCache(ctx, rdb, cacheKey, respData, ttl); err != nil {
			logrus.WithFields(logrus.Fields{"key": cacheKey, "error": err.Error()}).Warn("Account listing cache write failed")
		}
		c.JSON(http.StatusOK, respData)
	}
}

// ListSessionsHandler returns the issued-token audit log, newest first,
// optionally filtered by account_id. It is never cached.
func ListSessionsHandler(sessions *repository.SessionTokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		filter := repository.SessionFilter{
			Offset: (page - 1) * pageSize,
			Limit:  pageSize,
		}
		if raw := c.Query("account_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				respondError(c, domain.NewValidationError("account_id must be a positive integer"))
				return
			}
			filter.AccountID = uint(id)
		}
		list, total, err := sessions.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		now := time.Now()
		resp := make([]SessionAdminResponse, len(list))
		for i, t := range list {
			resp[i] = SessionAdminResponse{
				ID:        t.ID,
				AccountID: t.AccountID,
				CreatedAt: t.CreatedAt,
				ExpiresAt: t.ExpiresAt,
				Expired:   t.Expired(now),
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"sessions":    resp,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// pagination reads page and page_size, falling back to defaults on bad input
func pagination(c *gin.Context) (int, int) {
	page := 1                   // Default page number
	pageSize := defaultPageSize // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= maxPageSize {
			pageSize = v
		}
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

// deleteByPattern removes every key matching pattern
func deleteByPattern(ctx context.Context, rdb redis.Cmdable, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := utils.DeleteCache(ctx, rdb, keys...); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
