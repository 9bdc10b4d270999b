package api

import (
	"context"  // Readiness checks
	"net/http" // HTTP status codes
	"time"     // Durations

	"kodbank/internal/middleware" // Custom package for middleware
	"kodbank/internal/repository" // Stores
	"kodbank/internal/service"    // Services
	"kodbank/internal/utils"      // Token issuer

	"github.com/gin-contrib/cors"  // CORS for the dashboard
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Deps is everything the HTTP surface needs, built once at startup
type Deps struct {
	Auth           *service.AuthService
	Balances       BalanceReader
	Chat           ChatCompleter
	Accounts       *repository.AccountRepository
	Sessions       *repository.SessionTokenRepository
	Issuer         *utils.TokenIssuer
	Redis          redis.Cmdable
	CacheTTL       time.Duration
	Cookie         CookieOptions
	FrontendOrigin string
	Logger         *logrus.Logger
	Ready          func(ctx context.Context) error // Nil means always ready
}

// NewRouter builds the gin engine. Every route is served both at the root and
// under /api.
func NewRouter(d *Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	if d.FrontendOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{d.FrontendOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health/ready", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
		}
		c.Status(http.StatusOK)
	})

	for _, prefix := range []string{"", "/api"} {
		registerRoutes(r.Group(prefix), d)
	}
	return r
}

func registerRoutes(g *gin.RouterGroup, d *Deps) {
	requireAuth := middleware.JWTAuthMiddleware(d.Issuer)

	// Auth routes
	g.POST("/register", RegisterHandler(d.Auth, d.Redis)) // Registration endpoint
	g.POST("/login", LoginHandler(d.Auth, d.Cookie))      // Login endpoint
	g.POST("/logout", LogoutHandler(d.Cookie))            // Logout endpoint

	// Protected routes
	g.GET("/getBalance", requireAuth, GetBalanceHandler(d.Balances)) // Balance endpoint
	g.POST("/chat", requireAuth, ChatHandler(d.Chat))                // Chat proxy endpoint

	// Admin routes (protected, admin only)
	adminGroup := g.Group("/admin")
	adminGroup.Use(requireAuth, middleware.AdminOnlyMiddleware(d.Accounts))
	adminGroup.GET("/accounts", ListAccountsHandler(d.Accounts, d.Redis, d.CacheTTL)) // List accounts endpoint
	adminGroup.GET("/sessions", ListSessionsHandler(d.Sessions))                      // Issued token audit endpoint
}
