package main

import (
	"context"                     // context package is needed for Redis operations
	"errors"                      // Shutdown error inspection
	"kodbank/internal/api"        // Custom package for API handlers
	"kodbank/internal/chat"       // Chat proxy client
	"kodbank/internal/config"     // Custom package for configuration
	"kodbank/internal/db"         // Database connection
	"kodbank/internal/repository" // Stores
	"kodbank/internal/service"    // Services
	"kodbank/internal/utils"      // Token issuer
	"net/http"                    // HTTP server
	"os"                          // Signals
	"os/signal"                   // Signal handling
	"syscall"                     // SIGTERM
	"time"                        // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err) // Missing settings are a startup failure
	}

	// Setup logger
	logger := logrus.StandardLogger()
	if cfg.IsProd {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Connect to the database
	gormDB, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logrus.Fatalf("failed to get DB handle: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	chatClient, err := chat.NewClient(chat.Config{
		APIKey:     cfg.HFAPIKey,
		BaseURL:    cfg.HFBaseURL,
		Model:      cfg.HFModel,
		MaxRetries: cfg.ChatMaxRetries,
	})
	if err != nil {
		logrus.Fatalf("failed to create chat client: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	issuer := utils.NewTokenIssuer(cfg.JWTSecret)
	accounts := repository.NewAccountRepository(gormDB)
	sessions := repository.NewSessionTokenRepository(gormDB)

	r := api.NewRouter(&api.Deps{
		Auth:           service.NewAuthService(accounts, sessions, issuer, cfg.TokenTTL),
		Balances:       accounts,
		Chat:           chatClient,
		Accounts:       accounts,
		Sessions:       sessions,
		Issuer:         issuer,
		Redis:          redisClient,
		CacheTTL:       cfg.CacheTTL,
		Cookie:         api.CookieOptions{Secure: cfg.IsProd, MaxAge: cfg.TokenTTL},
		FrontendOrigin: cfg.FrontendOrigin,
		Logger:         logger,
		Ready: func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for interrupt and drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
	_ = redisClient.Close()
	_ = sqlDB.Close()
}
