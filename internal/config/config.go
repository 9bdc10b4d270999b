package config

import (
	"errors" // Collecting validation errors
	"fmt"    // Error formatting
	"time"   // Durations

	"github.com/caarlos0/env/v11" // Environment parsing
	"github.com/joho/godotenv"    // For loading .env files
)

// Config holds the application configuration. It is read once at startup and
// handed to every component that needs it.
type Config struct {
	AppPort        string        `env:"APP_PORT" envDefault:"5000"`                                // Application port
	DBDSN          string        `env:"DB_DSN"`                                                    // Full MySQL DSN, overrides the parts below
	DBUser         string        `env:"DB_USER"`                                                   // Database user
	DBPassword     string        `env:"DB_PASSWORD"`                                               // Database password
	DBHost         string        `env:"DB_HOST" envDefault:"127.0.0.1"`                            // Database host
	DBPort         string        `env:"DB_PORT" envDefault:"3306"`                                 // Database port
	DBName         string        `env:"DB_NAME"`                                                   // Database name
	JWTSecret      string        `env:"JWT_SECRET"`                                                // JWT secret key
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"1h"`                                 // Session token lifetime
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`                    // Redis server address
	RedisPass      string        `env:"REDIS_PASS"`                                                // Redis password
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`                                   // Redis database number
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"60s"`                                // Redis cache lifetime
	HFAPIKey       string        `env:"HF_API_KEY"`                                                // Inference API key
	HFBaseURL      string        `env:"HF_BASE_URL" envDefault:"https://router.huggingface.co/v1"` // Inference API base URL
	HFModel        string        `env:"HF_MODEL" envDefault:"meta-llama/Llama-3.2-3B-Instruct"`    // Chat model
	ChatMaxRetries int           `env:"CHAT_MAX_RETRIES" envDefault:"3"`                           // Attempts while the model is loading
	FrontendOrigin string        `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`        // Allowed CORS origin
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`                               // logrus level
	IsProd         bool          `env:"IS_PROD" envDefault:"false"`                                // Is production environment
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment. Missing required settings are returned as one error.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing required setting
func (c *Config) Validate() error {
	var errs []error
	if c.DSN() == "" {
		errs = append(errs, errors.New("DB_DSN or DB_USER/DB_NAME must be set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.HFAPIKey == "" {
		errs = append(errs, errors.New("HF_API_KEY must be set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// DSN returns the MySQL Data Source Name
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBUser == "" || c.DBName == "" {
		return ""
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}
