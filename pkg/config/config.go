package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// CORS
	AllowedOrigins []string

	// Rate limiting, e.g. "100-M" for 100 requests per minute per IP.
	RateLimit string

	// Graceful shutdown grace period.
	ShutdownTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and a .env
// file if present. Environment variables win over .env values.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.AllowedOrigins = viper.GetStringSlice("ALLOWED_ORIGINS")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	shutdownTimeout, err := time.ParseDuration(viper.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		log.Printf("Warning: Invalid SHUTDOWN_TIMEOUT (%q). Defaulting to 10s.\n", viper.GetString("SHUTDOWN_TIMEOUT"))
		shutdownTimeout = 10 * time.Second
	}
	cfg.ShutdownTimeout = shutdownTimeout

	return cfg, nil
}
