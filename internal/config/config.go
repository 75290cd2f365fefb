// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`

	// Chain verification settings.
	SolanaRPCURL           string `mapstructure:"SOLANA_RPC_URL"`
	SolanaNetwork          string `mapstructure:"SOLANA_NETWORK"`
	ChainVerifyTimeoutSecs int    `mapstructure:"CHAIN_VERIFY_TIMEOUT_SECONDS"`
	ChainVerifyMaxAttempts int    `mapstructure:"CHAIN_VERIFY_MAX_ATTEMPTS"`

	// Reputation weights are configuration, not code, so they can be tuned
	// without redeploying logic.
	ReputationTipPoints  int64 `mapstructure:"REPUTATION_TIP_POINTS"`
	ReputationPostPoints int64 `mapstructure:"REPUTATION_POST_POINTS"`

	FeedPageSize int `mapstructure:"FEED_PAGE_SIZE"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config.
	// The config file may not exist yet; env vars and defaults still apply.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "soltip")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	viper.SetDefault("SOLANA_NETWORK", "devnet")
	viper.SetDefault("CHAIN_VERIFY_TIMEOUT_SECONDS", 5)
	viper.SetDefault("CHAIN_VERIFY_MAX_ATTEMPTS", 3)
	viper.SetDefault("REPUTATION_TIP_POINTS", 10)
	viper.SetDefault("REPUTATION_POST_POINTS", 2)
	viper.SetDefault("FEED_PAGE_SIZE", 20)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SolanaRPCURL == "" {
		return errors.New("SOLANA_RPC_URL is required")
	}
	if c.ChainVerifyMaxAttempts < 1 {
		return errors.New("CHAIN_VERIFY_MAX_ATTEMPTS must be at least 1")
	}
	if c.ChainVerifyTimeoutSecs < 1 {
		return errors.New("CHAIN_VERIFY_TIMEOUT_SECONDS must be at least 1")
	}
	if c.ReputationTipPoints < 0 || c.ReputationPostPoints < 0 {
		return errors.New("reputation weights must not be negative")
	}
	if c.FeedPageSize < 1 {
		return errors.New("FEED_PAGE_SIZE must be at least 1")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
