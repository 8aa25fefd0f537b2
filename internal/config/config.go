package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Voting   VotingConfig
	Football FootballConfig
	Solana   SolanaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret   string
	AdminAPIKey string
}

// VotingConfig holds fixture-voting settings
type VotingConfig struct {
	VoteFee    int64
	VoteReward int64
}

// FootballConfig holds the fixture provider settings
type FootballConfig struct {
	APIToken        string
	BaseURL         string
	FixtureCacheTTL time.Duration
	BrowseCacheTTL  time.Duration
}

// SolanaConfig holds the token-contract mirror settings
type SolanaConfig struct {
	Network                string
	TokenMint              string
	ServerWalletPrivateKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "votearena"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Voting: VotingConfig{
			VoteFee:    getEnvInt64("TOKEN_DEDUCTION_FOR_VOTE", 5),
			VoteReward: getEnvInt64("TOKEN_REWARD", 10),
		},
		Football: FootballConfig{
			APIToken:        getEnv("FOOTBALL_TOKEN", ""),
			BaseURL:         getEnv("FOOTBALL_API_URL", ""),
			FixtureCacheTTL: getEnvDuration("FIXTURE_CACHE_TTL", 10*time.Minute),
			BrowseCacheTTL:  getEnvDuration("FIXTURE_BROWSE_CACHE_TTL", 2*time.Minute),
		},
		Solana: SolanaConfig{
			Network:                getEnv("SOLANA_NETWORK", "devnet"),
			TokenMint:              getEnv("SOLANA_TOKEN_MINT", ""),
			ServerWalletPrivateKey: getEnv("SOLANA_SERVER_WALLET_PRIVATE_KEY", ""),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.Voting.VoteFee <= 0 || config.Voting.VoteReward <= 0 {
		return nil, fmt.Errorf("vote fee and reward must be positive")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
