package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Ebay     EbayConfig
	Ledger   LedgerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port         string
	Role         string // admin, driver, sponsor or all
	CORSOrigins  []string
	AuthRPS      float64
	AuthBurst    int
	ShutdownWait time.Duration
	StatsEvery   time.Duration // 0 disables the stats gauges job
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieName   string
	CookieSecure bool
	LogLevel     string
}

// EbayConfig holds eBay Browse API settings. An empty ClientID selects the mock catalogue.
type EbayConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Scope        string
}

// LedgerConfig holds points ledger policy
type LedgerConfig struct {
	AllowNegative bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "gdip_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "4000"),
			Role:         strings.ToLower(getEnv("SERVICE_ROLE", "all")),
			CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
			AuthRPS:      getEnvFloat("AUTH_RATE_LIMIT_RPS", 5),
			AuthBurst:    getEnvInt("AUTH_RATE_LIMIT_BURST", 10),
			ShutdownWait: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
			StatsEvery:   getEnvDuration("STATS_INTERVAL", time.Minute),
		},
		App: AppConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTL:     getEnvDuration("TOKEN_TTL", 2*time.Hour),
			CookieName:   getEnv("COOKIE_NAME", "gdip_token"),
			CookieSecure: getEnvBool("COOKIE_SECURE", false),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
		},
		Ebay: EbayConfig{
			ClientID:     getEnv("EBAY_CLIENT_ID", ""),
			ClientSecret: getEnv("EBAY_CLIENT_SECRET", ""),
			BaseURL:      getEnv("EBAY_BASE_URL", "https://api.sandbox.ebay.com"),
			Scope:        getEnv("EBAY_SCOPE", "https://api.ebay.com/oauth/api_scope"),
		},
		Ledger: LedgerConfig{
			AllowNegative: getEnvBool("LEDGER_ALLOW_NEGATIVE", false),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	if c.App.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.Server.Role {
	case "all", "admin", "driver", "sponsor":
	default:
		return fmt.Errorf("SERVICE_ROLE must be one of all, admin, driver, sponsor (got %q)", c.Server.Role)
	}

	if c.Ebay.ClientID != "" && c.Ebay.ClientSecret == "" {
		return fmt.Errorf("EBAY_CLIENT_SECRET is required when EBAY_CLIENT_ID is set")
	}

	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
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

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
