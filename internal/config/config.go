package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	APIKey        string `env:"KUCOIN_API_KEY"`
	APISecret     string `env:"KUCOIN_API_SECRET"`
	APIPassphrase string `env:"KUCOIN_API_PASSPHRASE"`
	APIURL        string `env:"KUCOIN_API_URL" envDefault:"https://api-futures.kucoin.com"`

	MaxPositionSize    float64 `env:"MAX_POSITION_SIZE" envDefault:"1000"` // USDT
	MinPositionSize    float64 `env:"MIN_POSITION_SIZE" envDefault:"10"`   // USDT
	DefaultLeverage    int     `env:"DEFAULT_LEVERAGE" envDefault:"10"`
	MaxLeverage        int     `env:"MAX_LEVERAGE" envDefault:"100"`
	DefaultRiskPercent float64 `env:"DEFAULT_RISK_PERCENT" envDefault:"1.0"`

	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	JournalFile string `env:"JOURNAL_FILE" envDefault:"trade_journal.json"`
	JournalDB   string `env:"JOURNAL_DB_URL"`

	WatchlistFile string `env:"WATCHLIST_FILE"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string `env:"LOG_FILE"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.APIKey = os.Getenv("KUCOIN_API_KEY")
	cfg.APISecret = os.Getenv("KUCOIN_API_SECRET")
	cfg.APIPassphrase = os.Getenv("KUCOIN_API_PASSPHRASE")
	cfg.APIURL = getEnvWithDefault("KUCOIN_API_URL", "https://api-futures.kucoin.com")

	cfg.MaxPositionSize = getEnvFloatWithDefault("MAX_POSITION_SIZE", 1000)
	cfg.MinPositionSize = getEnvFloatWithDefault("MIN_POSITION_SIZE", 10)
	cfg.DefaultLeverage = getEnvIntWithDefault("DEFAULT_LEVERAGE", 10)
	cfg.MaxLeverage = getEnvIntWithDefault("MAX_LEVERAGE", 100)
	cfg.DefaultRiskPercent = getEnvFloatWithDefault("DEFAULT_RISK_PERCENT", 1.0)

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)

	cfg.JournalFile = getEnvWithDefault("JOURNAL_FILE", "trade_journal.json")
	cfg.JournalDB = os.Getenv("JOURNAL_DB_URL")

	cfg.WatchlistFile = os.Getenv("WATCHLIST_FILE")

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)

	return &cfg, nil
}

// Validate checks the numeric settings and reports every problem at once,
// so a broken .env is fixed in one pass instead of one restart per field.
func (c *Config) Validate() error {
	var problems []string

	if c.MaxPositionSize <= 0 {
		problems = append(problems, "MAX_POSITION_SIZE must be positive")
	}
	if c.MinPositionSize <= 0 {
		problems = append(problems, "MIN_POSITION_SIZE must be positive")
	}
	if c.MinPositionSize > c.MaxPositionSize {
		problems = append(problems, "MIN_POSITION_SIZE exceeds MAX_POSITION_SIZE")
	}
	if c.DefaultLeverage < 1 {
		problems = append(problems, "DEFAULT_LEVERAGE must be at least 1")
	}
	if c.MaxLeverage < 1 {
		problems = append(problems, "MAX_LEVERAGE must be at least 1")
	}
	if c.DefaultLeverage > c.MaxLeverage {
		problems = append(problems, "DEFAULT_LEVERAGE exceeds MAX_LEVERAGE")
	}
	if c.DefaultRiskPercent <= 0 || c.DefaultRiskPercent > 100 {
		problems = append(problems, "DEFAULT_RISK_PERCENT must be in (0, 100]")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateCredentials checks the API credentials needed for private
// endpoints (positions, orders, balance). Copy-pasted sample values
// count as missing.
func (c *Config) ValidateCredentials() error {
	var problems []string

	if isPlaceholder(c.APIKey) {
		problems = append(problems, "KUCOIN_API_KEY is not set")
	}
	if isPlaceholder(c.APISecret) {
		problems = append(problems, "KUCOIN_API_SECRET is not set")
	}
	if isPlaceholder(c.APIPassphrase) {
		problems = append(problems, "KUCOIN_API_PASSPHRASE is not set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("missing API credentials: %s", strings.Join(problems, "; "))
	}
	return nil
}

// HasTelegram reports whether Telegram notifications are configured.
func (c *Config) HasTelegram() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func isPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || v == "changeme" || strings.HasPrefix(v, "your_")
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
