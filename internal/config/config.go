package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Market  MarketConfig
	Summary SummaryConfig
	AI      AIConfig
	MongoDB MongoDBConfig
	Sheets  SheetsConfig
	Seed    SeedConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MarketConfig holds settlement parameters.
type MarketConfig struct {
	FeeRate decimal.Decimal
}

// SummaryConfig holds daily summary scheduler settings.
type SummaryConfig struct {
	CronSchedule string
	Timezone     string
}

// AIConfig holds settings for the assistant provider.
type AIConfig struct {
	GeminiKey string
}

// MongoDBConfig holds settings for the optional persistent ledger. An
// empty URI selects the in-memory ledger.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig holds settings for the optional spreadsheet mirror.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SeedConfig controls startup data loading.
type SeedConfig struct {
	DemoData bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	feeRate, err := decimal.NewFromString(getenvWithDefault("MARKET_FEE_RATE", "0.05"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_FEE_RATE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Market: MarketConfig{
			FeeRate: feeRate,
		},
		Summary: SummaryConfig{
			CronSchedule: getenvWithDefault("SUMMARY_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
		AI: AIConfig{
			GeminiKey: os.Getenv("GEMINI_API_KEY"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "uzhavar360"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_MIRROR_ID"),
		},
		Seed: SeedConfig{
			DemoData: strings.EqualFold(getenvWithDefault("SEED_DEMO_DATA", "false"), "true"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if !c.Market.FeeRate.IsPositive() || c.Market.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("MARKET_FEE_RATE must be between 0 and 1")
	}

	if c.Summary.CronSchedule == "" {
		return errors.New("SUMMARY_CRON_SCHEDULE must be provided")
	}

	if c.Summary.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	// Sheets mirroring needs both values or neither.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_MIRROR_ID must be set together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
