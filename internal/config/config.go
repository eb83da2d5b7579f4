package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const defaultAnthropicURL = "https://api.anthropic.com/v1/messages"

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Image     ImageConfig
	Game      GameConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// AIConfig holds settings for the metadata generator.
type AIConfig struct {
	AnthropicKey string
	AnthropicURL string
	Model        string
}

// ImageConfig holds settings for the image generator. An empty BaseURL
// disables remote generation and every image falls back to a placeholder.
type ImageConfig struct {
	BaseURL string
	APIKey  string
}

// GameConfig holds the pacing of the timers.
type GameConfig struct {
	YieldSchedule    string
	ProgressInterval time.Duration
	CompleteHold     time.Duration
	NoticeTTL        time.Duration
}

// ReportingConfig holds scheduler-related settings for the portfolio summary.
type ReportingConfig struct {
	CronSchedule string
}

// MongoDBConfig holds settings for the optional MongoDB journal.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the MongoDB journal is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// SheetsConfig contains configuration for the optional Google Sheets journal.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets journal is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
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
		// Missing .env files are fine when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	progressInterval, err := getDurationWithDefault("HATCH_PROGRESS_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	completeHold, err := getDurationWithDefault("HATCH_COMPLETE_HOLD", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	noticeTTL, err := getDurationWithDefault("NOTICE_TTL", 3*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicURL: getenvWithDefault("ANTHROPIC_API_URL", defaultAnthropicURL),
			Model:        getenvWithDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		},
		Image: ImageConfig{
			BaseURL: os.Getenv("IMAGE_API_URL"),
			APIKey:  os.Getenv("IMAGE_API_KEY"),
		},
		Game: GameConfig{
			YieldSchedule:    getenvWithDefault("YIELD_SCHEDULE", "@every 5s"),
			ProgressInterval: progressInterval,
			CompleteHold:     completeHold,
			NoticeTTL:        noticeTTL,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "@hourly"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "cryptozoo"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_JOURNAL_ID"),
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

	switch {
	case c.AI.AnthropicKey == "":
		return errors.New("ANTHROPIC_API_KEY must be provided")
	case c.AI.AnthropicURL == "":
		return errors.New("ANTHROPIC_API_URL must not be empty")
	case c.AI.Model == "":
		return errors.New("ANTHROPIC_MODEL must not be empty")
	}

	if _, err := cron.ParseStandard(c.Game.YieldSchedule); err != nil {
		return fmt.Errorf("YIELD_SCHEDULE is invalid: %w", err)
	}

	if _, err := cron.ParseStandard(c.Reporting.CronSchedule); err != nil {
		return fmt.Errorf("REPORT_CRON_SCHEDULE is invalid: %w", err)
	}

	if c.Game.ProgressInterval < 0 || c.Game.CompleteHold < 0 || c.Game.NoticeTTL <= 0 {
		return errors.New("game timings must not be negative and NOTICE_TTL must be positive")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty when MONGODB_URI is set")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_JOURNAL_ID must be provided together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a duration: %w", key, err)
	}
	return d, nil
}
