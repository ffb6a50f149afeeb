package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported STORE_DRIVER values.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverMongoDB  = "mongodb"
	DriverSupabase = "supabase"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Reporting ReportingConfig
	Sheets    SheetsConfig
	WhatsApp  WhatsAppConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects and configures the ledger backend.
type StoreConfig struct {
	Driver   string
	SQLite   SQLiteConfig
	MySQL    MySQLConfig
	MongoDB  MongoDBConfig
	Supabase SupabaseConfig
}

// SQLiteConfig holds settings for the embedded SQLite ledger.
type SQLiteConfig struct {
	Path string
}

// MySQLConfig holds settings for the MySQL ledger.
type MySQLConfig struct {
	DSN string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SupabaseConfig holds the PostgREST endpoint of a Supabase project.
type SupabaseConfig struct {
	URL    string
	APIKey string
	Table  string
}

// ReportingConfig holds day boundary and scheduler settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	WindowDays   int
}

// SheetsConfig contains configuration required to export summaries to Google Sheets.
// Export is disabled when SpreadsheetID is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SummaryRange    string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API.
// Digests are disabled when AccessToken is empty; the inbound command
// webhook additionally needs VerifyToken.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	BaseURL        string
	APIVersion     string
	ManagerID      string
	VerifyToken    string
	AppSecret      string
	AllowedSenders []string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	windowDays, err := getenvInt("REPORT_WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "3000"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverSQLite)),
			SQLite: SQLiteConfig{
				Path: getenvWithDefault("SQLITE_PATH", "data/inventory.db"),
			},
			MySQL: MySQLConfig{
				DSN: os.Getenv("MYSQL_DSN"),
			},
			MongoDB: MongoDBConfig{
				URI:    os.Getenv("MONGODB_URI"),
				DBName: getenvWithDefault("MONGODB_DB_NAME", "stocktake"),
			},
			Supabase: SupabaseConfig{
				URL:    os.Getenv("SUPABASE_URL"),
				APIKey: os.Getenv("SUPABASE_KEY"),
				Table:  getenvWithDefault("SUPABASE_TABLE", "history"),
			},
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 22 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
			WindowDays:   windowDays,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			SummaryRange:    getenvWithDefault("GOOGLE_SHEET_SUMMARY_RANGE", "Summary!A:I"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:      os.Getenv("WHATSAPP_MANAGER_ID"),
			VerifyToken:    os.Getenv("WHATSAPP_VERIFY_TOKEN"),
			AppSecret:      os.Getenv("WHATSAPP_APP_SECRET"),
			AllowedSenders: splitList(os.Getenv("WHATSAPP_ALLOWED_SENDERS")),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
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

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("SQLITE_PATH must be provided")
		}
	case DriverMySQL:
		if c.Store.MySQL.DSN == "" {
			return errors.New("MYSQL_DSN must be provided")
		}
	case DriverMongoDB:
		if c.Store.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.Store.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case DriverSupabase:
		switch {
		case c.Store.Supabase.URL == "":
			return errors.New("SUPABASE_URL must be provided")
		case c.Store.Supabase.APIKey == "":
			return errors.New("SUPABASE_KEY must be provided")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if c.Reporting.WindowDays <= 0 {
		return errors.New("REPORT_WINDOW_DAYS must be positive")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_DATABASE_ID is set")
	}

	if c.WhatsApp.AccessToken != "" {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.ManagerID == "":
			return errors.New("WHATSAPP_MANAGER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

// Location resolves the configured timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SheetsEnabled reports whether summary export to Google Sheets is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.SpreadsheetID != ""
}

// WhatsAppEnabled reports whether WhatsApp digests are configured.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsApp.AccessToken != ""
}

// WebhookEnabled reports whether the inbound WhatsApp command channel is configured.
func (c *Config) WebhookEnabled() bool {
	return c.WhatsAppEnabled() && c.WhatsApp.VerifyToken != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
