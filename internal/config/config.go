package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketInsights/internal/model"
)

// Supported data sources.
const (
	SourceYahoo   = "yahoo"
	SourcePolygon = "polygon"
	SourceREST    = "rest"
	SourceCSV     = "csv"
	SourceMock    = "mock"
)

// Defaults.
const (
	DefaultStartDate   = "2021-01-01"
	DefaultEndDate     = "2022-12-31"
	DefaultRefreshCron = "0 30 17 * * 1-5"
	DefaultCacheTTL    = 12 * time.Hour
	DefaultHeadRows    = 5
)

// DefaultTickers are stocks, bonds and oil.
var DefaultTickers = []string{"SPY", "TLT", "USO"}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Name          string   `yaml:"name"`
		Tickers       []string `yaml:"tickers"`
		StartDate     string   `yaml:"start_date"`
		EndDate       string   `yaml:"end_date"`
		PolygonAPIKey string   `yaml:"polygon_api_key"`
		BaseURL       string   `yaml:"base_url"`
		APIKey        string   `yaml:"api_key"`
		CSVDir        string   `yaml:"csv_dir"`
	} `yaml:"data_source"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Output struct {
		Dir      string `yaml:"dir"`
		HeadRows int    `yaml:"head_rows"`
	} `yaml:"output"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Name = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.DataSource.Tickers = SplitTickers(v)
	}
	if v := os.Getenv("START_DATE"); v != "" {
		c.DataSource.StartDate = v
	}
	if v := os.Getenv("END_DATE"); v != "" {
		c.DataSource.EndDate = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.DataSource.PolygonAPIKey = v
	}
	if v := os.Getenv("REST_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		c.DataSource.CSVDir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Database.PostgresDSN = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Name == "" {
		c.DataSource.Name = SourceYahoo
	}
	if len(c.DataSource.Tickers) == 0 {
		c.DataSource.Tickers = append([]string(nil), DefaultTickers...)
	}
	if c.DataSource.StartDate == "" {
		c.DataSource.StartDate = DefaultStartDate
	}
	if c.DataSource.EndDate == "" {
		c.DataSource.EndDate = DefaultEndDate
	}
	if c.DataSource.CSVDir == "" {
		c.DataSource.CSVDir = "data/prices"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Output.HeadRows == 0 {
		c.Output.HeadRows = DefaultHeadRows
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = DefaultRefreshCron
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that the configuration describes a runnable pipeline.
func (c *Config) Validate() error {
	switch c.DataSource.Name {
	case SourceYahoo, SourceMock:
	case SourcePolygon:
		if c.DataSource.PolygonAPIKey == "" {
			return fmt.Errorf("data_source.polygon_api_key is required for source %q", SourcePolygon)
		}
	case SourceREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for source %q", SourceREST)
		}
	case SourceCSV:
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for source %q", SourceCSV)
		}
	default:
		return fmt.Errorf("data_source.name %q is not supported", c.DataSource.Name)
	}

	if len(c.DataSource.Tickers) == 0 {
		return fmt.Errorf("data_source.tickers must not be empty")
	}
	seen := make(map[string]bool, len(c.DataSource.Tickers))
	for _, t := range c.DataSource.Tickers {
		if t == "" {
			return fmt.Errorf("data_source.tickers contains an empty symbol")
		}
		if seen[t] {
			return fmt.Errorf("data_source.tickers contains %q twice", t)
		}
		seen[t] = true
	}

	start, end, err := c.Range()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("data_source.end_date %s is before start_date %s", c.DataSource.EndDate, c.DataSource.StartDate)
	}
	if c.Output.HeadRows < 0 {
		return fmt.Errorf("output.head_rows must not be negative")
	}
	return nil
}

// Range returns the parsed inclusive date range.
func (c *Config) Range() (start, end time.Time, err error) {
	start, err = model.ParseDate(c.DataSource.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data_source.start_date: %w", err)
	}
	end, err = model.ParseDate(c.DataSource.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data_source.end_date: %w", err)
	}
	return start, end, nil
}

// SplitTickers parses a comma separated ticker list.
func SplitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
