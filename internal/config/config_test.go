package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempFile(t, `
data_source:
  name: polygon
  tickers: [QQQ, IEF]
  start_date: "2020-01-01"
  end_date: "2020-06-30"
  polygon_api_key: abc
cache:
  redis_addr: localhost:6379
  ttl: 30m
database:
  sqlite_path: data/history.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourcePolygon, cfg.DataSource.Name)
	assert.Equal(t, []string{"QQQ", "IEF"}, cfg.DataSource.Tickers)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "data/history.db", cfg.Database.SQLitePath)
	assert.Equal(t, DefaultRefreshCron, cfg.Schedule.RefreshCron)
	assert.NoError(t, cfg.Validate())

	start, end, err := cfg.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 6, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, SourceYahoo, cfg.DataSource.Name)
	assert.Equal(t, []string{"SPY", "TLT", "USO"}, cfg.DataSource.Tickers)
	assert.Equal(t, DefaultStartDate, cfg.DataSource.StartDate)
	assert.Equal(t, DefaultEndDate, cfg.DataSource.EndDate)
	assert.Equal(t, DefaultHeadRows, cfg.Output.HeadRows)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATA_SOURCE", "mock")
	t.Setenv("TICKERS", " spy, gld ,")
	t.Setenv("END_DATE", "2021-03-31")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load(writeTempFile(t, "data_source:\n  name: yahoo\n"))
	require.NoError(t, err)

	assert.Equal(t, SourceMock, cfg.DataSource.Name)
	assert.Equal(t, []string{"SPY", "GLD"}, cfg.DataSource.Tickers)
	assert.Equal(t, "2021-03-31", cfg.DataSource.EndDate)
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeTempFile(t, "data_source: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown source", func(c *Config) { c.DataSource.Name = "bloomberg" }, false},
		{"polygon without key", func(c *Config) { c.DataSource.Name = SourcePolygon }, false},
		{"rest without url", func(c *Config) { c.DataSource.Name = SourceREST }, false},
		{"rest with url", func(c *Config) { c.DataSource.Name = SourceREST; c.DataSource.BaseURL = "http://bars" }, true},
		{"duplicate ticker", func(c *Config) { c.DataSource.Tickers = []string{"SPY", "SPY"} }, false},
		{"empty ticker", func(c *Config) { c.DataSource.Tickers = []string{"SPY", ""} }, false},
		{"bad date", func(c *Config) { c.DataSource.StartDate = "2021/01/01" }, false},
		{"reversed range", func(c *Config) { c.DataSource.StartDate = "2023-01-01" }, false},
		{"single day", func(c *Config) { c.DataSource.StartDate = "2022-12-31" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSplitTickers(t *testing.T) {
	assert.Equal(t, []string{"SPY", "TLT"}, SplitTickers("spy,,TLT "))
	assert.Nil(t, SplitTickers(" , "))
}
