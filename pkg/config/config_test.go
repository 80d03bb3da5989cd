package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
postgres:
  host: localhost
  database: stockcast
market_data:
  provider: yahoo
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Staleness.LookbackDays != 90 {
		t.Fatalf("lookback default: %d", cfg.Staleness.LookbackDays)
	}
	if *cfg.Staleness.MarketCloseHourUTC != 22 {
		t.Fatalf("cutoff default: %d", *cfg.Staleness.MarketCloseHourUTC)
	}
	if cfg.Forecast.HorizonDays != 5 || cfg.Forecast.Alpha != 1.0 {
		t.Fatalf("forecast defaults: %+v", cfg.Forecast)
	}
	if cfg.Forecast.MinTrainingRows != 20 || cfg.Forecast.HistoryDays != 60 {
		t.Fatalf("forecast defaults: %+v", cfg.Forecast)
	}
	if cfg.Forecast.Mode != "inprocess" {
		t.Fatalf("mode default: %q", cfg.Forecast.Mode)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("cache ttl default: %v", cfg.Cache.TTL)
	}
}

func TestLoadKeepsExplicitMidnightCutoff(t *testing.T) {
	body := minimalConfig + `
staleness:
  market_close_hour_utc: 0
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.Staleness.MarketCloseHourUTC != 0 {
		t.Fatalf("explicit midnight cutoff overwritten: %d", *cfg.Staleness.MarketCloseHourUTC)
	}
}

func TestLoadRejectsOutOfRangeCutoff(t *testing.T) {
	body := minimalConfig + `
staleness:
  market_close_hour_utc: 24
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected cutoff validation error")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	body := `
environment: test
postgres:
  host: localhost
  database: stockcast
market_data:
  provider: bloomberg
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected provider validation error")
	}
}

func TestLoadRequiresAPIKeyForKeyedProviders(t *testing.T) {
	body := `
environment: test
postgres:
  host: localhost
  database: stockcast
market_data:
  provider: finnhub
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected api key validation error")
	}
}

func TestLoadRequiresForecasterBinInSubprocessMode(t *testing.T) {
	body := minimalConfig + `
forecast:
  mode: subprocess
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected forecaster_bin validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_DATA_API_KEY", "secret-token")
	t.Setenv("SYMBOLS", "AAPL,MSFT")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MarketData.APIKey != "secret-token" {
		t.Fatalf("api key override: %q", cfg.MarketData.APIKey)
	}
	if len(cfg.MarketData.Symbols) != 2 || cfg.MarketData.Symbols[0] != "AAPL" {
		t.Fatalf("symbols override: %v", cfg.MarketData.Symbols)
	}
}
