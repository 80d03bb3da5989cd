package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Postgres struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		Database        string        `yaml:"database"`
		User            string        `yaml:"user"`
		Password        string        `yaml:"password"`
		SSLMode         string        `yaml:"ssl_mode"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	} `yaml:"postgres"`
	MarketData struct {
		Provider     string        `yaml:"provider"` // yahoo, finnhub, twelvedata
		APIKey       string        `yaml:"api_key"`
		Timeout      time.Duration `yaml:"timeout"`
		RatePerMin   int           `yaml:"rate_per_minute"`
		Symbols      []string      `yaml:"symbols"`
		RefreshDelay time.Duration `yaml:"refresh_delay"` // between symbols in batch refresh
	} `yaml:"market_data"`
	Staleness struct {
		LookbackDays int `yaml:"lookback_days"`
		// pointer so an explicit 0 (midnight cutoff) survives defaulting
		MarketCloseHourUTC *int `yaml:"market_close_hour_utc"`
	} `yaml:"staleness"`
	Forecast struct {
		HorizonDays       int           `yaml:"horizon_days"`
		Alpha             float64       `yaml:"alpha"`
		MinTrainingRows   int           `yaml:"min_training_rows"`
		HistoryDays       int           `yaml:"history_days"`
		Mode              string        `yaml:"mode"` // inprocess or subprocess
		ForecasterBin     string        `yaml:"forecaster_bin"`
		SubprocessTimeout time.Duration `yaml:"subprocess_timeout"` // 0 = no timeout
	} `yaml:"forecast"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend"` // memory or redis
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxAttempts  int           `yaml:"max_attempts"`
	} `yaml:"kafka"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets and lists with
// environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("MARKET_DATA_PROVIDER"); v != "" {
		c.MarketData.Provider = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.MarketData.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 10
	}
	if c.Postgres.MaxIdleConns == 0 {
		c.Postgres.MaxIdleConns = 5
	}
	if c.Postgres.ConnMaxLifetime == 0 {
		c.Postgres.ConnMaxLifetime = 5 * time.Minute
	}
	if c.Staleness.LookbackDays == 0 {
		c.Staleness.LookbackDays = 90
	}
	if c.Staleness.MarketCloseHourUTC == nil {
		cutoff := 22
		c.Staleness.MarketCloseHourUTC = &cutoff
	}
	if c.Forecast.HorizonDays == 0 {
		c.Forecast.HorizonDays = 5
	}
	if c.Forecast.Alpha == 0 {
		c.Forecast.Alpha = 1.0
	}
	if c.Forecast.MinTrainingRows == 0 {
		c.Forecast.MinTrainingRows = 20
	}
	if c.Forecast.HistoryDays == 0 {
		c.Forecast.HistoryDays = 60
	}
	if c.Forecast.Mode == "" {
		c.Forecast.Mode = "inprocess"
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 30 * time.Second
	}
	if c.MarketData.RatePerMin == 0 {
		c.MarketData.RatePerMin = 30
	}
	if c.MarketData.RefreshDelay == 0 {
		c.MarketData.RefreshDelay = time.Second
	}
	if c.Kafka.RequiredAcks == 0 {
		c.Kafka.RequiredAcks = -1
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = "gzip"
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 10 * time.Second
	}
	if c.Kafka.MaxAttempts == 0 {
		c.Kafka.MaxAttempts = 3
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.MarketData.Provider {
	case "yahoo", "finnhub", "twelvedata":
	default:
		return fmt.Errorf("market_data.provider must be 'yahoo', 'finnhub' or 'twelvedata', got '%s'", c.MarketData.Provider)
	}
	if c.MarketData.Provider != "yahoo" && c.MarketData.APIKey == "" {
		return fmt.Errorf("market_data.api_key is required for provider %s", c.MarketData.Provider)
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if c.Postgres.Database == "" {
		return fmt.Errorf("postgres.database is required")
	}
	if c.Forecast.Mode != "inprocess" && c.Forecast.Mode != "subprocess" {
		return fmt.Errorf("forecast.mode must be 'inprocess' or 'subprocess', got '%s'", c.Forecast.Mode)
	}
	if c.Forecast.Mode == "subprocess" && c.Forecast.ForecasterBin == "" {
		return fmt.Errorf("forecast.forecaster_bin is required in subprocess mode")
	}
	if c.Forecast.HorizonDays < 1 {
		return fmt.Errorf("forecast.horizon_days must be positive")
	}
	if h := *c.Staleness.MarketCloseHourUTC; h < 0 || h > 23 {
		return fmt.Errorf("staleness.market_close_hour_utc must be in 0..23, got %d", h)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
