// Command forecaster is the isolated numeric process. It receives a symbol
// and horizon on the command line, reads price history straight from the
// store, and writes exactly one JSON forecast document to stdout.
//
// Logical failures (not enough history to train) still exit 0 and report
// through the document's error field; infrastructure failures write to
// stderr and exit non-zero.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"StockCast/internal/domain/models"
	"StockCast/internal/repository"
	"StockCast/internal/services/forecast"
	"StockCast/pkg/config"
	"StockCast/pkg/postgres"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		return fmt.Errorf("usage: forecaster [-config path] <symbol> [horizon]")
	}
	symbol := args[0]

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	horizon := cfg.Forecast.HorizonDays
	if len(args) > 1 {
		horizon, err = strconv.Atoi(args[1])
		if err != nil || horizon < 1 {
			return fmt.Errorf("invalid horizon %q", args[1])
		}
	}

	client, err := postgres.NewClient(
		postgres.WithHost(cfg.Postgres.Host),
		postgres.WithPort(cfg.Postgres.Port),
		postgres.WithDatabase(cfg.Postgres.Database),
		postgres.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		postgres.WithSSLMode(cfg.Postgres.SSLMode),
	)
	if err != nil {
		return fmt.Errorf("postgres connect failed: %w", err)
	}
	defer client.Close()

	ctx := context.Background()
	prices := repository.NewPostgresPriceStore(client.DB())
	bars, err := prices.History(ctx, symbol, cfg.Forecast.HistoryDays)
	if err != nil {
		return fmt.Errorf("load history failed: %w", err)
	}

	forecaster := forecast.NewRidgeForecaster(
		forecast.WithAlpha(cfg.Forecast.Alpha),
		forecast.WithMinTrainingRows(cfg.Forecast.MinTrainingRows),
	)

	result, err := forecaster.Forecast(ctx, symbol, bars, horizon)
	if errors.Is(err, models.ErrInsufficientHistory) {
		// logical failure: the parent matches on this marker, exit stays 0
		result = &models.ForecastResult{
			Symbol:             symbol,
			ModelVersion:       forecast.ModelVersion,
			HistoricalDaysUsed: len(bars),
			Error:              fmt.Sprintf("insufficient_history: %v", err),
		}
	} else if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result failed: %w", err)
	}
	return nil
}
