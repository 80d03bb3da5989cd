package di

import (
	"fmt"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/marketdata"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/services/forecast"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	"StockCast/pkg/config"
	pkghttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/postgres"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvidePostgresClient creates the PostgreSQL client and ensures the schema.
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, error) {
	client, err := postgres.NewClient(
		postgres.WithHost(cfg.Postgres.Host),
		postgres.WithPort(cfg.Postgres.Port),
		postgres.WithDatabase(cfg.Postgres.Database),
		postgres.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		postgres.WithSSLMode(cfg.Postgres.SSLMode),
		postgres.WithMaxConnections(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}

	if err := client.Migrate(&models.PriceBar{}, &models.PredictionRecord{}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return client, nil
}

// ProvidePriceStore creates the bar persistence repository.
func ProvidePriceStore(client *postgres.Client) domrepo.PriceStore {
	return internalrepo.NewPostgresPriceStore(client.DB())
}

// ProvidePredictionStore creates the prediction persistence repository.
func ProvidePredictionStore(client *postgres.Client) domrepo.PredictionStore {
	return internalrepo.NewPostgresPredictionStore(client.DB())
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *pkghttp.Client {
	return pkghttp.NewClient(pkghttp.WithTimeout(cfg.MarketData.Timeout))
}

// ProvideRateLimiter creates the keyed token bucket shared by provider
// adapters.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideMarketDataSource creates the configured provider adapter.
func ProvideMarketDataSource(cfg *config.Config, client *pkghttp.Client, limiter *ratelimit.Limiter) (domrepo.MarketDataSource, error) {
	return marketdata.New(cfg, client, limiter)
}

// ProvideForecaster creates the forecast engine. Subprocess mode shells out
// to the standalone numeric binary; inprocess runs the model in this
// process.
func ProvideForecaster(cfg *config.Config) domsvc.Forecaster {
	if cfg.Forecast.Mode == "subprocess" {
		return forecast.NewSubprocessForecaster(
			cfg.Forecast.ForecasterBin,
			forecast.WithTimeout(cfg.Forecast.SubprocessTimeout),
		)
	}
	return forecast.NewRidgeForecaster(
		forecast.WithAlpha(cfg.Forecast.Alpha),
		forecast.WithMinTrainingRows(cfg.Forecast.MinTrainingRows),
	)
}

// ProvideForecastEvents creates the Kafka publisher, or a noop when eventing
// is disabled.
func ProvideForecastEvents(cfg *config.Config) (domrepo.ForecastEvents, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopForecastEvents{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaForecastEvents(producer, cfg.Kafka.Topic), nil
}

// ProvideCache creates the API response cache, or nil when disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix("stockcast"),
		)
	}
	return cache.NewMemoryCache(), nil
}

// ProvideStalenessPolicy creates the freshness policy.
func ProvideStalenessPolicy(cfg *config.Config) *usecase.StalenessPolicy {
	return usecase.NewStalenessPolicy(cfg.Staleness.LookbackDays, *cfg.Staleness.MarketCloseHourUTC)
}

// ProvideOrchestrator wires the refresh and forecast pipeline.
func ProvideOrchestrator(
	prices domrepo.PriceStore,
	predictions domrepo.PredictionStore,
	source domrepo.MarketDataSource,
	forecaster domsvc.Forecaster,
	events domrepo.ForecastEvents,
	m domrepo.Metrics,
	policy *usecase.StalenessPolicy,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastOrchestrator {
	return usecase.NewForecastOrchestrator(
		prices, predictions, source, forecaster, events, m, policy, logger,
		usecase.OrchestratorConfig{
			HistoryDays:  cfg.Forecast.HistoryDays,
			HorizonDays:  cfg.Forecast.HorizonDays,
			ForecastMode: cfg.Forecast.Mode,
			RefreshDelay: cfg.MarketData.RefreshDelay,
		},
	)
}

// ProvideStocksHandler creates the HTTP API handler.
func ProvideStocksHandler(
	logger *applogger.Logger,
	orchestrator *usecase.ForecastOrchestrator,
	prices domrepo.PriceStore,
	predictions domrepo.PredictionStore,
	cacheSvc cache.Service,
	cfg *config.Config,
) pkghttp.Handler {
	return api.NewStocksHandler(
		logger, orchestrator, prices, predictions,
		cacheSvc, cfg.Cache.TTL, cfg.MarketData.Symbols,
	)
}

// ProvideApp assembles the application with its teardown order.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler pkghttp.Handler,
	pgClient *postgres.Client,
	cacheSvc cache.Service,
	events domrepo.ForecastEvents,
) *server.App {
	app := server.New(cfg, logger, handler, pgClient, cacheSvc)
	app.AddCloser(events)
	return app
}
