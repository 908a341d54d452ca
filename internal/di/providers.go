package di

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/handler/api"
	mid "StockPulse/internal/middleware"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/llm"
	"StockPulse/internal/service/newsapi"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/yahoo"
	"StockPulse/internal/services/export"
	"StockPulse/internal/services/report"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the structured logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideRedisClient creates the shared Redis client used by admission
// control and the search cache. A fail-open limiter tolerates Redis being
// down, so startup skips the connectivity check in that mode.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	client, _, err := cache.NewRedisClient(
		cache.WithRedisURL(cfg.Redis.URL),
		cache.WithRedisPing(!cfg.RateLimit.FailOpen),
		cache.WithRedisPool(cfg.Redis.PoolSize, 2, 30*time.Second),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return client, nil
}

// ProvideLimiter creates the per-caller admission limiter.
func ProvideLimiter(rdb *redis.Client, cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(rdb, ratelimit.Config{
		Points:    cfg.RateLimit.Points,
		Window:    time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		Block:     time.Duration(cfg.RateLimit.BlockSeconds) * time.Second,
		KeyPrefix: cfg.Redis.Prefix + ":" + cfg.RateLimit.KeyPrefix,
		FailOpen:  cfg.RateLimit.FailOpen,
	})
}

// ProvideAdmission creates the admission middleware.
func ProvideAdmission(limiter *ratelimit.Limiter, m repository.Metrics, log *applogger.Logger) *mid.Admission {
	return mid.NewAdmission(limiter, m, log.With(applogger.String("component", "admission")))
}

// ProvideRunStore opens the run store for the configured driver and ensures
// its schema.
func ProvideRunStore(cfg *config.Config) (repository.RunStore, error) {
	var (
		store repository.RunStore
		err   error
	)
	switch cfg.Store.Driver {
	case "memory":
		store = internalrepo.NewMemoryRunStore()
	case "clickhouse":
		store, err = openClickHouseStore(cfg)
	default:
		store, err = openSQLStore(cfg)
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("run store schema: %w", err)
	}
	return store, nil
}

func openSQLStore(cfg *config.Config) (repository.RunStore, error) {
	dialect, err := internalrepo.DialectFor(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Name, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", dialect.Name, err)
	}
	db.SetMaxOpenConns(cfg.Store.MaxConns)
	if dialect.Name == internalrepo.SQLite.Name {
		// single writer
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", dialect.Name, err)
	}

	return internalrepo.NewSQLRunStore(db, dialect, internalrepo.DefaultRunsTable), nil
}

func openClickHouseStore(cfg *config.Config) (repository.RunStore, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.Store.MaxConns, cfg.Store.MaxConns/2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse database: %w", err)
	}
	return internalrepo.NewSQLRunStore(client.DB(), internalrepo.ClickHouse, cfg.ClickHouse.Database+"."+internalrepo.DefaultRunsTable), nil
}

// ProvideNewsSource selects the news provider.
func ProvideNewsSource(cfg *config.Config) repository.NewsSource {
	if cfg.News.Provider == "rss" {
		return newsapi.NewRSS(cfg.News.RSSURL, cfg.News.Timeout)
	}
	return newsapi.New(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.Timeout)
}

// ProvideYahooClient creates the market data and company search client.
func ProvideYahooClient(cfg *config.Config) *yahoo.Client {
	return yahoo.New(cfg.Market.BaseURL, cfg.Market.Timeout)
}

// ProvideIntervals converts configured intervals, falling back to defaults.
func ProvideIntervals(cfg *config.Config) ([]repository.IntervalSpec, error) {
	if len(cfg.Market.Intervals) == 0 {
		return repository.DefaultIntervals(), nil
	}
	specs := make([]repository.IntervalSpec, 0, len(cfg.Market.Intervals))
	for _, ic := range cfg.Market.Intervals {
		iv := repository.Interval(ic.Interval)
		if !repository.IsValidInterval(iv) {
			return nil, fmt.Errorf("unsupported candle interval %q", ic.Interval)
		}
		lookback := ic.Lookback
		if lookback <= 0 {
			lookback = repository.DefaultLookback(iv)
		}
		specs = append(specs, repository.IntervalSpec{Interval: iv, Lookback: lookback})
	}
	return specs, nil
}

// ProvideIngestion creates the news and candle gatherer.
func ProvideIngestion(
	news repository.NewsSource,
	candles repository.CandleSource,
	intervals []repository.IntervalSpec,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Ingestion {
	return usecase.NewIngestion(news, candles, intervals, cfg.News.Lookback, cfg.Market.Pacing, m, log.With(applogger.String("component", "ingestion")))
}

// ProvideReasoner creates the LLM client for the configured provider.
func ProvideReasoner(cfg *config.Config) (service.Reasoner, error) {
	r, err := llm.New(context.Background(), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return r, nil
}

func ProvideSynthesizer(r service.Reasoner, log *applogger.Logger) *report.Synthesizer {
	return report.New(r, log.With(applogger.String("component", "synthesizer")))
}

func ProvideExporter(cfg *config.Config) *export.XLSX {
	return export.New(cfg.Cache.ArtifactDir)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is off.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher returns nil when there is no producer.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRunService creates the run lifecycle manager.
func ProvideRunService(
	store repository.RunStore,
	ingestion *usecase.Ingestion,
	synth *report.Synthesizer,
	exporter *export.XLSX,
	events repository.EventPublisher,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.RunService {
	return usecase.NewRunService(store, ingestion, synth, exporter, events, m, log.With(applogger.String("component", "runs")), usecase.RunConfig{
		Staleness:       cfg.Cache.Staleness,
		PersistDegraded: cfg.Cache.PersistDegraded,
		CandleRows:      cfg.Cache.CandleRows,
		NewsLimit:       cfg.News.Limit,
		Provider:        "yahoo",
		Timeout:         cfg.Cache.RunTimeout,
	})
}

// ProvideSearchCache selects the company search cache backend.
func ProvideSearchCache(rdb *redis.Client, cfg *config.Config) cache.Service {
	if cfg.Search.Backend == "memory" {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(1000), cache.WithMemoryCleanup(5*time.Minute))
	}
	return cache.NewRedisCache(rdb, cfg.Redis.Prefix)
}

func ProvideCompanyService(searcher repository.CompanySearcher, c cache.Service, cfg *config.Config) *usecase.CompanyService {
	return usecase.NewCompanyService(searcher, c, cfg.Search.CacheTTL, cfg.Search.Limit)
}

func ProvideRunHandler(log *applogger.Logger, runs *usecase.RunService, adm *mid.Admission) *api.RunHandler {
	return api.NewRunHandler(log, runs, adm.Middleware())
}

func ProvideDownloadHandler(log *applogger.Logger, runs *usecase.RunService) *api.DownloadHandler {
	return api.NewDownloadHandler(log, runs)
}

func ProvideCompaniesHandler(log *applogger.Logger, companies *usecase.CompanyService) *api.CompaniesHandler {
	return api.NewCompaniesHandler(log, companies)
}

// ProvideHealthHandler checks the run store and Redis.
func ProvideHealthHandler(store repository.RunStore, rdb *redis.Client) *api.HealthHandler {
	return api.NewHealthHandler(map[string]api.HealthCheck{
		"store": store.Health,
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(router *api.Router, cfg *config.Config, log *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(len(cfg.Server.CORSOrigins) > 0, cfg.Server.CORSOrigins...),
		xhttp.WithLogger(log),
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetricsPath(metricsPath))
	return xhttp.NewServer(router, opts...)
}

// ProvideJanitor returns nil when the janitor is disabled.
func ProvideJanitor(runs *usecase.RunService, cfg *config.Config, log *applogger.Logger) *usecase.Janitor {
	if !cfg.Janitor.Enabled {
		return nil
	}
	return usecase.NewJanitor(runs, cfg.Janitor.Schedule, log.With(applogger.String("component", "janitor")))
}

// ProvideKafkaConsumer returns nil when Kafka is off.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

func ProvideWarmupHandler(runs *usecase.RunService, m repository.Metrics, log *applogger.Logger, cfg *config.Config) *usecase.WarmupHandler {
	return usecase.NewWarmupHandler(cfg.Kafka.WarmupTopic, runs, m, log.With(applogger.String("component", "warmup")))
}

// ProvideApp creates the application server and registers resources to
// release on shutdown.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	warmup *usecase.WarmupHandler,
	janitor *usecase.Janitor,
	store repository.RunStore,
	rdb *redis.Client,
	events repository.EventPublisher,
	searchCache cache.Service,
) *server.App {
	var handler pkgkafka.MessageHandler
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
		handler = warmup
	}
	app := server.New(cfg, log, srv, consumer, handler, janitor)

	app.AddCloser("redis", rdb)
	app.AddCloser("store", store)
	if events != nil {
		app.AddCloser("kafka producer", events)
	}
	if cfg.Search.Backend == "memory" {
		app.AddCloser("search cache", searchCache)
	}
	return app
}
