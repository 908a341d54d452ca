//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	"StockPulse/internal/service/yahoo"
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRunStore,
		ProvideSearchCache,

		// Upstream providers
		ProvideNewsSource,
		ProvideYahooClient,
		wire.Bind(new(repository.CandleSource), new(*yahoo.Client)),
		wire.Bind(new(repository.CompanySearcher), new(*yahoo.Client)),
		ProvideReasoner,

		// Repositories and services
		ProvideEventPublisher,
		ProvideIntervals,
		ProvideIngestion,
		ProvideSynthesizer,
		ProvideExporter,
		ProvideLimiter,
		ProvideAdmission,

		// Use cases
		ProvideRunService,
		ProvideCompanyService,
		ProvideJanitor,
		ProvideWarmupHandler,

		// HTTP
		ProvideRunHandler,
		ProvideDownloadHandler,
		ProvideCompaniesHandler,
		ProvideHealthHandler,
		api.NewRouter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
