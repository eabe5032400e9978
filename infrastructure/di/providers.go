// Package di wires the application together. Providers decide between the
// in-memory and AWS-backed implementations based on configuration, so the
// same container serves local development and production.
package di

import (
	"context"
	"net/http"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/application/services"
	domainservices "sitecanvas-backend/domain/services"
	"sitecanvas-backend/infrastructure/ai"
	"sitecanvas-backend/infrastructure/config"
	"sitecanvas-backend/infrastructure/messaging"
	"sitecanvas-backend/infrastructure/messaging/eventbridge"
	"sitecanvas-backend/infrastructure/persistence/dynamodb"
	"sitecanvas-backend/infrastructure/persistence/memory"
	"sitecanvas-backend/infrastructure/scrape"
	"sitecanvas-backend/interfaces/http/rest"
	"sitecanvas-backend/pkg/observability"
)

// ProvideLogger builds the zap logger for the configured environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideMetrics builds the Prometheus collector.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector("sitecanvas")
}

// ProvideConfigWatcher builds the dynamic config watcher, or nil when no
// file is configured. The caller owns its Start/Stop lifecycle.
func ProvideConfigWatcher(cfg *config.Config, logger *zap.Logger) (*config.Watcher, error) {
	if cfg.DynamicConfigPath == "" {
		return nil, nil
	}
	return config.NewWatcher(cfg.DynamicConfigPath, logger)
}

// ProvideLimitsProvider serves the runtime limits: live from the watcher
// when one is configured, otherwise a fixed snapshot of the defaults.
func ProvideLimitsProvider(watcher *config.Watcher) ports.LimitsProvider {
	if watcher != nil {
		return watcher
	}
	return config.NewStaticLimits(config.DefaultDynamicConfig())
}

// ProvideDynamoDBClient builds the DynamoDB client, or nil when the
// in-memory store is active.
func ProvideDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsdynamodb.Client, error) {
	if cfg.UseMemoryStore {
		return nil, nil
	}
	return dynamodb.NewClient(ctx, cfg.AWSRegion)
}

// ProvideEventBridgeClient builds the EventBridge client, or nil when event
// publishing stays in-process.
func ProvideEventBridgeClient(ctx context.Context, cfg *config.Config) (*awseventbridge.Client, error) {
	if cfg.UseMemoryStore {
		return nil, nil
	}
	return eventbridge.NewClient(ctx, cfg.AWSRegion)
}

// ProvideNodeRepository selects the node store implementation.
func ProvideNodeRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.NodeRepository {
	if cfg.UseMemoryStore {
		return memory.NewNodeRepository()
	}
	return dynamodb.NewNodeRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEdgeRepository selects the edge store implementation.
func ProvideEdgeRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.EdgeRepository {
	if cfg.UseMemoryStore {
		return memory.NewEdgeRepository()
	}
	return dynamodb.NewEdgeRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideGenerationRecordRepository selects the record store implementation.
func ProvideGenerationRecordRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.GenerationRecordRepository {
	if cfg.UseMemoryStore {
		return memory.NewGenerationRecordRepository()
	}
	return dynamodb.NewGenerationRecordRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventBus selects the event bus. The in-memory configuration keeps
// events in-process through the local dispatcher.
func ProvideEventBus(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventBus {
	if cfg.UseMemoryStore {
		return messaging.NewLocalDispatcher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideAIProvider selects the language-model provider.
func ProvideAIProvider(cfg *config.Config, logger *zap.Logger) ports.AIProvider {
	if cfg.AI.UseMock {
		return ai.NewMockProvider()
	}
	return ai.NewOpenAIProvider(ai.OpenAIConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, logger)
}

// ProvideSiteScraper selects the scraper. Without a configured scraping API
// the mock serves placeholder content, which keeps analysis runs working in
// development.
func ProvideSiteScraper(cfg *config.Config, logger *zap.Logger) ports.SiteScraper {
	if cfg.Scrape.BaseURL == "" {
		return scrape.NewMockScraper()
	}
	return scrape.NewHTTPScraper(scrape.Config{
		BaseURL: cfg.Scrape.BaseURL,
		APIKey:  cfg.Scrape.APIKey,
		Timeout: cfg.Scrape.Timeout,
	}, logger)
}

// ProvidePromptBuilder builds the prompt builder.
func ProvidePromptBuilder() ports.PromptBuilder {
	return ai.NewPromptBuilder()
}

// ProvideAncestorResolver builds the ancestor resolver.
func ProvideAncestorResolver() *domainservices.AncestorResolver {
	return domainservices.NewAncestorResolver()
}

// ProvideContextProjector builds the context projector.
func ProvideContextProjector() *domainservices.ContextProjector {
	return domainservices.NewContextProjector()
}

// ProvideGenerationLifecycle builds the generation lifecycle manager.
func ProvideGenerationLifecycle() *domainservices.GenerationLifecycle {
	return domainservices.NewGenerationLifecycle()
}

// ProvideCanvasService builds the canvas application service.
func ProvideCanvasService(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	eventBus ports.EventBus,
	resolver *domainservices.AncestorResolver,
	projector *domainservices.ContextProjector,
	limits ports.LimitsProvider,
	logger *zap.Logger,
) *services.CanvasService {
	return services.NewCanvasService(nodeRepo, edgeRepo, eventBus, resolver, projector, limits, logger)
}

// ProvideGenerationService builds the generation application service.
func ProvideGenerationService(
	canvas *services.CanvasService,
	nodeRepo ports.NodeRepository,
	recordRepo ports.GenerationRecordRepository,
	eventBus ports.EventBus,
	provider ports.AIProvider,
	scraper ports.SiteScraper,
	prompts ports.PromptBuilder,
	resolver *domainservices.AncestorResolver,
	projector *domainservices.ContextProjector,
	lifecycle *domainservices.GenerationLifecycle,
	limits ports.LimitsProvider,
	logger *zap.Logger,
) *services.GenerationService {
	return services.NewGenerationService(
		canvas, nodeRepo, recordRepo, eventBus, provider, scraper,
		prompts, resolver, projector, lifecycle, limits, logger)
}

// ProvideHandler builds the fully routed HTTP handler.
func ProvideHandler(
	cfg *config.Config,
	canvas *services.CanvasService,
	generation *services.GenerationService,
	provider ports.AIProvider,
	metrics *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	router := rest.NewRouter(canvas, generation, provider, metrics, logger, cfg.EnableCORS)
	return router.Setup()
}
