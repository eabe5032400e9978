//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"sitecanvas-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideConfigWatcher,
	ProvideLimitsProvider,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideNodeRepository,
	ProvideEdgeRepository,
	ProvideGenerationRecordRepository,
	ProvideEventBus,
	ProvideAIProvider,
	ProvideSiteScraper,
	ProvidePromptBuilder,
	ProvideAncestorResolver,
	ProvideContextProjector,
	ProvideGenerationLifecycle,
	ProvideCanvasService,
	ProvideGenerationService,
	ProvideHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
