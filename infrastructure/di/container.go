package di

import (
	"net/http"

	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/application/services"
	domainservices "sitecanvas-backend/domain/services"
	"sitecanvas-backend/infrastructure/config"
	"sitecanvas-backend/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector

	// Watcher is nil when no dynamic config file is configured; main owns
	// its Start/Stop lifecycle.
	Watcher *config.Watcher
	Limits  ports.LimitsProvider

	NodeRepo   ports.NodeRepository
	EdgeRepo   ports.EdgeRepository
	RecordRepo ports.GenerationRecordRepository
	EventBus   ports.EventBus

	Provider ports.AIProvider
	Scraper  ports.SiteScraper
	Prompts  ports.PromptBuilder

	Resolver  *domainservices.AncestorResolver
	Projector *domainservices.ContextProjector
	Lifecycle *domainservices.GenerationLifecycle

	CanvasService     *services.CanvasService
	GenerationService *services.GenerationService

	Handler http.Handler
}
