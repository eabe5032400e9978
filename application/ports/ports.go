// Package ports defines the interfaces the application layer depends on.
// Infrastructure packages provide the implementations; the domain packages
// know nothing about any of these.
package ports

import (
	"context"

	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	"sitecanvas-backend/domain/events"
	"sitecanvas-backend/domain/services"
)

// NodeRepository persists canvas nodes.
type NodeRepository interface {
	Save(ctx context.Context, projectID valueobjects.ProjectID, node *entities.Node) error
	FindByID(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.NodeID) (*entities.Node, error)
	FindByProject(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Node, error)
	Delete(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.NodeID) error
}

// EdgeRepository persists canvas edges.
type EdgeRepository interface {
	Save(ctx context.Context, projectID valueobjects.ProjectID, edge *entities.Edge) error
	FindByProject(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Edge, error)
	Delete(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.EdgeID) error
}

// GenerationRecordRepository persists the append-only generation log.
// Append must reject a duplicate (node, kind, version) triple with a
// Conflict error; that uniqueness is what makes the lifecycle's version
// arithmetic safe against racing callers.
type GenerationRecordRepository interface {
	Append(ctx context.Context, projectID valueobjects.ProjectID, record *entities.GenerationRecord) error
	ListVersions(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID, kind entities.GenerationKind) ([]int, error)
	FindByNode(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID, kind entities.GenerationKind) ([]*entities.GenerationRecord, error)
}

// EventBus publishes domain events after persistence.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// Limits are the runtime-tunable guardrails enforced by the application
// services. Zero values mean unlimited.
type Limits struct {
	MaxNodesPerProject int
	MaxEdgesPerNode    int
	MaxConcurrentRuns  int
	MaxPromptBytes     int
}

// LimitsProvider supplies the active limits. Implementations may reload the
// values at runtime, so callers re-read them on every operation rather than
// caching.
type LimitsProvider interface {
	Limits() Limits
}

// LimitsProviderFunc adapts a function to the LimitsProvider interface.
type LimitsProviderFunc func() Limits

// Limits returns f().
func (f LimitsProviderFunc) Limits() Limits { return f() }

// CompletionOptions configures one AI completion request.
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}

// AIProvider is the outbound interface to the language-model API. The
// prompt builder turns the core's context summaries into the prompt; the
// provider owns transport, retries and authentication.
type AIProvider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// ScrapedSite is the normalized result of fetching an external site.
type ScrapedSite struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SiteScraper is the outbound interface to the web-scraping API used for
// competitor and design analysis.
type SiteScraper interface {
	Scrape(ctx context.Context, url string) (*ScrapedSite, error)
}

// PromptBuilder renders a provider-ready prompt from the target node and
// its projected ancestor context.
type PromptBuilder interface {
	Build(kind entities.GenerationKind, target services.ContextSummary, ancestors []services.ContextSummary, scraped *ScrapedSite) string
}
