package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/domain/core/aggregates"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	"sitecanvas-backend/domain/events"
	domainservices "sitecanvas-backend/domain/services"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// GenerationResult is the outcome of a successful generation run.
type GenerationResult struct {
	Node   *entities.Node
	Record *entities.GenerationRecord
}

// GenerationService orchestrates one AI generation run end to end: resolve
// ancestor context, build the prompt, call the provider, and install the
// result through the lifecycle rules.
type GenerationService struct {
	canvas     *CanvasService
	nodeRepo   ports.NodeRepository
	recordRepo ports.GenerationRecordRepository
	eventBus   ports.EventBus
	provider   ports.AIProvider
	scraper    ports.SiteScraper
	prompts    ports.PromptBuilder
	resolver   *domainservices.AncestorResolver
	projector  *domainservices.ContextProjector
	lifecycle  *domainservices.GenerationLifecycle
	limits     ports.LimitsProvider
	logger     *zap.Logger

	mu      sync.Mutex
	running int
}

// NewGenerationService creates a generation service.
func NewGenerationService(
	canvas *CanvasService,
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
) *GenerationService {
	return &GenerationService{
		canvas:     canvas,
		nodeRepo:   nodeRepo,
		recordRepo: recordRepo,
		eventBus:   eventBus,
		provider:   provider,
		scraper:    scraper,
		prompts:    prompts,
		resolver:   resolver,
		projector:  projector,
		lifecycle:  lifecycle,
		limits:     limits,
		logger:     logger,
	}
}

// Generate runs the full pipeline for one node. The node moves to
// in-progress immediately and is persisted in that state, so concurrent
// readers see the run; on any downstream failure it moves to error with its
// last good result intact.
func (s *GenerationService) Generate(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	nodeID valueobjects.NodeID,
) (*GenerationResult, error) {
	release, err := s.acquireRunSlot()
	if err != nil {
		return nil, err
	}
	defer release()

	graph, err := s.canvas.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	node, exists := graph.Node(nodeID)
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node " + nodeID.String())
	}

	if err := s.lifecycle.BeginGeneration(node); err != nil {
		return nil, err
	}
	kind, _ := node.GenerationKind()
	if err := s.nodeRepo.Save(ctx, projectID, node); err != nil {
		return nil, pkgerrors.Wrap(err, "saving node")
	}
	s.publish(ctx, events.NewGenerationStarted(
		projectID.String(), nodeID.String(), string(kind), time.Now()))

	s.logger.Info("generation started",
		zap.String("project_id", projectID.String()),
		zap.String("node_id", nodeID.String()),
		zap.String("kind", string(kind)))

	content, metadata, err := s.run(ctx, graph, node, kind)
	if err != nil {
		return nil, s.fail(ctx, projectID, node, kind, err)
	}

	versions, err := s.recordRepo.ListVersions(ctx, projectID, nodeID, kind)
	if err != nil {
		return nil, s.fail(ctx, projectID, node, kind, pkgerrors.Wrap(err, "listing prior versions"))
	}
	record, err := s.lifecycle.CompleteGeneration(node, content, metadata, versions)
	if err != nil {
		return nil, s.fail(ctx, projectID, node, kind, err)
	}
	if err := s.recordRepo.Append(ctx, projectID, record); err != nil {
		return nil, s.fail(ctx, projectID, node, kind, pkgerrors.Wrap(err, "appending generation record"))
	}
	if err := s.nodeRepo.Save(ctx, projectID, node); err != nil {
		return nil, pkgerrors.Wrap(err, "saving node")
	}

	s.publish(ctx, events.NewGenerationCompleted(
		projectID.String(), nodeID.String(), string(kind), record.Version(), time.Now()))
	s.logger.Info("generation completed",
		zap.String("node_id", nodeID.String()),
		zap.String("kind", string(kind)),
		zap.Int("version", record.Version()))

	return &GenerationResult{Node: node, Record: record}, nil
}

// run produces the raw result for a node: context resolution, optional
// scraping, prompt construction, provider call, response parsing.
func (s *GenerationService) run(
	ctx context.Context,
	graph *aggregates.Graph,
	node *entities.Node,
	kind entities.GenerationKind,
) (string, map[string]interface{}, error) {
	ancestorIDs, err := s.resolver.Resolve(graph, node.ID())
	if err != nil {
		return "", nil, err
	}
	ancestorNodes := make([]*entities.Node, 0, len(ancestorIDs))
	for _, id := range ancestorIDs {
		ancestor, _ := graph.Node(id)
		ancestorNodes = append(ancestorNodes, ancestor)
	}
	ancestors, err := s.projector.Project(ancestorNodes)
	if err != nil {
		return "", nil, err
	}
	target, err := s.projector.ProjectOne(node)
	if err != nil {
		return "", nil, err
	}

	var scraped *ports.ScrapedSite
	if url := scrapeURL(node); url != "" {
		scraped, err = s.scraper.Scrape(ctx, url)
		if err != nil {
			return "", nil, pkgerrors.Wrap(err, "scraping "+url)
		}
	}

	prompt := s.prompts.Build(kind, target, ancestors, scraped)
	if max := s.limits.Limits().MaxPromptBytes; max > 0 && len(prompt) > max {
		s.logger.Warn("prompt truncated to configured maximum",
			zap.String("node_id", node.ID().String()),
			zap.Int("prompt_bytes", len(prompt)),
			zap.Int("max_prompt_bytes", max))
		prompt = prompt[:max]
	}
	raw, err := s.provider.Complete(ctx, prompt, optionsFor(kind))
	if err != nil {
		return "", nil, pkgerrors.Wrap(err, "completion request")
	}

	return parseResponse(kind, node.Variant(), raw)
}

// acquireRunSlot enforces the concurrent-run cap. A run over the cap fails
// fast with a Conflict instead of queueing behind a slow provider. The cap
// is re-read on every call so dynamic config changes take effect
// immediately.
func (s *GenerationService) acquireRunSlot() (func(), error) {
	max := s.limits.Limits().MaxConcurrentRuns

	s.mu.Lock()
	defer s.mu.Unlock()
	if max > 0 && s.running >= max {
		return nil, pkgerrors.NewConflictError(
			"generation is at its limit of " + strconv.Itoa(max) + " concurrent runs")
	}
	s.running++
	return func() {
		s.mu.Lock()
		s.running--
		s.mu.Unlock()
	}, nil
}

func (s *GenerationService) fail(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	node *entities.Node,
	kind entities.GenerationKind,
	cause error,
) error {
	s.lifecycle.FailGeneration(node)
	if saveErr := s.nodeRepo.Save(ctx, projectID, node); saveErr != nil {
		s.logger.Error("failed to persist error status",
			zap.String("node_id", node.ID().String()),
			zap.Error(saveErr))
	}
	s.publish(ctx, events.NewGenerationFailed(
		projectID.String(), node.ID().String(), string(kind), cause.Error(), time.Now()))
	s.logger.Warn("generation failed",
		zap.String("node_id", node.ID().String()),
		zap.String("kind", string(kind)),
		zap.Error(cause))
	return cause
}

// ListRecords returns the full generation history for a node, derived from
// the node's variant kind.
func (s *GenerationService) ListRecords(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	nodeID valueobjects.NodeID,
) ([]*entities.GenerationRecord, error) {
	node, err := s.canvas.GetNode(ctx, projectID, nodeID)
	if err != nil {
		return nil, err
	}
	kind, ok := node.GenerationKind()
	if !ok {
		return nil, pkgerrors.NewInvalidTransitionError(
			"variant " + string(node.Variant()) + " does not support generation")
	}
	return s.recordRepo.FindByNode(ctx, projectID, nodeID, kind)
}

func (s *GenerationService) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish domain event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err))
	}
}

// scrapeURL returns the external URL a node needs fetched before analysis,
// or "" when the run is prompt-only.
func scrapeURL(node *entities.Node) string {
	switch payload := node.Payload().(type) {
	case *entities.CompetitorPayload:
		return payload.URL
	case *entities.DesignPayload:
		return payload.SourceURL
	default:
		return ""
	}
}

// optionsFor picks per-kind completion settings: analysis wants structured
// JSON at low temperature; PRD and code want longer free-form output.
func optionsFor(kind entities.GenerationKind) ports.CompletionOptions {
	switch kind {
	case entities.KindAnalysis:
		return ports.CompletionOptions{Temperature: 0.2, MaxTokens: 2048, Format: "json"}
	case entities.KindCode:
		return ports.CompletionOptions{Temperature: 0.3, MaxTokens: 8192, Format: "text"}
	default:
		return ports.CompletionOptions{Temperature: 0.5, MaxTokens: 4096, Format: "text"}
	}
}

// competitorResponse is the JSON shape requested from the provider for
// competitor analysis.
type competitorResponse struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	DesignPatterns []string `json:"design_patterns"`
	CTAs           []string `json:"ctas"`
}

// designResponse is the JSON shape requested for design extraction.
type designResponse struct {
	StyleMood      string   `json:"style_mood"`
	LayoutPatterns []string `json:"layout_patterns"`
	Components     []string `json:"components"`
	Notes          string   `json:"notes"`
}

// parseResponse normalizes the raw provider output into the (content,
// metadata) pair the payload's result installer expects.
func parseResponse(
	kind entities.GenerationKind,
	variant entities.NodeVariant,
	raw string,
) (string, map[string]interface{}, error) {
	if kind != entities.KindAnalysis {
		return strings.TrimSpace(raw), map[string]interface{}{}, nil
	}

	cleaned := stripCodeFences(raw)
	switch variant {
	case entities.VariantCompetitor:
		var parsed competitorResponse
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			return "", nil, pkgerrors.NewExternalError("provider returned malformed analysis JSON", err)
		}
		return parsed.Summary, map[string]interface{}{
			"strengths":       parsed.Strengths,
			"design_patterns": parsed.DesignPatterns,
			"ctas":            parsed.CTAs,
		}, nil
	case entities.VariantDesign:
		var parsed designResponse
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			return "", nil, pkgerrors.NewExternalError("provider returned malformed extraction JSON", err)
		}
		return parsed.Notes, map[string]interface{}{
			"style_mood":      parsed.StyleMood,
			"layout_patterns": parsed.LayoutPatterns,
			"components":      parsed.Components,
		}, nil
	default:
		return "", nil, pkgerrors.NewInternalError("no analysis parser for variant "+string(variant), nil)
	}
}

// stripCodeFences removes a surrounding markdown code block, which some
// models wrap JSON responses in despite instructions.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
