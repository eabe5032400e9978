package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/application/services"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	domainservices "sitecanvas-backend/domain/services"
	"sitecanvas-backend/infrastructure/ai"
	"sitecanvas-backend/infrastructure/messaging"
	"sitecanvas-backend/infrastructure/persistence/memory"
	"sitecanvas-backend/infrastructure/scrape"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

type generationFixture struct {
	canvas     *services.CanvasService
	generation *services.GenerationService
	provider   *ai.MockProvider
	scraper    *scrape.MockScraper
	dispatcher *messaging.LocalDispatcher
	projectID  valueobjects.ProjectID
	limits     ports.Limits
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	logger := zap.NewNop()
	nodeRepo := memory.NewNodeRepository()
	edgeRepo := memory.NewEdgeRepository()
	recordRepo := memory.NewGenerationRecordRepository()
	dispatcher := messaging.NewLocalDispatcher(logger)
	resolver := domainservices.NewAncestorResolver()
	projector := domainservices.NewContextProjector()

	f := &generationFixture{
		provider:   ai.NewMockProvider(),
		scraper:    scrape.NewMockScraper(),
		dispatcher: dispatcher,
		projectID:  valueobjects.NewProjectID(),
	}
	limits := ports.LimitsProviderFunc(func() ports.Limits { return f.limits })
	f.canvas = services.NewCanvasService(nodeRepo, edgeRepo, dispatcher, resolver, projector, limits, logger)
	f.generation = services.NewGenerationService(
		f.canvas, nodeRepo, recordRepo, dispatcher,
		f.provider, f.scraper, ai.NewPromptBuilder(),
		resolver, projector, domainservices.NewGenerationLifecycle(),
		limits, logger,
	)
	return f
}

func (f *generationFixture) createNode(t *testing.T, payload entities.Payload) *entities.Node {
	t.Helper()
	position, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	node, err := f.canvas.CreateNode(context.Background(), f.projectID, payload, position)
	require.NoError(t, err)
	return node
}

func (f *generationFixture) connect(t *testing.T, source, target valueobjects.NodeID) {
	t.Helper()
	_, err := f.canvas.ConnectNodes(context.Background(), f.projectID, source, target, entities.EdgeVariantContext)
	require.NoError(t, err)
}

func TestGenerationService_CompetitorAnalysis(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	competitor := f.createNode(t, &entities.CompetitorPayload{URL: "https://rival.example"})

	result, err := f.generation.Generate(ctx, f.projectID, competitor.ID())
	require.NoError(t, err)

	assert.Equal(t, entities.KindAnalysis, result.Record.Kind())
	assert.Equal(t, 1, result.Record.Version())

	payload := result.Node.Payload().(*entities.CompetitorPayload)
	require.NotNil(t, payload.Analysis)
	assert.NotEmpty(t, payload.Analysis.Summary)
	assert.NotEmpty(t, payload.Analysis.Strengths)

	status, ok := result.Node.GenerationStatus()
	require.True(t, ok)
	assert.Equal(t, entities.StatusComplete, status)

	// the competitor URL was fetched before prompting
	assert.Equal(t, []string{"https://rival.example"}, f.scraper.URLs())

	// completed state survives the persistence roundtrip
	stored, err := f.canvas.GetNode(ctx, f.projectID, competitor.ID())
	require.NoError(t, err)
	storedStatus, _ := stored.GenerationStatus()
	assert.Equal(t, entities.StatusComplete, storedStatus)
}

func TestGenerationService_VersionsIncrementAcrossRuns(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	design := f.createNode(t, &entities.DesignPayload{SourceURL: "https://inspo.example"})

	first, err := f.generation.Generate(ctx, f.projectID, design.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Record.Version())

	second, err := f.generation.Generate(ctx, f.projectID, design.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Record.Version())

	records, err := f.generation.ListRecords(ctx, f.projectID, design.ID())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGenerationService_SectionCodeUsesAncestorContext(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	project := f.createNode(t, &entities.ProjectPayload{Name: "Acme", BrandVoice: "friendly"})
	page := f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})
	section := f.createNode(t, &entities.SectionPayload{Kind: "hero"})
	f.connect(t, project.ID(), page.ID())
	f.connect(t, page.ID(), section.ID())

	result, err := f.generation.Generate(ctx, f.projectID, section.ID())
	require.NoError(t, err)

	assert.Equal(t, entities.KindCode, result.Record.Kind())
	payload := result.Node.Payload().(*entities.SectionPayload)
	require.NotNil(t, payload.Generated)
	assert.Equal(t, 1, payload.Generated.Version)

	// the prompt carried the transitive context, not just the direct parent
	prompts := f.provider.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Acme")
	assert.Contains(t, prompts[0], "/")

	// prompt-only run, nothing scraped
	assert.Empty(t, f.scraper.URLs())
}

func TestGenerationService_PagePRD(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	page := f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})

	result, err := f.generation.Generate(ctx, f.projectID, page.ID())
	require.NoError(t, err)

	assert.Equal(t, entities.KindPRD, result.Record.Kind())
	payload := result.Node.Payload().(*entities.PagePayload)
	require.NotNil(t, payload.PRD)
	assert.Equal(t, "markdown", payload.PRD.Format)
	assert.Equal(t, 1, payload.PRD.Version)
}

func TestGenerationService_RejectsNonGenerableVariant(t *testing.T) {
	f := newGenerationFixture(t)

	project := f.createNode(t, &entities.ProjectPayload{Name: "Acme"})

	_, err := f.generation.Generate(context.Background(), f.projectID, project.ID())
	assert.True(t, pkgerrors.IsInvalidTransition(err))
}

func TestGenerationService_UnknownNode(t *testing.T) {
	f := newGenerationFixture(t)

	_, err := f.generation.Generate(context.Background(), f.projectID, valueobjects.NewNodeID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGenerationService_ProviderFailureMarksError(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	competitor := f.createNode(t, &entities.CompetitorPayload{URL: "https://rival.example"})
	f.provider.SetError(errors.New("upstream timeout"))

	_, err := f.generation.Generate(ctx, f.projectID, competitor.ID())
	require.Error(t, err)

	stored, err := f.canvas.GetNode(ctx, f.projectID, competitor.ID())
	require.NoError(t, err)
	status, _ := stored.GenerationStatus()
	assert.Equal(t, entities.StatusError, status)
	assert.Nil(t, stored.Payload().(*entities.CompetitorPayload).Analysis)

	// no record is written for a failed run
	records, listErr := f.generation.ListRecords(ctx, f.projectID, competitor.ID())
	require.NoError(t, listErr)
	assert.Empty(t, records)

	// a retry succeeds once the provider recovers
	f.provider.SetError(nil)
	result, err := f.generation.Generate(ctx, f.projectID, competitor.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Record.Version())
}

func TestGenerationService_ScrapeFailureMarksError(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	design := f.createNode(t, &entities.DesignPayload{SourceURL: "https://inspo.example"})
	f.scraper.SetError(errors.New("blocked by robots"))

	_, err := f.generation.Generate(ctx, f.projectID, design.ID())
	require.Error(t, err)

	stored, err := f.canvas.GetNode(ctx, f.projectID, design.ID())
	require.NoError(t, err)
	status, _ := stored.GenerationStatus()
	assert.Equal(t, entities.StatusError, status)
}

// slowProvider blocks inside Complete until released, letting a test hold a
// generation run open while it exercises concurrent behavior.
type slowProvider struct {
	entered chan struct{}
	release chan struct{}
}

func (p *slowProvider) Complete(context.Context, string, ports.CompletionOptions) (string, error) {
	p.entered <- struct{}{}
	<-p.release
	return "generated copy", nil
}

func (p *slowProvider) IsAvailable() bool { return true }

func TestGenerationService_ConcurrentRunCap(t *testing.T) {
	logger := zap.NewNop()
	nodeRepo := memory.NewNodeRepository()
	dispatcher := messaging.NewLocalDispatcher(logger)
	resolver := domainservices.NewAncestorResolver()
	projector := domainservices.NewContextProjector()
	limits := ports.LimitsProviderFunc(func() ports.Limits {
		return ports.Limits{MaxConcurrentRuns: 1}
	})
	provider := &slowProvider{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	canvas := services.NewCanvasService(
		nodeRepo, memory.NewEdgeRepository(), dispatcher, resolver, projector, limits, logger)
	generation := services.NewGenerationService(
		canvas, nodeRepo, memory.NewGenerationRecordRepository(), dispatcher,
		provider, scrape.NewMockScraper(), ai.NewPromptBuilder(),
		resolver, projector, domainservices.NewGenerationLifecycle(),
		limits, logger)

	ctx := context.Background()
	projectID := valueobjects.NewProjectID()
	position, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	first, err := canvas.CreateNode(ctx, projectID, &entities.PagePayload{Name: "Landing", Route: "/"}, position)
	require.NoError(t, err)
	second, err := canvas.CreateNode(ctx, projectID, &entities.PagePayload{Name: "About", Route: "/about"}, position)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := generation.Generate(ctx, projectID, first.ID())
		done <- err
	}()
	<-provider.entered

	// a second run over the cap fails fast instead of queueing
	_, err = generation.Generate(ctx, projectID, second.ID())
	assert.True(t, pkgerrors.IsConflict(err))

	close(provider.release)
	require.NoError(t, <-done)
}

func TestGenerationService_LifecycleEvents(t *testing.T) {
	f := newGenerationFixture(t)
	ctx := context.Background()

	competitor := f.createNode(t, &entities.CompetitorPayload{URL: "https://rival.example"})

	_, err := f.generation.Generate(ctx, f.projectID, competitor.ID())
	require.NoError(t, err)

	var types []string
	for _, event := range f.dispatcher.Published() {
		types = append(types, event.GetEventType())
	}
	assert.Contains(t, types, "generation.started")
	assert.Contains(t, types, "generation.completed")
}
