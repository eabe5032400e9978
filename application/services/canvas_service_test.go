package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/application/services"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	domainservices "sitecanvas-backend/domain/services"
	"sitecanvas-backend/infrastructure/messaging"
	"sitecanvas-backend/infrastructure/persistence/memory"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

type canvasFixture struct {
	service    *services.CanvasService
	dispatcher *messaging.LocalDispatcher
	projectID  valueobjects.ProjectID
	limits     ports.Limits
}

func newCanvasFixture(t *testing.T) *canvasFixture {
	t.Helper()
	logger := zap.NewNop()
	dispatcher := messaging.NewLocalDispatcher(logger)
	f := &canvasFixture{
		dispatcher: dispatcher,
		projectID:  valueobjects.NewProjectID(),
	}
	f.service = services.NewCanvasService(
		memory.NewNodeRepository(),
		memory.NewEdgeRepository(),
		dispatcher,
		domainservices.NewAncestorResolver(),
		domainservices.NewContextProjector(),
		ports.LimitsProviderFunc(func() ports.Limits { return f.limits }),
		logger,
	)
	return f
}

func (f *canvasFixture) createNode(t *testing.T, payload entities.Payload) *entities.Node {
	t.Helper()
	position, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	node, err := f.service.CreateNode(context.Background(), f.projectID, payload, position)
	require.NoError(t, err)
	return node
}

func TestCanvasService_CreateAndGetGraph(t *testing.T) {
	f := newCanvasFixture(t)
	ctx := context.Background()

	project := f.createNode(t, &entities.ProjectPayload{Name: "Acme Site"})
	page := f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})

	edge, err := f.service.ConnectNodes(ctx, f.projectID, project.ID(), page.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	nodes, edges, err := f.service.GetGraph(ctx, f.projectID)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].ID().Equals(edge.ID()))

	// insertion order survives the persistence roundtrip
	assert.True(t, nodes[0].ID().Equals(project.ID()))
	assert.True(t, nodes[1].ID().Equals(page.ID()))
}

func TestCanvasService_ConnectRejectsDuplicateAcrossLoads(t *testing.T) {
	f := newCanvasFixture(t)
	ctx := context.Background()

	source := f.createNode(t, &entities.ProjectPayload{Name: "Acme"})
	target := f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})

	_, err := f.service.ConnectNodes(ctx, f.projectID, source.ID(), target.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	_, err = f.service.ConnectNodes(ctx, f.projectID, source.ID(), target.ID(), entities.EdgeVariantContext)
	assert.True(t, pkgerrors.IsDuplicateEdge(err))
}

func TestCanvasService_NodeLimitEnforced(t *testing.T) {
	f := newCanvasFixture(t)
	f.limits = ports.Limits{MaxNodesPerProject: 2}
	ctx := context.Background()

	f.createNode(t, &entities.ProjectPayload{Name: "Acme"})
	f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})

	position, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	_, err = f.service.CreateNode(ctx, f.projectID,
		&entities.PagePayload{Name: "About", Route: "/about"}, position)
	assert.True(t, pkgerrors.IsConflict(err))

	// limits are re-read per operation, so a live change takes effect
	// without a restart
	f.limits.MaxNodesPerProject = 3
	_, err = f.service.CreateNode(ctx, f.projectID,
		&entities.PagePayload{Name: "About", Route: "/about"}, position)
	assert.NoError(t, err)
}

func TestCanvasService_RemoveNodeCascadesInStore(t *testing.T) {
	f := newCanvasFixture(t)
	ctx := context.Background()

	project := f.createNode(t, &entities.ProjectPayload{Name: "Acme"})
	page := f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})
	section := f.createNode(t, &entities.SectionPayload{Kind: "hero"})

	_, err := f.service.ConnectNodes(ctx, f.projectID, project.ID(), page.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)
	_, err = f.service.ConnectNodes(ctx, f.projectID, page.ID(), section.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	removed, err := f.service.RemoveNode(ctx, f.projectID, page.ID())
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	nodes, edges, err := f.service.GetGraph(ctx, f.projectID)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Empty(t, edges)
}

func TestCanvasService_UpdateNodePayload(t *testing.T) {
	f := newCanvasFixture(t)
	ctx := context.Background()

	page := f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})

	newName := "Home"
	updated, err := f.service.UpdateNodePayload(ctx, f.projectID, page.ID(), entities.PagePatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Home", updated.Payload().(*entities.PagePayload).Name)

	// the change is persisted, not just applied in memory
	stored, err := f.service.GetNode(ctx, f.projectID, page.ID())
	require.NoError(t, err)
	assert.Equal(t, "Home", stored.Payload().(*entities.PagePayload).Name)
}

func TestCanvasService_ResolveContext(t *testing.T) {
	f := newCanvasFixture(t)
	ctx := context.Background()

	project := f.createNode(t, &entities.ProjectPayload{Name: "Acme"})
	competitor := f.createNode(t, &entities.CompetitorPayload{URL: "https://rival.example"})
	page := f.createNode(t, &entities.PagePayload{Name: "Landing", Route: "/"})

	_, err := f.service.ConnectNodes(ctx, f.projectID, project.ID(), page.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)
	_, err = f.service.ConnectNodes(ctx, f.projectID, competitor.ID(), page.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	summaries, err := f.service.ResolveContext(ctx, f.projectID, page.ID())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, entities.VariantProject, summaries[0].Variant)
	assert.Equal(t, entities.VariantCompetitor, summaries[1].Variant)
	assert.True(t, summaries[1].Pending)
}

func TestCanvasService_PublishesEvents(t *testing.T) {
	f := newCanvasFixture(t)

	f.createNode(t, &entities.ProjectPayload{Name: "Acme"})

	published := f.dispatcher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "canvas.node_added", published[0].GetEventType())
}

func TestCanvasService_GetNodeNotFound(t *testing.T) {
	f := newCanvasFixture(t)

	_, err := f.service.GetNode(context.Background(), f.projectID, valueobjects.NewNodeID())
	assert.True(t, pkgerrors.IsNotFound(err))
}
