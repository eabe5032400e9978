package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph(valueobjects.NewProjectID())
	require.NoError(t, err)
	return g
}

func addNode(t *testing.T, g *Graph, payload entities.Payload) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	node, err := g.AddNode(payload, pos)
	require.NoError(t, err)
	return node
}

func TestNewGraph(t *testing.T) {
	g, err := NewGraph(valueobjects.NewProjectID())
	require.NoError(t, err)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())

	_, err = NewGraph(valueobjects.ProjectID{})
	assert.Error(t, err)
}

func TestGraphAddNode(t *testing.T) {
	g := newTestGraph(t)

	node := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
	assert.Equal(t, 1, g.NodeCount())

	got, ok := g.Node(node.ID())
	require.True(t, ok)
	assert.Equal(t, entities.VariantProject, got.Variant())

	events := g.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "canvas.node_added", events[0].GetEventType())

	pos, _ := valueobjects.NewPosition(0, 0)
	_, err := g.AddNode(&entities.PagePayload{Name: "Home"}, pos)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidPayload(err))
	assert.Equal(t, 1, g.NodeCount())
}

func TestGraphNodeLimit(t *testing.T) {
	g := newTestGraph(t)
	g.SetLimits(Limits{MaxNodes: 2})

	addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
	addNode(t, g, &entities.PagePayload{Name: "Landing", Route: "/"})

	pos, _ := valueobjects.NewPosition(0, 0)
	_, err := g.AddNode(&entities.PagePayload{Name: "About", Route: "/about"}, pos)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 2, g.NodeCount())

	// raising the limit unblocks growth without reloading the graph
	g.SetLimits(Limits{MaxNodes: 3})
	_, err = g.AddNode(&entities.PagePayload{Name: "About", Route: "/about"}, pos)
	assert.NoError(t, err)
}

func TestGraphEdgeLimitPerNode(t *testing.T) {
	g := newTestGraph(t)
	g.SetLimits(Limits{MaxEdgesPerNode: 1})

	hub := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
	a := addNode(t, g, &entities.PagePayload{Name: "Landing", Route: "/"})
	b := addNode(t, g, &entities.PagePayload{Name: "About", Route: "/about"})

	_, err := g.ConnectNodes(hub.ID(), a.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	_, err = g.ConnectNodes(hub.ID(), b.ID(), entities.EdgeVariantContext)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraphConnectNodes(t *testing.T) {
	g := newTestGraph(t)
	a := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
	b := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})

	edge, err := g.ConnectNodes(a.ID(), b.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
	assert.True(t, edge.SourceID().Equals(a.ID()))

	t.Run("duplicate pair is rejected", func(t *testing.T) {
		_, err := g.ConnectNodes(a.ID(), b.ID(), entities.EdgeVariantContext)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsDuplicateEdge(err))
	})

	t.Run("opposite direction is a distinct pair", func(t *testing.T) {
		_, err := g.ConnectNodes(b.ID(), a.ID(), entities.EdgeVariantContext)
		assert.NoError(t, err)
	})

	t.Run("self-loop is rejected", func(t *testing.T) {
		_, err := g.ConnectNodes(a.ID(), a.ID(), entities.EdgeVariantContext)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsSelfLoop(err))
	})

	t.Run("missing endpoint is rejected", func(t *testing.T) {
		_, err := g.ConnectNodes(a.ID(), valueobjects.NewNodeID(), entities.EdgeVariantContext)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))

		_, err = g.ConnectNodes(valueobjects.NewNodeID(), b.ID(), entities.EdgeVariantContext)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestGraphRemoveNodeCascades(t *testing.T) {
	g := newTestGraph(t)
	project := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
	design := addNode(t, g, &entities.DesignPayload{SourceURL: "https://ref.example"})
	page := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})

	_, err := g.ConnectNodes(project.ID(), design.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)
	_, err = g.ConnectNodes(design.ID(), page.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	removed := g.RemoveNode(design.ID())
	assert.Len(t, removed, 2)
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 2, g.NodeCount())
	assert.Empty(t, g.DirectSources(page.ID()))

	// After the cascade the ordered pair is free again.
	_, err = g.ConnectNodes(project.ID(), page.ID(), entities.EdgeVariantContext)
	assert.NoError(t, err)
}

func TestGraphRemoveIsIdempotent(t *testing.T) {
	g := newTestGraph(t)
	a := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
	b := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})
	edge, err := g.ConnectNodes(a.ID(), b.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		g.RemoveEdge(edge.ID())
		g.RemoveEdge(edge.ID())
		g.RemoveNode(a.ID())
		assert.Nil(t, g.RemoveNode(a.ID()))
	})
}

func TestGraphUpdateNodePayload(t *testing.T) {
	g := newTestGraph(t)
	page := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})

	route := "/home"
	require.NoError(t, g.UpdateNodePayload(page.ID(), entities.PagePatch{Route: &route}))

	err := g.UpdateNodePayload(valueobjects.NewNodeID(), entities.PagePatch{Route: &route})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraphMoveNode(t *testing.T) {
	g := newTestGraph(t)
	node := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})

	pos, err := valueobjects.NewPosition(400, -120)
	require.NoError(t, err)
	require.NoError(t, g.MoveNode(node.ID(), pos))

	got, _ := g.Node(node.ID())
	assert.True(t, got.Position().Equals(pos))

	err = g.MoveNode(valueobjects.NewNodeID(), pos)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraphLoad(t *testing.T) {
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	nodeA, err := entities.NewNode(&entities.ProjectPayload{Name: "Acme Site"}, pos)
	require.NoError(t, err)
	nodeB, err := entities.NewNode(&entities.PagePayload{Name: "Home", Route: "/"}, pos)
	require.NoError(t, err)
	edgeAB, err := entities.NewEdge(nodeA.ID(), nodeB.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)

	t.Run("valid snapshot", func(t *testing.T) {
		g := newTestGraph(t)
		require.NoError(t, g.Load(
			[]*entities.Node{nodeA, nodeB},
			[]*entities.Edge{edgeAB},
		))
		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.EdgeCount())
		assert.Empty(t, g.GetUncommittedEvents(), "loading emits no events")
	})

	t.Run("dangling edge reference", func(t *testing.T) {
		g := newTestGraph(t)
		orphan, err := entities.NewEdge(nodeA.ID(), valueobjects.NewNodeID(), entities.EdgeVariantContext)
		require.NoError(t, err)

		err = g.Load([]*entities.Node{nodeA, nodeB}, []*entities.Edge{orphan})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("duplicate pair in snapshot", func(t *testing.T) {
		g := newTestGraph(t)
		dup, err := entities.NewEdge(nodeA.ID(), nodeB.ID(), entities.EdgeVariantContext)
		require.NoError(t, err)

		err = g.Load([]*entities.Node{nodeA, nodeB}, []*entities.Edge{edgeAB, dup})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("failed load keeps previous snapshot", func(t *testing.T) {
		g := newTestGraph(t)
		require.NoError(t, g.Load([]*entities.Node{nodeA, nodeB}, []*entities.Edge{edgeAB}))

		orphan, err := entities.NewEdge(nodeA.ID(), valueobjects.NewNodeID(), entities.EdgeVariantContext)
		require.NoError(t, err)
		require.Error(t, g.Load([]*entities.Node{nodeA}, []*entities.Edge{orphan}))

		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.EdgeCount())
	})
}

func TestReverseAdjacencyOrder(t *testing.T) {
	g := newTestGraph(t)
	target := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})
	first := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
	second := addNode(t, g, &entities.DesignPayload{SourceURL: "https://ref.example"})
	third := addNode(t, g, &entities.GoalsPayload{})

	for _, source := range []*entities.Node{first, second, third} {
		_, err := g.ConnectNodes(source.ID(), target.ID(), entities.EdgeVariantContext)
		require.NoError(t, err)
	}

	sources := g.DirectSources(target.ID())
	require.Len(t, sources, 3)
	assert.True(t, sources[0].Equals(first.ID()))
	assert.True(t, sources[1].Equals(second.ID()))
	assert.True(t, sources[2].Equals(third.ID()))

	adj := g.ReverseAdjacency()
	assert.Len(t, adj[target.ID()], 3)
	_, hasEntry := adj[first.ID()]
	assert.False(t, hasEntry, "nodes without incoming edges are omitted")
}
