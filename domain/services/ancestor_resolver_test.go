package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecanvas-backend/domain/core/aggregates"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

func newGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	g, err := aggregates.NewGraph(valueobjects.NewProjectID())
	require.NoError(t, err)
	return g
}

func addNode(t *testing.T, g *aggregates.Graph, payload entities.Payload) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	node, err := g.AddNode(payload, pos)
	require.NoError(t, err)
	return node
}

func connect(t *testing.T, g *aggregates.Graph, source, target *entities.Node) {
	t.Helper()
	_, err := g.ConnectNodes(source.ID(), target.ID(), entities.EdgeVariantContext)
	require.NoError(t, err)
}

func TestResolveAncestors(t *testing.T) {
	resolver := NewAncestorResolver()

	t.Run("unknown target", func(t *testing.T) {
		g := newGraph(t)
		_, err := resolver.Resolve(g, valueobjects.NewNodeID())
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("no incoming edges yields empty sequence", func(t *testing.T) {
		g := newGraph(t)
		node := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})

		result, err := resolver.Resolve(g, node.ID())
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("chain is walked breadth-first", func(t *testing.T) {
		// Project -> Design -> Page: resolving the page yields the
		// design first, then the project.
		g := newGraph(t)
		project := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
		design := addNode(t, g, &entities.DesignPayload{SourceURL: "https://ref.example"})
		page := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})
		connect(t, g, project, design)
		connect(t, g, design, page)

		result, err := resolver.Resolve(g, page.ID())
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.True(t, result[0].Equals(design.ID()))
		assert.True(t, result[1].Equals(project.ID()))
	})

	t.Run("diamond includes shared ancestor once", func(t *testing.T) {
		g := newGraph(t)
		root := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
		left := addNode(t, g, &entities.CompetitorPayload{URL: "https://a.example"})
		right := addNode(t, g, &entities.CompetitorPayload{URL: "https://b.example"})
		sink := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})
		connect(t, g, root, left)
		connect(t, g, root, right)
		connect(t, g, left, sink)
		connect(t, g, right, sink)

		result, err := resolver.Resolve(g, sink.ID())
		require.NoError(t, err)
		require.Len(t, result, 3)
		assert.True(t, result[0].Equals(left.ID()))
		assert.True(t, result[1].Equals(right.ID()))
		assert.True(t, result[2].Equals(root.ID()))
	})

	t.Run("cycle terminates with each node once", func(t *testing.T) {
		g := newGraph(t)
		a := addNode(t, g, &entities.FeaturePayload{Name: "Search"})
		b := addNode(t, g, &entities.FeaturePayload{Name: "Filters"})
		sink := addNode(t, g, &entities.SectionPayload{Kind: "hero"})
		connect(t, g, a, b)
		connect(t, g, b, a)
		connect(t, g, b, sink)

		result, err := resolver.Resolve(g, sink.ID())
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.True(t, result[0].Equals(b.ID()))
		assert.True(t, result[1].Equals(a.ID()))
	})

	t.Run("target never appears in its own ancestry", func(t *testing.T) {
		g := newGraph(t)
		a := addNode(t, g, &entities.FeaturePayload{Name: "Search"})
		b := addNode(t, g, &entities.FeaturePayload{Name: "Filters"})
		connect(t, g, a, b)
		connect(t, g, b, a)

		result, err := resolver.Resolve(g, a.ID())
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.True(t, result[0].Equals(b.ID()))
	})

	t.Run("repeat resolution is identical", func(t *testing.T) {
		g := newGraph(t)
		project := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
		goals := addNode(t, g, &entities.GoalsPayload{})
		page := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})
		connect(t, g, project, page)
		connect(t, g, goals, page)

		first, err := resolver.Resolve(g, page.ID())
		require.NoError(t, err)
		second, err := resolver.Resolve(g, page.ID())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("cascade removal prunes ancestry", func(t *testing.T) {
		// P1 -> D1 -> G1: removing D1 leaves G1 with no ancestors,
		// since the only path from P1 ran through D1.
		g := newGraph(t)
		p1 := addNode(t, g, &entities.ProjectPayload{Name: "Acme Site"})
		d1 := addNode(t, g, &entities.DesignPayload{SourceURL: "https://ref.example"})
		g1 := addNode(t, g, &entities.PagePayload{Name: "Home", Route: "/"})
		connect(t, g, p1, d1)
		connect(t, g, d1, g1)

		g.RemoveNode(d1.ID())

		result, err := resolver.Resolve(g, g1.ID())
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}
