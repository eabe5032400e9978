package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
)

func newNode(t *testing.T, payload entities.Payload) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	node, err := entities.NewNode(payload, pos)
	require.NoError(t, err)
	return node
}

// minimalPayload builds a valid payload for each member of the closed
// variant set; the exhaustiveness test below feeds every one through the
// projector.
func minimalPayload(t *testing.T, variant entities.NodeVariant) entities.Payload {
	t.Helper()
	switch variant {
	case entities.VariantProject:
		return &entities.ProjectPayload{Name: "Acme Site"}
	case entities.VariantCompetitor:
		return &entities.CompetitorPayload{URL: "https://rival.example"}
	case entities.VariantDesign:
		return &entities.DesignPayload{SourceURL: "https://ref.example"}
	case entities.VariantGoals:
		return &entities.GoalsPayload{}
	case entities.VariantPage:
		return &entities.PagePayload{Name: "Home", Route: "/"}
	case entities.VariantSection:
		return &entities.SectionPayload{Kind: "hero"}
	case entities.VariantFeature:
		return &entities.FeaturePayload{Name: "Search"}
	case entities.VariantPRD:
		return &entities.PRDPayload{Content: "# PRD", Format: "markdown", Version: 1}
	}
	t.Fatalf("minimalPayload missing a case for variant %s", variant)
	return nil
}

func TestProjectIsVariantExhaustive(t *testing.T) {
	projector := NewContextProjector()

	for _, variant := range entities.AllNodeVariants() {
		t.Run(string(variant), func(t *testing.T) {
			node := newNode(t, minimalPayload(t, variant))

			summaries, err := projector.Project([]*entities.Node{node})
			require.NoError(t, err, "every variant must have a projection rule")
			require.Len(t, summaries, 1)
			assert.Equal(t, variant, summaries[0].Variant)
			assert.NotEmpty(t, summaries[0].Label)
		})
	}
}

func TestProjectPreservesOrder(t *testing.T) {
	projector := NewContextProjector()

	design := newNode(t, &entities.DesignPayload{SourceURL: "https://ref.example"})
	project := newNode(t, &entities.ProjectPayload{Name: "Acme Site"})
	goals := newNode(t, &entities.GoalsPayload{Objectives: []entities.Objective{
		{Description: "Increase signups", Priority: 1, Measurable: true},
	}})

	summaries, err := projector.Project([]*entities.Node{design, project, goals})
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, design.ID().String(), summaries[0].NodeID)
	assert.Equal(t, project.ID().String(), summaries[1].NodeID)
	assert.Equal(t, goals.ID().String(), summaries[2].NodeID)
}

func TestProjectPendingStubs(t *testing.T) {
	projector := NewContextProjector()

	t.Run("unanalyzed competitor projects as stub", func(t *testing.T) {
		node := newNode(t, &entities.CompetitorPayload{URL: "https://rival.example"})

		summaries, err := projector.Project([]*entities.Node{node})
		require.NoError(t, err)
		require.Len(t, summaries, 1)

		summary := summaries[0]
		assert.True(t, summary.Pending)
		assert.Equal(t, "https://rival.example", summary.Label)
		assert.Nil(t, summary.Competitor)
	})

	t.Run("analyzed competitor projects fields", func(t *testing.T) {
		node := newNode(t, &entities.CompetitorPayload{
			URL:    "https://rival.example",
			Status: entities.StatusComplete,
			Analysis: &entities.CompetitorAnalysis{
				Strengths: []string{"clear pricing"},
				CTAs:      []string{"Start free trial"},
			},
		})

		summaries, err := projector.Project([]*entities.Node{node})
		require.NoError(t, err)

		summary := summaries[0]
		assert.False(t, summary.Pending)
		require.NotNil(t, summary.Competitor)
		assert.Equal(t, []string{"clear pricing"}, summary.Competitor.Strengths)
	})

	t.Run("unextracted design projects as stub", func(t *testing.T) {
		node := newNode(t, &entities.DesignPayload{SourceURL: "https://ref.example"})

		summaries, err := projector.Project([]*entities.Node{node})
		require.NoError(t, err)
		assert.True(t, summaries[0].Pending)
		assert.Nil(t, summaries[0].Design)
	})
}

func TestProjectScenario(t *testing.T) {
	// Project P1 -> Design D1 (style_mood "Modern") -> Page G1. Projecting
	// G1's resolved ancestry yields the design summary then the project
	// summary.
	projector := NewContextProjector()

	d1 := newNode(t, &entities.DesignPayload{
		SourceURL: "https://ref.example",
		Status:    entities.StatusComplete,
		Extraction: &entities.DesignExtraction{
			StyleMood:      "Modern",
			LayoutPatterns: []string{"asymmetric grid"},
		},
	})
	p1 := newNode(t, &entities.ProjectPayload{Name: "Acme Site", BrandVoice: "friendly"})

	summaries, err := projector.Project([]*entities.Node{d1, p1})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, entities.VariantDesign, summaries[0].Variant)
	require.NotNil(t, summaries[0].Design)
	assert.Equal(t, "Modern", summaries[0].Design.StyleMood)

	assert.Equal(t, entities.VariantProject, summaries[1].Variant)
	require.NotNil(t, summaries[1].Project)
	assert.Equal(t, "Acme Site", summaries[1].Project.Name)
}

func TestProjectFlattensObjectives(t *testing.T) {
	projector := NewContextProjector()

	node := newNode(t, &entities.GoalsPayload{Objectives: []entities.Objective{
		{Description: "Increase signups", Priority: 1, Measurable: true},
		{Description: "Grow newsletter", Priority: 2},
	}})

	summaries, err := projector.Project([]*entities.Node{node})
	require.NoError(t, err)
	require.NotNil(t, summaries[0].Goals)
	assert.Equal(t, []string{
		"P1: Increase signups (measurable)",
		"P2: Grow newsletter",
	}, summaries[0].Goals.Objectives)
}
