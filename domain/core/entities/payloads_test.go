package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "sitecanvas-backend/pkg/errors"
)

func TestPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantErr bool
	}{
		{
			name:    "valid project",
			payload: &ProjectPayload{Name: "Acme Site", Industry: "retail"},
		},
		{
			name:    "project without name",
			payload: &ProjectPayload{Description: "no name"},
			wantErr: true,
		},
		{
			name:    "valid competitor",
			payload: &CompetitorPayload{URL: "https://rival.example"},
		},
		{
			name:    "competitor without url",
			payload: &CompetitorPayload{Name: "Rival"},
			wantErr: true,
		},
		{
			name:    "valid design",
			payload: &DesignPayload{SourceURL: "https://dribbble.example/shot/1"},
		},
		{
			name:    "design without source",
			payload: &DesignPayload{},
			wantErr: true,
		},
		{
			name: "valid goals",
			payload: &GoalsPayload{Objectives: []Objective{
				{Description: "Increase signups", Priority: 1, Measurable: true},
			}},
		},
		{
			name: "goals with blank objective",
			payload: &GoalsPayload{Objectives: []Objective{
				{Description: "   ", Priority: 1},
			}},
			wantErr: true,
		},
		{
			name:    "valid page",
			payload: &PagePayload{Name: "Home", Route: "/"},
		},
		{
			name:    "page with empty route",
			payload: &PagePayload{Name: "Home", Route: ""},
			wantErr: true,
		},
		{
			name:    "page route without leading slash",
			payload: &PagePayload{Name: "Home", Route: "home"},
			wantErr: true,
		},
		{
			name:    "valid section",
			payload: &SectionPayload{Name: "Hero", Kind: "hero"},
		},
		{
			name:    "section without kind",
			payload: &SectionPayload{Name: "Hero"},
			wantErr: true,
		},
		{
			name:    "valid feature",
			payload: &FeaturePayload{Name: "Newsletter signup", Status: FeatureProposed},
		},
		{
			name:    "feature with unknown status",
			payload: &FeaturePayload{Name: "Newsletter signup", Status: "shipped"},
			wantErr: true,
		},
		{
			name:    "valid prd",
			payload: &PRDPayload{Content: "# PRD", Format: "markdown", Version: 1},
		},
		{
			name:    "prd with bad format",
			payload: &PRDPayload{Content: "# PRD", Format: "docx"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsInvalidPayload(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	payload := &CompetitorPayload{
		URL:    "https://rival.example",
		Status: StatusComplete,
		Analysis: &CompetitorAnalysis{
			Strengths: []string{"clear pricing"},
		},
	}

	clone := payload.Clone().(*CompetitorPayload)
	clone.Analysis.Strengths[0] = "mutated"
	clone.URL = "https://other.example"

	assert.Equal(t, "clear pricing", payload.Analysis.Strengths[0])
	assert.Equal(t, "https://rival.example", payload.URL)
}

func TestMergePayload(t *testing.T) {
	t.Run("merge keeps unspecified fields", func(t *testing.T) {
		payload := &ProjectPayload{
			Name:     "Acme Site",
			Industry: "retail",
			Audience: "DIY shoppers",
		}
		newName := "Acme Storefront"

		merged, err := mergePayload(payload, ProjectPatch{Name: &newName})
		require.NoError(t, err)

		p := merged.(*ProjectPayload)
		assert.Equal(t, "Acme Storefront", p.Name)
		assert.Equal(t, "retail", p.Industry)
		assert.Equal(t, "DIY shoppers", p.Audience)
		// Original untouched.
		assert.Equal(t, "Acme Site", payload.Name)
	})

	t.Run("merged result breaking invariants is rejected", func(t *testing.T) {
		payload := &PagePayload{Name: "Pricing", Route: "/pricing"}
		empty := ""

		_, err := mergePayload(payload, PagePatch{Route: &empty})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidPayload(err))
		assert.Equal(t, "/pricing", payload.Route)
	})

	t.Run("variant mismatch is rejected", func(t *testing.T) {
		payload := &ProjectPayload{Name: "Acme Site"}
		kind := "hero"

		_, err := mergePayload(payload, SectionPatch{Kind: &kind})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidPayload(err))
	})
}

func TestNodeVariantGenerationKind(t *testing.T) {
	tests := []struct {
		variant  NodeVariant
		kind     GenerationKind
		supports bool
	}{
		{VariantProject, "", false},
		{VariantCompetitor, KindAnalysis, true},
		{VariantDesign, KindAnalysis, true},
		{VariantGoals, "", false},
		{VariantPage, KindPRD, true},
		{VariantSection, KindCode, true},
		{VariantFeature, "", false},
		{VariantPRD, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			kind, ok := tt.variant.GenerationKind()
			assert.Equal(t, tt.supports, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}

	// The table above must cover the closed set exactly.
	assert.Len(t, tests, len(AllNodeVariants()))
}

func TestParseNodeVariant(t *testing.T) {
	for _, v := range AllNodeVariants() {
		parsed, err := ParseNodeVariant(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := ParseNodeVariant("widget")
	assert.Error(t, err)
}
