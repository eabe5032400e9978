package entities

import (
	"fmt"

	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// Patch is the closed sum of partial-payload shapes for configuration-form
// edits. A patch only carries the fields the caller wants to change; nil
// pointer fields are left untouched by the merge. Patches never touch the
// live generation status or result fields, those move only through the
// lifecycle manager.
type Patch interface {
	Variant() NodeVariant

	sealedPatch()
}

// ProjectPatch updates ProjectPayload fields.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Audience    *string `json:"audience,omitempty"`
	BrandVoice  *string `json:"brandVoice,omitempty"`
}

func (ProjectPatch) Variant() NodeVariant { return VariantProject }
func (ProjectPatch) sealedPatch()         {}

// CompetitorPatch updates CompetitorPayload fields.
type CompetitorPatch struct {
	URL  *string `json:"url,omitempty"`
	Name *string `json:"name,omitempty"`
}

func (CompetitorPatch) Variant() NodeVariant { return VariantCompetitor }
func (CompetitorPatch) sealedPatch()         {}

// DesignPatch updates DesignPayload fields.
type DesignPatch struct {
	SourceURL *string `json:"sourceUrl,omitempty"`
}

func (DesignPatch) Variant() NodeVariant { return VariantDesign }
func (DesignPatch) sealedPatch()         {}

// GoalsPatch replaces the objective list when present.
type GoalsPatch struct {
	Objectives *[]Objective `json:"objectives,omitempty"`
}

func (GoalsPatch) Variant() NodeVariant { return VariantGoals }
func (GoalsPatch) sealedPatch()         {}

// PagePatch updates PagePayload fields.
type PagePatch struct {
	Name       *string                `json:"name,omitempty"`
	Route      *string                `json:"route,omitempty"`
	SEO        *SEOMeta               `json:"seo,omitempty"`
	SectionIDs *[]valueobjects.NodeID `json:"sectionIds,omitempty"`
}

func (PagePatch) Variant() NodeVariant { return VariantPage }
func (PagePatch) sealedPatch()         {}

// SectionPatch updates SectionPayload fields.
type SectionPatch struct {
	Name        *string                 `json:"name,omitempty"`
	Kind        *string                 `json:"kind,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Config      *map[string]interface{} `json:"config,omitempty"`
}

func (SectionPatch) Variant() NodeVariant { return VariantSection }
func (SectionPatch) sealedPatch()         {}

// FeaturePatch updates FeaturePayload fields.
type FeaturePatch struct {
	Name         *string        `json:"name,omitempty"`
	Requirements *[]string      `json:"requirements,omitempty"`
	Status       *FeatureStatus `json:"status,omitempty"`
}

func (FeaturePatch) Variant() NodeVariant { return VariantFeature }
func (FeaturePatch) sealedPatch()         {}

// PRDPatch updates PRDPayload fields.
type PRDPatch struct {
	Content *string `json:"content,omitempty"`
	Format  *string `json:"format,omitempty"`
}

func (PRDPatch) Variant() NodeVariant { return VariantPRD }
func (PRDPatch) sealedPatch()         {}

// mergePayload applies a patch to a copy of the payload and validates the
// merged result. The original payload is untouched on failure.
func mergePayload(payload Payload, patch Patch) (Payload, error) {
	if payload.Variant() != patch.Variant() {
		return nil, pkgerrors.NewInvalidPayloadError(fmt.Sprintf(
			"patch variant %s does not match node variant %s",
			patch.Variant(), payload.Variant(),
		))
	}

	merged := payload.Clone()

	switch p := merged.(type) {
	case *ProjectPayload:
		applyProjectPatch(p, patch.(ProjectPatch))
	case *CompetitorPayload:
		applyCompetitorPatch(p, patch.(CompetitorPatch))
	case *DesignPayload:
		applyDesignPatch(p, patch.(DesignPatch))
	case *GoalsPayload:
		applyGoalsPatch(p, patch.(GoalsPatch))
	case *PagePayload:
		applyPagePatch(p, patch.(PagePatch))
	case *SectionPayload:
		applySectionPatch(p, patch.(SectionPatch))
	case *FeaturePayload:
		applyFeaturePatch(p, patch.(FeaturePatch))
	case *PRDPayload:
		applyPRDPatch(p, patch.(PRDPatch))
	default:
		return nil, pkgerrors.NewInvalidPayloadError(fmt.Sprintf(
			"no merge rule for variant %s", merged.Variant(),
		))
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func applyProjectPatch(p *ProjectPayload, patch ProjectPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Industry != nil {
		p.Industry = *patch.Industry
	}
	if patch.Audience != nil {
		p.Audience = *patch.Audience
	}
	if patch.BrandVoice != nil {
		p.BrandVoice = *patch.BrandVoice
	}
}

func applyCompetitorPatch(p *CompetitorPayload, patch CompetitorPatch) {
	if patch.URL != nil {
		p.URL = *patch.URL
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
}

func applyDesignPatch(p *DesignPayload, patch DesignPatch) {
	if patch.SourceURL != nil {
		p.SourceURL = *patch.SourceURL
	}
}

func applyGoalsPatch(p *GoalsPayload, patch GoalsPatch) {
	if patch.Objectives != nil {
		p.Objectives = append([]Objective(nil), (*patch.Objectives)...)
	}
}

func applyPagePatch(p *PagePayload, patch PagePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Route != nil {
		p.Route = *patch.Route
	}
	if patch.SEO != nil {
		p.SEO = *patch.SEO
	}
	if patch.SectionIDs != nil {
		p.SectionIDs = append([]valueobjects.NodeID(nil), (*patch.SectionIDs)...)
	}
}

func applySectionPatch(p *SectionPayload, patch SectionPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Kind != nil {
		p.Kind = *patch.Kind
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Config != nil {
		p.Config = *patch.Config
	}
}

func applyFeaturePatch(p *FeaturePayload, patch FeaturePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Requirements != nil {
		p.Requirements = append([]string(nil), (*patch.Requirements)...)
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
}

func applyPRDPatch(p *PRDPayload, patch PRDPatch) {
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Format != nil {
		p.Format = *patch.Format
	}
}
