package services

import (
	"fmt"

	"sitecanvas-backend/domain/core/entities"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// ContextSummary is the normalized, variant-specific field subset extracted
// from an ancestor node for use as generation input. Exactly one of the
// per-variant context pointers is set. A node whose result field is absent
// (e.g. a competitor never analyzed) is projected with Pending=true and its
// identifying Label only, so downstream consumers can tell "not yet
// analyzed" apart from "not connected".
type ContextSummary struct {
	NodeID  string               `json:"nodeId"`
	Variant entities.NodeVariant `json:"variant"`
	Label   string               `json:"label"`
	Pending bool                 `json:"pending,omitempty"`

	Project    *ProjectContext    `json:"project,omitempty"`
	Competitor *CompetitorContext `json:"competitor,omitempty"`
	Design     *DesignContext     `json:"design,omitempty"`
	Goals      *GoalsContext      `json:"goals,omitempty"`
	Page       *PageContext       `json:"page,omitempty"`
	Section    *SectionContext    `json:"section,omitempty"`
	Feature    *FeatureContext    `json:"feature,omitempty"`
	PRD        *PRDContext        `json:"prd,omitempty"`
}

// ProjectContext carries the brand brief.
type ProjectContext struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Audience    string `json:"audience,omitempty"`
	BrandVoice  string `json:"brandVoice,omitempty"`
}

// CompetitorContext carries the analysis result of a competitor site.
type CompetitorContext struct {
	Strengths      []string `json:"strengths,omitempty"`
	DesignPatterns []string `json:"designPatterns,omitempty"`
	CTAs           []string `json:"ctas,omitempty"`
	Summary        string   `json:"summary,omitempty"`
}

// DesignContext carries the extraction result of a reference design.
type DesignContext struct {
	StyleMood      string   `json:"styleMood,omitempty"`
	LayoutPatterns []string `json:"layoutPatterns,omitempty"`
	Components     []string `json:"components,omitempty"`
}

// GoalsContext carries the flattened objective list.
type GoalsContext struct {
	Objectives []string `json:"objectives"`
}

// PageContext carries page identity and routing.
type PageContext struct {
	Name     string `json:"name"`
	Route    string `json:"route"`
	SEOTitle string `json:"seoTitle,omitempty"`
}

// SectionContext carries section identity.
type SectionContext struct {
	Name        string `json:"name,omitempty"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// FeatureContext carries feature requirements.
type FeatureContext struct {
	Name         string   `json:"name"`
	Requirements []string `json:"requirements,omitempty"`
}

// PRDContext carries a generated PRD artifact.
type PRDContext struct {
	Content string `json:"content"`
	Format  string `json:"format,omitempty"`
	Version int    `json:"version,omitempty"`
}

// ContextProjector maps ancestor nodes to generation-relevant summaries.
type ContextProjector struct{}

// NewContextProjector creates a context projector.
func NewContextProjector() *ContextProjector {
	return &ContextProjector{}
}

// Project converts an ordered node sequence into an ordered summary
// sequence, preserving input order. The dispatch is exhaustive over the
// closed payload set; an unhandled variant is an error, never a silent skip.
func (p *ContextProjector) Project(nodes []*entities.Node) ([]ContextSummary, error) {
	summaries := make([]ContextSummary, 0, len(nodes))
	for _, node := range nodes {
		summary, err := p.projectOne(node)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ProjectOne summarizes a single node. Generation uses it for the target
// node itself, separate from the ancestor sequence.
func (p *ContextProjector) ProjectOne(node *entities.Node) (ContextSummary, error) {
	return p.projectOne(node)
}

func (p *ContextProjector) projectOne(node *entities.Node) (ContextSummary, error) {
	summary := ContextSummary{
		NodeID:  node.ID().String(),
		Variant: node.Variant(),
	}

	switch payload := node.Payload().(type) {
	case *entities.ProjectPayload:
		summary.Label = payload.Name
		summary.Project = &ProjectContext{
			Name:        payload.Name,
			Description: payload.Description,
			Industry:    payload.Industry,
			Audience:    payload.Audience,
			BrandVoice:  payload.BrandVoice,
		}

	case *entities.CompetitorPayload:
		summary.Label = payload.URL
		if payload.Analysis == nil {
			summary.Pending = true
			break
		}
		summary.Competitor = &CompetitorContext{
			Strengths:      payload.Analysis.Strengths,
			DesignPatterns: payload.Analysis.DesignPatterns,
			CTAs:           payload.Analysis.CTAs,
			Summary:        payload.Analysis.Summary,
		}

	case *entities.DesignPayload:
		summary.Label = payload.SourceURL
		if payload.Extraction == nil {
			summary.Pending = true
			break
		}
		summary.Design = &DesignContext{
			StyleMood:      payload.Extraction.StyleMood,
			LayoutPatterns: payload.Extraction.LayoutPatterns,
			Components:     payload.Extraction.Components,
		}

	case *entities.GoalsPayload:
		summary.Label = "goals"
		objectives := make([]string, 0, len(payload.Objectives))
		for _, obj := range payload.Objectives {
			line := fmt.Sprintf("P%d: %s", obj.Priority, obj.Description)
			if obj.Measurable {
				line += " (measurable)"
			}
			objectives = append(objectives, line)
		}
		summary.Goals = &GoalsContext{Objectives: objectives}

	case *entities.PagePayload:
		summary.Label = payload.Route
		summary.Page = &PageContext{
			Name:     payload.Name,
			Route:    payload.Route,
			SEOTitle: payload.SEO.Title,
		}

	case *entities.SectionPayload:
		summary.Label = payload.Kind
		summary.Section = &SectionContext{
			Name:        payload.Name,
			Kind:        payload.Kind,
			Description: payload.Description,
		}

	case *entities.FeaturePayload:
		summary.Label = payload.Name
		summary.Feature = &FeatureContext{
			Name:         payload.Name,
			Requirements: payload.Requirements,
		}

	case *entities.PRDPayload:
		summary.Label = fmt.Sprintf("prd v%d", payload.Version)
		summary.PRD = &PRDContext{
			Content: payload.Content,
			Format:  payload.Format,
			Version: payload.Version,
		}

	default:
		return ContextSummary{}, pkgerrors.NewInvalidPayloadError(fmt.Sprintf(
			"no projection rule for variant %s", node.Variant(),
		))
	}

	return summary, nil
}
