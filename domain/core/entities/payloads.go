package entities

import (
	"strings"

	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// Payload is the closed sum of node payload shapes. The unexported method
// seals the interface: only the variants in this package can implement it,
// so dispatch sites can rely on the set being closed.
type Payload interface {
	Variant() NodeVariant
	Validate() error
	Clone() Payload

	sealedPayload()
}

// generable is implemented by the payloads that carry a live generation
// status. Variants outside this set reject BeginGeneration.
type generable interface {
	generationStatus() GenerationStatus
	setGenerationStatus(GenerationStatus)
	installResult(content string, metadata map[string]interface{}, version int)
}

// --- Project ---

// ProjectPayload describes the website being planned.
type ProjectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Audience    string `json:"audience,omitempty"`
	BrandVoice  string `json:"brandVoice,omitempty"`
}

func (p *ProjectPayload) Variant() NodeVariant { return VariantProject }

func (p *ProjectPayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return pkgerrors.NewInvalidPayloadError("project name cannot be empty")
	}
	return nil
}

func (p *ProjectPayload) Clone() Payload {
	clone := *p
	return &clone
}

func (p *ProjectPayload) sealedPayload() {}

// --- Competitor ---

// CompetitorAnalysis holds the result of analyzing a competitor site.
type CompetitorAnalysis struct {
	Summary        string   `json:"summary,omitempty"`
	Strengths      []string `json:"strengths,omitempty"`
	DesignPatterns []string `json:"designPatterns,omitempty"`
	CTAs           []string `json:"ctas,omitempty"`
}

// CompetitorPayload points at a competitor site and carries its analysis.
type CompetitorPayload struct {
	URL      string              `json:"url"`
	Name     string              `json:"name,omitempty"`
	Status   GenerationStatus    `json:"status"`
	Analysis *CompetitorAnalysis `json:"analysis,omitempty"`
}

func (p *CompetitorPayload) Variant() NodeVariant { return VariantCompetitor }

func (p *CompetitorPayload) Validate() error {
	if strings.TrimSpace(p.URL) == "" {
		return pkgerrors.NewInvalidPayloadError("competitor url cannot be empty")
	}
	return nil
}

func (p *CompetitorPayload) Clone() Payload {
	clone := *p
	if p.Analysis != nil {
		a := *p.Analysis
		a.Strengths = append([]string(nil), p.Analysis.Strengths...)
		a.DesignPatterns = append([]string(nil), p.Analysis.DesignPatterns...)
		a.CTAs = append([]string(nil), p.Analysis.CTAs...)
		clone.Analysis = &a
	}
	return &clone
}

func (p *CompetitorPayload) sealedPayload() {}

func (p *CompetitorPayload) generationStatus() GenerationStatus     { return p.Status }
func (p *CompetitorPayload) setGenerationStatus(s GenerationStatus) { p.Status = s }

func (p *CompetitorPayload) installResult(content string, metadata map[string]interface{}, _ int) {
	p.Analysis = &CompetitorAnalysis{
		Summary:        content,
		Strengths:      stringSliceFromMeta(metadata, "strengths"),
		DesignPatterns: stringSliceFromMeta(metadata, "design_patterns"),
		CTAs:           stringSliceFromMeta(metadata, "ctas"),
	}
}

// --- Design ---

// DesignExtraction holds the result of extracting a reference design.
type DesignExtraction struct {
	StyleMood      string   `json:"styleMood,omitempty"`
	LayoutPatterns []string `json:"layoutPatterns,omitempty"`
	Components     []string `json:"components,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// DesignPayload points at a reference design and carries its extraction.
type DesignPayload struct {
	SourceURL  string            `json:"sourceUrl"`
	Status     GenerationStatus  `json:"status"`
	Extraction *DesignExtraction `json:"extraction,omitempty"`
}

func (p *DesignPayload) Variant() NodeVariant { return VariantDesign }

func (p *DesignPayload) Validate() error {
	if strings.TrimSpace(p.SourceURL) == "" {
		return pkgerrors.NewInvalidPayloadError("design source url cannot be empty")
	}
	return nil
}

func (p *DesignPayload) Clone() Payload {
	clone := *p
	if p.Extraction != nil {
		e := *p.Extraction
		e.LayoutPatterns = append([]string(nil), p.Extraction.LayoutPatterns...)
		e.Components = append([]string(nil), p.Extraction.Components...)
		clone.Extraction = &e
	}
	return &clone
}

func (p *DesignPayload) sealedPayload() {}

func (p *DesignPayload) generationStatus() GenerationStatus     { return p.Status }
func (p *DesignPayload) setGenerationStatus(s GenerationStatus) { p.Status = s }

func (p *DesignPayload) installResult(content string, metadata map[string]interface{}, _ int) {
	p.Extraction = &DesignExtraction{
		StyleMood:      stringFromMeta(metadata, "style_mood"),
		LayoutPatterns: stringSliceFromMeta(metadata, "layout_patterns"),
		Components:     stringSliceFromMeta(metadata, "components"),
		Notes:          content,
	}
}

// --- Goals ---

// Objective is one measurable goal for the site.
type Objective struct {
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Measurable  bool   `json:"measurable"`
}

// GoalsPayload lists the project's objectives.
type GoalsPayload struct {
	Objectives []Objective `json:"objectives"`
}

func (p *GoalsPayload) Variant() NodeVariant { return VariantGoals }

func (p *GoalsPayload) Validate() error {
	for _, obj := range p.Objectives {
		if strings.TrimSpace(obj.Description) == "" {
			return pkgerrors.NewInvalidPayloadError("objective description cannot be empty")
		}
	}
	return nil
}

func (p *GoalsPayload) Clone() Payload {
	clone := *p
	clone.Objectives = append([]Objective(nil), p.Objectives...)
	return &clone
}

func (p *GoalsPayload) sealedPayload() {}

// --- Page ---

// SEOMeta holds page-level search metadata.
type SEOMeta struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// PRDAttachment is the live pointer to a page's latest generated PRD. The
// full history lives in the generation-record log.
type PRDAttachment struct {
	Content string `json:"content"`
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// PagePayload describes one page of the planned site.
type PagePayload struct {
	Name       string                `json:"name"`
	Route      string                `json:"route"`
	SEO        SEOMeta               `json:"seo"`
	SectionIDs []valueobjects.NodeID `json:"sectionIds,omitempty"`
	Status     GenerationStatus      `json:"status"`
	PRD        *PRDAttachment        `json:"prd,omitempty"`
}

func (p *PagePayload) Variant() NodeVariant { return VariantPage }

func (p *PagePayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return pkgerrors.NewInvalidPayloadError("page name cannot be empty")
	}
	if strings.TrimSpace(p.Route) == "" {
		return pkgerrors.NewInvalidPayloadError("page route cannot be empty")
	}
	if !strings.HasPrefix(p.Route, "/") {
		return pkgerrors.NewInvalidPayloadError("page route must start with /")
	}
	return nil
}

func (p *PagePayload) Clone() Payload {
	clone := *p
	clone.SEO.Keywords = append([]string(nil), p.SEO.Keywords...)
	clone.SectionIDs = append([]valueobjects.NodeID(nil), p.SectionIDs...)
	if p.PRD != nil {
		prd := *p.PRD
		clone.PRD = &prd
	}
	return &clone
}

func (p *PagePayload) sealedPayload() {}

func (p *PagePayload) generationStatus() GenerationStatus     { return p.Status }
func (p *PagePayload) setGenerationStatus(s GenerationStatus) { p.Status = s }

func (p *PagePayload) installResult(content string, metadata map[string]interface{}, version int) {
	format := stringFromMeta(metadata, "format")
	if format == "" {
		format = "markdown"
	}
	p.PRD = &PRDAttachment{Content: content, Format: format, Version: version}
}

// --- Section ---

// SectionContent is the live pointer to a section's latest generated code.
type SectionContent struct {
	Code    string `json:"code"`
	Version int    `json:"version"`
}

// SectionPayload describes one section of a page.
type SectionPayload struct {
	Name        string                 `json:"name"`
	Kind        string                 `json:"kind"`
	Description string                 `json:"description,omitempty"`
	Config      map[string]interface{} `json:"config,omitempty"`
	Status      GenerationStatus       `json:"status"`
	Generated   *SectionContent        `json:"generated,omitempty"`
}

func (p *SectionPayload) Variant() NodeVariant { return VariantSection }

func (p *SectionPayload) Validate() error {
	if strings.TrimSpace(p.Kind) == "" {
		return pkgerrors.NewInvalidPayloadError("section kind cannot be empty")
	}
	return nil
}

func (p *SectionPayload) Clone() Payload {
	clone := *p
	if p.Config != nil {
		cfg := make(map[string]interface{}, len(p.Config))
		for k, v := range p.Config {
			cfg[k] = v
		}
		clone.Config = cfg
	}
	if p.Generated != nil {
		gen := *p.Generated
		clone.Generated = &gen
	}
	return &clone
}

func (p *SectionPayload) sealedPayload() {}

func (p *SectionPayload) generationStatus() GenerationStatus     { return p.Status }
func (p *SectionPayload) setGenerationStatus(s GenerationStatus) { p.Status = s }

func (p *SectionPayload) installResult(content string, _ map[string]interface{}, version int) {
	p.Generated = &SectionContent{Code: content, Version: version}
}

// --- Feature ---

// FeatureStatus tracks a feature through planning. Features are planned by
// hand, not generated, so this is not a GenerationStatus.
type FeatureStatus string

const (
	FeatureProposed FeatureStatus = "proposed"
	FeatureApproved FeatureStatus = "approved"
	FeatureBuilt    FeatureStatus = "built"
)

// FeaturePayload describes a planned site feature.
type FeaturePayload struct {
	Name         string        `json:"name"`
	Requirements []string      `json:"requirements,omitempty"`
	Status       FeatureStatus `json:"status"`
}

func (p *FeaturePayload) Variant() NodeVariant { return VariantFeature }

func (p *FeaturePayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return pkgerrors.NewInvalidPayloadError("feature name cannot be empty")
	}
	switch p.Status {
	case FeatureProposed, FeatureApproved, FeatureBuilt, "":
		return nil
	}
	return pkgerrors.NewInvalidPayloadError("unknown feature status: " + string(p.Status))
}

func (p *FeaturePayload) Clone() Payload {
	clone := *p
	clone.Requirements = append([]string(nil), p.Requirements...)
	return &clone
}

func (p *FeaturePayload) sealedPayload() {}

// --- PRD ---

// PRDPayload is a standalone PRD artifact pinned onto the canvas.
type PRDPayload struct {
	SourceNodeIDs []valueobjects.NodeID `json:"sourceNodeIds,omitempty"`
	Content       string                `json:"content"`
	Format        string                `json:"format"`
	Version       int                   `json:"version"`
}

func (p *PRDPayload) Variant() NodeVariant { return VariantPRD }

func (p *PRDPayload) Validate() error {
	switch p.Format {
	case "markdown", "json", "":
	default:
		return pkgerrors.NewInvalidPayloadError("prd format must be markdown or json")
	}
	if p.Version < 0 {
		return pkgerrors.NewInvalidPayloadError("prd version cannot be negative")
	}
	return nil
}

func (p *PRDPayload) Clone() Payload {
	clone := *p
	clone.SourceNodeIDs = append([]valueobjects.NodeID(nil), p.SourceNodeIDs...)
	return &clone
}

func (p *PRDPayload) sealedPayload() {}

// --- metadata helpers ---

func stringFromMeta(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

func stringSliceFromMeta(meta map[string]interface{}, key string) []string {
	if meta == nil {
		return nil
	}
	switch v := meta[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
