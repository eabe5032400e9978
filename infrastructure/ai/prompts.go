package ai

import (
	"fmt"
	"strings"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/services"
)

// PromptBuilder renders provider-ready prompts from a target node and its
// projected ancestor context.
type PromptBuilder struct{}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build assembles the prompt for one generation run. Unanalyzed ancestors
// are rendered as explicitly pending rather than dropped, so the model
// knows the context is incomplete rather than absent.
func (b *PromptBuilder) Build(
	kind entities.GenerationKind,
	target services.ContextSummary,
	ancestors []services.ContextSummary,
	scraped *ports.ScrapedSite,
) string {
	var sb strings.Builder

	switch {
	case kind == entities.KindAnalysis && target.Variant == entities.VariantCompetitor:
		sb.WriteString("You are a web strategy analyst. Analyze the following competitor website.\n\n")
	case kind == entities.KindAnalysis && target.Variant == entities.VariantDesign:
		sb.WriteString("You are a design analyst. Extract the visual language of the following reference design.\n\n")
	case kind == entities.KindPRD:
		sb.WriteString("You are a product manager. Write a product requirements document for the following website page.\n\n")
	case kind == entities.KindCode:
		sb.WriteString("You are a front-end engineer. Write a single React component implementing the following website section.\n\n")
	}

	b.writeTarget(&sb, target)

	if scraped != nil {
		sb.WriteString("Fetched site content:\n")
		if scraped.Title != "" {
			sb.WriteString("Title: " + scraped.Title + "\n")
		}
		sb.WriteString(scraped.Content)
		sb.WriteString("\n\n")
	}

	if len(ancestors) > 0 {
		sb.WriteString("Planning context, nearest first:\n")
		for _, summary := range ancestors {
			b.writeSummary(&sb, summary)
		}
		sb.WriteString("\n")
	}

	b.writeInstructions(&sb, kind, target.Variant)
	return sb.String()
}

func (b *PromptBuilder) writeTarget(sb *strings.Builder, target services.ContextSummary) {
	fmt.Fprintf(sb, "Target %s: %s\n", target.Variant, target.Label)
	if target.Page != nil {
		fmt.Fprintf(sb, "Page name: %s\nRoute: %s\n", target.Page.Name, target.Page.Route)
		if target.Page.SEOTitle != "" {
			fmt.Fprintf(sb, "SEO title: %s\n", target.Page.SEOTitle)
		}
	}
	if target.Section != nil {
		fmt.Fprintf(sb, "Section kind: %s\n", target.Section.Kind)
		if target.Section.Description != "" {
			fmt.Fprintf(sb, "Description: %s\n", target.Section.Description)
		}
	}
	sb.WriteString("\n")
}

func (b *PromptBuilder) writeSummary(sb *strings.Builder, summary services.ContextSummary) {
	if summary.Pending {
		fmt.Fprintf(sb, "- %s %q (not yet analyzed)\n", summary.Variant, summary.Label)
		return
	}

	switch {
	case summary.Project != nil:
		fmt.Fprintf(sb, "- project %q", summary.Project.Name)
		if summary.Project.Industry != "" {
			fmt.Fprintf(sb, ", industry: %s", summary.Project.Industry)
		}
		if summary.Project.Audience != "" {
			fmt.Fprintf(sb, ", audience: %s", summary.Project.Audience)
		}
		if summary.Project.BrandVoice != "" {
			fmt.Fprintf(sb, ", brand voice: %s", summary.Project.BrandVoice)
		}
		sb.WriteString("\n")
		if summary.Project.Description != "" {
			fmt.Fprintf(sb, "  %s\n", summary.Project.Description)
		}
	case summary.Competitor != nil:
		fmt.Fprintf(sb, "- competitor %q: %s\n", summary.Label, summary.Competitor.Summary)
		writeList(sb, "strengths", summary.Competitor.Strengths)
		writeList(sb, "design patterns", summary.Competitor.DesignPatterns)
		writeList(sb, "CTAs", summary.Competitor.CTAs)
	case summary.Design != nil:
		fmt.Fprintf(sb, "- reference design %q, mood: %s\n", summary.Label, summary.Design.StyleMood)
		writeList(sb, "layout patterns", summary.Design.LayoutPatterns)
		writeList(sb, "components", summary.Design.Components)
	case summary.Goals != nil:
		sb.WriteString("- goals:\n")
		for _, objective := range summary.Goals.Objectives {
			fmt.Fprintf(sb, "  %s\n", objective)
		}
	case summary.Page != nil:
		fmt.Fprintf(sb, "- page %q at %s\n", summary.Page.Name, summary.Page.Route)
	case summary.Section != nil:
		fmt.Fprintf(sb, "- section %s", summary.Section.Kind)
		if summary.Section.Description != "" {
			fmt.Fprintf(sb, ": %s", summary.Section.Description)
		}
		sb.WriteString("\n")
	case summary.Feature != nil:
		fmt.Fprintf(sb, "- feature %q\n", summary.Feature.Name)
		writeList(sb, "requirements", summary.Feature.Requirements)
	case summary.PRD != nil:
		fmt.Fprintf(sb, "- requirements document (v%d):\n%s\n", summary.PRD.Version, summary.PRD.Content)
	}
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s: %s\n", label, strings.Join(items, "; "))
}

func (b *PromptBuilder) writeInstructions(sb *strings.Builder, kind entities.GenerationKind, variant entities.NodeVariant) {
	switch {
	case kind == entities.KindAnalysis && variant == entities.VariantCompetitor:
		sb.WriteString(`Return a JSON object with this structure:
{
  "summary": "one-paragraph overall assessment",
  "strengths": ["..."],
  "design_patterns": ["..."],
  "ctas": ["..."]
}
`)
	case kind == entities.KindAnalysis && variant == entities.VariantDesign:
		sb.WriteString(`Return a JSON object with this structure:
{
  "style_mood": "short mood description",
  "layout_patterns": ["..."],
  "components": ["..."],
  "notes": "anything else notable"
}
`)
	case kind == entities.KindPRD:
		sb.WriteString("Return the product requirements document as markdown. Cover purpose, audience, section breakdown, and success criteria grounded in the planning context above.\n")
	case kind == entities.KindCode:
		sb.WriteString("Return only the React component source, no surrounding explanation. Use semantic HTML and follow the design context above.\n")
	}
}
