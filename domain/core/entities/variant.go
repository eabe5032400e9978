package entities

import (
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// NodeVariant discriminates the closed set of payload shapes a node may take.
type NodeVariant string

const (
	VariantProject    NodeVariant = "project"
	VariantCompetitor NodeVariant = "competitor"
	VariantDesign     NodeVariant = "design"
	VariantGoals      NodeVariant = "goals"
	VariantPage       NodeVariant = "page"
	VariantSection    NodeVariant = "section"
	VariantFeature    NodeVariant = "feature"
	VariantPRD        NodeVariant = "prd"
)

// AllNodeVariants returns every member of the closed variant set. Dispatch
// code is tested against this list so a new variant cannot slip past the
// projector or the lifecycle rules unnoticed.
func AllNodeVariants() []NodeVariant {
	return []NodeVariant{
		VariantProject,
		VariantCompetitor,
		VariantDesign,
		VariantGoals,
		VariantPage,
		VariantSection,
		VariantFeature,
		VariantPRD,
	}
}

// ParseNodeVariant validates a string against the closed set.
func ParseNodeVariant(s string) (NodeVariant, error) {
	v := NodeVariant(s)
	for _, known := range AllNodeVariants() {
		if v == known {
			return v, nil
		}
	}
	return "", pkgerrors.NewValidationError("unknown node variant: " + s)
}

// GenerationKind returns the single generation kind this variant supports.
// The second return is false for variants that never generate (a Project
// node only provides context, it is never a generation target).
func (v NodeVariant) GenerationKind() (GenerationKind, bool) {
	switch v {
	case VariantCompetitor, VariantDesign:
		return KindAnalysis, true
	case VariantPage:
		return KindPRD, true
	case VariantSection:
		return KindCode, true
	case VariantProject, VariantGoals, VariantFeature, VariantPRD:
		return "", false
	}
	return "", false
}

// EdgeVariant discriminates edge payload shapes. Direction always encodes
// "source provides context to target".
type EdgeVariant string

const (
	// EdgeVariantContext is the default connection drawn on the canvas.
	EdgeVariantContext EdgeVariant = "context"
	// EdgeVariantReference links a generated artifact (e.g. a PRD node)
	// back into the context flow of another node.
	EdgeVariantReference EdgeVariant = "reference"
)

// AllEdgeVariants returns every member of the closed edge variant set.
func AllEdgeVariants() []EdgeVariant {
	return []EdgeVariant{EdgeVariantContext, EdgeVariantReference}
}

// ParseEdgeVariant validates a string against the closed set.
func ParseEdgeVariant(s string) (EdgeVariant, error) {
	v := EdgeVariant(s)
	for _, known := range AllEdgeVariants() {
		if v == known {
			return v, nil
		}
	}
	return "", pkgerrors.NewValidationError("unknown edge variant: " + s)
}
