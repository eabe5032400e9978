package entities

import (
	"time"

	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// Edge is a directed connection between two nodes. Direction encodes
// "source provides context to target". Existence of both endpoints and the
// one-edge-per-ordered-pair rule are enforced by the Graph aggregate, not
// here; the edge itself only rejects self-loops and empty endpoints.
type Edge struct {
	id        valueobjects.EdgeID
	sourceID  valueobjects.NodeID
	targetID  valueobjects.NodeID
	variant   EdgeVariant
	createdAt time.Time
}

// NewEdge creates an edge between two node IDs.
func NewEdge(sourceID, targetID valueobjects.NodeID, variant EdgeVariant) (*Edge, error) {
	if sourceID.IsZero() || targetID.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if sourceID.Equals(targetID) {
		return nil, pkgerrors.NewSelfLoopError(sourceID.String())
	}
	if _, err := ParseEdgeVariant(string(variant)); err != nil {
		return nil, err
	}

	return &Edge{
		id:        valueobjects.NewEdgeID(),
		sourceID:  sourceID,
		targetID:  targetID,
		variant:   variant,
		createdAt: time.Now(),
	}, nil
}

// ReconstructEdge rebuilds an edge from storage.
func ReconstructEdge(
	id valueobjects.EdgeID,
	sourceID, targetID valueobjects.NodeID,
	variant EdgeVariant,
	createdAt time.Time,
) (*Edge, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("edge ID cannot be empty")
	}
	if sourceID.IsZero() || targetID.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if sourceID.Equals(targetID) {
		return nil, pkgerrors.NewSelfLoopError(sourceID.String())
	}

	return &Edge{
		id:        id,
		sourceID:  sourceID,
		targetID:  targetID,
		variant:   variant,
		createdAt: createdAt,
	}, nil
}

// ID returns the edge's unique identifier.
func (e *Edge) ID() valueobjects.EdgeID { return e.id }

// SourceID returns the context-providing endpoint.
func (e *Edge) SourceID() valueobjects.NodeID { return e.sourceID }

// TargetID returns the context-receiving endpoint.
func (e *Edge) TargetID() valueobjects.NodeID { return e.targetID }

// Variant returns the edge's variant tag.
func (e *Edge) Variant() EdgeVariant { return e.variant }

// CreatedAt returns when the edge was created.
func (e *Edge) CreatedAt() time.Time { return e.createdAt }
