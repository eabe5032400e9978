package entities

import (
	"fmt"
	"time"

	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// Node is a typed planning element on the canvas. The variant is fixed at
// creation and determines the payload shape; mutation happens through
// payload merges, position moves, and generation lifecycle transitions.
type Node struct {
	id        valueobjects.NodeID
	variant   NodeVariant
	position  valueobjects.Position
	payload   Payload
	createdAt time.Time
	updatedAt time.Time
}

// NewNode creates a node with a fresh ID, validating the payload against its
// variant. Generation-capable payloads start in the idle state.
func NewNode(payload Payload, position valueobjects.Position) (*Node, error) {
	if payload == nil {
		return nil, pkgerrors.NewValidationError("payload cannot be nil")
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	payload = payload.Clone()
	if gen, ok := payload.(generable); ok && gen.generationStatus() == "" {
		gen.setGenerationStatus(StatusIdle)
	}

	now := time.Now()
	return &Node{
		id:        valueobjects.NewNodeID(),
		variant:   payload.Variant(),
		position:  position,
		payload:   payload,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructNode rebuilds a node from storage with preserved timestamps.
func ReconstructNode(
	id valueobjects.NodeID,
	payload Payload,
	position valueobjects.Position,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if payload == nil {
		return nil, pkgerrors.NewValidationError("payload cannot be nil")
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return &Node{
		id:        id,
		variant:   payload.Variant(),
		position:  position,
		payload:   payload.Clone(),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the node's unique identifier.
func (n *Node) ID() valueobjects.NodeID { return n.id }

// Variant returns the node's fixed variant tag.
func (n *Node) Variant() NodeVariant { return n.variant }

// Position returns the node's canvas position.
func (n *Node) Position() valueobjects.Position { return n.position }

// Payload returns a copy of the node's payload.
func (n *Node) Payload() Payload { return n.payload.Clone() }

// CreatedAt returns when the node was created.
func (n *Node) CreatedAt() time.Time { return n.createdAt }

// UpdatedAt returns when the node was last updated.
func (n *Node) UpdatedAt() time.Time { return n.updatedAt }

// MoveTo updates the node's canvas position. Pure coordinate update, no
// payload validation.
func (n *Node) MoveTo(position valueobjects.Position) {
	if position.Equals(n.position) {
		return
	}
	n.position = position
	n.updatedAt = time.Now()
}

// MergePayload merges partial fields into the payload. The merge is
// all-or-nothing: on validation failure the existing payload is untouched.
func (n *Node) MergePayload(patch Patch) error {
	merged, err := mergePayload(n.payload, patch)
	if err != nil {
		return err
	}
	n.payload = merged
	n.updatedAt = time.Now()
	return nil
}

// SupportsGeneration reports whether this node's variant is a generation
// target.
func (n *Node) SupportsGeneration() bool {
	_, ok := n.variant.GenerationKind()
	return ok
}

// GenerationKind returns the single generation kind this node supports.
func (n *Node) GenerationKind() (GenerationKind, bool) {
	return n.variant.GenerationKind()
}

// GenerationStatus returns the node's live lifecycle status. The second
// return is false for variants that do not generate.
func (n *Node) GenerationStatus() (GenerationStatus, bool) {
	gen, ok := n.payload.(generable)
	if !ok {
		return "", false
	}
	return gen.generationStatus(), true
}

// StartGeneration moves the node into the in-progress state. In-progress is
// reachable from any state: idle (first run), error (retry), and complete
// (regenerate) all permit it.
func (n *Node) StartGeneration() error {
	gen, ok := n.payload.(generable)
	if !ok {
		return pkgerrors.NewInvalidTransitionError(fmt.Sprintf(
			"variant %s does not support generation", n.variant,
		))
	}
	gen.setGenerationStatus(StatusInProgress)
	n.updatedAt = time.Now()
	return nil
}

// FinishGeneration installs a generation result and moves the node to
// complete. Only valid from the in-progress state.
func (n *Node) FinishGeneration(content string, metadata map[string]interface{}, version int) error {
	gen, ok := n.payload.(generable)
	if !ok {
		return pkgerrors.NewInvalidTransitionError(fmt.Sprintf(
			"variant %s does not support generation", n.variant,
		))
	}
	if gen.generationStatus() != StatusInProgress {
		return pkgerrors.NewInvalidTransitionError(fmt.Sprintf(
			"cannot complete generation from status %s", gen.generationStatus(),
		))
	}
	gen.installResult(content, metadata, version)
	gen.setGenerationStatus(StatusComplete)
	n.updatedAt = time.Now()
	return nil
}

// MarkGenerationFailed moves the node to the error state. Prior result
// fields are left untouched: a failed regenerate does not erase the last
// good result, only the live status flag moves. Never fails; on a
// non-generating variant it is a no-op.
func (n *Node) MarkGenerationFailed() {
	gen, ok := n.payload.(generable)
	if !ok {
		return
	}
	gen.setGenerationStatus(StatusError)
	n.updatedAt = time.Now()
}
