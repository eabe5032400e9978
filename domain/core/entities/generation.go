package entities

import (
	"time"

	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"

	"github.com/google/uuid"
)

// GenerationKind names the artifact a generation run produces.
type GenerationKind string

const (
	KindAnalysis GenerationKind = "analysis"
	KindPRD      GenerationKind = "prd"
	KindCode     GenerationKind = "code"
)

// GenerationStatus is the live lifecycle flag on a generation-capable node.
// The canonical states are shared by every variant; in-progress is reachable
// from any state, and neither complete nor error is terminal.
type GenerationStatus string

const (
	StatusIdle       GenerationStatus = "idle"
	StatusInProgress GenerationStatus = "in_progress"
	StatusComplete   GenerationStatus = "complete"
	StatusError      GenerationStatus = "error"
)

// GenerationRecord is an immutable, versioned log entry capturing one
// AI-produced artifact for a node. Records are append-only: a new run always
// creates a new record rather than mutating a prior one.
type GenerationRecord struct {
	id        string
	nodeID    valueobjects.NodeID
	kind      GenerationKind
	content   string
	metadata  map[string]interface{}
	version   int
	createdAt time.Time
}

// NewGenerationRecord creates a record for a completed generation run.
func NewGenerationRecord(
	nodeID valueobjects.NodeID,
	kind GenerationKind,
	content string,
	metadata map[string]interface{},
	version int,
) (*GenerationRecord, error) {
	if nodeID.IsZero() {
		return nil, pkgerrors.NewValidationError("generation record requires a node ID")
	}
	if version < 1 {
		return nil, pkgerrors.NewValidationError("generation record version must be positive")
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &GenerationRecord{
		id:        uuid.New().String(),
		nodeID:    nodeID,
		kind:      kind,
		content:   content,
		metadata:  metadata,
		version:   version,
		createdAt: time.Now(),
	}, nil
}

// ReconstructGenerationRecord rebuilds a record from storage.
func ReconstructGenerationRecord(
	id string,
	nodeID valueobjects.NodeID,
	kind GenerationKind,
	content string,
	metadata map[string]interface{},
	version int,
	createdAt time.Time,
) *GenerationRecord {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &GenerationRecord{
		id:        id,
		nodeID:    nodeID,
		kind:      kind,
		content:   content,
		metadata:  metadata,
		version:   version,
		createdAt: createdAt,
	}
}

// ID returns the record's unique identifier.
func (r *GenerationRecord) ID() string { return r.id }

// NodeID returns the node this record belongs to.
func (r *GenerationRecord) NodeID() valueobjects.NodeID { return r.nodeID }

// Kind returns the artifact kind.
func (r *GenerationRecord) Kind() GenerationKind { return r.kind }

// Content returns the generated content.
func (r *GenerationRecord) Content() string { return r.content }

// Metadata returns a copy of the record's metadata.
func (r *GenerationRecord) Metadata() map[string]interface{} {
	meta := make(map[string]interface{}, len(r.metadata))
	for k, v := range r.metadata {
		meta[k] = v
	}
	return meta
}

// Version returns the record's version for its (node, kind) pair.
func (r *GenerationRecord) Version() int { return r.version }

// CreatedAt returns when the record was created.
func (r *GenerationRecord) CreatedAt() time.Time { return r.createdAt }
