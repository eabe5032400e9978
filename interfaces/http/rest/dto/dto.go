// Package dto defines the wire shapes for the REST API and the conversions
// between them and the domain entities.
package dto

import (
	"encoding/json"
	"time"

	"sitecanvas-backend/domain/core/entities"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// NodeResponse is the wire form of a canvas node. The payload is emitted in
// its variant-specific JSON shape next to the discriminator.
type NodeResponse struct {
	ID      string               `json:"id"`
	Variant entities.NodeVariant `json:"variant"`
	X       float64              `json:"x"`
	Y       float64              `json:"y"`
	// Payload holds the variant-specific payload struct on the way out and
	// decodes as a generic map on the way back in.
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// EdgeResponse is the wire form of a canvas edge.
type EdgeResponse struct {
	ID        string               `json:"id"`
	SourceID  string               `json:"sourceId"`
	TargetID  string               `json:"targetId"`
	Variant   entities.EdgeVariant `json:"variant"`
	CreatedAt time.Time            `json:"createdAt"`
}

// GraphResponse is the full project snapshot.
type GraphResponse struct {
	ProjectID string         `json:"projectId"`
	Nodes     []NodeResponse `json:"nodes"`
	Edges     []EdgeResponse `json:"edges"`
}

// RecordResponse is the wire form of one generation record.
type RecordResponse struct {
	ID        string                 `json:"id"`
	NodeID    string                 `json:"nodeId"`
	Kind      string                 `json:"kind"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"createdAt"`
}

// GenerateResponse pairs the updated node with the record the run produced.
type GenerateResponse struct {
	Node   NodeResponse   `json:"node"`
	Record RecordResponse `json:"record"`
}

// RemoveNodeResponse reports the cascade of a node deletion.
type RemoveNodeResponse struct {
	RemovedEdgeIDs []string `json:"removedEdgeIds"`
}

// FromNode converts a node entity.
func FromNode(node *entities.Node) NodeResponse {
	return NodeResponse{
		ID:        node.ID().String(),
		Variant:   node.Variant(),
		X:         node.Position().X(),
		Y:         node.Position().Y(),
		Payload:   node.Payload(),
		CreatedAt: node.CreatedAt(),
		UpdatedAt: node.UpdatedAt(),
	}
}

// FromEdge converts an edge entity.
func FromEdge(edge *entities.Edge) EdgeResponse {
	return EdgeResponse{
		ID:        edge.ID().String(),
		SourceID:  edge.SourceID().String(),
		TargetID:  edge.TargetID().String(),
		Variant:   edge.Variant(),
		CreatedAt: edge.CreatedAt(),
	}
}

// FromGraph converts a full snapshot.
func FromGraph(projectID string, nodes []*entities.Node, edges []*entities.Edge) GraphResponse {
	resp := GraphResponse{
		ProjectID: projectID,
		Nodes:     make([]NodeResponse, 0, len(nodes)),
		Edges:     make([]EdgeResponse, 0, len(edges)),
	}
	for _, node := range nodes {
		resp.Nodes = append(resp.Nodes, FromNode(node))
	}
	for _, edge := range edges {
		resp.Edges = append(resp.Edges, FromEdge(edge))
	}
	return resp
}

// FromRecord converts a generation record.
func FromRecord(record *entities.GenerationRecord) RecordResponse {
	return RecordResponse{
		ID:        record.ID(),
		NodeID:    record.NodeID().String(),
		Kind:      string(record.Kind()),
		Content:   record.Content(),
		Metadata:  record.Metadata(),
		Version:   record.Version(),
		CreatedAt: record.CreatedAt(),
	}
}

// DecodePayload selects the concrete payload type for a variant and decodes
// the raw JSON into it.
func DecodePayload(variant entities.NodeVariant, raw json.RawMessage) (entities.Payload, error) {
	var payload entities.Payload
	switch variant {
	case entities.VariantProject:
		payload = &entities.ProjectPayload{}
	case entities.VariantCompetitor:
		payload = &entities.CompetitorPayload{}
	case entities.VariantDesign:
		payload = &entities.DesignPayload{}
	case entities.VariantGoals:
		payload = &entities.GoalsPayload{}
	case entities.VariantPage:
		payload = &entities.PagePayload{}
	case entities.VariantSection:
		payload = &entities.SectionPayload{}
	case entities.VariantFeature:
		payload = &entities.FeaturePayload{}
	case entities.VariantPRD:
		payload = &entities.PRDPayload{}
	default:
		return nil, pkgerrors.NewValidationError("unknown node variant: " + string(variant))
	}

	if len(raw) == 0 {
		return nil, pkgerrors.NewValidationError("payload is required")
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, pkgerrors.NewInvalidPayloadError("invalid " + string(variant) + " payload: " + err.Error())
	}
	return payload, nil
}

// DecodePatch selects the concrete patch type for a variant and decodes the
// raw JSON into it.
func DecodePatch(variant entities.NodeVariant, raw json.RawMessage) (entities.Patch, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.NewValidationError("patch is required")
	}

	var (
		patch entities.Patch
		err   error
	)
	switch variant {
	case entities.VariantProject:
		var p entities.ProjectPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case entities.VariantCompetitor:
		var p entities.CompetitorPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case entities.VariantDesign:
		var p entities.DesignPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case entities.VariantGoals:
		var p entities.GoalsPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case entities.VariantPage:
		var p entities.PagePatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case entities.VariantSection:
		var p entities.SectionPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case entities.VariantFeature:
		var p entities.FeaturePatch
		err = json.Unmarshal(raw, &p)
		patch = p
	case entities.VariantPRD:
		var p entities.PRDPatch
		err = json.Unmarshal(raw, &p)
		patch = p
	default:
		return nil, pkgerrors.NewValidationError("unknown node variant: " + string(variant))
	}
	if err != nil {
		return nil, pkgerrors.NewInvalidPayloadError("invalid " + string(variant) + " patch: " + err.Error())
	}
	return patch, nil
}
