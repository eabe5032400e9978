// Package events defines the domain events emitted by the planning canvas
// aggregates. Events are collected on the aggregate and published by the
// application layer after persistence.
package events

import (
	"time"
)

// SourceBackend identifies this service as the event source.
const SourceBackend = "sitecanvas.backend"

// Event type constants.
const (
	EventTypeNodeAdded           = "canvas.node_added"
	EventTypeNodePayloadUpdated  = "canvas.node_payload_updated"
	EventTypeNodeMoved           = "canvas.node_moved"
	EventTypeNodeRemoved         = "canvas.node_removed"
	EventTypeNodesConnected      = "canvas.nodes_connected"
	EventTypeEdgeRemoved         = "canvas.edge_removed"
	EventTypeGenerationStarted   = "generation.started"
	EventTypeGenerationCompleted = "generation.completed"
	EventTypeGenerationFailed    = "generation.failed"
)

// DomainEvent is implemented by every event in this package.
type DomainEvent interface {
	GetEventType() string
	GetAggregateID() string
	GetTimestamp() time.Time
}

// BaseEvent carries the fields common to all domain events.
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
}

// GetEventType returns the event's type identifier.
func (e BaseEvent) GetEventType() string { return e.EventType }

// GetAggregateID returns the ID of the aggregate that emitted the event.
func (e BaseEvent) GetAggregateID() string { return e.AggregateID }

// GetTimestamp returns when the event occurred.
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// NodeAdded is emitted when a node is created on the canvas.
type NodeAdded struct {
	BaseEvent
	NodeID  string `json:"nodeId"`
	Variant string `json:"variant"`
}

// NewNodeAdded creates a NodeAdded event.
func NewNodeAdded(projectID, nodeID, variant string, at time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeNodeAdded, Timestamp: at},
		NodeID:    nodeID,
		Variant:   variant,
	}
}

// NodePayloadUpdated is emitted when payload fields are merged into a node.
type NodePayloadUpdated struct {
	BaseEvent
	NodeID  string `json:"nodeId"`
	Variant string `json:"variant"`
}

// NewNodePayloadUpdated creates a NodePayloadUpdated event.
func NewNodePayloadUpdated(projectID, nodeID, variant string, at time.Time) NodePayloadUpdated {
	return NodePayloadUpdated{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeNodePayloadUpdated, Timestamp: at},
		NodeID:    nodeID,
		Variant:   variant,
	}
}

// NodeMoved is emitted when a node's canvas position changes.
type NodeMoved struct {
	BaseEvent
	NodeID string  `json:"nodeId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// NewNodeMoved creates a NodeMoved event.
func NewNodeMoved(projectID, nodeID string, x, y float64, at time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeNodeMoved, Timestamp: at},
		NodeID:    nodeID,
		X:         x,
		Y:         y,
	}
}

// NodeRemoved is emitted when a node is deleted along with its edges.
type NodeRemoved struct {
	BaseEvent
	NodeID       string   `json:"nodeId"`
	RemovedEdges []string `json:"removedEdges"`
}

// NewNodeRemoved creates a NodeRemoved event.
func NewNodeRemoved(projectID, nodeID string, removedEdges []string, at time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent:    BaseEvent{AggregateID: projectID, EventType: EventTypeNodeRemoved, Timestamp: at},
		NodeID:       nodeID,
		RemovedEdges: removedEdges,
	}
}

// NodesConnected is emitted when an edge is created between two nodes.
type NodesConnected struct {
	BaseEvent
	EdgeID   string `json:"edgeId"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Variant  string `json:"variant"`
}

// NewNodesConnected creates a NodesConnected event.
func NewNodesConnected(projectID, edgeID, sourceID, targetID, variant string, at time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeNodesConnected, Timestamp: at},
		EdgeID:    edgeID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Variant:   variant,
	}
}

// EdgeRemoved is emitted when an edge is deleted.
type EdgeRemoved struct {
	BaseEvent
	EdgeID string `json:"edgeId"`
}

// NewEdgeRemoved creates an EdgeRemoved event.
func NewEdgeRemoved(projectID, edgeID string, at time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeEdgeRemoved, Timestamp: at},
		EdgeID:    edgeID,
	}
}

// GenerationStarted is emitted when a node enters the in-progress state.
type GenerationStarted struct {
	BaseEvent
	NodeID string `json:"nodeId"`
	Kind   string `json:"kind"`
}

// NewGenerationStarted creates a GenerationStarted event.
func NewGenerationStarted(projectID, nodeID, kind string, at time.Time) GenerationStarted {
	return GenerationStarted{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeGenerationStarted, Timestamp: at},
		NodeID:    nodeID,
		Kind:      kind,
	}
}

// GenerationCompleted is emitted when a generation run finishes successfully.
type GenerationCompleted struct {
	BaseEvent
	NodeID  string `json:"nodeId"`
	Kind    string `json:"kind"`
	Version int    `json:"version"`
}

// NewGenerationCompleted creates a GenerationCompleted event.
func NewGenerationCompleted(projectID, nodeID, kind string, version int, at time.Time) GenerationCompleted {
	return GenerationCompleted{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeGenerationCompleted, Timestamp: at},
		NodeID:    nodeID,
		Kind:      kind,
		Version:   version,
	}
}

// GenerationFailed is emitted when a generation run fails. The node keeps its
// last good result; only the live status moves to error.
type GenerationFailed struct {
	BaseEvent
	NodeID string `json:"nodeId"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// NewGenerationFailed creates a GenerationFailed event.
func NewGenerationFailed(projectID, nodeID, kind, reason string, at time.Time) GenerationFailed {
	return GenerationFailed{
		BaseEvent: BaseEvent{AggregateID: projectID, EventType: EventTypeGenerationFailed, Timestamp: at},
		NodeID:    nodeID,
		Kind:      kind,
		Reason:    reason,
	}
}
