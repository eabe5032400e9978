// Package aggregates holds the Graph aggregate: the in-memory snapshot of
// one project's canvas. It is the consistency boundary for node and edge
// invariants and performs no I/O; callers load a snapshot in and persist the
// results back out through their own storage layer.
package aggregates

import (
	"strconv"
	"time"

	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	"sitecanvas-backend/domain/events"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// pairKey identifies an ordered (source, target) pair for duplicate checks.
type pairKey struct {
	source valueobjects.NodeID
	target valueobjects.NodeID
}

// Limits caps graph growth. Zero values mean unlimited.
type Limits struct {
	MaxNodes        int
	MaxEdgesPerNode int
}

// Graph owns the node and edge collections for one project.
type Graph struct {
	projectID valueobjects.ProjectID
	limits    Limits
	nodes     map[valueobjects.NodeID]*entities.Node
	nodeOrder []valueobjects.NodeID
	edges     map[valueobjects.EdgeID]*entities.Edge
	pairs     map[pairKey]valueobjects.EdgeID

	// reverse maps each target to its direct sources in edge insertion
	// order, which keeps resolver traversal deterministic.
	reverse map[valueobjects.NodeID][]valueobjects.NodeID
	// incident maps each node to every edge that touches it, for cascade
	// deletion.
	incident map[valueobjects.NodeID][]valueobjects.EdgeID

	events []events.DomainEvent
}

// NewGraph creates an empty graph for a project.
func NewGraph(projectID valueobjects.ProjectID) (*Graph, error) {
	if projectID.IsZero() {
		return nil, pkgerrors.NewValidationError("project ID is required")
	}
	g := &Graph{projectID: projectID}
	g.reset()
	return g, nil
}

func (g *Graph) reset() {
	g.nodes = make(map[valueobjects.NodeID]*entities.Node)
	g.nodeOrder = nil
	g.edges = make(map[valueobjects.EdgeID]*entities.Edge)
	g.pairs = make(map[pairKey]valueobjects.EdgeID)
	g.reverse = make(map[valueobjects.NodeID][]valueobjects.NodeID)
	g.incident = make(map[valueobjects.NodeID][]valueobjects.EdgeID)
}

// SetLimits installs the growth caps applied by AddNode and ConnectNodes.
// Existing contents are never retroactively rejected; limits only gate new
// growth.
func (g *Graph) SetLimits(limits Limits) {
	g.limits = limits
}

// ProjectID returns the project this graph belongs to.
func (g *Graph) ProjectID() valueobjects.ProjectID { return g.projectID }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Load replaces the current snapshot. It fails with a ValidationError if any
// edge references an unknown node or two edges share an ordered (source,
// target) pair; on failure the previous snapshot is kept. Loading emits no
// events: the snapshot is already-persisted state, not a new change.
func (g *Graph) Load(nodes []*entities.Node, edges []*entities.Edge) error {
	seen := make(map[valueobjects.NodeID]bool, len(nodes))
	for _, node := range nodes {
		if node == nil {
			return pkgerrors.NewValidationError("snapshot contains a nil node")
		}
		if seen[node.ID()] {
			return pkgerrors.NewValidationError("snapshot contains duplicate node " + node.ID().String())
		}
		seen[node.ID()] = true
	}

	seenPairs := make(map[pairKey]bool, len(edges))
	for _, edge := range edges {
		if edge == nil {
			return pkgerrors.NewValidationError("snapshot contains a nil edge")
		}
		if !seen[edge.SourceID()] {
			return pkgerrors.NewValidationError(
				"edge " + edge.ID().String() + " references unknown source " + edge.SourceID().String())
		}
		if !seen[edge.TargetID()] {
			return pkgerrors.NewValidationError(
				"edge " + edge.ID().String() + " references unknown target " + edge.TargetID().String())
		}
		pair := pairKey{source: edge.SourceID(), target: edge.TargetID()}
		if seenPairs[pair] {
			return pkgerrors.NewValidationError(
				"snapshot contains duplicate edge pair " + edge.SourceID().String() + " -> " + edge.TargetID().String())
		}
		seenPairs[pair] = true
	}

	g.reset()
	for _, node := range nodes {
		g.nodes[node.ID()] = node
		g.nodeOrder = append(g.nodeOrder, node.ID())
	}
	for _, edge := range edges {
		g.indexEdge(edge)
	}
	return nil
}

func (g *Graph) indexEdge(edge *entities.Edge) {
	g.edges[edge.ID()] = edge
	g.pairs[pairKey{source: edge.SourceID(), target: edge.TargetID()}] = edge.ID()
	g.reverse[edge.TargetID()] = append(g.reverse[edge.TargetID()], edge.SourceID())
	g.incident[edge.SourceID()] = append(g.incident[edge.SourceID()], edge.ID())
	g.incident[edge.TargetID()] = append(g.incident[edge.TargetID()], edge.ID())
}

// AddNode allocates a fresh ID, validates the payload against its variant,
// and inserts the node with the variant's initial status.
func (g *Graph) AddNode(payload entities.Payload, position valueobjects.Position) (*entities.Node, error) {
	if max := g.limits.MaxNodes; max > 0 && len(g.nodes) >= max {
		return nil, pkgerrors.NewConflictError(
			"project is at its limit of " + strconv.Itoa(max) + " nodes")
	}

	node, err := entities.NewNode(payload, position)
	if err != nil {
		return nil, err
	}

	g.nodes[node.ID()] = node
	g.nodeOrder = append(g.nodeOrder, node.ID())
	g.addEvent(events.NewNodeAdded(
		g.projectID.String(), node.ID().String(), string(node.Variant()), time.Now()))
	return node, nil
}

// UpdateNodePayload merges partial fields into a node's payload.
func (g *Graph) UpdateNodePayload(id valueobjects.NodeID, patch entities.Patch) error {
	node, exists := g.nodes[id]
	if !exists {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}
	if err := node.MergePayload(patch); err != nil {
		return err
	}
	g.addEvent(events.NewNodePayloadUpdated(
		g.projectID.String(), id.String(), string(node.Variant()), time.Now()))
	return nil
}

// MoveNode updates a node's canvas position. No validation beyond existence.
func (g *Graph) MoveNode(id valueobjects.NodeID, position valueobjects.Position) error {
	node, exists := g.nodes[id]
	if !exists {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}
	node.MoveTo(position)
	g.addEvent(events.NewNodeMoved(
		g.projectID.String(), id.String(), position.X(), position.Y(), time.Now()))
	return nil
}

// RemoveNode deletes a node and cascades to every edge that references it.
// Idempotent: removing an absent node is not an error.
func (g *Graph) RemoveNode(id valueobjects.NodeID) []valueobjects.EdgeID {
	if _, exists := g.nodes[id]; !exists {
		return nil
	}

	removed := append([]valueobjects.EdgeID(nil), g.incident[id]...)
	for _, edgeID := range removed {
		g.unindexEdge(edgeID)
	}

	delete(g.nodes, id)
	for i, nid := range g.nodeOrder {
		if nid.Equals(id) {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}

	edgeIDs := make([]string, len(removed))
	for i, eid := range removed {
		edgeIDs[i] = eid.String()
	}
	g.addEvent(events.NewNodeRemoved(g.projectID.String(), id.String(), edgeIDs, time.Now()))
	return removed
}

// ConnectNodes creates a directed edge from source to target.
func (g *Graph) ConnectNodes(
	sourceID, targetID valueobjects.NodeID,
	variant entities.EdgeVariant,
) (*entities.Edge, error) {
	if _, exists := g.nodes[sourceID]; !exists {
		return nil, pkgerrors.NewNotFoundError("source node " + sourceID.String())
	}
	if _, exists := g.nodes[targetID]; !exists {
		return nil, pkgerrors.NewNotFoundError("target node " + targetID.String())
	}
	if sourceID.Equals(targetID) {
		return nil, pkgerrors.NewSelfLoopError(sourceID.String())
	}
	if _, exists := g.pairs[pairKey{source: sourceID, target: targetID}]; exists {
		return nil, pkgerrors.NewDuplicateEdgeError(sourceID.String(), targetID.String())
	}
	if max := g.limits.MaxEdgesPerNode; max > 0 {
		for _, id := range []valueobjects.NodeID{sourceID, targetID} {
			if len(g.incident[id]) >= max {
				return nil, pkgerrors.NewConflictError(
					"node " + id.String() + " is at its limit of " + strconv.Itoa(max) + " edges")
			}
		}
	}

	edge, err := entities.NewEdge(sourceID, targetID, variant)
	if err != nil {
		return nil, err
	}

	g.indexEdge(edge)
	g.addEvent(events.NewNodesConnected(
		g.projectID.String(), edge.ID().String(),
		sourceID.String(), targetID.String(), string(variant), time.Now()))
	return edge, nil
}

// RemoveEdge deletes an edge. Idempotent.
func (g *Graph) RemoveEdge(id valueobjects.EdgeID) {
	if _, exists := g.edges[id]; !exists {
		return
	}
	g.unindexEdge(id)
	g.addEvent(events.NewEdgeRemoved(g.projectID.String(), id.String(), time.Now()))
}

func (g *Graph) unindexEdge(id valueobjects.EdgeID) {
	edge, exists := g.edges[id]
	if !exists {
		return
	}
	delete(g.edges, id)
	delete(g.pairs, pairKey{source: edge.SourceID(), target: edge.TargetID()})

	g.reverse[edge.TargetID()] = removeNodeID(g.reverse[edge.TargetID()], edge.SourceID())
	g.incident[edge.SourceID()] = removeEdgeID(g.incident[edge.SourceID()], id)
	g.incident[edge.TargetID()] = removeEdgeID(g.incident[edge.TargetID()], id)
}

func removeNodeID(ids []valueobjects.NodeID, id valueobjects.NodeID) []valueobjects.NodeID {
	for i, candidate := range ids {
		if candidate.Equals(id) {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func removeEdgeID(ids []valueobjects.EdgeID, id valueobjects.EdgeID) []valueobjects.EdgeID {
	out := ids[:0]
	for _, candidate := range ids {
		if !candidate.Equals(id) {
			out = append(out, candidate)
		}
	}
	return out
}

// Node returns a node by ID.
func (g *Graph) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Edge returns an edge by ID.
func (g *Graph) Edge(id valueobjects.EdgeID) (*entities.Edge, bool) {
	edge, exists := g.edges[id]
	return edge, exists
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges. Order follows node incidence, not creation; use
// the per-node queries when order matters.
func (g *Graph) Edges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(g.edges))
	for _, id := range g.nodeOrder {
		for _, edgeID := range g.incident[id] {
			if edge, ok := g.edges[edgeID]; ok && edge.SourceID().Equals(id) {
				edges = append(edges, edge)
			}
		}
	}
	return edges
}

// DirectSources returns the direct context providers of a node in edge
// insertion order.
func (g *Graph) DirectSources(id valueobjects.NodeID) []valueobjects.NodeID {
	return append([]valueobjects.NodeID(nil), g.reverse[id]...)
}

// ReverseAdjacency returns, for every target, the ordered set of its direct
// sources. The returned map is a copy.
func (g *Graph) ReverseAdjacency() map[valueobjects.NodeID][]valueobjects.NodeID {
	out := make(map[valueobjects.NodeID][]valueobjects.NodeID, len(g.reverse))
	for target, sources := range g.reverse {
		if len(sources) == 0 {
			continue
		}
		out[target] = append([]valueobjects.NodeID(nil), sources...)
	}
	return out
}

// GetUncommittedEvents returns the events collected since the last commit.
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	return g.events
}

// MarkEventsAsCommitted clears the uncommitted events.
func (g *Graph) MarkEventsAsCommitted() {
	g.events = nil
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}
