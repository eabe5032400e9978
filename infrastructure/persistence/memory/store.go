// Package memory provides mutex-guarded in-memory repositories. They back
// local development and the service-level tests; production wiring swaps in
// the DynamoDB implementations behind the same ports.
package memory

import (
	"context"
	"fmt"
	"sync"

	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// NodeRepository stores nodes per project in insertion order.
type NodeRepository struct {
	mu    sync.RWMutex
	nodes map[string]map[string]*entities.Node
	order map[string][]string
}

// NewNodeRepository creates an empty in-memory node repository.
func NewNodeRepository() *NodeRepository {
	return &NodeRepository{
		nodes: make(map[string]map[string]*entities.Node),
		order: make(map[string][]string),
	}
}

// Save inserts or replaces a node. Reconstructing a copy keeps later
// mutations of the caller's entity from leaking into the store.
func (r *NodeRepository) Save(ctx context.Context, projectID valueobjects.ProjectID, node *entities.Node) error {
	copied, err := cloneNode(node)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	project := projectID.String()
	if r.nodes[project] == nil {
		r.nodes[project] = make(map[string]*entities.Node)
	}
	key := node.ID().String()
	if _, exists := r.nodes[project][key]; !exists {
		r.order[project] = append(r.order[project], key)
	}
	r.nodes[project][key] = copied
	return nil
}

// FindByID returns one node.
func (r *NodeRepository) FindByID(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.NodeID) (*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node, exists := r.nodes[projectID.String()][id.String()]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	return cloneNode(node)
}

// FindByProject returns all of a project's nodes in insertion order.
func (r *NodeRepository) FindByProject(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	project := projectID.String()
	out := make([]*entities.Node, 0, len(r.order[project]))
	for _, key := range r.order[project] {
		copied, err := cloneNode(r.nodes[project][key])
		if err != nil {
			return nil, err
		}
		out = append(out, copied)
	}
	return out, nil
}

// Delete removes a node. Idempotent.
func (r *NodeRepository) Delete(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project := projectID.String()
	key := id.String()
	if _, exists := r.nodes[project][key]; !exists {
		return nil
	}
	delete(r.nodes[project], key)
	for i, candidate := range r.order[project] {
		if candidate == key {
			r.order[project] = append(r.order[project][:i], r.order[project][i+1:]...)
			break
		}
	}
	return nil
}

func cloneNode(node *entities.Node) (*entities.Node, error) {
	return entities.ReconstructNode(
		node.ID(), node.Payload(), node.Position(), node.CreatedAt(), node.UpdatedAt())
}

// EdgeRepository stores edges per project in insertion order.
type EdgeRepository struct {
	mu    sync.RWMutex
	edges map[string]map[string]*entities.Edge
	order map[string][]string
}

// NewEdgeRepository creates an empty in-memory edge repository.
func NewEdgeRepository() *EdgeRepository {
	return &EdgeRepository{
		edges: make(map[string]map[string]*entities.Edge),
		order: make(map[string][]string),
	}
}

// Save inserts or replaces an edge.
func (r *EdgeRepository) Save(ctx context.Context, projectID valueobjects.ProjectID, edge *entities.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project := projectID.String()
	if r.edges[project] == nil {
		r.edges[project] = make(map[string]*entities.Edge)
	}
	key := edge.ID().String()
	if _, exists := r.edges[project][key]; !exists {
		r.order[project] = append(r.order[project], key)
	}
	r.edges[project][key] = edge
	return nil
}

// FindByProject returns all of a project's edges in insertion order.
func (r *EdgeRepository) FindByProject(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Edge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	project := projectID.String()
	out := make([]*entities.Edge, 0, len(r.order[project]))
	for _, key := range r.order[project] {
		out = append(out, r.edges[project][key])
	}
	return out, nil
}

// Delete removes an edge. Idempotent.
func (r *EdgeRepository) Delete(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.EdgeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project := projectID.String()
	key := id.String()
	if _, exists := r.edges[project][key]; !exists {
		return nil
	}
	delete(r.edges[project], key)
	for i, candidate := range r.order[project] {
		if candidate == key {
			r.order[project] = append(r.order[project][:i], r.order[project][i+1:]...)
			break
		}
	}
	return nil
}

// GenerationRecordRepository stores the append-only generation log, keyed
// by (node, kind) with uniqueness enforced on version.
type GenerationRecordRepository struct {
	mu      sync.RWMutex
	records map[string][]*entities.GenerationRecord
}

// NewGenerationRecordRepository creates an empty in-memory record log.
func NewGenerationRecordRepository() *GenerationRecordRepository {
	return &GenerationRecordRepository{
		records: make(map[string][]*entities.GenerationRecord),
	}
}

func recordKey(projectID valueobjects.ProjectID, nodeID valueobjects.NodeID, kind entities.GenerationKind) string {
	return fmt.Sprintf("%s#%s#%s", projectID.String(), nodeID.String(), kind)
}

// Append adds a record, rejecting duplicate versions with a Conflict error.
func (r *GenerationRecordRepository) Append(ctx context.Context, projectID valueobjects.ProjectID, record *entities.GenerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey(projectID, record.NodeID(), record.Kind())
	for _, existing := range r.records[key] {
		if existing.Version() == record.Version() {
			return pkgerrors.NewConflictError(fmt.Sprintf(
				"generation record %s v%d already exists", key, record.Version()))
		}
	}
	r.records[key] = append(r.records[key], record)
	return nil
}

// ListVersions returns every stored version for a (node, kind) pair.
func (r *GenerationRecordRepository) ListVersions(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID, kind entities.GenerationKind) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.records[recordKey(projectID, nodeID, kind)]
	versions := make([]int, 0, len(records))
	for _, record := range records {
		versions = append(versions, record.Version())
	}
	return versions, nil
}

// FindByNode returns the full history for a (node, kind) pair in append
// order.
func (r *GenerationRecordRepository) FindByNode(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID, kind entities.GenerationKind) ([]*entities.GenerationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*entities.GenerationRecord(nil), r.records[recordKey(projectID, nodeID, kind)]...), nil
}
