// Package services contains the application services that orchestrate the
// domain layer: load a snapshot, run the operation on the aggregate, persist
// the outcome, publish the collected events.
package services

import (
	"context"

	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/domain/core/aggregates"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	domainservices "sitecanvas-backend/domain/services"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// CanvasService handles the structural canvas operations: node and edge
// CRUD, plus the read-side ancestor context query.
type CanvasService struct {
	nodeRepo  ports.NodeRepository
	edgeRepo  ports.EdgeRepository
	eventBus  ports.EventBus
	resolver  *domainservices.AncestorResolver
	projector *domainservices.ContextProjector
	limits    ports.LimitsProvider
	logger    *zap.Logger
}

// NewCanvasService creates a canvas service.
func NewCanvasService(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	eventBus ports.EventBus,
	resolver *domainservices.AncestorResolver,
	projector *domainservices.ContextProjector,
	limits ports.LimitsProvider,
	logger *zap.Logger,
) *CanvasService {
	return &CanvasService{
		nodeRepo:  nodeRepo,
		edgeRepo:  edgeRepo,
		eventBus:  eventBus,
		resolver:  resolver,
		projector: projector,
		limits:    limits,
		logger:    logger,
	}
}

// LoadGraph reads the full snapshot for a project and assembles the
// aggregate. A snapshot that violates graph invariants fails loudly here
// rather than producing undefined traversal behavior later.
func (s *CanvasService) LoadGraph(ctx context.Context, projectID valueobjects.ProjectID) (*aggregates.Graph, error) {
	nodes, err := s.nodeRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "loading nodes for project "+projectID.String())
	}
	edges, err := s.edgeRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "loading edges for project "+projectID.String())
	}

	graph, err := aggregates.NewGraph(projectID)
	if err != nil {
		return nil, err
	}
	limits := s.limits.Limits()
	graph.SetLimits(aggregates.Limits{
		MaxNodes:        limits.MaxNodesPerProject,
		MaxEdgesPerNode: limits.MaxEdgesPerNode,
	})
	if err := graph.Load(nodes, edges); err != nil {
		return nil, err
	}
	return graph, nil
}

// CreateNode adds a node to the canvas.
func (s *CanvasService) CreateNode(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	payload entities.Payload,
	position valueobjects.Position,
) (*entities.Node, error) {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}

	node, err := graph.AddNode(payload, position)
	if err != nil {
		return nil, err
	}
	if err := s.nodeRepo.Save(ctx, projectID, node); err != nil {
		return nil, pkgerrors.Wrap(err, "saving node")
	}

	s.publishEvents(ctx, graph)
	s.logger.Info("node created",
		zap.String("project_id", projectID.String()),
		zap.String("node_id", node.ID().String()),
		zap.String("variant", string(node.Variant())))
	return node, nil
}

// UpdateNodePayload merges partial payload fields into a node.
func (s *CanvasService) UpdateNodePayload(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	nodeID valueobjects.NodeID,
	patch entities.Patch,
) (*entities.Node, error) {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := graph.UpdateNodePayload(nodeID, patch); err != nil {
		return nil, err
	}
	node, _ := graph.Node(nodeID)
	if err := s.nodeRepo.Save(ctx, projectID, node); err != nil {
		return nil, pkgerrors.Wrap(err, "saving node")
	}

	s.publishEvents(ctx, graph)
	return node, nil
}

// MoveNode updates a node's canvas position.
func (s *CanvasService) MoveNode(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	nodeID valueobjects.NodeID,
	position valueobjects.Position,
) error {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return err
	}

	if err := graph.MoveNode(nodeID, position); err != nil {
		return err
	}
	node, _ := graph.Node(nodeID)
	if err := s.nodeRepo.Save(ctx, projectID, node); err != nil {
		return pkgerrors.Wrap(err, "saving node")
	}

	s.publishEvents(ctx, graph)
	return nil
}

// RemoveNode deletes a node and every edge touching it. Returns the IDs of
// the cascaded edges so callers can report what else went away.
func (s *CanvasService) RemoveNode(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	nodeID valueobjects.NodeID,
) ([]valueobjects.EdgeID, error) {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}

	removed := graph.RemoveNode(nodeID)
	for _, edgeID := range removed {
		if err := s.edgeRepo.Delete(ctx, projectID, edgeID); err != nil {
			return nil, pkgerrors.Wrap(err, "deleting cascaded edge "+edgeID.String())
		}
	}
	if err := s.nodeRepo.Delete(ctx, projectID, nodeID); err != nil {
		return nil, pkgerrors.Wrap(err, "deleting node")
	}

	s.publishEvents(ctx, graph)
	s.logger.Info("node removed",
		zap.String("project_id", projectID.String()),
		zap.String("node_id", nodeID.String()),
		zap.Int("cascaded_edges", len(removed)))
	return removed, nil
}

// ConnectNodes creates a directed edge between two existing nodes.
func (s *CanvasService) ConnectNodes(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	sourceID, targetID valueobjects.NodeID,
	variant entities.EdgeVariant,
) (*entities.Edge, error) {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}

	edge, err := graph.ConnectNodes(sourceID, targetID, variant)
	if err != nil {
		return nil, err
	}
	if err := s.edgeRepo.Save(ctx, projectID, edge); err != nil {
		return nil, pkgerrors.Wrap(err, "saving edge")
	}

	s.publishEvents(ctx, graph)
	return edge, nil
}

// RemoveEdge deletes an edge. Idempotent.
func (s *CanvasService) RemoveEdge(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	edgeID valueobjects.EdgeID,
) error {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return err
	}

	graph.RemoveEdge(edgeID)
	if err := s.edgeRepo.Delete(ctx, projectID, edgeID); err != nil {
		return pkgerrors.Wrap(err, "deleting edge")
	}

	s.publishEvents(ctx, graph)
	return nil
}

// GetGraph returns the project's full node and edge sets.
func (s *CanvasService) GetGraph(
	ctx context.Context,
	projectID valueobjects.ProjectID,
) ([]*entities.Node, []*entities.Edge, error) {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return graph.Nodes(), graph.Edges(), nil
}

// GetNode returns a single node.
func (s *CanvasService) GetNode(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	nodeID valueobjects.NodeID,
) (*entities.Node, error) {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	node, exists := graph.Node(nodeID)
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node " + nodeID.String())
	}
	return node, nil
}

// ResolveContext returns the projected ancestor context for a node: every
// transitive context provider, nearest first, in the shape the generation
// pipeline consumes. Exposed read-only so clients can preview what a
// generation run would see.
func (s *CanvasService) ResolveContext(
	ctx context.Context,
	projectID valueobjects.ProjectID,
	nodeID valueobjects.NodeID,
) ([]domainservices.ContextSummary, error) {
	graph, err := s.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ancestorIDs, err := s.resolver.Resolve(graph, nodeID)
	if err != nil {
		return nil, err
	}

	ancestors := make([]*entities.Node, 0, len(ancestorIDs))
	for _, id := range ancestorIDs {
		node, _ := graph.Node(id)
		ancestors = append(ancestors, node)
	}
	return s.projector.Project(ancestors)
}

// publishEvents flushes the aggregate's uncommitted events. Publishing is
// best-effort: the state change is already persisted, so a bus outage is
// logged rather than surfaced as an operation failure.
func (s *CanvasService) publishEvents(ctx context.Context, graph *aggregates.Graph) {
	pending := graph.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := s.eventBus.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("project_id", graph.ProjectID().String()),
			zap.Int("event_count", len(pending)),
			zap.Error(err))
		return
	}
	graph.MarkEventsAsCommitted()
}
