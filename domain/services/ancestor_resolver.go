// Package services holds the domain services that operate across the Graph
// aggregate: ancestor resolution, context projection, and the generation
// lifecycle rules. Everything here is pure or in-memory-only; persistence
// and network calls belong to the application layer.
package services

import (
	"sitecanvas-backend/domain/core/aggregates"
	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// AncestorResolver computes the ordered set of ancestor nodes that feed
// context into a generation target, walking edges backward from target to
// source.
type AncestorResolver struct{}

// NewAncestorResolver creates an ancestor resolver.
func NewAncestorResolver() *AncestorResolver {
	return &AncestorResolver{}
}

// Resolve returns every node reachable from targetID via reverse edges,
// excluding the target itself. Traversal is breadth-first FIFO over each
// node's direct sources in edge insertion order, so the result is
// deterministic for an unchanged snapshot. Each node appears exactly once
// regardless of how many paths reach it, and cycles terminate because a
// node is enqueued at most once.
func (r *AncestorResolver) Resolve(
	graph *aggregates.Graph,
	targetID valueobjects.NodeID,
) ([]valueobjects.NodeID, error) {
	if _, exists := graph.Node(targetID); !exists {
		return nil, pkgerrors.NewNotFoundError("node " + targetID.String())
	}

	visited := map[valueobjects.NodeID]bool{targetID: true}
	queue := graph.DirectSources(targetID)
	result := []valueobjects.NodeID{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)
		queue = append(queue, graph.DirectSources(current)...)
	}

	return result, nil
}
