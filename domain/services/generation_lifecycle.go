package services

import (
	"sitecanvas-backend/domain/core/entities"
)

// GenerationLifecycle owns the status transition rules and the version
// arithmetic that wrap every AI generation run. It performs no I/O: callers
// persist the updated node and the new record, and supply the set of prior
// versions from their own store. Version monotonicity across racing callers
// is the store's job (e.g. a uniqueness constraint on (node, kind,
// version)); this service guarantees correct arithmetic over whatever prior
// versions it is handed.
type GenerationLifecycle struct{}

// NewGenerationLifecycle creates a lifecycle manager.
func NewGenerationLifecycle() *GenerationLifecycle {
	return &GenerationLifecycle{}
}

// BeginGeneration moves a node into in-progress. First runs, retries from
// error, and regenerates from complete are all valid; only variants without
// a generation kind are rejected.
func (l *GenerationLifecycle) BeginGeneration(node *entities.Node) error {
	return node.StartGeneration()
}

// NextVersion computes the version for a new generation record:
// 1 + max(existing), starting at 1 when no records exist. Gaps in the
// existing set are preserved, not filled.
func (l *GenerationLifecycle) NextVersion(existing []int) int {
	next := 1
	for _, v := range existing {
		if v >= next {
			next = v + 1
		}
	}
	return next
}

// CompleteGeneration installs a successful result: the node moves to
// complete with its live result pointer updated, and a new append-only
// record is created at the next version. Fails with an
// InvalidTransitionError if the node is not currently in-progress.
func (l *GenerationLifecycle) CompleteGeneration(
	node *entities.Node,
	content string,
	metadata map[string]interface{},
	existingVersions []int,
) (*entities.GenerationRecord, error) {
	kind, _ := node.GenerationKind()
	version := l.NextVersion(existingVersions)

	if err := node.FinishGeneration(content, metadata, version); err != nil {
		return nil, err
	}

	return entities.NewGenerationRecord(node.ID(), kind, content, metadata, version)
}

// FailGeneration moves the node to error. The prior result, if any, is left
// untouched; only the live status flag moves. Never fails.
func (l *GenerationLifecycle) FailGeneration(node *entities.Node) {
	node.MarkGenerationFailed()
}
