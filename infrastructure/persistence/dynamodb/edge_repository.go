package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// EdgeRepository persists canvas edges in the project partition.
type EdgeRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.EdgeRepository = (*EdgeRepository)(nil)

// NewEdgeRepository creates a DynamoDB-backed edge repository.
func NewEdgeRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *EdgeRepository {
	return &EdgeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func edgeSortKey(id valueobjects.EdgeID) string {
	return "EDGE#" + id.String()
}

// edgeItem is the flat attribute shape edges take in the table. Edges have
// no variant-specific payload, so they marshal directly instead of going
// through the JSON payload codec nodes use.
type edgeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	EdgeID     string `dynamodbav:"EdgeID"`
	SourceID   string `dynamodbav:"SourceID"`
	TargetID   string `dynamodbav:"TargetID"`
	Variant    string `dynamodbav:"Variant"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func (r *EdgeRepository) toItem(projectID valueobjects.ProjectID, edge *entities.Edge) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(edgeItem{
		PK:         projectKey(projectID),
		SK:         edgeSortKey(edge.ID()),
		EntityType: "EDGE",
		EdgeID:     edge.ID().String(),
		SourceID:   edge.SourceID().String(),
		TargetID:   edge.TargetID().String(),
		Variant:    string(edge.Variant()),
		CreatedAt:  edge.CreatedAt().Format(time.RFC3339Nano),
	})
}

func parseEdgeItem(item map[string]types.AttributeValue) (*entities.Edge, error) {
	var stored edgeItem
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return nil, fmt.Errorf("decoding edge item: %w", err)
	}

	id, err := valueobjects.ParseEdgeID(stored.EdgeID)
	if err != nil {
		return nil, fmt.Errorf("invalid edge ID: %w", err)
	}
	sourceID, err := valueobjects.ParseNodeID(stored.SourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid source ID: %w", err)
	}
	targetID, err := valueobjects.ParseNodeID(stored.TargetID)
	if err != nil {
		return nil, fmt.Errorf("invalid target ID: %w", err)
	}
	variant, err := entities.ParseEdgeVariant(stored.Variant)
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid edge timestamp: %w", err)
	}
	return entities.ReconstructEdge(id, sourceID, targetID, variant, createdAt)
}

// Save writes an edge item.
func (r *EdgeRepository) Save(ctx context.Context, projectID valueobjects.ProjectID, edge *entities.Edge) error {
	item, err := r.toItem(projectID, edge)
	if err != nil {
		return pkgerrors.NewInternalError("encoding edge item", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return wrapAWSError("failed to save edge", err)
	}

	r.logger.Debug("edge saved",
		zap.String("project_id", projectID.String()),
		zap.String("edge_id", edge.ID().String()))
	return nil
}

// FindByProject returns all of a project's edges in creation order, which
// keeps resolver traversal deterministic across loads.
func (r *EdgeRepository) FindByProject(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Edge, error) {
	items, err := queryPartition(ctx, r.client, r.tableName, projectKey(projectID), "EDGE#")
	if err != nil {
		return nil, wrapAWSError("failed to query edges", err)
	}

	edges := make([]*entities.Edge, 0, len(items))
	for _, item := range items {
		edge, err := parseEdgeItem(item)
		if err != nil {
			return nil, pkgerrors.NewInternalError("parsing edge item", err)
		}
		edges = append(edges, edge)
	}

	sort.SliceStable(edges, func(i, j int) bool {
		if !edges[i].CreatedAt().Equal(edges[j].CreatedAt()) {
			return edges[i].CreatedAt().Before(edges[j].CreatedAt())
		}
		return edges[i].ID().String() < edges[j].ID().String()
	})
	return edges, nil
}

// Delete removes an edge item. Idempotent.
func (r *EdgeRepository) Delete(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.EdgeID) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: edgeSortKey(id)},
		},
	})
	if err != nil {
		return wrapAWSError("failed to delete edge", err)
	}
	return nil
}
