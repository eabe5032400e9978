package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// NodeRepository persists canvas nodes in the project partition.
type NodeRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.NodeRepository = (*NodeRepository)(nil)

// NewNodeRepository creates a DynamoDB-backed node repository.
func NewNodeRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func projectKey(projectID valueobjects.ProjectID) string {
	return "PROJECT#" + projectID.String()
}

func nodeSortKey(id valueobjects.NodeID) string {
	return "NODE#" + id.String()
}

func (r *NodeRepository) toItem(projectID valueobjects.ProjectID, node *entities.Node) (map[string]types.AttributeValue, error) {
	payloadJSON, err := marshalPayload(node.Payload())
	if err != nil {
		return nil, err
	}

	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: projectKey(projectID)},
		"SK":         &types.AttributeValueMemberS{Value: nodeSortKey(node.ID())},
		"EntityType": &types.AttributeValueMemberS{Value: "NODE"},
		"NodeID":     &types.AttributeValueMemberS{Value: node.ID().String()},
		"Variant":    &types.AttributeValueMemberS{Value: string(node.Variant())},
		"Payload":    &types.AttributeValueMemberS{Value: payloadJSON},
		"PositionX":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", node.Position().X())},
		"PositionY":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", node.Position().Y())},
		"CreatedAt":  &types.AttributeValueMemberS{Value: node.CreatedAt().Format(time.RFC3339Nano)},
		"UpdatedAt":  &types.AttributeValueMemberS{Value: node.UpdatedAt().Format(time.RFC3339Nano)},
	}, nil
}

func parseNodeItem(item map[string]types.AttributeValue) (*entities.Node, error) {
	idStr := stringAttr(item, "NodeID")
	if idStr == "" {
		if sk := stringAttr(item, "SK"); strings.HasPrefix(sk, "NODE#") {
			idStr = strings.TrimPrefix(sk, "NODE#")
		}
	}
	id, err := valueobjects.ParseNodeID(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid node ID: %w", err)
	}

	variant, err := entities.ParseNodeVariant(stringAttr(item, "Variant"))
	if err != nil {
		return nil, err
	}
	payload, err := unmarshalPayload(variant, stringAttr(item, "Payload"))
	if err != nil {
		return nil, err
	}

	position, err := valueobjects.NewPosition(numberAttr(item, "PositionX"), numberAttr(item, "PositionY"))
	if err != nil {
		return nil, err
	}

	createdAt := timeAttr(item, "CreatedAt")
	updatedAt := timeAttr(item, "UpdatedAt")

	return entities.ReconstructNode(id, payload, position, createdAt, updatedAt)
}

// Save writes a node item, replacing any prior state.
func (r *NodeRepository) Save(ctx context.Context, projectID valueobjects.ProjectID, node *entities.Node) error {
	item, err := r.toItem(projectID, node)
	if err != nil {
		return pkgerrors.NewInternalError("encoding node item", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return wrapAWSError("failed to save node", err)
	}

	r.logger.Debug("node saved",
		zap.String("project_id", projectID.String()),
		zap.String("node_id", node.ID().String()))
	return nil
}

// FindByID reads a single node item.
func (r *NodeRepository) FindByID(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.NodeID) (*entities.Node, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: nodeSortKey(id)},
		},
	})
	if err != nil {
		return nil, wrapAWSError("failed to get node", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	return parseNodeItem(result.Item)
}

// FindByProject returns all of a project's nodes in creation order.
func (r *NodeRepository) FindByProject(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Node, error) {
	items, err := queryPartition(ctx, r.client, r.tableName, projectKey(projectID), "NODE#")
	if err != nil {
		return nil, wrapAWSError("failed to query nodes", err)
	}

	nodes := make([]*entities.Node, 0, len(items))
	for _, item := range items {
		node, err := parseNodeItem(item)
		if err != nil {
			return nil, pkgerrors.NewInternalError("parsing node item", err)
		}
		nodes = append(nodes, node)
	}

	// Items come back in SK order; the aggregate wants creation order.
	sort.SliceStable(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt().Equal(nodes[j].CreatedAt()) {
			return nodes[i].CreatedAt().Before(nodes[j].CreatedAt())
		}
		return nodes[i].ID().String() < nodes[j].ID().String()
	})
	return nodes, nil
}

// Delete removes a node item. Idempotent.
func (r *NodeRepository) Delete(ctx context.Context, projectID valueobjects.ProjectID, id valueobjects.NodeID) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: nodeSortKey(id)},
		},
	})
	if err != nil {
		return wrapAWSError("failed to delete node", err)
	}
	return nil
}
