package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

// GenerationRecordRepository persists the append-only generation log. The
// sort key embeds node, kind and a zero-padded version, and Append writes
// with a not-exists condition: the table itself enforces version uniqueness
// under concurrent runs.
type GenerationRecordRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.GenerationRecordRepository = (*GenerationRecordRepository)(nil)

// NewGenerationRecordRepository creates a DynamoDB-backed record log.
func NewGenerationRecordRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *GenerationRecordRepository {
	return &GenerationRecordRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func generationSortKey(nodeID valueobjects.NodeID, kind entities.GenerationKind, version int) string {
	return fmt.Sprintf("GEN#%s#%s#v%06d", nodeID.String(), kind, version)
}

func generationSortPrefix(nodeID valueobjects.NodeID, kind entities.GenerationKind) string {
	return fmt.Sprintf("GEN#%s#%s#", nodeID.String(), kind)
}

func (r *GenerationRecordRepository) toItem(projectID valueobjects.ProjectID, record *entities.GenerationRecord) (map[string]types.AttributeValue, error) {
	metadataJSON, err := marshalMetadata(record.Metadata())
	if err != nil {
		return nil, err
	}

	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: projectKey(projectID)},
		"SK":         &types.AttributeValueMemberS{Value: generationSortKey(record.NodeID(), record.Kind(), record.Version())},
		"EntityType": &types.AttributeValueMemberS{Value: "GENERATION"},
		"RecordID":   &types.AttributeValueMemberS{Value: record.ID()},
		"NodeID":     &types.AttributeValueMemberS{Value: record.NodeID().String()},
		"Kind":       &types.AttributeValueMemberS{Value: string(record.Kind())},
		"Content":    &types.AttributeValueMemberS{Value: record.Content()},
		"Metadata":   &types.AttributeValueMemberS{Value: metadataJSON},
		"Version":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.Version())},
		"CreatedAt":  &types.AttributeValueMemberS{Value: record.CreatedAt().Format(time.RFC3339Nano)},
	}, nil
}

func parseRecordItem(item map[string]types.AttributeValue) (*entities.GenerationRecord, error) {
	nodeID, err := valueobjects.ParseNodeID(stringAttr(item, "NodeID"))
	if err != nil {
		return nil, fmt.Errorf("invalid record node ID: %w", err)
	}

	metadata, err := unmarshalMetadata(stringAttr(item, "Metadata"))
	if err != nil {
		return nil, err
	}

	return entities.ReconstructGenerationRecord(
		stringAttr(item, "RecordID"),
		nodeID,
		entities.GenerationKind(stringAttr(item, "Kind")),
		stringAttr(item, "Content"),
		metadata,
		intAttr(item, "Version"),
		timeAttr(item, "CreatedAt"),
	), nil
}

// Append writes a record, failing with a Conflict error if the (node,
// kind, version) triple already exists.
func (r *GenerationRecordRepository) Append(ctx context.Context, projectID valueobjects.ProjectID, record *entities.GenerationRecord) error {
	item, err := r.toItem(projectID, record)
	if err != nil {
		return pkgerrors.NewInternalError("encoding generation record", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError(fmt.Sprintf(
				"generation record for node %s %s v%d already exists",
				record.NodeID().String(), record.Kind(), record.Version()))
		}
		return wrapAWSError("failed to append generation record", err)
	}

	r.logger.Debug("generation record appended",
		zap.String("node_id", record.NodeID().String()),
		zap.String("kind", string(record.Kind())),
		zap.Int("version", record.Version()))
	return nil
}

// ListVersions returns the stored versions for a (node, kind) pair.
func (r *GenerationRecordRepository) ListVersions(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID, kind entities.GenerationKind) ([]int, error) {
	records, err := r.FindByNode(ctx, projectID, nodeID, kind)
	if err != nil {
		return nil, err
	}
	versions := make([]int, 0, len(records))
	for _, record := range records {
		versions = append(versions, record.Version())
	}
	return versions, nil
}

// FindByNode returns the full history for a (node, kind) pair, oldest
// first.
func (r *GenerationRecordRepository) FindByNode(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID, kind entities.GenerationKind) ([]*entities.GenerationRecord, error) {
	items, err := queryPartition(ctx, r.client, r.tableName, projectKey(projectID), generationSortPrefix(nodeID, kind))
	if err != nil {
		return nil, wrapAWSError("failed to query generation records", err)
	}

	records := make([]*entities.GenerationRecord, 0, len(items))
	for _, item := range items {
		record, err := parseRecordItem(item)
		if err != nil {
			return nil, pkgerrors.NewInternalError("parsing generation record", err)
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Version() < records[j].Version()
	})
	return records, nil
}
