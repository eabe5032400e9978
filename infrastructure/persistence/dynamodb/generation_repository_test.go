package dynamodb

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecanvas-backend/domain/core/entities"
	"sitecanvas-backend/domain/core/valueobjects"
)

func TestGenerationRecordItemRoundtrip(t *testing.T) {
	repo := &GenerationRecordRepository{tableName: "canvas"}
	nodeID := valueobjects.NewNodeID()
	record, err := entities.NewGenerationRecord(nodeID, entities.KindPRD, "## Landing PRD",
		map[string]interface{}{"model": "gpt-4o"}, 3)
	require.NoError(t, err)

	item, err := repo.toItem(valueobjects.NewProjectID(), record)
	require.NoError(t, err)

	parsed, err := parseRecordItem(item)
	require.NoError(t, err)
	assert.Equal(t, record.ID(), parsed.ID())
	assert.True(t, parsed.NodeID().Equals(nodeID))
	assert.Equal(t, entities.KindPRD, parsed.Kind())
	assert.Equal(t, "## Landing PRD", parsed.Content())
	assert.Equal(t, 3, parsed.Version())
	assert.Equal(t, "gpt-4o", parsed.Metadata()["model"])
	assert.WithinDuration(t, record.CreatedAt(), parsed.CreatedAt(), time.Second)
}

func TestParseRecordItemRejectsBadNodeID(t *testing.T) {
	_, err := parseRecordItem(map[string]types.AttributeValue{
		"NodeID": &types.AttributeValueMemberS{Value: "not-a-uuid"},
	})
	assert.Error(t, err)
}
