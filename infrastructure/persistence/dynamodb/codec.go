// Package dynamodb implements the persistence ports on a single DynamoDB
// table. One partition per project: PK = PROJECT#<id>, with SK prefixes
// NODE#, EDGE# and GEN# separating the item types.
package dynamodb

import (
	"encoding/json"
	"fmt"

	"sitecanvas-backend/domain/core/entities"
)

// Payloads are stored as their own JSON form next to a variant attribute;
// the variant selects the concrete type on the way back out.

func marshalPayload(payload entities.Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", payload.Variant(), err)
	}
	return string(data), nil
}

func unmarshalPayload(variant entities.NodeVariant, data string) (entities.Payload, error) {
	var payload entities.Payload
	switch variant {
	case entities.VariantProject:
		payload = &entities.ProjectPayload{}
	case entities.VariantCompetitor:
		payload = &entities.CompetitorPayload{}
	case entities.VariantDesign:
		payload = &entities.DesignPayload{}
	case entities.VariantGoals:
		payload = &entities.GoalsPayload{}
	case entities.VariantPage:
		payload = &entities.PagePayload{}
	case entities.VariantSection:
		payload = &entities.SectionPayload{}
	case entities.VariantFeature:
		payload = &entities.FeaturePayload{}
	case entities.VariantPRD:
		payload = &entities.PRDPayload{}
	default:
		return nil, fmt.Errorf("unknown node variant %q", variant)
	}

	if err := json.Unmarshal([]byte(data), payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", variant, err)
	}
	return payload, nil
}

func marshalMetadata(metadata map[string]interface{}) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(data), nil
}

func unmarshalMetadata(data string) (map[string]interface{}, error) {
	if data == "" {
		return map[string]interface{}{}, nil
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(data), &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return metadata, nil
}
