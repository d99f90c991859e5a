package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"mentacrush_server/models"
)

// ProfileStore persists user profiles in the UserProfiles table.
type ProfileStore struct {
	Dynamo *DynamoService
}

func NewProfileStore(ds *DynamoService) *ProfileStore {
	return &ProfileStore{Dynamo: ds}
}

func (s *ProfileStore) PutProfile(ctx context.Context, profile models.UserProfile) error {
	return s.Dynamo.PutItem(ctx, models.UserProfilesTable, profile)
}

func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", userID, err)
	}
	return &profile, nil
}

// UpdateProfileFields applies a named-field patch built by the service layer.
func (s *ProfileStore) UpdateProfileFields(ctx context.Context, userID string, fields map[string]interface{}) (*models.UserProfile, error) {
	if len(fields) == 0 {
		return s.GetProfile(ctx, userID)
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	// An unconditional SET would upsert a partial profile for an unknown user.
	if _, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, key); err != nil {
		return nil, err
	}

	updateExpression := "SET "
	expressionValues := map[string]types.AttributeValue{}
	expressionNames := map[string]string{}
	i := 0
	for field, value := range fields {
		if i > 0 {
			updateExpression += ", "
		}
		placeholder := fmt.Sprintf(":v%d", i)
		nameAlias := fmt.Sprintf("#f%d", i)
		attr, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", field, err)
		}
		updateExpression += fmt.Sprintf("%s = %s", nameAlias, placeholder)
		expressionValues[placeholder] = attr
		expressionNames[nameAlias] = field
		i++
	}

	attrs, err := s.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key, expressionValues, expressionNames)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", userID, err)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(attrs, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}
	return &profile, nil
}

func (s *ProfileStore) ListProfiles(ctx context.Context, excludeUserID string, limit int) ([]models.UserProfile, error) {
	filterExpression := ""
	var expressionValues map[string]types.AttributeValue
	if excludeUserID != "" {
		filterExpression = "userId <> :exclude"
		expressionValues = map[string]types.AttributeValue{
			":exclude": &types.AttributeValueMemberS{Value: excludeUserID},
		}
	}

	var profiles []models.UserProfile
	err := s.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, filterExpression, expressionValues, nil, int32(limit), &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// AddHintCounts bumps the advisory counters. The counters are a cache of
// ledger cardinality, never recounted, so a lost increment is acceptable.
func (s *ProfileStore) AddHintCounts(ctx context.Context, userID string, sentDelta, receivedDelta int) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	updateExpression := "SET hintsSent = if_not_exists(hintsSent, :zero) + :sent, hintsReceived = if_not_exists(hintsReceived, :zero) + :received"
	_, err := s.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key,
		map[string]types.AttributeValue{
			":zero":     &types.AttributeValueMemberN{Value: "0"},
			":sent":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", sentDelta)},
			":received": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", receivedDelta)},
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bump hint counters for %s: %w", userID, err)
	}
	return nil
}
