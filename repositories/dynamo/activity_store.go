package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"mentacrush_server/models"
)

// ActivityStore persists the global activity feed. All entries share one
// constant partition so a single descending query yields the newest-first
// timeline; a GSI on userId serves per-user reads.
type ActivityStore struct {
	Dynamo *DynamoService
}

func NewActivityStore(ds *DynamoService) *ActivityStore {
	return &ActivityStore{Dynamo: ds}
}

func (s *ActivityStore) Append(ctx context.Context, activity models.Activity) error {
	activity.FeedID = models.GlobalFeedID
	if err := s.Dynamo.PutItem(ctx, models.ActivitiesTable, activity); err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

func (s *ActivityStore) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	keyCondition := "feedId = :feed"
	expressionValues := map[string]types.AttributeValue{
		":feed": &types.AttributeValueMemberS{Value: models.GlobalFeedID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.ActivitiesTable, keyCondition, expressionValues, nil, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent activities: %w", err)
	}

	var activities []models.Activity
	if err := attributevalue.UnmarshalListOfMaps(items, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
	}
	return activities, nil
}

func (s *ActivityStore) ListForUser(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	keyCondition := "userId = :uid"
	expressionValues := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ActivitiesTable, models.ActivityUserIndex, keyCondition, expressionValues, nil, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities for %s: %w", userID, err)
	}

	var activities []models.Activity
	if err := attributevalue.UnmarshalListOfMaps(items, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
	}
	return activities, nil
}
