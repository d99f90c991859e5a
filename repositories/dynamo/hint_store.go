package dynamo

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"mentacrush_server/models"
)

// HintStore persists the hint ledger in the Hints table, keyed by
// toUserId/hintId so the recipient's inbox is one partition query.
type HintStore struct {
	Dynamo *DynamoService
}

func NewHintStore(ds *DynamoService) *HintStore {
	return &HintStore{Dynamo: ds}
}

func (s *HintStore) PutHint(ctx context.Context, hint models.Hint) error {
	if err := s.Dynamo.PutItem(ctx, models.HintsTable, hint); err != nil {
		log.Printf("❌ Failed to save hint %s -> %s: %v", hint.FromUserID, hint.ToUserID, err)
		return err
	}
	log.Printf("✅ Hint saved: %s -> %s", hint.FromUserID, hint.ToUserID)
	return nil
}

// HasHint reports whether at least one hint from fromUserID to toUserID
// exists. The ledger partition is the recipient, so this is a single query
// with a sender filter.
func (s *HintStore) HasHint(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	keyCondition := "toUserId = :to"
	expressionValues := map[string]types.AttributeValue{
		":to":   &types.AttributeValueMemberS{Value: toUserID},
		":from": &types.AttributeValueMemberS{Value: fromUserID},
	}

	items, err := s.Dynamo.QueryItemsWithFilters(ctx, models.HintsTable, keyCondition, expressionValues, nil, "fromUserId = :from")
	if err != nil {
		return false, fmt.Errorf("failed to query hints for %s -> %s: %w", fromUserID, toUserID, err)
	}
	return len(items) > 0, nil
}

func (s *HintStore) ListHintsForUser(ctx context.Context, toUserID string, limit int) ([]models.Hint, error) {
	keyCondition := "toUserId = :to"
	expressionValues := map[string]types.AttributeValue{
		":to": &types.AttributeValueMemberS{Value: toUserID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.HintsTable, keyCondition, expressionValues, nil, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hints for %s: %w", toUserID, err)
	}

	var hints []models.Hint
	if err := attributevalue.UnmarshalListOfMaps(items, &hints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hints: %w", err)
	}
	return hints, nil
}

func (s *HintStore) MarkHintRead(ctx context.Context, toUserID, hintID string) error {
	key := map[string]types.AttributeValue{
		"toUserId": &types.AttributeValueMemberS{Value: toUserID},
		"hintId":   &types.AttributeValueMemberS{Value: hintID},
	}

	// An unconditional SET would upsert a phantom hint for an unknown id.
	if _, err := s.Dynamo.GetItem(ctx, models.HintsTable, key); err != nil {
		return err
	}

	updateExpression := "SET #read = :true"
	_, err := s.Dynamo.UpdateItem(ctx, models.HintsTable, updateExpression, key,
		map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
		map[string]string{"#read": "read"},
	)
	if err != nil {
		return fmt.Errorf("failed to mark hint %s as read: %w", hintID, err)
	}
	return nil
}
