package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// ActivityService appends to and reads the global activity feed.
type ActivityService struct {
	Store repositories.ActivityStore
}

// Record appends a feed entry. Activities are audit/decoration only, so a
// failure is logged and swallowed - it must never fail the operation that
// produced it.
func (s *ActivityService) Record(ctx context.Context, userID, username, activityType, detail string) {
	activity := models.Activity{
		ActivityID: uuid.NewString(),
		UserID:     userID,
		Username:   username,
		Type:       activityType,
		Detail:     detail,
		CreatedAt:  models.FormatTimestamp(time.Now()),
	}

	if err := s.Store.Append(ctx, activity); err != nil {
		log.Printf("❌ Failed to record %s activity for %s: %v", activityType, userID, err)
	}
}

// GetRecent returns the newest feed entries, newest first.
func (s *ActivityService) GetRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	activities, err := s.Store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity feed: %w", err)
	}
	return activities, nil
}

// GetForUser returns one user's entries, newest first.
func (s *ActivityService) GetForUser(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	activities, err := s.Store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities for %s: %w", userID, err)
	}
	return activities, nil
}
