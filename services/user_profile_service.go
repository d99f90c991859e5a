package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// UserProfileService handles profile CRUD and the advisory hint counters.
type UserProfileService struct {
	Store      repositories.ProfileStore
	Activities *ActivityService
}

// CreateProfile stores a new profile document.
func (s *UserProfileService) CreateProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if profile.UserID == "" {
		return nil, fmt.Errorf("userId is required: %w", ErrInvalidArgument)
	}
	if profile.CreatedAt == "" {
		profile.CreatedAt = models.FormatTimestamp(time.Now())
	}
	if err := s.Store.PutProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile %s: %w", profile.UserID, err)
	}
	return &profile, nil
}

// GetProfile fetches a profile by user id.
func (s *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.Store.GetProfile(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", userID, err)
	}
	return profile, nil
}

// UpdateProfile applies a named-field patch and records a feed entry.
func (s *UserProfileService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.UserProfile, error) {
	fields := map[string]interface{}{}
	if update.DisplayName != nil {
		fields["displayName"] = *update.DisplayName
	}
	if update.PhotoRef != nil {
		fields["photoRef"] = *update.PhotoRef
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.SocialLinks != nil {
		fields["socialLinks"] = update.SocialLinks
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", ErrInvalidArgument)
	}

	profile, err := s.Store.UpdateProfileFields(ctx, userID, fields)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", userID, err)
	}

	if s.Activities != nil {
		s.Activities.Record(ctx, userID, profile.DisplayName, models.ActivityTypeProfileUpdate, "updated their profile")
	}
	return profile, nil
}

// ListProfiles returns candidate profiles for the send-hint screen.
func (s *UserProfileService) ListProfiles(ctx context.Context, excludeUserID string, limit int) ([]models.UserProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	profiles, err := s.Store.ListProfiles(ctx, excludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// BumpHintCounters increments the sender's hintsSent and the recipient's
// hintsReceived. Counters are advisory caches of ledger cardinality.
func (s *UserProfileService) BumpHintCounters(ctx context.Context, fromUserID, toUserID string) error {
	if err := s.Store.AddHintCounts(ctx, fromUserID, 1, 0); err != nil {
		return fmt.Errorf("failed to bump hintsSent for %s: %w", fromUserID, err)
	}
	if err := s.Store.AddHintCounts(ctx, toUserID, 0, 1); err != nil {
		return fmt.Errorf("failed to bump hintsReceived for %s: %w", toUserID, err)
	}
	return nil
}
