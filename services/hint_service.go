package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// HintService is the append-only ledger of directed interest edges. It only
// records and queries hints; matching and counters are composed on top by
// the MatchService.
type HintService struct {
	Store repositories.HintStore
}

// RecordHint appends a hint from -> to. Self-hints are rejected. Repeat
// hints for the same ordered pair accumulate; the ledger does not dedup.
func (s *HintService) RecordHint(ctx context.Context, fromUserID, toUserID string) (*models.Hint, error) {
	if fromUserID == "" || toUserID == "" {
		return nil, fmt.Errorf("both user ids are required: %w", ErrInvalidArgument)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("cannot send a hint to yourself: %w", ErrInvalidArgument)
	}

	hint := models.Hint{
		HintID:     uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CreatedAt:  models.FormatTimestamp(time.Now()),
	}

	if err := s.Store.PutHint(ctx, hint); err != nil {
		return nil, fmt.Errorf("failed to record hint: %w", err)
	}
	return &hint, nil
}

// HasMutualInterest reports whether hints exist in both directions between
// userA and userB. The result is symmetric in its arguments. The read is a
// point-in-time view of the ledger; the chat-creation step, not this query,
// is what resolves the race of two simultaneous reciprocal hints.
func (s *HintService) HasMutualInterest(ctx context.Context, userA, userB string) (bool, error) {
	aToB, err := s.Store.HasHint(ctx, userA, userB)
	if err != nil {
		return false, fmt.Errorf("failed to check hints %s -> %s: %w", userA, userB, err)
	}
	if !aToB {
		return false, nil
	}

	bToA, err := s.Store.HasHint(ctx, userB, userA)
	if err != nil {
		return false, fmt.Errorf("failed to check hints %s -> %s: %w", userB, userA, err)
	}
	return bToA, nil
}

// GetReceivedHints returns the hints sent to userID, newest first.
func (s *HintService) GetReceivedHints(ctx context.Context, userID string, limit int) ([]models.Hint, error) {
	if limit <= 0 {
		limit = 50
	}
	hints, err := s.Store.ListHintsForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hints for %s: %w", userID, err)
	}
	return hints, nil
}

// MarkHintRead flags a received hint as seen.
func (s *HintService) MarkHintRead(ctx context.Context, userID, hintID string) error {
	err := s.Store.MarkHintRead(ctx, userID, hintID)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("hint %s: %w", hintID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark hint %s as read: %w", hintID, err)
	}
	return nil
}
