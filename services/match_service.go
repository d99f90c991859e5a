package services

import (
	"context"
	"fmt"
	"log"

	"mentacrush_server/models"
	"mentacrush_server/observability"
)

// MatchOutcome is what a single hint send resolved to.
type MatchOutcome struct {
	Matched      bool   `json:"matched"`
	NewMatch     bool   `json:"newMatch"`
	ChatID       string `json:"chatId,omitempty"`
	Inconclusive bool   `json:"inconclusive,omitempty"`
}

// MatchService is the mutual-interest engine: it records a hint, checks the
// ledger for reciprocity and, on the first mutual detection for a pair,
// promotes it to a chat exactly once and notifies both sides.
type MatchService struct {
	Hints         *HintService
	Chats         *ChatService
	Notifications *NotificationService
	Profiles      *UserProfileService
	Activities    *ActivityService
}

// SendHint runs the full hint flow for fromUserID hinting at toUserID.
//
// The hint is durable before anything else happens. If the mutuality check
// or the chat promotion then fails, the outcome is reported Inconclusive
// (wrapped ErrInconclusive) so the caller knows the ledger changed but the
// match state is unknown - never a silent "no match".
//
// Notifications and activities fire only when the chat was created by this
// call. A repeat hint into an already-matched pair finds the existing chat
// (created=false) and stays quiet; the conditional create is the only guard
// and the only one needed.
func (s *MatchService) SendHint(ctx context.Context, fromUserID, toUserID, fromUsername string) (MatchOutcome, error) {
	hint, err := s.Hints.RecordHint(ctx, fromUserID, toUserID)
	if err != nil {
		return MatchOutcome{}, err
	}
	observability.HintsSent.Inc()

	// Advisory counters and feed decoration; failures are logged, not fatal.
	if err := s.Profiles.BumpHintCounters(ctx, fromUserID, toUserID); err != nil {
		log.Printf("❌ Failed to bump hint counters for %s/%s: %v", fromUserID, toUserID, err)
	}
	s.Activities.Record(ctx, fromUserID, fromUsername, models.ActivityTypeSentHint, "sent a hint")

	mutual, err := s.Hints.HasMutualInterest(ctx, fromUserID, toUserID)
	if err != nil {
		log.Printf("⚠️ Mutuality check failed after hint %s: %v", hint.HintID, err)
		return MatchOutcome{Inconclusive: true}, fmt.Errorf("hint recorded but match state unknown: %w", ErrInconclusive)
	}
	if !mutual {
		return MatchOutcome{}, nil
	}

	chat, created, err := s.Chats.GetOrCreateChat(ctx, fromUserID, toUserID)
	if err != nil {
		log.Printf("⚠️ Chat promotion failed for %s/%s: %v", fromUserID, toUserID, err)
		return MatchOutcome{Inconclusive: true}, fmt.Errorf("mutual interest found but chat state unknown: %w", ErrInconclusive)
	}

	outcome := MatchOutcome{Matched: true, NewMatch: created, ChatID: chat.ChatID}
	if !created {
		return outcome, nil
	}

	log.Printf("🎉 Match confirmed: %s and %s, chat %s", fromUserID, toUserID, chat.ChatID)
	observability.MatchesCreated.Inc()

	if _, err := s.Notifications.PushMatchNotification(ctx, fromUserID, toUserID); err != nil {
		log.Printf("❌ Failed to notify %s about match: %v", fromUserID, err)
	}
	if _, err := s.Notifications.PushMatchNotification(ctx, toUserID, fromUserID); err != nil {
		log.Printf("❌ Failed to notify %s about match: %v", toUserID, err)
	}

	s.Activities.Record(ctx, fromUserID, fromUsername, models.ActivityTypeMatch, "found a match")
	return outcome, nil
}
