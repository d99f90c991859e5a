// Package repositories defines the storage interfaces the services consume.
// Two implementations exist for the document stores (dynamo, memory) and two
// for the notification feed (redisfeed, memory); main selects them from
// configuration.
package repositories

import (
	"context"
	"errors"

	"mentacrush_server/models"
)

var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrConflict is returned when a conditional create loses to an
	// existing item. Callers recover by re-reading the winner.
	ErrConflict = errors.New("item already exists")
)

// ProfileStore persists user profiles.
type ProfileStore interface {
	PutProfile(ctx context.Context, profile models.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfileFields(ctx context.Context, userID string, fields map[string]interface{}) (*models.UserProfile, error)
	ListProfiles(ctx context.Context, excludeUserID string, limit int) ([]models.UserProfile, error)
	// AddHintCounts applies advisory counter deltas. Best effort, never recounted.
	AddHintCounts(ctx context.Context, userID string, sentDelta, receivedDelta int) error
}

// HintStore is the append-only ledger of directed interest edges.
type HintStore interface {
	PutHint(ctx context.Context, hint models.Hint) error
	// HasHint reports whether at least one hint from -> to exists.
	HasHint(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ListHintsForUser(ctx context.Context, toUserID string, limit int) ([]models.Hint, error)
	MarkHintRead(ctx context.Context, toUserID, hintID string) error
}

// ChatStore persists chats and their message logs.
type ChatStore interface {
	// CreateChat inserts the chat only if no chat with the same id exists.
	// Returns false (and no error) when it loses that race.
	CreateChat(ctx context.Context, chat models.Chat) (bool, error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	ListChatsForUser(ctx context.Context, userID string) ([]models.Chat, error)
	AppendMessage(ctx context.Context, message models.Message) error
	ListMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error)
	// BumpAfterMessage updates lastMessage/updatedAt and increments the
	// recipient's unread counter in one update.
	BumpAfterMessage(ctx context.Context, chatID string, last models.LastMessage, recipientID string) error
	// MarkMessagesRead flips read on messages not sent by readerID and
	// zeroes the reader's unread counter. Repeat calls are no-ops.
	MarkMessagesRead(ctx context.Context, chatID, readerID string) error
	// SetTypingDeadline records (or clears, when deadline is empty) the
	// instant after which userID's typing flag is ignored.
	SetTypingDeadline(ctx context.Context, chatID, userID, deadline string) error
}

// NotificationStore is the low-latency per-user feed. Subscribe delivers a
// change signal (not payloads); consumers re-read the list on each signal.
type NotificationStore interface {
	Push(ctx context.Context, notification models.Notification) error
	List(ctx context.Context, ownerUserID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, ownerUserID, notificationID string) error
	Subscribe(ctx context.Context, ownerUserID string) (<-chan struct{}, func(), error)
}

// ActivityStore is the global append-only event feed.
type ActivityStore interface {
	Append(ctx context.Context, activity models.Activity) error
	ListRecent(ctx context.Context, limit int) ([]models.Activity, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Activity, error)
}
