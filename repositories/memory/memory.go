// Package memory implements the repository interfaces with in-process maps.
// It backs dev mode (no AWS/Redis needed) and the test suite. All methods
// are safe for concurrent use; returned values are copies.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// ProfileStore is the in-memory profile backend.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]models.UserProfile)}
}

func (s *ProfileStore) PutProfile(ctx context.Context, profile models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := profile
	return &copied, nil
}

func (s *ProfileStore) UpdateProfileFields(ctx context.Context, userID string, fields map[string]interface{}) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	for field, value := range fields {
		switch field {
		case "displayName":
			profile.DisplayName = value.(string)
		case "photoRef":
			profile.PhotoRef = value.(string)
		case "bio":
			profile.Bio = value.(string)
		case "socialLinks":
			profile.SocialLinks = value.(map[string]string)
		}
	}

	s.profiles[userID] = profile
	copied := profile
	return &copied, nil
}

func (s *ProfileStore) ListProfiles(ctx context.Context, excludeUserID string, limit int) ([]models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]models.UserProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		if profile.UserID == excludeUserID {
			continue
		}
		profiles = append(profiles, profile)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].UserID < profiles[j].UserID
	})
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

func (s *ProfileStore) AddHintCounts(ctx context.Context, userID string, sentDelta, receivedDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	profile.HintsSent += sentDelta
	profile.HintsReceived += receivedDelta
	s.profiles[userID] = profile
	return nil
}

// HintStore is the in-memory hint ledger.
type HintStore struct {
	mu    sync.RWMutex
	hints []models.Hint
}

func NewHintStore() *HintStore {
	return &HintStore{}
}

func (s *HintStore) PutHint(ctx context.Context, hint models.Hint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hints = append(s.hints, hint)
	return nil
}

func (s *HintStore) HasHint(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, hint := range s.hints {
		if hint.FromUserID == fromUserID && hint.ToUserID == toUserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *HintStore) ListHintsForUser(ctx context.Context, toUserID string, limit int) ([]models.Hint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hints []models.Hint
	for _, hint := range s.hints {
		if hint.ToUserID == toUserID {
			hints = append(hints, hint)
		}
	}
	sort.SliceStable(hints, func(i, j int) bool {
		return hints[i].CreatedAt > hints[j].CreatedAt
	})
	if limit > 0 && len(hints) > limit {
		hints = hints[:limit]
	}
	return hints, nil
}

func (s *HintStore) MarkHintRead(ctx context.Context, toUserID, hintID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.hints {
		if s.hints[i].ToUserID == toUserID && s.hints[i].HintID == hintID {
			s.hints[i].Read = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

// ChatStore is the in-memory chat and message backend.
type ChatStore struct {
	mu       sync.RWMutex
	chats    map[string]models.Chat
	messages map[string][]models.Message
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		chats:    make(map[string]models.Chat),
		messages: make(map[string][]models.Message),
	}
}

func (s *ChatStore) CreateChat(ctx context.Context, chat models.Chat) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.chats[chat.ChatID]; exists {
		return false, nil
	}
	s.chats[chat.ChatID] = copyChat(chat)
	return true, nil
}

func (s *ChatStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := copyChat(chat)
	return &copied, nil
}

func (s *ChatStore) ListChatsForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chats []models.Chat
	for _, chat := range s.chats {
		if chat.HasParticipant(userID) {
			chats = append(chats, copyChat(chat))
		}
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt > chats[j].UpdatedAt
	})
	return chats, nil
}

func (s *ChatStore) AppendMessage(ctx context.Context, message models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[message.ChatID]; !ok {
		return repositories.ErrNotFound
	}
	s.messages[message.ChatID] = append(s.messages[message.ChatID], message)
	return nil
}

func (s *ChatStore) ListMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.messages[chatID]
	messages := make([]models.Message, len(stored))
	copy(messages, stored)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SortKey < messages[j].SortKey
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (s *ChatStore) BumpAfterMessage(ctx context.Context, chatID string, last models.LastMessage, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return repositories.ErrNotFound
	}
	chat = copyChat(chat)
	lastCopy := last
	chat.LastMessage = &lastCopy
	chat.UpdatedAt = models.FormatTimestamp(time.Now())
	chat.UnreadCount[recipientID]++
	s.chats[chatID] = chat
	return nil
}

func (s *ChatStore) MarkMessagesRead(ctx context.Context, chatID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return repositories.ErrNotFound
	}

	messages := s.messages[chatID]
	for i := range messages {
		if messages[i].SenderID != readerID {
			messages[i].Read = true
		}
	}

	chat = copyChat(chat)
	chat.UnreadCount[readerID] = 0
	s.chats[chatID] = chat
	return nil
}

func (s *ChatStore) SetTypingDeadline(ctx context.Context, chatID, userID, deadline string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return repositories.ErrNotFound
	}
	chat = copyChat(chat)
	if deadline == "" {
		delete(chat.TypingUsers, userID)
	} else {
		chat.TypingUsers[userID] = deadline
	}
	s.chats[chatID] = chat
	return nil
}

func copyChat(chat models.Chat) models.Chat {
	copied := chat
	copied.ParticipantIDs = append([]string(nil), chat.ParticipantIDs...)
	copied.TypingUsers = make(map[string]string, len(chat.TypingUsers))
	for k, v := range chat.TypingUsers {
		copied.TypingUsers[k] = v
	}
	copied.UnreadCount = make(map[string]int, len(chat.UnreadCount))
	for k, v := range chat.UnreadCount {
		copied.UnreadCount[k] = v
	}
	if chat.LastMessage != nil {
		last := *chat.LastMessage
		copied.LastMessage = &last
	}
	return copied
}

// ActivityStore is the in-memory activity feed.
type ActivityStore struct {
	mu         sync.RWMutex
	activities []models.Activity
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

func (s *ActivityStore) Append(ctx context.Context, activity models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	activity.FeedID = models.GlobalFeedID
	s.activities = append(s.activities, activity)
	return nil
}

func (s *ActivityStore) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	activities := make([]models.Activity, len(s.activities))
	copy(activities, s.activities)
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt > activities[j].CreatedAt
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func (s *ActivityStore) ListForUser(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var activities []models.Activity
	for _, activity := range s.activities {
		if activity.UserID == userID {
			activities = append(activities, activity)
		}
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt > activities[j].CreatedAt
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}
