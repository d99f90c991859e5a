package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"mentacrush_server/models"
	"mentacrush_server/observability"
	"mentacrush_server/repositories"
)

// messageSnapshotLimit bounds how much history a live message snapshot
// carries; older messages stay reachable through GetMessages. Read-state
// updates ignore this bound and walk the full log.
const messageSnapshotLimit = 500

// ChatService owns the per-pair message log and the small shared chat state
// (typing flags, unread counters). Live consumers subscribe through the
// in-process brokers; every mutation publishes a fresh full snapshot.
type ChatService struct {
	Store          repositories.ChatStore
	TypingTTL      time.Duration
	messageBroker  *Broker[[]models.Message]
	typingBroker   *Broker[[]string]
	chatListBroker *Broker[[]models.Chat]
}

func NewChatService(store repositories.ChatStore) *ChatService {
	return &ChatService{
		Store:          store,
		TypingTTL:      models.TypingTTL,
		messageBroker:  NewBroker[[]models.Message](),
		typingBroker:   NewBroker[[]string](),
		chatListBroker: NewBroker[[]models.Chat](),
	}
}

// GetOrCreateChat returns the single chat for the unordered pair, creating
// it when absent. The chat id is derived from the sorted pair, so two
// concurrent callers target the same record and the store's conditional
// insert decides the winner; the loser re-reads and returns the winner's
// chat with created=false.
func (s *ChatService) GetOrCreateChat(ctx context.Context, userA, userB string) (*models.Chat, bool, error) {
	if userA == "" || userB == "" {
		return nil, false, fmt.Errorf("both participant ids are required: %w", ErrInvalidArgument)
	}
	if userA == userB {
		return nil, false, fmt.Errorf("a chat needs two distinct participants: %w", ErrInvalidArgument)
	}

	chatID := models.PairChatID(userA, userB)
	now := models.FormatTimestamp(time.Now())
	chat := models.Chat{
		ChatID:         chatID,
		ParticipantIDs: []string{userA, userB},
		CreatedAt:      now,
		UpdatedAt:      now,
		TypingUsers:    map[string]string{},
		UnreadCount:    map[string]int{userA: 0, userB: 0},
	}

	created, err := s.Store.CreateChat(ctx, chat)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create chat %s: %w", chatID, err)
	}
	if created {
		s.publishChatList(ctx, chat.ParticipantIDs)
		return &chat, true, nil
	}

	existing, err := s.Store.GetChat(ctx, chatID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read existing chat %s: %w", chatID, err)
	}
	return existing, false, nil
}

// GetChat returns the chat by id.
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.Store.GetChat(ctx, chatID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat %s: %w", chatID, err)
	}
	return chat, nil
}

// GetChatsForUser returns the user's chats ordered by last update.
func (s *ChatService) GetChatsForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	chats, err := s.Store.ListChatsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats for %s: %w", userID, err)
	}
	return chats, nil
}

// SendMessage appends a message with a server-assigned timestamp, refreshes
// the chat preview, bumps the recipient's unread counter and publishes the
// new snapshot to subscribers.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message text cannot be empty: %w", ErrInvalidArgument)
	}

	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, fmt.Errorf("user %s is not a participant of chat %s: %w", senderID, chatID, ErrInvalidArgument)
	}

	createdAt := models.FormatTimestamp(time.Now())
	message := models.Message{
		ChatID:    chatID,
		MessageID: uuid.NewString(),
		SenderID:  senderID,
		Text:      text,
		CreatedAt: createdAt,
		SortKey:   createdAt + "#" + uuid.NewString()[:8],
	}

	if err := s.Store.AppendMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	last := models.LastMessage{Text: text, SenderID: senderID, CreatedAt: createdAt}
	recipient := chat.OtherParticipant(senderID)
	if err := s.Store.BumpAfterMessage(ctx, chatID, last, recipient); err != nil {
		// The message is stored; the preview/counter catch up on the next send.
		log.Printf("❌ Failed to update chat %s after message: %v", chatID, err)
	}

	observability.MessagesSent.Inc()
	s.publishMessages(ctx, chatID)
	s.publishChatList(ctx, chat.ParticipantIDs)
	return &message, nil
}

// GetMessages returns the chat's messages ascending by creation time.
func (s *ChatService) GetMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	messages, err := s.Store.ListMessages(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for chat %s: %w", chatID, err)
	}
	return messages, nil
}

// SubscribeMessages delivers the full ordered message set immediately and
// again after every mutation. The disposer stops delivery.
func (s *ChatService) SubscribeMessages(ctx context.Context, chatID string) (<-chan []models.Message, func(), error) {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, nil, err
	}

	ch, cancel := s.messageBroker.Subscribe(chatID)

	// Initial snapshot. Registering before reading means a mutation landing
	// in between delivers a newer snapshot that the Offer will not clobber.
	snapshot, err := s.Store.ListMessages(ctx, chatID, messageSnapshotLimit)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to load initial snapshot for chat %s: %w", chatID, err)
	}
	s.messageBroker.Offer(ch, snapshot)

	return ch, cancel, nil
}

// SubscribeTyping delivers the set of actively-typing users on each change.
func (s *ChatService) SubscribeTyping(ctx context.Context, chatID string) (<-chan []string, func(), error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}

	ch, cancel := s.typingBroker.Subscribe(chatID)
	s.typingBroker.Offer(ch, chat.ActiveTypingUsers(time.Now()))
	return ch, cancel, nil
}

// MarkMessagesAsRead marks everything not sent by readerID as read and
// zeroes the reader's unread counter. Repeat calls are no-ops.
func (s *ChatService) MarkMessagesAsRead(ctx context.Context, chatID, readerID string) error {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(readerID) {
		return fmt.Errorf("user %s is not a participant of chat %s: %w", readerID, chatID, ErrInvalidArgument)
	}

	if err := s.Store.MarkMessagesRead(ctx, chatID, readerID); err != nil {
		return fmt.Errorf("failed to mark messages as read in chat %s: %w", chatID, err)
	}

	s.publishMessages(ctx, chatID)
	s.publishChatList(ctx, chat.ParticipantIDs)
	return nil
}

// SetTyping records whether userID is typing. The flag carries a deadline of
// now+TypingTTL; a client that goes away mid-keystroke simply expires.
func (s *ChatService) SetTyping(ctx context.Context, chatID, userID string, isTyping bool) error {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return fmt.Errorf("user %s is not a participant of chat %s: %w", userID, chatID, ErrInvalidArgument)
	}

	deadline := ""
	if isTyping {
		deadline = models.FormatTimestamp(time.Now().Add(s.TypingTTL))
	}
	if err := s.Store.SetTypingDeadline(ctx, chatID, userID, deadline); err != nil {
		return fmt.Errorf("failed to update typing state in chat %s: %w", chatID, err)
	}

	updated, err := s.Store.GetChat(ctx, chatID)
	if err == nil {
		s.typingBroker.Publish(chatID, updated.ActiveTypingUsers(time.Now()))
	}
	return nil
}

// TypingUsers returns the users whose typing flag has not expired.
func (s *ChatService) TypingUsers(ctx context.Context, chatID string) ([]string, error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return chat.ActiveTypingUsers(time.Now()), nil
}

// SubscribeChatList delivers the user's chat list, newest activity first,
// immediately and again whenever one of their chats changes (new chat, new
// message, read receipt). The disposer stops delivery.
func (s *ChatService) SubscribeChatList(ctx context.Context, userID string) (<-chan []models.Chat, func(), error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("user id is required: %w", ErrInvalidArgument)
	}

	ch, cancel := s.chatListBroker.Subscribe(userID)

	snapshot, err := s.Store.ListChatsForUser(ctx, userID)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to load chat list for %s: %w", userID, err)
	}
	s.chatListBroker.Offer(ch, snapshot)

	return ch, cancel, nil
}

func (s *ChatService) publishMessages(ctx context.Context, chatID string) {
	snapshot, err := s.Store.ListMessages(ctx, chatID, messageSnapshotLimit)
	if err != nil {
		log.Printf("❌ Failed to build message snapshot for chat %s: %v", chatID, err)
		return
	}
	s.messageBroker.Publish(chatID, snapshot)
}

func (s *ChatService) publishChatList(ctx context.Context, participantIDs []string) {
	for _, userID := range participantIDs {
		chats, err := s.Store.ListChatsForUser(ctx, userID)
		if err != nil {
			log.Printf("❌ Failed to build chat list snapshot for %s: %v", userID, err)
			continue
		}
		s.chatListBroker.Publish(userID, chats)
	}
}
