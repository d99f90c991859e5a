package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// ChatStore persists chats and their message logs. Messages live in their
// own table keyed by chatId with a createdAt#messageId sort key, so a query
// returns them already in chronological order.
type ChatStore struct {
	Dynamo *DynamoService
}

func NewChatStore(ds *DynamoService) *ChatStore {
	return &ChatStore{Dynamo: ds}
}

// CreateChat inserts the chat only when its deterministic id is absent. The
// conditional write is what guarantees at most one chat per pair under
// concurrent creation; the loser gets created=false, never an error.
func (s *ChatStore) CreateChat(ctx context.Context, chat models.Chat) (bool, error) {
	err := s.Dynamo.PutItemIfAbsent(ctx, models.ChatsTable, "chatId", chat)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			log.Printf("⚠️ Chat %s already exists, returning existing record", chat.ChatID)
			return false, nil
		}
		return false, fmt.Errorf("failed to create chat %s: %w", chat.ChatID, err)
	}
	log.Printf("✅ Chat created: %s", chat.ChatID)
	return true, nil
}

func (s *ChatStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.ChatsTable, key)
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := attributevalue.UnmarshalMap(item, &chat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat %s: %w", chatID, err)
	}
	return &chat, nil
}

func (s *ChatStore) ListChatsForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	filterExpression := "contains(participantIds, :uid)"
	expressionValues := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	}

	var chats []models.Chat
	err := s.Dynamo.ScanWithFilter(ctx, models.ChatsTable, filterExpression, expressionValues, nil, 200, &chats)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats for %s: %w", userID, err)
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt > chats[j].UpdatedAt
	})
	return chats, nil
}

func (s *ChatStore) AppendMessage(ctx context.Context, message models.Message) error {
	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

func (s *ChatStore) ListMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	keyCondition := "chatId = :chatId"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(limit), false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for chat %s: %w", chatID, err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return messages, nil
}

// listAllMessages pages through the complete message log. Read-state flips
// must reach every message, however long the conversation has run.
func (s *ChatStore) listAllMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	keyCondition := "chatId = :chatId"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	items, err := s.Dynamo.QueryAllItems(ctx, models.MessagesTable, keyCondition, expressionValues, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch full message log for chat %s: %w", chatID, err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return messages, nil
}

// BumpAfterMessage refreshes the chat preview and increments the recipient's
// unread counter in a single update.
func (s *ChatStore) BumpAfterMessage(ctx context.Context, chatID string, last models.LastMessage, recipientID string) error {
	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	lastAttr, err := attributevalue.MarshalMap(last)
	if err != nil {
		return fmt.Errorf("failed to marshal lastMessage: %w", err)
	}

	updateExpression := "SET lastMessage = :lm, updatedAt = :ua, unreadCount.#uid = if_not_exists(unreadCount.#uid, :zero) + :one"
	_, err = s.Dynamo.UpdateItem(ctx, models.ChatsTable, updateExpression, key,
		map[string]types.AttributeValue{
			":lm":   &types.AttributeValueMemberM{Value: lastAttr},
			":ua":   &types.AttributeValueMemberS{Value: models.FormatTimestamp(time.Now())},
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
		map[string]string{"#uid": recipientID},
	)
	if err != nil {
		return fmt.Errorf("failed to bump chat %s after message: %w", chatID, err)
	}
	return nil
}

// MarkMessagesRead flips read on every message not sent by readerID and
// zeroes the reader's unread counter. Safe to repeat.
func (s *ChatStore) MarkMessagesRead(ctx context.Context, chatID, readerID string) error {
	messages, err := s.listAllMessages(ctx, chatID)
	if err != nil {
		return err
	}

	for _, message := range messages {
		if message.SenderID == readerID || message.Read {
			continue
		}

		key := map[string]types.AttributeValue{
			"chatId": &types.AttributeValueMemberS{Value: message.ChatID},
			"sk":     &types.AttributeValueMemberS{Value: message.SortKey},
		}
		updateExpression := "SET #read = :true"
		_, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key,
			map[string]types.AttributeValue{
				":true": &types.AttributeValueMemberBOOL{Value: true},
			},
			map[string]string{"#read": "read"},
		)
		if err != nil {
			log.Printf("❌ Failed to mark message %s as read: %v", message.MessageID, err)
		}
	}

	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}
	updateExpression := "SET unreadCount.#uid = :zero"
	_, err = s.Dynamo.UpdateItem(ctx, models.ChatsTable, updateExpression, key,
		map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
		map[string]string{"#uid": readerID},
	)
	if err != nil {
		return fmt.Errorf("failed to reset unread count for %s in chat %s: %w", readerID, chatID, err)
	}
	return nil
}

// SetTypingDeadline writes or clears the typing flag for userID. Empty
// deadline clears it.
func (s *ChatStore) SetTypingDeadline(ctx context.Context, chatID, userID, deadline string) error {
	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	if deadline == "" {
		updateExpression := "REMOVE typingUsers.#uid"
		_, err := s.Dynamo.UpdateItem(ctx, models.ChatsTable, updateExpression, key, nil,
			map[string]string{"#uid": userID},
		)
		if err != nil {
			return fmt.Errorf("failed to clear typing flag for %s in chat %s: %w", userID, chatID, err)
		}
		return nil
	}

	updateExpression := "SET typingUsers.#uid = :deadline"
	_, err := s.Dynamo.UpdateItem(ctx, models.ChatsTable, updateExpression, key,
		map[string]types.AttributeValue{
			":deadline": &types.AttributeValueMemberS{Value: deadline},
		},
		map[string]string{"#uid": userID},
	)
	if err != nil {
		return fmt.Errorf("failed to set typing flag for %s in chat %s: %w", userID, chatID, err)
	}
	return nil
}
