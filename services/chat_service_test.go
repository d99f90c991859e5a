package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentacrush_server/models"
	"mentacrush_server/repositories/memory"
)

func newTestChatService(t *testing.T) *ChatService {
	t.Helper()
	return NewChatService(memory.NewChatStore())
}

func mustCreateChat(t *testing.T, svc *ChatService, userA, userB string) *models.Chat {
	t.Helper()
	chat, created, err := svc.GetOrCreateChat(context.Background(), userA, userB)
	require.NoError(t, err)
	require.True(t, created)
	return chat
}

func TestGetOrCreateChat_Idempotent(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	first, created, err := svc.GetOrCreateChat(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)

	// Repeat calls, in both argument orders, land on the same chat.
	for i := 0; i < 5; i++ {
		userA, userB := "alice", "bob"
		if i%2 == 1 {
			userA, userB = userB, userA
		}
		chat, created, err := svc.GetOrCreateChat(ctx, userA, userB)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ChatID, chat.ChatID)
	}

	chats, err := svc.GetChatsForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestGetOrCreateChat_ConcurrentCallersOneWinner(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	const callers = 32
	var wg sync.WaitGroup
	createdCount := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userA, userB := "alice", "bob"
			if i%2 == 1 {
				userA, userB = userB, userA
			}
			_, created, err := svc.GetOrCreateChat(ctx, userA, userB)
			require.NoError(t, err)
			createdCount <- created
		}(i)
	}
	wg.Wait()
	close(createdCount)

	winners := 0
	for created := range createdCount {
		if created {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	chats, err := svc.GetChatsForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestGetOrCreateChat_SeparatorBearingIDs(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	// Distinct pairs whose ids happen to concatenate the same way must end
	// up in distinct chats.
	first, created, err := svc.GetOrCreateChat(ctx, "a", "b_c")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.GetOrCreateChat(ctx, "a_b", "c")
	require.NoError(t, err)
	require.True(t, created)

	assert.NotEqual(t, first.ChatID, second.ChatID)
	assert.ElementsMatch(t, []string{"a", "b_c"}, first.ParticipantIDs)
	assert.ElementsMatch(t, []string{"a_b", "c"}, second.ParticipantIDs)
}

func TestGetOrCreateChat_Validation(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	_, _, err := svc.GetOrCreateChat(ctx, "alice", "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = svc.GetOrCreateChat(ctx, "", "bob")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSendMessage_Validation(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	_, err := svc.SendMessage(ctx, chat.ChatID, "alice", "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SendMessage(ctx, chat.ChatID, "mallory", "hey")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SendMessage(ctx, "no_such", "alice", "hey")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendMessage_UpdatesPreviewAndUnread(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	_, err := svc.SendMessage(ctx, chat.ChatID, "alice", "hi bob")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, chat.ChatID, "alice", "you there?")
	require.NoError(t, err)

	updated, err := svc.GetChat(ctx, chat.ChatID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastMessage)
	assert.Equal(t, "you there?", updated.LastMessage.Text)
	assert.Equal(t, "alice", updated.LastMessage.SenderID)
	assert.Equal(t, 2, updated.UnreadCount["bob"])
	assert.Equal(t, 0, updated.UnreadCount["alice"])
}

func TestGetMessages_AscendingOrder(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	for i := 0; i < 10; i++ {
		sender := "alice"
		if i%2 == 1 {
			sender = "bob"
		}
		_, err := svc.SendMessage(ctx, chat.ChatID, sender, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	messages, err := svc.GetMessages(ctx, chat.ChatID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 10)
	for i, message := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i), message.Text)
	}
	for i := 1; i < len(messages); i++ {
		assert.LessOrEqual(t, messages[i-1].SortKey, messages[i].SortKey)
	}
}

func TestMarkMessagesAsRead(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	_, err := svc.SendMessage(ctx, chat.ChatID, "alice", "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, chat.ChatID, "alice", "two")
	require.NoError(t, err)

	require.NoError(t, svc.MarkMessagesAsRead(ctx, chat.ChatID, "bob"))

	updated, err := svc.GetChat(ctx, chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UnreadCount["bob"])

	messages, err := svc.GetMessages(ctx, chat.ChatID, 0)
	require.NoError(t, err)
	for _, message := range messages {
		assert.True(t, message.Read)
	}

	// Repeat reads are no-ops.
	require.NoError(t, svc.MarkMessagesAsRead(ctx, chat.ChatID, "bob"))

	// A message after the read starts a fresh unread count.
	_, err = svc.SendMessage(ctx, chat.ChatID, "alice", "three")
	require.NoError(t, err)
	updated, err = svc.GetChat(ctx, chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UnreadCount["bob"])

	messages, err = svc.GetMessages(ctx, chat.ChatID, 0)
	require.NoError(t, err)
	assert.False(t, messages[len(messages)-1].Read)
}

func TestSetTyping_FlagAndExpiry(t *testing.T) {
	svc := newTestChatService(t)
	svc.TypingTTL = 30 * time.Millisecond
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	require.NoError(t, svc.SetTyping(ctx, chat.ChatID, "alice", true))
	users, err := svc.TypingUsers(ctx, chat.ChatID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, users)

	// An abandoned flag expires on its own.
	time.Sleep(50 * time.Millisecond)
	users, err = svc.TypingUsers(ctx, chat.ChatID)
	require.NoError(t, err)
	assert.Empty(t, users)

	// An explicit clear takes effect immediately.
	svc.TypingTTL = time.Minute
	require.NoError(t, svc.SetTyping(ctx, chat.ChatID, "bob", true))
	require.NoError(t, svc.SetTyping(ctx, chat.ChatID, "bob", false))
	users, err = svc.TypingUsers(ctx, chat.ChatID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSubscribeMessages_SnapshotsArriveInOrder(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	_, err := svc.SendMessage(ctx, chat.ChatID, "alice", "before subscribe")
	require.NoError(t, err)

	snapshots, cancel, err := svc.SubscribeMessages(ctx, chat.ChatID)
	require.NoError(t, err)
	defer cancel()

	initial := waitForSnapshot(t, snapshots)
	require.Len(t, initial, 1)
	assert.Equal(t, "before subscribe", initial[0].Text)

	_, err = svc.SendMessage(ctx, chat.ChatID, "bob", "after subscribe")
	require.NoError(t, err)

	// The next snapshot is a superset of the first; slow consumers may skip
	// intermediate states but never see stale ones.
	next := waitForSnapshot(t, snapshots)
	for len(next) < 2 {
		next = waitForSnapshot(t, snapshots)
	}
	require.Len(t, next, 2)
	assert.Equal(t, "after subscribe", next[1].Text)

	cancel()
	_, err = svc.SendMessage(ctx, chat.ChatID, "alice", "after cancel")
	require.NoError(t, err)
}

func TestSubscribeMessages_UnknownChat(t *testing.T) {
	svc := newTestChatService(t)
	_, _, err := svc.SubscribeMessages(context.Background(), "no_such")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribeTyping_DeliversChanges(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	updates, cancel, err := svc.SubscribeTyping(ctx, chat.ChatID)
	require.NoError(t, err)
	defer cancel()

	assert.Empty(t, waitForSnapshot(t, updates))

	require.NoError(t, svc.SetTyping(ctx, chat.ChatID, "bob", true))
	users := waitForSnapshot(t, updates)
	assert.Equal(t, []string{"bob"}, users)
}

func TestSubscribeChatList_DeliversUpdates(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	list, cancel, err := svc.SubscribeChatList(ctx, "alice")
	require.NoError(t, err)
	defer cancel()

	assert.Empty(t, waitForSnapshot(t, list))

	// A new match lands in the list.
	chat := mustCreateChat(t, svc, "alice", "bob")
	snapshot := waitForSnapshot(t, list)
	for len(snapshot) == 0 {
		snapshot = waitForSnapshot(t, list)
	}
	assert.Equal(t, chat.ChatID, snapshot[0].ChatID)

	// An incoming message refreshes the preview and the unread count.
	_, err = svc.SendMessage(ctx, chat.ChatID, "bob", "hi alice")
	require.NoError(t, err)
	for snapshot[0].LastMessage == nil {
		snapshot = waitForSnapshot(t, list)
	}
	assert.Equal(t, "hi alice", snapshot[0].LastMessage.Text)
	assert.Equal(t, 1, snapshot[0].UnreadCount["alice"])

	// Reading the chat pushes the zeroed counter.
	require.NoError(t, svc.MarkMessagesAsRead(ctx, chat.ChatID, "alice"))
	for snapshot[0].UnreadCount["alice"] != 0 {
		snapshot = waitForSnapshot(t, list)
	}
}

func TestSubscribeChatList_Validation(t *testing.T) {
	svc := newTestChatService(t)
	_, _, err := svc.SubscribeChatList(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMarkMessagesAsRead_CoversFullHistory(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()
	chat := mustCreateChat(t, svc, "alice", "bob")

	// Append through the store so the test stays fast; the log deliberately
	// outgrows the live-snapshot bound.
	base := models.FormatTimestamp(time.Now())
	for i := 0; i < messageSnapshotLimit+25; i++ {
		err := svc.Store.AppendMessage(ctx, models.Message{
			ChatID:    chat.ChatID,
			MessageID: fmt.Sprintf("m%04d", i),
			SenderID:  "bob",
			Text:      fmt.Sprintf("message %d", i),
			CreatedAt: base,
			SortKey:   fmt.Sprintf("%s#%04d", base, i),
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkMessagesAsRead(ctx, chat.ChatID, "alice"))

	messages, err := svc.Store.ListMessages(ctx, chat.ChatID, 0)
	require.NoError(t, err)
	require.Len(t, messages, messageSnapshotLimit+25)
	for _, message := range messages {
		assert.True(t, message.Read)
	}
}

func waitForSnapshot[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		panic("unreachable")
	}
}
