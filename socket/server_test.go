package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentacrush_server/models"
	"mentacrush_server/repositories/memory"
	"mentacrush_server/services"
)

const testSecret = "socket-test-secret"

type testEnv struct {
	server        *httptest.Server
	chats         *services.ChatService
	notifications *services.NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	auth := &services.AuthService{
		Secret:     []byte(testSecret),
		Profiles:   memory.NewProfileStore(),
		Activities: &services.ActivityService{Store: memory.NewActivityStore()},
	}
	chats := services.NewChatService(memory.NewChatStore())
	notifications := &services.NotificationService{Store: memory.NewNotificationStore()}

	ws := NewServer(auth, chats, notifications)
	r := mux.NewRouter()
	r.HandleFunc("/ws/chats", ws.HandleChatListSocket)
	r.HandleFunc("/ws/chats/{chatId}", ws.HandleChatSocket)
	r.HandleFunc("/ws/notifications", ws.HandleNotificationSocket)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return &testEnv{server: server, chats: chats, notifications: notifications}
}

func (e *testEnv) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + path
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": userID,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// readEvent blocks until the next frame of the wanted type, skipping others
// (initial message and typing snapshots arrive in either order).
func readEvent(t *testing.T, conn *websocket.Conn, wantType string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var frame struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Type == wantType {
			return frame.Payload
		}
	}
}

func TestChatSocket_StreamsMessagesAndTyping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	chat, _, err := env.chats.GetOrCreateChat(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = env.chats.SendMessage(ctx, chat.ChatID, "alice", "hello")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(
		env.wsURL("/ws/chats/"+chat.ChatID+"?token="+tokenFor(t, "bob")), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Initial snapshot carries the pre-existing message.
	var messages []models.Message
	require.NoError(t, json.Unmarshal(readEvent(t, conn, "messages"), &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Text)

	// A new message arrives as a fresh snapshot.
	_, err = env.chats.SendMessage(ctx, chat.ChatID, "alice", "still there?")
	require.NoError(t, err)
	for len(messages) < 2 {
		require.NoError(t, json.Unmarshal(readEvent(t, conn, "messages"), &messages))
	}
	assert.Equal(t, "still there?", messages[1].Text)

	// The client's typing frame surfaces in the typing stream.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "typing", "isTyping": true}))
	var typing []string
	for len(typing) == 0 {
		require.NoError(t, json.Unmarshal(readEvent(t, conn, "typing"), &typing))
	}
	assert.Equal(t, []string{"bob"}, typing)
}

func TestChatSocket_RejectsOutsiders(t *testing.T) {
	env := newTestEnv(t)

	chat, _, err := env.chats.GetOrCreateChat(context.Background(), "alice", "bob")
	require.NoError(t, err)

	// No token.
	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL("/ws/chats/"+chat.ChatID), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid token, not a participant.
	_, resp, err = websocket.DefaultDialer.Dial(
		env.wsURL("/ws/chats/"+chat.ChatID+"?token="+tokenFor(t, "mallory")), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unknown chat.
	_, resp, err = websocket.DefaultDialer.Dial(
		env.wsURL("/ws/chats/nope?token="+tokenFor(t, "alice")), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatListSocket_StreamsUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conn, _, err := websocket.DefaultDialer.Dial(
		env.wsURL("/ws/chats?token="+tokenFor(t, "alice")), nil)
	require.NoError(t, err)
	defer conn.Close()

	var chats []models.Chat
	require.NoError(t, json.Unmarshal(readEvent(t, conn, "chats"), &chats))
	assert.Empty(t, chats)

	// A new match shows up in the inbox without a reconnect.
	chat, _, err := env.chats.GetOrCreateChat(ctx, "alice", "bob")
	require.NoError(t, err)
	for len(chats) == 0 {
		require.NoError(t, json.Unmarshal(readEvent(t, conn, "chats"), &chats))
	}
	assert.Equal(t, chat.ChatID, chats[0].ChatID)

	// So does an incoming message's preview and unread count.
	_, err = env.chats.SendMessage(ctx, chat.ChatID, "bob", "hey")
	require.NoError(t, err)
	for chats[0].LastMessage == nil {
		require.NoError(t, json.Unmarshal(readEvent(t, conn, "chats"), &chats))
	}
	assert.Equal(t, "hey", chats[0].LastMessage.Text)
	assert.Equal(t, 1, chats[0].UnreadCount["alice"])
}

func TestNotificationSocket_StreamsFeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.notifications.PushMatchNotification(ctx, "alice", "bob")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(
		env.wsURL("/ws/notifications?token="+tokenFor(t, "alice")), nil)
	require.NoError(t, err)
	defer conn.Close()

	var feed []models.Notification
	require.NoError(t, json.Unmarshal(readEvent(t, conn, "notifications"), &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "bob", feed[0].MatchedUserID)

	_, err = env.notifications.PushMatchNotification(ctx, "alice", "carol")
	require.NoError(t, err)
	for len(feed) < 2 {
		require.NoError(t, json.Unmarshal(readEvent(t, conn, "notifications"), &feed))
	}
	assert.Len(t, feed, 2)
}
