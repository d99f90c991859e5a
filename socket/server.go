// Package socket serves the realtime websocket endpoints for chat and
// notification subscribers.
package socket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"mentacrush_server/middleware"
	"mentacrush_server/models"
	"mentacrush_server/observability"
	"mentacrush_server/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Server upgrades HTTP requests to websocket sessions and streams snapshots
// from the services to the client.
type Server struct {
	Auth          *services.AuthService
	Chats         *services.ChatService
	Notifications *services.NotificationService
	upgrader      websocket.Upgrader
}

func NewServer(auth *services.AuthService, chats *services.ChatService, notifications *services.NotificationService) *Server {
	return &Server{
		Auth:          auth,
		Chats:         chats,
		Notifications: notifications,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The mobile clients connect from app origins, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// event is the envelope for every frame the server pushes to the client.
type event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// clientFrame is what the client sends us: typing flags and read receipts.
type clientFrame struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

// HandleChatSocket streams message and typing snapshots for one chat and
// accepts typing/read frames from the client. The token rides the query
// string because browsers cannot set headers on websocket upgrades.
func (s *Server) HandleChatSocket(w http.ResponseWriter, r *http.Request) {
	session, err := s.Auth.ResolveSession(r.Context(), middleware.BearerToken(r))
	if err != nil {
		http.Error(w, `{"error": "Unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	chatID := mux.Vars(r)["chatId"]
	chat, err := s.Chats.GetChat(r.Context(), chatID)
	if err != nil {
		http.Error(w, `{"error": "Chat not found"}`, http.StatusNotFound)
		return
	}
	if !chat.HasParticipant(session.UserID) {
		http.Error(w, `{"error": "Not a participant"}`, http.StatusForbidden)
		return
	}

	messages, cancelMessages, err := s.Chats.SubscribeMessages(r.Context(), chatID)
	if err != nil {
		http.Error(w, `{"error": "Subscription failed"}`, http.StatusInternalServerError)
		return
	}
	typing, cancelTyping, err := s.Chats.SubscribeTyping(r.Context(), chatID)
	if err != nil {
		cancelMessages()
		http.Error(w, `{"error": "Subscription failed"}`, http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancelMessages()
		cancelTyping()
		log.Printf("❌ Websocket upgrade failed for chat %s: %v", chatID, err)
		return
	}

	observability.ActiveSubscriptions.Inc()
	log.Printf("🔄 User %s connected to chat %s", session.UserID, chatID)

	done := make(chan struct{})
	go s.writeChatLoop(conn, messages, typing, done)

	// Read loop. Exits on close or error, which tears the session down.
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("⚠️ Ignoring malformed frame on chat %s: %v", chatID, err)
			continue
		}
		switch frame.Type {
		case "typing":
			if err := s.Chats.SetTyping(r.Context(), chatID, session.UserID, frame.IsTyping); err != nil {
				log.Printf("❌ Failed to set typing state: %v", err)
			}
		case "read":
			if err := s.Chats.MarkMessagesAsRead(r.Context(), chatID, session.UserID); err != nil {
				log.Printf("❌ Failed to mark messages as read: %v", err)
			}
		}
	}

	close(done)
	cancelMessages()
	cancelTyping()
	conn.Close()

	// A disconnecting user stops typing.
	if err := s.Chats.SetTyping(r.Context(), chatID, session.UserID, false); err != nil {
		log.Printf("⚠️ Failed to clear typing flag for %s: %v", session.UserID, err)
	}

	observability.ActiveSubscriptions.Dec()
	log.Printf("🔄 User %s disconnected from chat %s", session.UserID, chatID)
}

// HandleNotificationSocket streams the caller's notification feed.
func (s *Server) HandleNotificationSocket(w http.ResponseWriter, r *http.Request) {
	session, err := s.Auth.ResolveSession(r.Context(), middleware.BearerToken(r))
	if err != nil {
		http.Error(w, `{"error": "Unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	feed, cancel, err := s.Notifications.Subscribe(r.Context(), session.UserID)
	if err != nil {
		http.Error(w, `{"error": "Subscription failed"}`, http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Printf("❌ Websocket upgrade failed for notifications: %v", err)
		return
	}

	observability.ActiveSubscriptions.Inc()
	log.Printf("🔔 User %s subscribed to notifications", session.UserID)

	done := make(chan struct{})
	go writeListLoop(conn, "notifications", feed, done)

	drainUntilClose(conn)

	close(done)
	cancel()
	conn.Close()

	observability.ActiveSubscriptions.Dec()
	log.Printf("🔔 User %s unsubscribed from notifications", session.UserID)
}

// HandleChatListSocket streams the caller's chat list so the inbox screen
// can show new matches, previews and unread counts without polling.
func (s *Server) HandleChatListSocket(w http.ResponseWriter, r *http.Request) {
	session, err := s.Auth.ResolveSession(r.Context(), middleware.BearerToken(r))
	if err != nil {
		http.Error(w, `{"error": "Unauthenticated"}`, http.StatusUnauthorized)
		return
	}

	feed, cancel, err := s.Chats.SubscribeChatList(r.Context(), session.UserID)
	if err != nil {
		http.Error(w, `{"error": "Subscription failed"}`, http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Printf("❌ Websocket upgrade failed for chat list: %v", err)
		return
	}

	observability.ActiveSubscriptions.Inc()
	log.Printf("🔄 User %s subscribed to their chat list", session.UserID)

	done := make(chan struct{})
	go writeListLoop(conn, "chats", feed, done)

	drainUntilClose(conn)

	close(done)
	cancel()
	conn.Close()

	observability.ActiveSubscriptions.Dec()
	log.Printf("🔄 User %s unsubscribed from their chat list", session.UserID)
}

// writeListLoop is the single writer for feed sockets that only push list
// snapshots (notifications, chat list).
func writeListLoop[T any](conn *websocket.Conn, eventType string, feed <-chan []T, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case snapshot, ok := <-feed:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event{Type: eventType, Payload: snapshot}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drainUntilClose keeps the read side alive for pongs and returns when the
// client goes away. Feed sockets accept no client frames.
func drainUntilClose(conn *websocket.Conn) {
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeChatLoop is the single writer for a chat connection. Message and
// typing snapshots race here instead of on the connection.
func (s *Server) writeChatLoop(conn *websocket.Conn, messages <-chan []models.Message, typing <-chan []string, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case snapshot, ok := <-messages:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event{Type: "messages", Payload: snapshot}); err != nil {
				return
			}
		case users, ok := <-typing:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event{Type: "typing", Payload: users}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
