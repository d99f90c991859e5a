package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"mentacrush_server/middleware"
	"mentacrush_server/services"
)

// ChatController handles HTTP requests for chats and messages
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{ChatService: service}
}

// HandleListChats returns the caller's chats, most recently active first.
func (c *ChatController) HandleListChats(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)

	chats, err := c.ChatService.GetChatsForUser(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// HandleGetMessages fetches a chat's messages, oldest first.
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	chatID := mux.Vars(r)["chatId"]

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	chat, err := c.ChatService.GetChat(r.Context(), chatID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !chat.HasParticipant(session.UserID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Not a participant of this chat"})
		return
	}

	messages, err := c.ChatService.GetMessages(r.Context(), chatID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// HandleSendMessage appends a new message to the chat.
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	chatID := mux.Vars(r)["chatId"]

	var request struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	message, err := c.ChatService.SendMessage(r.Context(), chatID, session.UserID, request.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message)
}

// HandleMarkRead marks the chat read for the caller.
func (c *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	chatID := mux.Vars(r)["chatId"]

	if err := c.ChatService.MarkMessagesAsRead(r.Context(), chatID, session.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleSetTyping updates the caller's typing flag.
func (c *ChatController) HandleSetTyping(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	chatID := mux.Vars(r)["chatId"]

	var request struct {
		IsTyping bool `json:"isTyping"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	if err := c.ChatService.SetTyping(r.Context(), chatID, session.UserID, request.IsTyping); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
